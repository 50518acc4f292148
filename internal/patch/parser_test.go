package patch

import (
	"strings"
	"testing"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Record
	}{
		{
			name:     "empty diff",
			input:    "",
			expected: nil,
		},
		{
			name:     "no file sections",
			input:    "just some text\nwith no diff in it\n",
			expected: nil,
		},
		{
			name: "simple file modification",
			input: `diff --git a/hello.go b/hello.go
index 1234567..abcdef0 100644
--- a/hello.go
+++ b/hello.go
@@ -1,5 +1,6 @@ package main
 package main

 func main() {
-	fmt.Println("hello")
+	fmt.Println("hello, world")
+	fmt.Println("goodbye")
 }
`,
			expected: []Record{
				{
					OldPath:   "a/hello.go",
					NewPath:   "b/hello.go",
					Index:     "1234567..abcdef0 100644",
					Additions: 2,
					Deletions: 1,
					Hunks: []Hunk{
						{
							OldStart: 1, OldLines: 5, NewStart: 1, NewLines: 6,
							Header:  "@@ -1,5 +1,6 @@ package main",
							Section: "package main",
							Changes: []Change{
								{Kind: KindContext, Content: " package main", OldLine: 1, NewLine: 1},
								{Kind: KindContext, Content: " ", OldLine: 2, NewLine: 2},
								{Kind: KindContext, Content: " func main() {", OldLine: 3, NewLine: 3},
								{Kind: KindRemoved, Content: "-\tfmt.Println(\"hello\")", OldLine: 4},
								{Kind: KindAdded, Content: "+\tfmt.Println(\"hello, world\")", NewLine: 4},
								{Kind: KindAdded, Content: "+\tfmt.Println(\"goodbye\")", NewLine: 5},
								{Kind: KindContext, Content: " }", OldLine: 5, NewLine: 6},
							},
						},
					},
				},
			},
		},
		{
			name: "new file",
			input: `diff --git a/new.txt b/new.txt
new file mode 100644
index 0000000..1234567
--- /dev/null
+++ b/new.txt
@@ -0,0 +1,2 @@
+line one
+line two
`,
			expected: []Record{
				{
					OldPath:   DevNull,
					NewPath:   "b/new.txt",
					IsNew:     true,
					NewMode:   "100644",
					Index:     "0000000..1234567",
					Additions: 2,
					Hunks: []Hunk{
						{
							OldStart: 0, OldLines: 0, NewStart: 1, NewLines: 2,
							Header: "@@ -0,0 +1,2 @@",
							Changes: []Change{
								{Kind: KindAdded, Content: "+line one", NewLine: 1},
								{Kind: KindAdded, Content: "+line two", NewLine: 2},
							},
						},
					},
				},
			},
		},
		{
			name: "deleted file",
			input: `diff --git a/old.txt b/old.txt
deleted file mode 100644
index 1234567..0000000
--- a/old.txt
+++ /dev/null
@@ -1,2 +0,0 @@
-goodbye
-world
`,
			expected: []Record{
				{
					OldPath:   "a/old.txt",
					NewPath:   DevNull,
					IsDeleted: true,
					OldMode:   "100644",
					Index:     "1234567..0000000",
					Deletions: 2,
					Hunks: []Hunk{
						{
							OldStart: 1, OldLines: 2, NewStart: 0, NewLines: 0,
							Header: "@@ -1,2 +0,0 @@",
							Changes: []Change{
								{Kind: KindRemoved, Content: "-goodbye", OldLine: 1},
								{Kind: KindRemoved, Content: "-world", OldLine: 2},
							},
						},
					},
				},
			},
		},
		{
			name: "renamed file",
			input: `diff --git a/old_name.go b/new_name.go
similarity index 100%
rename from old_name.go
rename to new_name.go
`,
			expected: []Record{
				{
					OldPath:    "a/old_name.go",
					NewPath:    "b/new_name.go",
					IsRenamed:  true,
					RenameFrom: "old_name.go",
					RenameTo:   "new_name.go",
					Similarity: 100,
				},
			},
		},
		{
			name: "binary file",
			input: `diff --git a/image.png b/image.png
new file mode 100644
index 0000000..1234567
Binary files /dev/null and b/image.png differ
`,
			expected: []Record{
				{
					OldPath:  "a/image.png",
					NewPath:  "b/image.png",
					IsNew:    true,
					IsBinary: true,
					NewMode:  "100644",
					Index:    "0000000..1234567",
				},
			},
		},
		{
			name: "mode change only",
			input: `diff --git a/run.sh b/run.sh
old mode 100644
new mode 100755
`,
			expected: []Record{
				{
					OldPath: "a/run.sh",
					NewPath: "b/run.sh",
					OldMode: "100644",
					NewMode: "100755",
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParse_SpecExampleHunk(t *testing.T) {
	input := "diff --git a/src/x.ts b/src/x.ts\n--- a/src/x.ts\n+++ b/src/x.ts\n@@ -1,2 +1,3 @@\n foo\n-bar\n+baz\n+qux"

	records, err := Parse(input)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Len(t, records[0].Hunks, 1)

	assert.Equal(t, []Change{
		{Kind: KindContext, Content: " foo", OldLine: 1, NewLine: 1},
		{Kind: KindRemoved, Content: "-bar", OldLine: 2},
		{Kind: KindAdded, Content: "+baz", NewLine: 2},
		{Kind: KindAdded, Content: "+qux", NewLine: 3},
	}, records[0].Hunks[0].Changes)
}

func TestParse_MultipleFilesAndHunks(t *testing.T) {
	input := `diff --git a/a.txt b/a.txt
index 1234567..abcdef0 100644
--- a/a.txt
+++ b/a.txt
@@ -1,2 +1,2 @@
 first
-second
+SECOND
@@ -10,3 +10,2 @@ func tail() {
 ten
-eleven
 twelve
diff --git a/b.txt b/b.txt
index 1234567..abcdef0 100644
--- a/b.txt
+++ b/b.txt
@@ -1 +1 @@
-old
+new
`
	records, err := Parse(input)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "a/a.txt", records[0].OldPath)
	require.Len(t, records[0].Hunks, 2)
	second := records[0].Hunks[1]
	assert.Equal(t, "func tail() {", second.Section)
	assert.Equal(t, []Change{
		{Kind: KindContext, Content: " ten", OldLine: 10, NewLine: 10},
		{Kind: KindRemoved, Content: "-eleven", OldLine: 11},
		{Kind: KindContext, Content: " twelve", OldLine: 12, NewLine: 11},
	}, second.Changes)

	assert.Equal(t, "b/b.txt", records[1].NewPath)
	require.Len(t, records[1].Hunks, 1)
	h := records[1].Hunks[0]
	assert.Equal(t, 1, h.OldLines, "omitted count defaults to one")
	assert.Equal(t, 1, h.NewLines)
}

func TestParse_HeaderLookalikesInsideHunkBody(t *testing.T) {
	input := `diff --git a/notes.md b/notes.md
--- a/notes.md
+++ b/notes.md
@@ -1,3 +1,3 @@
 intro
--- removed rule
+++ added rule
 outro
`
	records, err := Parse(input)
	require.NoError(t, err)
	require.Len(t, records, 1)

	changes := records[0].Hunks[0].Changes
	require.Len(t, changes, 4)
	assert.Equal(t, Change{Kind: KindRemoved, Content: "--- removed rule", OldLine: 2}, changes[1])
	assert.Equal(t, Change{Kind: KindAdded, Content: "+++ added rule", NewLine: 2}, changes[2])
}

func TestParse_NoNewlineMarker(t *testing.T) {
	input := `diff --git a/f b/f
--- a/f
+++ b/f
@@ -1 +1 @@
-old
\ No newline at end of file
+new
\ No newline at end of file
`
	records, err := Parse(input)
	require.NoError(t, err)

	changes := records[0].Hunks[0].Changes
	require.Len(t, changes, 2)
	assert.True(t, changes[0].NoNewline)
	assert.True(t, changes[1].NoNewline)
}

func TestParse_PlainUnifiedDiff(t *testing.T) {
	input := "--- old/x.c\t2024-01-01 10:00:00.000000000 +0000\n" +
		"+++ new/x.c\t2024-01-02 10:00:00.000000000 +0000\n" +
		"@@ -1 +1 @@\n-a\n+b\n" +
		"--- old/y.c\n+++ new/y.c\n@@ -1 +1,2 @@\n y\n+z\n"

	records, err := Parse(input)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "old/x.c", records[0].OldPath)
	assert.Equal(t, "new/x.c", records[0].NewPath)
	assert.Equal(t, "old/y.c", records[1].OldPath)
	assert.Equal(t, 1, records[1].Additions)
}

func TestParse_PlainRecursiveDiffWithBinaryFiles(t *testing.T) {
	input := `diff -ru a/x.txt b/x.txt
--- a/x.txt
+++ b/x.txt
@@ -1 +1 @@
-a
+b
Binary files a/img.png and b/img.png differ
Binary files a/logo.png and b/logo.png differ
diff -ru a/y.txt b/y.txt
--- a/y.txt
+++ b/y.txt
@@ -1 +1,2 @@
 y
+z
`
	records, err := Parse(input)
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.False(t, records[0].IsBinary)
	assert.Equal(t, "a/x.txt", records[0].OldPath)
	assert.Len(t, records[0].Hunks, 1)

	assert.True(t, records[1].IsBinary)
	assert.Equal(t, "a/img.png", records[1].OldPath)
	assert.Equal(t, "b/img.png", records[1].NewPath)
	assert.Empty(t, records[1].Hunks)

	assert.True(t, records[2].IsBinary)
	assert.Equal(t, "b/logo.png", records[2].NewPath)

	assert.False(t, records[3].IsBinary)
	assert.Equal(t, "a/y.txt", records[3].OldPath)
	assert.Equal(t, 1, records[3].Additions)
}

func TestParse_IgnoresPreambleAndStrayDashes(t *testing.T) {
	input := `From 1234 Mon Sep 17 00:00:00 2001
Subject: [PATCH] tweak

--- not a file header
---
 a.txt | 2 +-
diff --git a/a.txt b/a.txt
--- a/a.txt
+++ b/a.txt
@@ -1 +1 @@
-x
+y
`
	records, err := Parse(input)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "a/a.txt", records[0].OldPath)
}

func TestParse_QuotedAndSpacedPaths(t *testing.T) {
	input := `diff --git "a/caf\303\251.txt" "b/caf\303\251.txt"
--- "a/caf\303\251.txt"
+++ "b/caf\303\251.txt"
@@ -1 +1 @@
-a
+b
diff --git a/my file.txt b/my file.txt
similarity index 100%
rename from my file.txt
rename to your file.txt
`
	records, err := Parse(input)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "a/café.txt", records[0].OldPath)
	assert.Equal(t, "b/café.txt", records[0].NewPath)
	assert.Equal(t, "a/my file.txt", records[1].OldPath)
	assert.Equal(t, "b/my file.txt", records[1].NewPath)
	assert.Equal(t, "your file.txt", records[1].RenameTo)
}

func TestParse_GitBinaryPatchIsSkipped(t *testing.T) {
	input := `diff --git a/logo.png b/logo.png
index 1111111..2222222 100644
GIT binary patch
literal 10
RcmZ?wbhEHbRA6LY0000j0096

literal 8
PcmZ?wbhEHbRA6LY000XZ

diff --git a/a.txt b/a.txt
--- a/a.txt
+++ b/a.txt
@@ -1 +1 @@
-x
+y
`
	records, err := Parse(input)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.True(t, records[0].IsBinary)
	assert.Empty(t, records[0].Hunks)
	assert.Len(t, records[1].Hunks, 1)
}

func TestParse_CRLF(t *testing.T) {
	input := "diff --git a/w.txt b/w.txt\r\n--- a/w.txt\r\n+++ b/w.txt\r\n@@ -1 +1 @@\r\n-a\r\n+b\r\n"

	records, err := Parse(input)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "b/w.txt", records[0].NewPath)
	assert.Equal(t, "+b", records[0].Hunks[0].Changes[1].Content)
}

func TestParse_LenientVersusStrict(t *testing.T) {
	// The empty line stands for a context line whose single space was stripped.
	input := "diff --git a/f b/f\n--- a/f\n+++ b/f\n@@ -1,3 +1,3 @@\n a\n\n-b\n+c\n"

	records, err := Parse(input)
	require.NoError(t, err)
	changes := records[0].Hunks[0].Changes
	require.Len(t, changes, 4)
	assert.Equal(t, Change{Kind: KindContext, Content: " ", OldLine: 2, NewLine: 2}, changes[1])

	_, err = Options{Strict: true}.Parse(input)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSyntax))

	var se *SyntaxError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 6, se.Line)
}

func TestParse_TruncatedHunk(t *testing.T) {
	input := "diff --git a/f b/f\n--- a/f\n+++ b/f\n@@ -1,5 +1,5 @@\n a\n-b\n+c\n"

	records, err := Parse(input)
	require.NoError(t, err)
	assert.Len(t, records[0].Hunks[0].Changes, 3)

	_, err = Options{Strict: true}.Parse(input)
	require.ErrorIs(t, err, ErrSyntax)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  int
	}{
		{
			name:  "non-numeric hunk header",
			input: "diff --git a/f b/f\n--- a/f\n+++ b/f\n@@ -x,1 +1,1 @@\n-a\n+b\n",
			line:  4,
		},
		{
			name:  "missing new range",
			input: "diff --git a/f b/f\n--- a/f\n+++ b/f\n@@ -1,1 @@\n-a\n",
			line:  4,
		},
		{
			name:  "overflowing field",
			input: "diff --git a/f b/f\n@@ -99999999999999999999999,1 +1 @@\n-a\n+b\n",
			line:  2,
		},
		{
			name:  "hunk without file section",
			input: "@@ -1 +1 @@\n-a\n+b\n",
			line:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := Parse(tt.input)
			require.Error(t, err)
			assert.Nil(t, records)

			var se *SyntaxError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.line, se.Line)
			assert.True(t, errors.Is(err, ErrSyntax))
		})
	}
}

func TestParse_LineNumbersAdvancePerSide(t *testing.T) {
	input := `diff --git a/f b/f
--- a/f
+++ b/f
@@ -20,5 +30,6 @@
 c1
-r1
-r2
+a1
 c2
+a2
+a3
 c3
`
	records, err := Parse(input)
	require.NoError(t, err)

	lastOld, lastNew := 0, 0
	for _, c := range records[0].Hunks[0].Changes {
		switch c.Kind {
		case KindContext:
			assert.NotZero(t, c.OldLine)
			assert.NotZero(t, c.NewLine)
		case KindAdded:
			assert.Zero(t, c.OldLine)
			assert.NotZero(t, c.NewLine)
		case KindRemoved:
			assert.NotZero(t, c.OldLine)
			assert.Zero(t, c.NewLine)
		}
		if c.OldLine != 0 {
			assert.Greater(t, c.OldLine, lastOld)
			lastOld = c.OldLine
		}
		if c.NewLine != 0 {
			assert.Greater(t, c.NewLine, lastNew)
			lastNew = c.NewLine
		}
	}
	assert.Equal(t, 24, lastOld)
	assert.Equal(t, 35, lastNew)
}

// The same text read by go-gitdiff must agree on files and fragment shapes.
func TestParse_AgreesWithGoGitdiff(t *testing.T) {
	input := `diff --git a/cmd/main.go b/cmd/main.go
index 1234567..abcdef0 100644
--- a/cmd/main.go
+++ b/cmd/main.go
@@ -3,7 +3,8 @@ import (
 	"fmt"
 	"os"
 )
-
+
+// main prints a greeting.
 func main() {
 	fmt.Println("hi")
 	os.Exit(0)
diff --git a/old.txt b/old.txt
deleted file mode 100644
index 1234567..0000000
--- a/old.txt
+++ /dev/null
@@ -1,2 +0,0 @@
-goodbye
-world
diff --git a/docs/a.md b/docs/b.md
similarity index 90%
rename from docs/a.md
rename to docs/b.md
index 1234567..abcdef0 100644
--- a/docs/a.md
+++ b/docs/b.md
@@ -1,2 +1,2 @@
 # Title
-body
+Body
`
	records, err := Parse(input)
	require.NoError(t, err)

	files, _, err := gitdiff.Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, len(files))

	for i, f := range files {
		r := records[i]
		assert.Equal(t, f.IsNew, r.IsNew, "file %d", i)
		assert.Equal(t, f.IsDelete, r.IsDeleted, "file %d", i)
		assert.Equal(t, f.IsRename, r.IsRenamed, "file %d", i)
		require.Len(t, r.Hunks, len(f.TextFragments), "file %d", i)

		for j, frag := range f.TextFragments {
			h := r.Hunks[j]
			assert.EqualValues(t, frag.OldPosition, h.OldStart)
			assert.EqualValues(t, frag.OldLines, h.OldLines)
			assert.EqualValues(t, frag.NewPosition, h.NewStart)
			assert.EqualValues(t, frag.NewLines, h.NewLines)
			require.Len(t, h.Changes, len(frag.Lines))

			for k, line := range frag.Lines {
				content := strings.TrimSuffix(line.Line, "\n")
				assert.Equal(t, content, h.Changes[k].Content[1:])
				switch line.Op {
				case gitdiff.OpAdd:
					assert.Equal(t, KindAdded, h.Changes[k].Kind)
				case gitdiff.OpDelete:
					assert.Equal(t, KindRemoved, h.Changes[k].Kind)
				default:
					assert.Equal(t, KindContext, h.Changes[k].Kind)
				}
			}
		}
	}
}

// A single whole-file hunk generated by difflib must reconstruct both input texts.
func TestParse_ReconstructsDifflibOutput(t *testing.T) {
	oldText := "alpha\nbeta\ngamma\ndelta\nepsilon\n"
	newText := "alpha\nBETA\ngamma\ndelta\nzeta\nepsilon\n"

	body, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(oldText),
		B:        difflib.SplitLines(newText),
		FromFile: "a/greek.txt",
		ToFile:   "b/greek.txt",
		Context:  100,
	})
	require.NoError(t, err)

	records, err := Options{Strict: true}.Parse(body)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Len(t, records[0].Hunks, 1)

	var oldLines, newLines []string
	for _, c := range records[0].Hunks[0].Changes {
		text := c.Content[1:]
		if c.Kind != KindAdded {
			oldLines = append(oldLines, text)
			assert.Equal(t, len(oldLines), c.OldLine)
		}
		if c.Kind != KindRemoved {
			newLines = append(newLines, text)
			assert.Equal(t, len(newLines), c.NewLine)
		}
	}
	assert.Equal(t, oldText, strings.Join(oldLines, "\n")+"\n")
	assert.Equal(t, newText, strings.Join(newLines, "\n")+"\n")
	assert.Equal(t, 2, records[0].Additions)
	assert.Equal(t, 1, records[0].Deletions)
}

func TestParse_Deterministic(t *testing.T) {
	input := "diff --git a/a b/a\n--- a/a\n+++ b/a\n@@ -1 +1 @@\n-1\n+2\n"
	first, err := Parse(input)
	require.NoError(t, err)
	second, err := Parse(input)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
