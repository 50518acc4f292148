// Package patch tokenizes unified diff text (git or plain "diff -u" output) into per-file
// records with hunks and per-line old/new numbering.
//
// Parsing is a pure function of the input text. It never logs and keeps no state between
// calls, so it is safe to call from any number of goroutines.
package patch

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var (
	hunkHeaderRe = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@ ?(.*)$`)
	binaryRe     = regexp.MustCompile(`^Binary files (.+) and (.+) differ$`)
	similarityRe = regexp.MustCompile(`^similarity index (\d+)%$`)
)

// ErrSyntax is matched (via errors.Is) by every *SyntaxError.
var ErrSyntax = errors.New("malformed unified diff")

// SyntaxError reports input that cannot be read as unified diff.
type SyntaxError struct {
	Line int // 1-based line number in the input
	Text string
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Msg, e.Text)
}

// Is reports whether target is ErrSyntax.
func (e *SyntaxError) Is(target error) bool {
	return target == ErrSyntax
}

// Options controls how forgiving the parser is with hunk bodies.
//
// In the default lenient mode an empty line inside a hunk is read as an empty context line
// (pasting often strips the single leading space), and a line with an unknown marker ends the
// hunk. With Strict set, both cases and hunks that end before their header counts are
// satisfied are reported as *SyntaxError.
type Options struct {
	Strict bool
}

// Parse parses input in lenient mode. See Options.Parse.
func Parse(input string) ([]Record, error) {
	return Options{}.Parse(input)
}

// Parse splits input into file records in document order.
//
// Input without any recognizable file section yields an empty result and a nil error. A hunk
// header that cannot be read, or a hunk header with no file section around it, yields a
// *SyntaxError and no records.
func (o Options) Parse(input string) ([]Record, error) {
	if input == "" {
		return nil, nil
	}

	p := &parser{opts: o, lines: splitLines(input)}
	for p.i < len(p.lines) {
		if err := p.step(); err != nil {
			return nil, err
		}
	}
	p.flush()

	return p.records, nil
}

type parser struct {
	opts    Options
	lines   []string
	i       int
	records []Record

	cur       *Record
	gitHeader bool // cur was opened by a "diff --git" line
	sawOld    bool // cur already had its "---" line
}

// splitLines splits on \n, dropping a final empty element and any \r line endings.
func splitLines(input string) []string {
	lines := strings.Split(input, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

func (p *parser) start(gitHeader bool) {
	p.flush()
	p.cur = &Record{}
	p.gitHeader = gitHeader
	p.sawOld = false
}

func (p *parser) flush() {
	if p.cur != nil {
		p.records = append(p.records, *p.cur)
		p.cur = nil
	}
}

func (p *parser) syntaxError(line int, msg string) error {
	return &SyntaxError{Line: line + 1, Text: p.lines[line], Msg: msg}
}

// step consumes one header-level line, or a whole hunk when positioned on an @@ line.
func (p *parser) step() error {
	line := p.lines[p.i]

	if strings.HasPrefix(line, "@@") {
		if p.cur == nil {
			return p.syntaxError(p.i, "hunk header outside of a file section")
		}
		return p.parseHunk()
	}

	if strings.HasPrefix(line, "diff --git ") {
		p.start(true)
		p.cur.OldPath, p.cur.NewPath = parseGitHeaderPaths(line[len("diff --git "):])
		p.i++
		return nil
	}

	if strings.HasPrefix(line, "--- ") {
		hasNew := p.i+1 < len(p.lines) && strings.HasPrefix(p.lines[p.i+1], "+++ ")
		fresh := p.cur != nil && p.gitHeader && !p.sawOld && len(p.cur.Hunks) == 0
		switch {
		case fresh:
		case hasNew:
			p.start(false)
		default:
			// A stray "--- " line (commit message, e-mail signature).
			p.i++
			return nil
		}
		p.cur.OldPath = parseHeaderPath(line[4:])
		p.sawOld = true
		p.i++
		if hasNew {
			p.cur.NewPath = parseHeaderPath(p.lines[p.i][4:])
			p.i++
		}
		return nil
	}

	if m := binaryRe.FindStringSubmatch(line); m != nil {
		// Only a "diff --git" section still in its headers owns the line. In plain
		// "diff -r" output it is a file section of its own.
		inGitHeader := p.cur != nil && p.gitHeader && !p.sawOld && len(p.cur.Hunks) == 0 && !p.cur.IsBinary
		if !inGitHeader {
			p.start(false)
		}
		p.cur.IsBinary = true
		if p.cur.OldPath == "" {
			p.cur.OldPath = m[1]
		}
		if p.cur.NewPath == "" {
			p.cur.NewPath = m[2]
		}
		p.i++
		return nil
	}

	if p.cur == nil {
		// Preamble: commit headers, messages, diffstat.
		p.i++
		return nil
	}

	switch {
	case strings.HasPrefix(line, "new file mode "):
		p.cur.IsNew = true
		p.cur.NewMode = strings.TrimPrefix(line, "new file mode ")
	case strings.HasPrefix(line, "deleted file mode "):
		p.cur.IsDeleted = true
		p.cur.OldMode = strings.TrimPrefix(line, "deleted file mode ")
	case strings.HasPrefix(line, "old mode "):
		p.cur.OldMode = strings.TrimPrefix(line, "old mode ")
	case strings.HasPrefix(line, "new mode "):
		p.cur.NewMode = strings.TrimPrefix(line, "new mode ")
	case strings.HasPrefix(line, "rename from "):
		p.cur.IsRenamed = true
		p.cur.RenameFrom = unquote(strings.TrimPrefix(line, "rename from "))
	case strings.HasPrefix(line, "rename to "):
		p.cur.IsRenamed = true
		p.cur.RenameTo = unquote(strings.TrimPrefix(line, "rename to "))
	case strings.HasPrefix(line, "index "):
		p.cur.Index = strings.TrimPrefix(line, "index ")
	case strings.HasPrefix(line, "+++ "):
		p.cur.NewPath = parseHeaderPath(line[4:])
	case line == "GIT binary patch":
		p.cur.IsBinary = true
		// Skip the literal/delta payload up to the next file section.
		p.i++
		for p.i < len(p.lines) && !strings.HasPrefix(p.lines[p.i], "diff --git ") {
			p.i++
		}
		return nil
	default:
		if m := similarityRe.FindStringSubmatch(line); m != nil {
			p.cur.Similarity, _ = strconv.Atoi(m[1])
		}
	}

	p.i++
	return nil
}

// parseHunk parses the hunk whose header is at p.i and leaves p.i on the first line after it.
// The body is consumed by the header's line counts, so body lines that look like headers
// ("--- x") are still read as changes.
func (p *parser) parseHunk() error {
	headerAt := p.i
	line := p.lines[headerAt]
	m := hunkHeaderRe.FindStringSubmatch(line)
	if m == nil {
		return p.syntaxError(headerAt, "malformed hunk header")
	}

	var nums [4]int
	for k, field := range []string{m[1], m[2], m[3], m[4]} {
		if field == "" {
			// "@@ -3 +3 @@" omits a count of one.
			nums[k] = 1
			continue
		}
		n, err := strconv.Atoi(field)
		if err != nil {
			return p.syntaxError(headerAt, "hunk header field out of range")
		}
		nums[k] = n
	}

	h := Hunk{
		OldStart: nums[0],
		OldLines: nums[1],
		NewStart: nums[2],
		NewLines: nums[3],
		Header:   strings.TrimRight(line, " \t"),
		Section:  strings.TrimSpace(m[5]),
	}

	oldNum, newNum := h.OldStart, h.NewStart
	oldLeft, newLeft := h.OldLines, h.NewLines
	p.i++

loop:
	for p.i < len(p.lines) && (oldLeft > 0 || newLeft > 0) {
		body := p.lines[p.i]
		if body == "" {
			if p.opts.Strict {
				return p.syntaxError(p.i, "empty line in hunk body")
			}
			body = " "
		}

		switch body[0] {
		case ' ':
			h.Changes = append(h.Changes, Change{Kind: KindContext, Content: body, OldLine: oldNum, NewLine: newNum})
			oldNum++
			newNum++
			oldLeft--
			newLeft--
		case '+':
			h.Changes = append(h.Changes, Change{Kind: KindAdded, Content: body, NewLine: newNum})
			newNum++
			newLeft--
			p.cur.Additions++
		case '-':
			h.Changes = append(h.Changes, Change{Kind: KindRemoved, Content: body, OldLine: oldNum})
			oldNum++
			oldLeft--
			p.cur.Deletions++
		case '\\':
			markNoNewline(&h)
		default:
			if p.opts.Strict {
				return p.syntaxError(p.i, "unexpected line in hunk body")
			}
			break loop
		}
		p.i++
	}

	if p.i < len(p.lines) && strings.HasPrefix(p.lines[p.i], `\`) {
		markNoNewline(&h)
		p.i++
	}

	if p.opts.Strict && (oldLeft != 0 || newLeft != 0) {
		return p.syntaxError(headerAt, "hunk body does not match header line counts")
	}

	p.cur.Hunks = append(p.cur.Hunks, h)
	return nil
}

func markNoNewline(h *Hunk) {
	if n := len(h.Changes); n > 0 {
		h.Changes[n-1].NoNewline = true
	}
}

// parseHeaderPath reads the path of a "---" or "+++" line. A trailing tab and timestamp are
// dropped and C-quoted names are unquoted. Prefixes are kept.
func parseHeaderPath(s string) string {
	if strings.HasPrefix(s, `"`) {
		if end := closingQuote(s); end > 0 {
			return unquote(s[:end+1])
		}
	}
	if i := strings.IndexByte(s, '\t'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// parseGitHeaderPaths splits the "a/x b/y" operand of a "diff --git" line. Unquoted names may
// contain spaces, so when several splits are possible the one with matching halves wins.
func parseGitHeaderPaths(s string) (string, string) {
	if strings.HasPrefix(s, `"`) {
		if end := closingQuote(s); end > 0 {
			return unquote(s[:end+1]), unquote(strings.TrimSpace(s[end+1:]))
		}
	}

	var candidates []int
	for i := 0; i < len(s); i++ {
		if s[i] == ' ' && (strings.HasPrefix(s[i+1:], "b/") || strings.HasPrefix(s[i+1:], `"`)) {
			candidates = append(candidates, i)
		}
	}
	for _, i := range candidates {
		oldPath, newPath := s[:i], s[i+1:]
		if len(oldPath) > 2 && len(newPath) > 2 && oldPath[2:] == newPath[2:] {
			return oldPath, newPath
		}
	}
	if len(candidates) > 0 {
		i := candidates[0]
		return s[:i], unquote(s[i+1:])
	}

	oldPath, newPath, _ := strings.Cut(s, " ")
	return oldPath, newPath
}

// closingQuote returns the index of the quote closing s[0], or -1.
func closingQuote(s string) int {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return -1
}

func unquote(s string) string {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return s
	}
	if u, err := strconv.Unquote(s); err == nil {
		return u
	}
	return s
}
