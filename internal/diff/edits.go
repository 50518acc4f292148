package diff

import (
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Range is a span of a change's Content, in runes.
type Range struct {
	Start  int `json:"start"`
	Length int `json:"length"`
}

// ChangeEdits lists the edited spans of the change at Index of a ViewHunk.
type ChangeEdits struct {
	Index  int     `json:"index"`
	Ranges []Range `json:"ranges"`
}

// Edits finds intra-line edits in h. Each run of deletes directly followed by a run of inserts
// is paired line by line (first delete with first insert, and so on); for each pair the
// characters that differ are reported on both lines. Unpaired lines get no edits.
func Edits(h ViewHunk) []ChangeEdits {
	dmp := diffmatchpatch.New()
	var out []ChangeEdits

	i := 0
	for i < len(h.Changes) {
		if h.Changes[i].Type != ViewDelete {
			i++
			continue
		}
		delStart := i
		for i < len(h.Changes) && h.Changes[i].Type == ViewDelete {
			i++
		}
		insStart := i
		for i < len(h.Changes) && h.Changes[i].Type == ViewInsert {
			i++
		}

		pairs := min(insStart-delStart, i-insStart)
		for k := 0; k < pairs; k++ {
			del, ins := delStart+k, insStart+k
			diffs := dmp.DiffMain(h.Changes[del].Content, h.Changes[ins].Content, false)
			diffs = dmp.DiffCleanupSemantic(diffs)

			if r := spans(diffs, diffmatchpatch.DiffDelete); len(r) > 0 {
				out = append(out, ChangeEdits{Index: del, Ranges: r})
			}
			if r := spans(diffs, diffmatchpatch.DiffInsert); len(r) > 0 {
				out = append(out, ChangeEdits{Index: ins, Ranges: r})
			}
		}
	}

	return out
}

// spans returns the ranges of op within the side of diffs that op belongs to.
func spans(diffs []diffmatchpatch.Diff, op diffmatchpatch.Operation) []Range {
	var ranges []Range
	pos := 0
	for _, d := range diffs {
		n := utf8.RuneCountInString(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			pos += n
		case op:
			if n > 0 {
				ranges = append(ranges, Range{Start: pos, Length: n})
			}
			pos += n
		}
	}
	return ranges
}
