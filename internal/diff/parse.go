// Package diff turns unified diff text into the model the viewer renders: one File per file
// section with a change type, display paths and a stable id, the plain line model of its
// hunks, and a presentation model of the same hunks keyed by file id.
//
// Everything here is a pure function of its input.
package diff

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/lundberg/patchview/internal/patch"
)

// ParseText parses raw diff text in lenient mode. See ParseTextWith.
func ParseText(raw string) (*Result, error) {
	return ParseTextWith(patch.Options{}, raw)
}

// ParseTextWith parses raw diff text into a Result.
//
// Text with no file sections gives an empty, non-nil Result (see Result.Empty) and a nil
// error. Unreadable input gives an error matching patch.ErrSyntax and no Result.
func ParseTextWith(opts patch.Options, raw string) (*Result, error) {
	records, err := opts.Parse(raw)
	if err != nil {
		return nil, errors.Wrap(err, "parsing diff")
	}
	return Build(records), nil
}

// Build runs each record through classification, path normalization, identity assignment and
// hunk projection, preserving record order.
func Build(records []patch.Record) *Result {
	result := &Result{
		Files:         make([]File, 0, len(records)),
		ViewHunksByID: make(map[string][]ViewHunk, len(records)),
	}

	for i, rec := range records {
		id := AssignID(rec, i)
		changeType := Classify(rec)

		result.ViewHunksByID[id] = lo.Map(rec.Hunks, func(h patch.Hunk, _ int) ViewHunk {
			return ToViewHunk(h)
		})
		result.Files = append(result.Files, File{
			ID:         id,
			OldPath:    oldPathOf(rec),
			NewPath:    newPathOf(rec),
			ChangeType: changeType,
			Hunks: lo.Map(rec.Hunks, func(h patch.Hunk, _ int) Hunk {
				return ToHunk(h)
			}),
			IsBinary:  changeType == ChangeBinary,
			Additions: rec.Additions,
			Deletions: rec.Deletions,
		})
	}

	return result
}
