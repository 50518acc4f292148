package diff

import (
	"strconv"

	"github.com/lundberg/patchview/internal/patch"
)

// AssignID returns the id of the record at position index of a parse: "<index>-<from>-<to>".
//
// The index keeps ids unique when two records share paths. Hunk content is not part of the
// id, so re-parsing the same text (or an edited version with the same file order) keeps ids
// stable, which lets a stored selection survive reloads.
func AssignID(rec patch.Record, index int) string {
	return strconv.Itoa(index) + "-" + idPath(rec.RenameFrom, rec.OldPath) + "-" + idPath(rec.RenameTo, rec.NewPath)
}

func idPath(renamed, header string) string {
	if renamed != "" {
		return renamed
	}
	return NormalizePath(header)
}
