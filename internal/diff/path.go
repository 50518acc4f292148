package diff

import (
	"strings"

	"github.com/lundberg/patchview/internal/patch"
)

// NormalizePath strips a single leading "a/" or "b/" prefix. It is not recursive:
// "a/a/x.ts" becomes "a/x.ts".
func NormalizePath(path string) string {
	if strings.HasPrefix(path, "a/") || strings.HasPrefix(path, "b/") {
		return path[2:]
	}
	return path
}

// sidePath picks the path shown for one side of a record: the rename metadata when present,
// else the normalized header path. The /dev/null sentinel becomes "".
func sidePath(renamed, header string) string {
	if renamed != "" {
		return renamed
	}
	if header == patch.DevNull {
		return ""
	}
	return NormalizePath(header)
}

func oldPathOf(rec patch.Record) string {
	return sidePath(rec.RenameFrom, rec.OldPath)
}

func newPathOf(rec patch.Record) string {
	return sidePath(rec.RenameTo, rec.NewPath)
}
