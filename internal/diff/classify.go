package diff

import "github.com/lundberg/patchview/internal/patch"

// Classify returns the change type of rec. The first matching rule wins, so a binary file that
// is also new is binary, and a new file carrying rename metadata is an add:
//
//  1. binary
//  2. new file, or the old side is /dev/null: add
//  3. deleted file, or the new side is /dev/null: delete
//  4. rename flag or rename metadata: rename
//  5. otherwise: modify
func Classify(rec patch.Record) ChangeType {
	switch {
	case rec.IsBinary:
		return ChangeBinary
	case rec.IsNew || rec.OldPath == patch.DevNull:
		return ChangeAdd
	case rec.IsDeleted || rec.NewPath == patch.DevNull:
		return ChangeDelete
	case rec.IsRenamed || rec.RenameFrom != "" || rec.RenameTo != "":
		return ChangeRename
	default:
		return ChangeModify
	}
}
