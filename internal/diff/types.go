package diff

// ChangeType classifies a file's change. Exactly one applies per file; see Classify.
type ChangeType string

const (
	ChangeAdd    ChangeType = "add"
	ChangeModify ChangeType = "modify"
	ChangeDelete ChangeType = "delete"
	ChangeRename ChangeType = "rename"
	ChangeBinary ChangeType = "binary"
)

// Result is everything a parse hands to the UI layer.
type Result struct {
	Files         []File                `json:"files"`
	ViewHunksByID map[string][]ViewHunk `json:"viewHunksById"`
}

// Empty reports whether the parsed text contained no file sections.
func (r *Result) Empty() bool {
	return r == nil || len(r.Files) == 0
}

// File returns the file with the given id.
func (r *Result) File(id string) (File, bool) {
	if r == nil {
		return File{}, false
	}
	for _, f := range r.Files {
		if f.ID == id {
			return f, true
		}
	}
	return File{}, false
}

// File describes one changed file. IDs are unique within a Result and identical across
// parses of the same text.
type File struct {
	ID         string     `json:"id"`
	OldPath    string     `json:"oldPath"` // "" when the file did not exist before
	NewPath    string     `json:"newPath"` // "" when the file no longer exists
	ChangeType ChangeType `json:"changeType"`
	Hunks      []Hunk     `json:"hunks"`
	IsBinary   bool       `json:"isBinary"`
	Additions  int        `json:"additions"`
	Deletions  int        `json:"deletions"`
}

// DisplayPath is the path a file is shown under: the new path, or the old one for deletions.
func (f File) DisplayPath() string {
	if f.NewPath != "" {
		return f.NewPath
	}
	return f.OldPath
}

// Hunk is the plain line model of a hunk.
type Hunk struct {
	OldStart int    `json:"oldStart"`
	OldLines int    `json:"oldLines"`
	NewStart int    `json:"newStart"`
	NewLines int    `json:"newLines"`
	Lines    []Line `json:"lines"`
}

// LineType is the line model's change vocabulary.
type LineType string

const (
	LineAdd    LineType = "add"
	LineDel    LineType = "del"
	LineNormal LineType = "normal"
)

// Line is one line of the line model. The line number of a side the line does not exist on
// is nil (JSON null).
type Line struct {
	Type          LineType `json:"type"`
	OldLineNumber *int     `json:"oldLineNumber"`
	NewLineNumber *int     `json:"newLineNumber"`
	Content       string   `json:"content"`
}

// ViewHunk is the presentation model of a hunk, shaped for a diff renderer.
type ViewHunk struct {
	Content  string       `json:"content"` // the "@@ ... @@" header line
	OldStart int          `json:"oldStart"`
	OldLines int          `json:"oldLines"`
	NewStart int          `json:"newStart"`
	NewLines int          `json:"newLines"`
	Changes  []ViewChange `json:"changes"`
}

// ViewChangeType is the presentation model's change vocabulary.
type ViewChangeType string

const (
	ViewInsert ViewChangeType = "insert"
	ViewDelete ViewChangeType = "delete"
	ViewNormal ViewChangeType = "normal"
)

// ViewChange is one line of the presentation model. Fields for a side that does not apply
// are omitted rather than null. LineNumber is the applicable side's number for inserts and
// deletes and is omitted for normal lines.
type ViewChange struct {
	Type          ViewChangeType `json:"type"`
	Content       string         `json:"content"`
	OldLineNumber *int           `json:"oldLineNumber,omitempty"`
	NewLineNumber *int           `json:"newLineNumber,omitempty"`
	LineNumber    *int           `json:"lineNumber,omitempty"`
}
