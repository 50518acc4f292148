package patch

// DevNull is the path git uses for the missing side of an added or deleted file.
const DevNull = "/dev/null"

// Kind is the marker-derived kind of a line inside a hunk.
type Kind int

const (
	KindContext Kind = iota
	KindAdded
	KindRemoved
)

func (k Kind) String() string {
	switch k {
	case KindAdded:
		return "added"
	case KindRemoved:
		return "removed"
	default:
		return "context"
	}
}

// Record is one file section of a unified diff, as it appears in the text.
//
// Paths are kept raw: "a/" and "b/" prefixes and the DevNull sentinel are not touched.
type Record struct {
	OldPath string
	NewPath string

	IsNew     bool
	IsDeleted bool
	IsRenamed bool
	IsBinary  bool

	RenameFrom string
	RenameTo   string

	OldMode    string
	NewMode    string
	Index      string
	Similarity int

	Additions int
	Deletions int

	Hunks []Hunk
}

// Hunk is a contiguous change region, introduced by an "@@ -a,b +c,d @@" header.
type Hunk struct {
	OldStart int
	OldLines int
	NewStart int
	NewLines int
	Header   string // the whole header line
	Section  string // text after the closing @@, usually a function signature
	Changes  []Change
}

// Change is a single line of a hunk body.
//
// Content keeps the leading marker character. OldLine and NewLine are 1-based; 0 means the
// line does not exist on that side (added lines have no OldLine, removed lines no NewLine).
type Change struct {
	Kind      Kind
	Content   string
	OldLine   int
	NewLine   int
	NoNewline bool // followed by "\ No newline at end of file"
}
