package diff

import "github.com/lundberg/patchview/internal/patch"

// A raw change projects into two models: the line model (ToHunk) kept for storage and tests,
// and the presentation model (ToViewHunk) consumed by the renderer. Both walk the same changes
// in the same order through lineSides, so they always agree on line numbers.

// lineSides returns the old and new line numbers of c, nil for a side c does not exist on.
func lineSides(c patch.Change) (oldLine, newLine *int) {
	switch c.Kind {
	case patch.KindAdded:
		return nil, intPtr(c.NewLine)
	case patch.KindRemoved:
		return intPtr(c.OldLine), nil
	default:
		return intPtr(c.OldLine), intPtr(c.NewLine)
	}
}

// stripMarker drops the leading '+', '-' or ' ' of a raw change line.
func stripMarker(content string) string {
	if content == "" {
		return content
	}
	switch content[0] {
	case '+', '-', ' ':
		return content[1:]
	}
	return content
}

func intPtr(n int) *int {
	return &n
}

// ToLine projects a raw change into the line model.
func ToLine(c patch.Change) Line {
	oldLine, newLine := lineSides(c)
	t := LineNormal
	switch c.Kind {
	case patch.KindAdded:
		t = LineAdd
	case patch.KindRemoved:
		t = LineDel
	}
	return Line{
		Type:          t,
		OldLineNumber: oldLine,
		NewLineNumber: newLine,
		Content:       stripMarker(c.Content),
	}
}

// ToHunk projects a raw hunk into the line model.
func ToHunk(h patch.Hunk) Hunk {
	lines := make([]Line, 0, len(h.Changes))
	for _, c := range h.Changes {
		lines = append(lines, ToLine(c))
	}
	return Hunk{
		OldStart: h.OldStart,
		OldLines: h.OldLines,
		NewStart: h.NewStart,
		NewLines: h.NewLines,
		Lines:    lines,
	}
}

// ToViewChange projects a raw change into the presentation model.
func ToViewChange(c patch.Change) ViewChange {
	oldLine, newLine := lineSides(c)
	vc := ViewChange{
		Type:          ViewNormal,
		Content:       stripMarker(c.Content),
		OldLineNumber: oldLine,
		NewLineNumber: newLine,
	}
	switch c.Kind {
	case patch.KindAdded:
		vc.Type = ViewInsert
		vc.LineNumber = intPtr(*newLine)
	case patch.KindRemoved:
		vc.Type = ViewDelete
		vc.LineNumber = intPtr(*oldLine)
	}
	return vc
}

// ToViewHunk projects a raw hunk into the presentation model.
func ToViewHunk(h patch.Hunk) ViewHunk {
	changes := make([]ViewChange, 0, len(h.Changes))
	for _, c := range h.Changes {
		changes = append(changes, ToViewChange(c))
	}
	return ViewHunk{
		Content:  h.Header,
		OldStart: h.OldStart,
		OldLines: h.OldLines,
		NewStart: h.NewStart,
		NewLines: h.NewLines,
		Changes:  changes,
	}
}
