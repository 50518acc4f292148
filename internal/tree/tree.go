// Package tree groups changed files into a directory tree for the file navigator.
package tree

import (
	"strings"

	"github.com/samber/lo"

	"github.com/lundberg/patchview/internal/diff"
)

// UntitledFile is shown for a file with no path on either side.
const UntitledFile = "Untitled file"

// Node is a directory. The root has an empty Name and Path. Children and Files keep the order
// in which they first appear in the diff.
type Node struct {
	Name     string      `json:"name"`
	Path     string      `json:"path"`
	Children []*Node     `json:"children"`
	Files    []diff.File `json:"files"`
}

// DisplayPath is the path a file is listed under.
func DisplayPath(f diff.File) string {
	if p := f.DisplayPath(); p != "" {
		return p
	}
	return UntitledFile
}

// DisplayName is the last segment of the file's display path.
func DisplayName(f diff.File) string {
	p := DisplayPath(f)
	parts := segments(p)
	if len(parts) == 0 {
		return p
	}
	return parts[len(parts)-1]
}

// Badge is the one-letter marker shown next to a file.
func Badge(t diff.ChangeType) string {
	switch t {
	case diff.ChangeAdd:
		return "A"
	case diff.ChangeDelete:
		return "D"
	case diff.ChangeRename:
		return "R"
	case diff.ChangeBinary:
		return "B"
	default:
		return "M"
	}
}

// Build groups files by the directory segments of their display paths. Files without a
// directory sit on the root.
func Build(files []diff.File) *Node {
	root := &Node{}
	index := map[string]*Node{"": root}

	for _, f := range files {
		parts := segments(DisplayPath(f))
		if len(parts) <= 1 {
			root.Files = append(root.Files, f)
			continue
		}

		current := root
		currentPath := ""
		for _, part := range parts[:len(parts)-1] {
			if currentPath == "" {
				currentPath = part
			} else {
				currentPath += "/" + part
			}
			child, ok := index[currentPath]
			if !ok {
				child = &Node{Name: part, Path: currentPath}
				index[currentPath] = child
				current.Children = append(current.Children, child)
			}
			current = child
		}
		current.Files = append(current.Files, f)
	}

	return root
}

// Ancestors returns the directory paths that must be expanded for the file at path to be
// visible, outermost first.
func Ancestors(path string) []string {
	parts := segments(path)
	if len(parts) <= 1 {
		return nil
	}
	out := make([]string, 0, len(parts)-1)
	for i := 1; i < len(parts); i++ {
		out = append(out, strings.Join(parts[:i], "/"))
	}
	return out
}

// Count returns the number of files in n and below.
func (n *Node) Count() int {
	return len(n.Files) + lo.SumBy(n.Children, func(c *Node) int {
		return c.Count()
	})
}

// Walk visits n and every directory below it in pre-order, passing the nesting depth (0 for n).
func (n *Node) Walk(fn func(node *Node, depth int)) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(*Node, int), depth int) {
	fn(n, depth)
	for _, c := range n.Children {
		c.walk(fn, depth+1)
	}
}

func segments(p string) []string {
	return lo.Filter(strings.Split(p, "/"), func(s string, _ int) bool {
		return s != ""
	})
}
