package server

import (
	"github.com/samber/lo"

	"github.com/lundberg/patchview/internal/diff"
	"github.com/lundberg/patchview/internal/tree"
)

// fileSummary is a file as listed in the navigator, without hunks.
type fileSummary struct {
	ID          string          `json:"id"`
	OldPath     string          `json:"oldPath"`
	NewPath     string          `json:"newPath"`
	DisplayPath string          `json:"displayPath"`
	Name        string          `json:"name"`
	Badge       string          `json:"badge"`
	ChangeType  diff.ChangeType `json:"changeType"`
	IsBinary    bool            `json:"isBinary"`
	Additions   int             `json:"additions"`
	Deletions   int             `json:"deletions"`
}

type treeNode struct {
	Name     string        `json:"name"`
	Path     string        `json:"path"`
	Children []treeNode    `json:"children"`
	Files    []fileSummary `json:"files"`
}

func toFile(f diff.File) fileSummary {
	return fileSummary{
		ID:          f.ID,
		OldPath:     f.OldPath,
		NewPath:     f.NewPath,
		DisplayPath: tree.DisplayPath(f),
		Name:        tree.DisplayName(f),
		Badge:       tree.Badge(f.ChangeType),
		ChangeType:  f.ChangeType,
		IsBinary:    f.IsBinary,
		Additions:   f.Additions,
		Deletions:   f.Deletions,
	}
}

func toFiles(files []diff.File) []fileSummary {
	return lo.Map(files, func(f diff.File, _ int) fileSummary {
		return toFile(f)
	})
}

func toTree(n *tree.Node) treeNode {
	return treeNode{
		Name: n.Name,
		Path: n.Path,
		Children: lo.Map(n.Children, func(c *tree.Node, _ int) treeNode {
			return toTree(c)
		}),
		Files: toFiles(n.Files),
	}
}
