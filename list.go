package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"github.com/samber/lo"

	"github.com/lundberg/patchview/internal/cli"
	"github.com/lundberg/patchview/internal/diff"
	"github.com/lundberg/patchview/internal/tree"
)

const indentWidth = 2

func runList(cfg *cli.Config, stdin io.Reader, stdout io.Writer) error {
	result, size, err := parseInput(cfg, stdin)
	if err != nil {
		return err
	}
	writeList(stdout, result.Files, size)
	return nil
}

type listRow struct {
	label string
	file  *diff.File
}

// writeList prints files as an indented directory tree with change badges and line counts,
// followed by a summary line.
func writeList(w io.Writer, files []diff.File, inputSize int) {
	r := lipgloss.NewRenderer(w)
	dirStyle := r.NewStyle().Bold(true)
	badgeStyles := map[diff.ChangeType]lipgloss.Style{
		diff.ChangeAdd:    r.NewStyle().Foreground(lipgloss.Color("2")),
		diff.ChangeDelete: r.NewStyle().Foreground(lipgloss.Color("1")),
		diff.ChangeModify: r.NewStyle().Foreground(lipgloss.Color("3")),
		diff.ChangeRename: r.NewStyle().Foreground(lipgloss.Color("4")),
		diff.ChangeBinary: r.NewStyle().Foreground(lipgloss.Color("5")),
	}
	addStyle := r.NewStyle().Foreground(lipgloss.Color("2"))
	delStyle := r.NewStyle().Foreground(lipgloss.Color("1"))

	var rows []listRow
	tree.Build(files).Walk(func(n *tree.Node, depth int) {
		indent := strings.Repeat(" ", indentWidth*max(depth-1, 0))
		if depth > 0 {
			rows = append(rows, listRow{label: indent + n.Name + "/"})
			indent += strings.Repeat(" ", indentWidth)
		}
		for i := range n.Files {
			rows = append(rows, listRow{label: indent + tree.DisplayName(n.Files[i]), file: &n.Files[i]})
		}
	})

	width := lo.Max(lo.Map(rows, func(row listRow, _ int) int {
		return runewidth.StringWidth(row.label)
	}))

	for _, row := range rows {
		if row.file == nil {
			fmt.Fprintln(w, dirStyle.Render(row.label))
			continue
		}
		f := row.file
		line := runewidth.FillRight(row.label, width) + "  " + badgeStyles[f.ChangeType].Render(tree.Badge(f.ChangeType))
		if f.IsBinary {
			line += "  binary"
		} else {
			line += "  " + addStyle.Render(fmt.Sprintf("+%d", f.Additions)) + " " + delStyle.Render(fmt.Sprintf("-%d", f.Deletions))
		}
		if f.ChangeType == diff.ChangeRename {
			line += "  (from " + f.OldPath + ")"
		}
		fmt.Fprintln(w, line)
	}

	additions := lo.SumBy(files, func(f diff.File) int { return f.Additions })
	deletions := lo.SumBy(files, func(f diff.File) int { return f.Deletions })
	fmt.Fprintf(w, "%s changed, %s, %s (%s of diff)\n",
		plural(len(files), "file"),
		plural(additions, "insertion(+)"),
		plural(deletions, "deletion(-)"),
		humanize.Bytes(uint64(inputSize)))
}

func plural(n int, noun string) string {
	if n != 1 {
		if i := strings.IndexByte(noun, '('); i >= 0 {
			noun = noun[:i] + "s" + noun[i:]
		} else {
			noun += "s"
		}
	}
	return humanize.Comma(int64(n)) + " " + noun
}
