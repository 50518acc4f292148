package main

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/lundberg/patchview/internal/cli"
	"github.com/lundberg/patchview/internal/diff"
)

// runParse writes the parsed diff as JSON: files in the line model and their view hunks.
func runParse(cfg *cli.Config, stdin io.Reader, stdout io.Writer) error {
	result, _, err := parseInput(cfg, stdin)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	if cfg.Pretty {
		enc.SetIndent("", "  ")
	}
	return errors.Wrap(enc.Encode(result), "writing json")
}

// parseInput reads and parses the configured input, keeping only files matching cfg.Filter.
// It also returns the size of the input in bytes.
func parseInput(cfg *cli.Config, stdin io.Reader) (*diff.Result, int, error) {
	text, err := readInput(cfg.Input, stdin)
	if err != nil {
		return nil, 0, err
	}

	result, err := diff.ParseTextWith(parseOptions(cfg), text)
	if err != nil {
		return nil, 0, err
	}

	files, err := diff.Filter(result.Files, cfg.Filter)
	if err != nil {
		return nil, 0, err
	}
	if len(files) != len(result.Files) {
		result = &diff.Result{
			Files:         files,
			ViewHunksByID: lo.Associate(files, func(f diff.File) (string, []diff.ViewHunk) {
				return f.ID, result.ViewHunksByID[f.ID]
			}),
		}
	}
	if result.Files == nil {
		result.Files = []diff.File{}
	}
	return result, len(text), nil
}
