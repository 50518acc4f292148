// patchview displays unified diffs in a browser, or lists and exports them from the terminal.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/lundberg/patchview/internal/cli"
	"github.com/lundberg/patchview/internal/patch"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cfg, err := cli.ParseArgs(args)
	if err != nil {
		if errors.Is(err, cli.ErrHelp) {
			cli.PrintUsage(stderr)
			return nil
		}
		return err
	}

	switch cfg.Command {
	case cli.CommandParse:
		return runParse(cfg, stdin, stdout)
	case cli.CommandList:
		return runList(cfg, stdin, stdout)
	default:
		return runServe(cfg, stdin, stdout)
	}
}

func parseOptions(cfg *cli.Config) patch.Options {
	return patch.Options{Strict: cfg.Strict}
}

// readInput reads the diff named by input: a file, or stdin for "-".
func readInput(input string, stdin io.Reader) (string, error) {
	if input == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", errors.Wrap(err, "reading stdin")
		}
		return string(data), nil
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return "", errors.Wrapf(err, "reading %s", input)
	}
	return string(data), nil
}
