// Package cli handles command-line argument parsing and configuration.
package cli

import (
	"io"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/pkg/errors"
)

// ErrHelp is returned when --help is requested.
var ErrHelp = errors.New("help requested")

// DefaultConfigPaths are the JSON files flags are read from when not given on the command
// line. Missing files are ignored.
var DefaultConfigPaths = []string{"~/.config/patchview/config.json"}

// InMemoryState selects a state database that is discarded on exit.
const InMemoryState = ":memory:"

// Commands.
const (
	CommandServe = "serve"
	CommandParse = "parse"
	CommandList  = "list"
)

// Config holds the parsed CLI configuration.
type Config struct {
	Command string
	// Input is a diff file, "-" for stdin, or "" for none.
	Input string

	// Git loads the diff from the repository in the working directory at startup.
	Git       bool
	Base      string
	Target    string
	MergeBase bool

	Host      string
	Port      int
	NoOpen    bool
	Style     string
	StatePath string

	Strict bool
	Filter string
	Pretty bool
}

const description = `View unified diffs (GitLab or git diff output) in a browser.

Diffs can be pasted or uploaded in the UI, passed as a file argument, piped on stdin
with "-", or read from the git repository in the working directory with --git.
Flags can also be set with PATCHVIEW_* environment variables or in
~/.config/patchview/config.json.`

type serveCmd struct {
	Input string `arg:"" optional:"" help:"Diff file to load, or - for stdin."`

	Git       bool   `help:"Load the diff between --base and --target from the git repository in the working directory." env:"PATCHVIEW_GIT"`
	Base      string `help:"Base ref for git diffs (default: main or master)." env:"PATCHVIEW_BASE"`
	Target    string `help:"Target ref for git diffs (default: working tree)." env:"PATCHVIEW_TARGET"`
	MergeBase bool   `help:"Diff against the merge-base of base and target." default:"true" negatable:"" env:"PATCHVIEW_MERGE_BASE"`

	Host   string `help:"HTTP server host." default:"localhost" env:"PATCHVIEW_HOST"`
	Port   int    `help:"HTTP server port (0 = auto)." default:"0" env:"PATCHVIEW_PORT"`
	NoOpen bool   `help:"Don't open the browser automatically." env:"PATCHVIEW_NO_OPEN"`
	Style  string `help:"Syntax highlighting style." default:"github-dark" env:"PATCHVIEW_STYLE"`
	State  string `help:"State database file, or :memory: to keep nothing." default:"~/.config/patchview/state.db" env:"PATCHVIEW_STATE"`
}

type parseCmd struct {
	Input string `arg:"" optional:"" help:"Diff file to read (default: stdin)."`

	Filter string `help:"Only include files matching this glob (e.g. **/*.go)." env:"PATCHVIEW_FILTER"`
	Pretty bool   `help:"Indent the JSON output."`
}

type listCmd struct {
	Input string `arg:"" optional:"" help:"Diff file to read (default: stdin)."`

	Filter string `help:"Only include files matching this glob (e.g. **/*.go)." env:"PATCHVIEW_FILTER"`
}

type grammar struct {
	Strict bool `help:"Reject malformed hunks instead of recovering from them." env:"PATCHVIEW_STRICT"`

	Serve serveCmd `cmd:"" default:"withargs" help:"Serve the viewer UI (default)."`
	Parse parseCmd `cmd:"" help:"Print the parsed diff as JSON."`
	List  listCmd  `cmd:"" help:"List the changed files as a tree."`
}

func newParser(g *grammar, w io.Writer, configPaths []string) (*kong.Kong, error) {
	return kong.New(g,
		kong.Name("patchview"),
		kong.Description(description),
		kong.Writers(w, w),
		kong.Exit(func(int) {}),
		kong.Configuration(kong.JSON, configPaths...),
	)
}

// ParseArgs parses command-line arguments into a Config. Flags missing from args are taken
// from the environment, then from DefaultConfigPaths.
func ParseArgs(args []string) (*Config, error) {
	return ParseArgsWith(args, DefaultConfigPaths...)
}

// ParseArgsWith is ParseArgs reading defaults from the given config files.
func ParseArgsWith(args []string, configPaths ...string) (*Config, error) {
	for _, a := range args {
		if a == "--" {
			break
		}
		if a == "-h" || a == "--help" {
			return nil, ErrHelp
		}
	}

	var g grammar
	parser, err := newParser(&g, io.Discard, configPaths)
	if err != nil {
		return nil, errors.Wrap(err, "building argument parser")
	}

	ctx, err := parser.Parse(args)
	if err != nil {
		return nil, err
	}

	cfg := &Config{Strict: g.Strict}
	switch cmd := strings.Fields(ctx.Command())[0]; cmd {
	case CommandServe:
		s := g.Serve
		cfg.Command = CommandServe
		cfg.Input = s.Input
		cfg.Git = s.Git
		cfg.Base = s.Base
		cfg.Target = s.Target
		cfg.MergeBase = s.MergeBase
		cfg.Host = s.Host
		cfg.Port = s.Port
		cfg.NoOpen = s.NoOpen
		cfg.Style = s.Style
		cfg.StatePath = s.State
		if cfg.StatePath != InMemoryState {
			cfg.StatePath = kong.ExpandPath(cfg.StatePath)
		}
	case CommandParse:
		cfg.Command = CommandParse
		cfg.Input = defaultStdin(g.Parse.Input)
		cfg.Filter = g.Parse.Filter
		cfg.Pretty = g.Parse.Pretty
	case CommandList:
		cfg.Command = CommandList
		cfg.Input = defaultStdin(g.List.Input)
		cfg.Filter = g.List.Filter
	default:
		return nil, errors.Errorf("unknown command %q", cmd)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return errors.Errorf("invalid port: %d (must be 0-65535)", c.Port)
	}
	if c.Git && c.Input != "" {
		return errors.New("--git cannot be combined with an input file")
	}
	return nil
}

// defaultStdin makes parse and list read stdin when no input is named.
func defaultStdin(input string) string {
	if input == "" {
		return "-"
	}
	return input
}

// PrintUsage writes usage information to w.
func PrintUsage(w io.Writer) {
	var g grammar
	parser, err := newParser(&g, w, nil)
	if err != nil {
		return
	}
	ctx, err := kong.Trace(parser, nil)
	if err != nil {
		return
	}
	_ = ctx.PrintUsage(false)
}
