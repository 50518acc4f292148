// Package highlight tokenizes the lines of a diff for syntax coloring.
//
// Highlighting is best effort: TokenizeWithFallback retries with plain text and finally
// returns nil, and callers render unhighlighted content in that case.
package highlight

import (
	"path"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/go-enry/go-enry/v2"
	"github.com/pkg/errors"

	"github.com/lundberg/patchview/internal/diff"
)

// PlainText is the language used when nothing better is known.
const PlainText = "text"

// ErrUnknownLanguage is returned by Tokenize when no lexer matches the language.
var ErrUnknownLanguage = errors.New("unknown language")

var languageByExtension = map[string]string{
	"ts":   "typescript",
	"tsx":  "tsx",
	"js":   "javascript",
	"jsx":  "jsx",
	"json": "json",
	"md":   "markdown",
	"css":  "css",
	"scss": "scss",
	"html": "html",
	"yml":  "yaml",
	"yaml": "yaml",
	"py":   "python",
	"go":   "go",
	"rs":   "rust",
	"java": "java",
	"rb":   "ruby",
	"php":  "php",
	"sh":   "bash",
}

// LanguageForPath guesses the language of a file from its name: the extension table first,
// then go-enry's filename and extension rules, else PlainText.
func LanguageForPath(p string) string {
	base := path.Base(p)
	if i := strings.LastIndexByte(base, '.'); i >= 0 {
		if lang, ok := languageByExtension[strings.ToLower(base[i+1:])]; ok {
			return lang
		}
	}
	if lang, _ := enry.GetLanguageByFilename(base); lang != "" {
		return lang
	}
	if lang, _ := enry.GetLanguageByExtension(base); lang != "" {
		return lang
	}
	return PlainText
}

// Token is a colored fragment of a line. Class is the chroma short class name ("kd", "s2").
type Token struct {
	Class string `json:"c,omitempty"`
	Value string `json:"v"`
}

// Tokens holds the tokens of every change of a file: Hunks[h][c] belongs to change c of hunk h.
type Tokens struct {
	Language string      `json:"language"`
	Hunks    [][][]Token `json:"hunks"`
}

// Tokenize highlights hunks as language. Each hunk's old side (normal and deleted lines) and
// new side (normal and inserted lines) are lexed as continuous text so multi-line constructs
// keep their state, then the lines are handed back to the changes they came from.
func Tokenize(hunks []diff.ViewHunk, language string) (*Tokens, error) {
	lexer := lexers.Get(language)
	if lexer == nil {
		return nil, errors.Wrapf(ErrUnknownLanguage, "tokenizing %q", language)
	}
	lexer = chroma.Coalesce(lexer)

	out := &Tokens{Language: language, Hunks: make([][][]Token, 0, len(hunks))}
	for _, h := range hunks {
		var oldText, newText []string
		for _, c := range h.Changes {
			if c.Type != diff.ViewInsert {
				oldText = append(oldText, c.Content)
			}
			if c.Type != diff.ViewDelete {
				newText = append(newText, c.Content)
			}
		}

		oldLines, err := lexLines(lexer, oldText)
		if err != nil {
			return nil, err
		}
		newLines, err := lexLines(lexer, newText)
		if err != nil {
			return nil, err
		}

		changes := make([][]Token, 0, len(h.Changes))
		oi, ni := 0, 0
		for _, c := range h.Changes {
			switch c.Type {
			case diff.ViewDelete:
				changes = append(changes, lineAt(oldLines, oi, c.Content))
				oi++
			case diff.ViewInsert:
				changes = append(changes, lineAt(newLines, ni, c.Content))
				ni++
			default:
				changes = append(changes, lineAt(newLines, ni, c.Content))
				oi++
				ni++
			}
		}
		out.Hunks = append(out.Hunks, changes)
	}

	return out, nil
}

// TokenizeWithFallback tries language, then PlainText, and returns nil when both fail.
func TokenizeWithFallback(hunks []diff.ViewHunk, language string) *Tokens {
	if tokens, err := Tokenize(hunks, language); err == nil {
		return tokens
	}
	if tokens, err := Tokenize(hunks, PlainText); err == nil {
		return tokens
	}
	return nil
}

func lexLines(lexer chroma.Lexer, lines []string) ([][]Token, error) {
	if len(lines) == 0 {
		return nil, nil
	}
	it, err := lexer.Tokenise(nil, strings.Join(lines, "\n")+"\n")
	if err != nil {
		return nil, errors.Wrap(err, "lexing")
	}

	var out [][]Token
	for _, line := range chroma.SplitTokensIntoLines(it.Tokens()) {
		var tokens []Token
		for _, t := range line {
			v := strings.TrimSuffix(t.Value, "\n")
			if v == "" {
				continue
			}
			tokens = append(tokens, Token{Class: classOf(t.Type), Value: v})
		}
		out = append(out, tokens)
	}
	return out, nil
}

// lineAt returns line i, or the content as one unclassed token if the lexer produced fewer
// lines than expected.
func lineAt(lines [][]Token, i int, content string) []Token {
	if i < len(lines) {
		return lines[i]
	}
	if content == "" {
		return nil
	}
	return []Token{{Value: content}}
}

func classOf(t chroma.TokenType) string {
	if c, ok := chroma.StandardTypes[t]; ok {
		return c
	}
	return chroma.StandardTypes[t.Category()]
}
