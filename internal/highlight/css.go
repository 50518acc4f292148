package highlight

import (
	"strings"

	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/pkg/errors"
)

// DefaultStyle matches the viewer's dark theme.
const DefaultStyle = "github-dark"

// Stylesheet returns the CSS rules for the token classes of the named chroma style. Unknown
// styles fall back to chroma's default.
func Stylesheet(style string) (string, error) {
	var b strings.Builder
	formatter := html.New(html.WithClasses(true))
	if err := formatter.WriteCSS(&b, styles.Get(style)); err != nil {
		return "", errors.Wrapf(err, "writing css for style %q", style)
	}
	return b.String(), nil
}
