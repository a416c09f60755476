// Package highlight renders snippets as syntax-highlighted HTML and produces
// the matching stylesheet.
package highlight

import (
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// DefaultStyle matches the tokyonight palette of the default style config.
const DefaultStyle = "tokyonight-night"

var (
	backgroundDecl = regexp.MustCompile(`background-color:\s*[^;]+;\s*`)
	emptyRule      = regexp.MustCompile(`(?m)^[^{}\n]*\{\s*\}\s*\n?`)
	chromaRule     = regexp.MustCompile(`(?m)^(/\*[^*]*\*/ )?\.chroma \{([^}]*)\}`)
)

// Chroma highlights code with a fixed chroma style using CSS classes, so
// the page and the generated stylesheet must agree on the style.
type Chroma struct {
	style     *chroma.Style
	formatter *html.Formatter
}

// New returns a highlighter for the named chroma style. Unknown styles
// fall back to chroma's default.
func New(styleName string) *Chroma {
	style := styles.Get(styleName)
	if style == nil || (style == styles.Fallback && styleName != styles.Fallback.Name) {
		slog.Warn("Unknown chroma style, using fallback", "style", styleName, "fallback", styles.Fallback.Name)
		style = styles.Fallback
	}
	return &Chroma{
		style:     style,
		formatter: html.New(html.WithClasses(true)),
	}
}

// StyleName returns the resolved style name.
func (h *Chroma) StyleName() string {
	return h.style.Name
}

// Highlight renders text as HTML for language. Unknown languages use the
// plain-text lexer.
func (h *Chroma) Highlight(text, language string) (string, error) {
	lexer := lexers.Get(language)
	if lexer == nil {
		slog.Debug("No lexer for language, using fallback", "language", language)
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, text)
	if err != nil {
		return "", fmt.Errorf("tokenise %s: %w", language, err)
	}

	var b strings.Builder
	if err := h.formatter.Format(&b, h.style, iterator); err != nil {
		return "", fmt.Errorf("format %s: %w", language, err)
	}
	return b.String(), nil
}

// WriteCSS writes the class stylesheet for the style. Backgrounds are
// stripped so the page theme shows through, and .chroma wraps long lines.
func (h *Chroma) WriteCSS(w io.Writer) error {
	var b strings.Builder
	if err := h.formatter.WriteCSS(&b, h.style); err != nil {
		return fmt.Errorf("write chroma css: %w", err)
	}
	_, err := io.WriteString(w, postProcess(b.String()))
	return err
}

func postProcess(css string) string {
	css = backgroundDecl.ReplaceAllString(css, "")
	css = emptyRule.ReplaceAllString(css, "")

	wrap := "white-space: pre-wrap; word-wrap: break-word; "
	if chromaRule.MatchString(css) {
		return chromaRule.ReplaceAllStringFunc(css, func(rule string) string {
			m := chromaRule.FindStringSubmatch(rule)
			body := strings.Replace(m[2], "white-space: nowrap; ", "", 1)
			body = strings.Replace(body, "white-space: pre; ", "", 1)
			return m[1] + ".chroma { " + wrap + strings.TrimSpace(body) + " }"
		})
	}
	return css + ".chroma { " + strings.TrimSpace(wrap) + " }\n"
}
