package style

import (
	"io"
	"regexp"
	"slices"
	"strings"
)

var cssIdentUnsafe = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// VariableName returns the custom property name of a palette colour, e.g.
// --color-tokyonight-cyan. shade is empty for single-colour palettes.
func VariableName(palette, shade string) string {
	name := "--color-" + cssIdent(palette)
	if shade != "" {
		name += "-" + cssIdent(shade)
	}
	return name
}

func cssIdent(s string) string {
	return strings.Trim(cssIdentUnsafe.ReplaceAllString(s, "-"), "-")
}

// RenderCSSVariables writes every palette colour and font stack as a CSS
// custom property on :root.
func (c *StyleConfig) RenderCSSVariables(w io.Writer) error {
	var b strings.Builder
	b.WriteString(":root {\n")
	for _, sw := range c.Palettes() {
		if sw.IsSingle() {
			b.WriteString("  " + VariableName(sw.Name, "") + ": " + string(sw.Color) + ";\n")
			continue
		}
		for _, sh := range sw.Shades {
			b.WriteString("  " + VariableName(sw.Name, sh.Name) + ": " + string(sh.Color) + ";\n")
		}
	}

	names := make([]string, 0, len(c.Theme.Extend.FontFamily))
	for name := range c.Theme.Extend.FontFamily {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		b.WriteString("  --font-" + cssIdent(name) + ": " + fontStack(c.Theme.Extend.FontFamily[name]) + ";\n")
	}
	b.WriteString("}\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func fontStack(fonts []string) string {
	parts := make([]string, len(fonts))
	for i, f := range fonts {
		if strings.ContainsAny(f, " \"'") {
			parts[i] = `"` + strings.ReplaceAll(f, `"`, `\"`) + `"`
			continue
		}
		parts[i] = f
	}
	return strings.Join(parts, ", ")
}
