package style

import (
	"encoding/json"
	"io"
	"regexp"
	"slices"
	"strings"
)

var jsIdentifier = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// RenderTailwind writes c as a tailwind.config.js CommonJS module. Output
// is deterministic: palettes keep their declared order and font families
// are sorted by name.
func (c *StyleConfig) RenderTailwind(w io.Writer) error {
	var b strings.Builder

	b.WriteString("/** @type {import('tailwindcss').Config} */\n")
	b.WriteString("module.exports = {\n")

	b.WriteString("  darkMode: ")
	writeStringList(&b, c.DarkMode.values(), len(c.DarkMode.values()) > 1)
	b.WriteString(",\n")

	b.WriteString("  content: ")
	writeStringList(&b, c.Content, true)
	b.WriteString(",\n")

	b.WriteString("  theme: {")
	if len(c.Theme.Colors) == 0 && c.Theme.Extend.IsZero() {
		b.WriteString("},\n")
	} else {
		b.WriteString("\n")
		if len(c.Theme.Colors) > 0 {
			writePalette(&b, "colors", c.Theme.Colors, 2)
		}
		if !c.Theme.Extend.IsZero() {
			b.WriteString("    extend: {\n")
			if len(c.Theme.Extend.Colors) > 0 {
				writePalette(&b, "colors", c.Theme.Extend.Colors, 3)
			}
			if len(c.Theme.Extend.FontFamily) > 0 {
				writeFontFamily(&b, c.Theme.Extend.FontFamily, 3)
			}
			b.WriteString("    },\n")
		}
		b.WriteString("  },\n")
	}

	b.WriteString("  plugins: [")
	for i, plugin := range c.Plugins {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("require(")
		b.WriteString(jsString(plugin))
		b.WriteString(")")
	}
	b.WriteString("],\n")
	b.WriteString("};\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func writePalette(b *strings.Builder, key string, p Palette, depth int) {
	indent := strings.Repeat("  ", depth)
	b.WriteString(indent + jsKey(key) + ": {\n")
	for _, sw := range p {
		if sw.IsSingle() {
			b.WriteString(indent + "  " + jsKey(sw.Name) + ": " + jsString(string(sw.Color)) + ",\n")
			continue
		}
		b.WriteString(indent + "  " + jsKey(sw.Name) + ": {\n")
		for _, sh := range sw.Shades {
			b.WriteString(indent + "    " + jsKey(sh.Name) + ": " + jsString(string(sh.Color)) + ",\n")
		}
		b.WriteString(indent + "  },\n")
	}
	b.WriteString(indent + "},\n")
}

func writeFontFamily(b *strings.Builder, families map[string][]string, depth int) {
	indent := strings.Repeat("  ", depth)
	names := make([]string, 0, len(families))
	for name := range families {
		names = append(names, name)
	}
	slices.Sort(names)

	b.WriteString(indent + "fontFamily: {\n")
	for _, name := range names {
		b.WriteString(indent + "  " + jsKey(name) + ": ")
		writeStringList(b, families[name], true)
		b.WriteString(",\n")
	}
	b.WriteString(indent + "},\n")
}

func writeStringList(b *strings.Builder, values []string, asArray bool) {
	if !asArray && len(values) == 1 {
		b.WriteString(jsString(values[0]))
		return
	}
	b.WriteString("[")
	for i, v := range values {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(jsString(v))
	}
	b.WriteString("]")
}

func jsKey(key string) string {
	if jsIdentifier.MatchString(key) {
		return key
	}
	return jsString(key)
}

// jsString quotes s as a JavaScript string literal. JSON string syntax is a
// subset of it.
func jsString(s string) string {
	var b strings.Builder
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return strings.TrimSuffix(b.String(), "\n")
}
