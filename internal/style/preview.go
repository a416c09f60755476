package style

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

const (
	previewLight = lipgloss.Color("#ffffff")
	previewDark  = lipgloss.Color("#000000")
)

// Preview writes one terminal swatch per palette colour. Colours are only
// emitted when w is a terminal that supports them.
func (c *StyleConfig) Preview(w io.Writer) error {
	r := lipgloss.NewRenderer(w)
	title := r.NewStyle().Bold(true)

	var rows []string
	for _, sw := range c.Palettes() {
		if sw.IsSingle() {
			rows = append(rows, swatchLine(r, sw.Name, sw.Color))
			continue
		}
		rows = append(rows, title.Render(sw.Name))
		for _, sh := range sw.Shades {
			rows = append(rows, "  "+swatchLine(r, sh.Name, sh.Color))
		}
	}

	_, err := io.WriteString(w, lipgloss.JoinVertical(lipgloss.Left, rows...)+"\n")
	return err
}

func swatchLine(r *lipgloss.Renderer, name string, color Color) string {
	block := r.NewStyle().
		Background(lipgloss.Color(color)).
		Foreground(ContrastText(color)).
		Padding(0, 1).
		Render(string(color))
	label := r.NewStyle().PaddingLeft(1).Render(name)
	return strings.TrimRight(block+label, " ")
}

// ContrastText picks black or white text for legible labels on color, based
// on its CIE L*a*b* lightness.
func ContrastText(color Color) lipgloss.Color {
	parsed, err := colorful.Hex(string(color))
	if err != nil {
		return previewLight
	}
	l, _, _ := parsed.Lab()
	if l > 0.6 {
		return previewDark
	}
	return previewLight
}
