package style

// DefaultPath is the style configuration file looked up when none is given.
const DefaultPath = "style.yaml"

// Default returns the configuration binp ships with: the tokyonight palette
// layered over Tailwind's colours and dark mode toggled by the .dark class.
func Default() *StyleConfig {
	return &StyleConfig{
		DarkMode: DarkMode{Strategy: DarkModeSelector},
		Content:  []string{"./web/**/*.{go,js,templ,html}"},
		Theme: Theme{
			Extend: Extension{
				Colors: Palette{
					{
						Name: "tokyonight",
						Shades: []Shade{
							{Name: "background", Color: "#1a1b26"},
							{Name: "foreground", Color: "#c0caf5"},
							{Name: "current", Color: "#c0caf5"},
							{Name: "comment", Color: "#565f89"},
							{Name: "cyan", Color: "#7dcfff"},
							{Name: "blue", Color: "#7aa2f7"},
							{Name: "purple", Color: "#bb9af7"},
							{Name: "orange", Color: "#ff9e64"},
							{Name: "yellow", Color: "#e0af68"},
							{Name: "green", Color: "#9ece6a"},
							{Name: "magenta", Color: "#ff007c"},
							{Name: "red", Color: "#f7768e"},
						},
					},
				},
			},
		},
		Plugins: []string{"@tailwindcss/forms"},
	}
}
