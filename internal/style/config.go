package style

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// DarkModeStrategy selects how dark-mode variants are activated.
type DarkModeStrategy string

const (
	// DarkModeMedia follows the operating system preference (prefers-color-scheme).
	DarkModeMedia DarkModeStrategy = "media"
	// DarkModeSelector activates dark variants when a selector matches, ".dark" by default.
	DarkModeSelector DarkModeStrategy = "selector"
	// DarkModeClass is the legacy name of DarkModeSelector.
	DarkModeClass DarkModeStrategy = "class"
)

// Valid reports whether s is a known strategy.
func (s DarkModeStrategy) Valid() bool {
	switch s {
	case DarkModeMedia, DarkModeSelector, DarkModeClass:
		return true
	default:
		return false
	}
}

// DarkMode is the darkMode entry. Selector is only meaningful for the
// selector and class strategies; when set the entry is written in the
// two-element form ["selector", "<selector>"].
type DarkMode struct {
	Strategy DarkModeStrategy
	Selector string
}

func (d DarkMode) values() []string {
	if d.Selector == "" {
		return []string{string(d.Strategy)}
	}
	return []string{string(d.Strategy), d.Selector}
}

func darkModeFromValues(values []string) (DarkMode, error) {
	switch len(values) {
	case 1:
		return DarkMode{Strategy: DarkModeStrategy(values[0])}, nil
	case 2:
		return DarkMode{Strategy: DarkModeStrategy(values[0]), Selector: values[1]}, nil
	default:
		return DarkMode{}, fmt.Errorf("darkMode: expected a strategy or [strategy, selector], got %d values", len(values))
	}
}

func (d DarkMode) MarshalJSON() ([]byte, error) {
	if d.Selector == "" {
		return json.Marshal(string(d.Strategy))
	}
	return json.Marshal(d.values())
}

func (d *DarkMode) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*d = DarkMode{Strategy: DarkModeStrategy(single)}
		return nil
	}

	var pair []string
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("darkMode: expected a string or an array of strings: %w", err)
	}
	parsed, err := darkModeFromValues(pair)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d DarkMode) MarshalYAML() (any, error) {
	if d.Selector == "" {
		return string(d.Strategy), nil
	}
	return d.values(), nil
}

func (d *DarkMode) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*d = DarkMode{Strategy: DarkModeStrategy(node.Value)}
		return nil
	case yaml.SequenceNode:
		var pair []string
		if err := node.Decode(&pair); err != nil {
			return fmt.Errorf("darkMode: %w", err)
		}
		parsed, err := darkModeFromValues(pair)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	default:
		return fmt.Errorf("darkMode: line %d: expected a string or a sequence", node.Line)
	}
}

// Theme is the theme entry. Colors replaces the framework palette entirely,
// Extend layers additional tokens on top of it.
type Theme struct {
	Colors Palette   `json:"colors,omitempty" yaml:"colors,omitempty"`
	Extend Extension `json:"extend,omitzero" yaml:"extend,omitempty"`
}

// Extension holds theme tokens merged into the framework defaults.
type Extension struct {
	Colors     Palette             `json:"colors,omitempty" yaml:"colors,omitempty"`
	FontFamily map[string][]string `json:"fontFamily,omitempty" yaml:"fontFamily,omitempty"`
}

// IsZero reports whether the extension declares nothing.
func (e Extension) IsZero() bool {
	return len(e.Colors) == 0 && len(e.FontFamily) == 0
}

// StyleConfig is the configuration record consumed by the Tailwind CLI.
// It is loaded once per build and never mutated afterwards.
type StyleConfig struct {
	DarkMode DarkMode `json:"darkMode" yaml:"darkMode"`
	Content  []string `json:"content" yaml:"content"`
	Theme    Theme    `json:"theme" yaml:"theme"`
	Plugins  []string `json:"plugins" yaml:"plugins"`
}

// Palettes returns every palette the config declares, replacement colours
// first, then extension colours.
func (c *StyleConfig) Palettes() Palette {
	all := make(Palette, 0, len(c.Theme.Colors)+len(c.Theme.Extend.Colors))
	all = append(all, c.Theme.Colors...)
	all = append(all, c.Theme.Extend.Colors...)
	return all
}
