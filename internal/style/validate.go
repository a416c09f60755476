package style

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

var (
	ErrInvalidColor      = errors.New("invalid colour")
	ErrInvalidDarkMode   = errors.New("invalid dark mode strategy")
	ErrEmptyContent      = errors.New("content must list at least one glob")
	ErrEmptyGlob         = errors.New("empty glob pattern")
	ErrInvalidGlob       = errors.New("malformed glob pattern")
	ErrUnknownPlugin     = errors.New("unknown plugin")
	ErrDuplicateKey      = errors.New("duplicate key")
	ErrEmptyName         = errors.New("empty name")
	ErrEmptyFontFamily   = errors.New("font stack must not be empty")
	ErrEmptyGroup        = errors.New("shade mapping must not be empty")
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// KnownPlugins lists the plugin identifiers the Tailwind build can resolve
// from its package.json. Local paths are accepted in addition.
var KnownPlugins = map[string]struct{}{
	"@tailwindcss/forms":             {},
	"@tailwindcss/typography":        {},
	"@tailwindcss/aspect-ratio":      {},
	"@tailwindcss/container-queries": {},
}

// ValidationError ties a violation to the dotted path of the offending field.
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func violation(path string, err error, detail string) error {
	if detail != "" {
		err = fmt.Errorf("%w %q", err, detail)
	}
	return &ValidationError{Path: path, Err: err}
}

// Validate checks every invariant of the record and returns all violations
// joined, or nil.
func (c *StyleConfig) Validate() error {
	var errs []error

	if !c.DarkMode.Strategy.Valid() {
		errs = append(errs, violation("darkMode", ErrInvalidDarkMode, string(c.DarkMode.Strategy)))
	} else if c.DarkMode.Strategy == DarkModeMedia && c.DarkMode.Selector != "" {
		errs = append(errs, violation("darkMode", ErrInvalidDarkMode, "media takes no selector"))
	}

	if len(c.Content) == 0 {
		errs = append(errs, violation("content", ErrEmptyContent, ""))
	}
	for i, glob := range c.Content {
		p := fmt.Sprintf("content[%d]", i)
		if strings.TrimSpace(glob) == "" {
			errs = append(errs, violation(p, ErrEmptyGlob, ""))
			continue
		}
		if !doublestar.ValidatePattern(glob) {
			errs = append(errs, violation(p, ErrInvalidGlob, glob))
		}
	}

	errs = append(errs, validatePalette("theme.colors", c.Theme.Colors)...)
	errs = append(errs, validatePalette("theme.extend.colors", c.Theme.Extend.Colors)...)

	for name, stack := range c.Theme.Extend.FontFamily {
		p := "theme.extend.fontFamily." + name
		if name == "" {
			errs = append(errs, violation("theme.extend.fontFamily", ErrEmptyName, ""))
			continue
		}
		if len(stack) == 0 {
			errs = append(errs, violation(p, ErrEmptyFontFamily, ""))
		}
	}

	for i, plugin := range c.Plugins {
		if !PluginResolves(plugin) {
			errs = append(errs, violation(fmt.Sprintf("plugins[%d]", i), ErrUnknownPlugin, plugin))
		}
	}

	return errors.Join(errs...)
}

func validatePalette(prefix string, p Palette) []error {
	var errs []error
	seen := make(map[string]struct{}, len(p))
	for _, sw := range p {
		if sw.Name == "" {
			errs = append(errs, violation(prefix, ErrEmptyName, ""))
			continue
		}
		swPath := prefix + "." + sw.Name
		if _, dup := seen[sw.Name]; dup {
			errs = append(errs, violation(swPath, ErrDuplicateKey, sw.Name))
		}
		seen[sw.Name] = struct{}{}

		if sw.IsSingle() {
			if !sw.Color.Valid() {
				errs = append(errs, violation(swPath, ErrInvalidColor, string(sw.Color)))
			}
			continue
		}

		if len(sw.Shades) == 0 {
			errs = append(errs, violation(swPath, ErrEmptyGroup, ""))
			continue
		}

		shadeSeen := make(map[string]struct{}, len(sw.Shades))
		for _, sh := range sw.Shades {
			if sh.Name == "" {
				errs = append(errs, violation(swPath, ErrEmptyName, ""))
				continue
			}
			shPath := swPath + "." + sh.Name
			if _, dup := shadeSeen[sh.Name]; dup {
				errs = append(errs, violation(shPath, ErrDuplicateKey, sh.Name))
			}
			shadeSeen[sh.Name] = struct{}{}
			if !sh.Color.Valid() {
				errs = append(errs, violation(shPath, ErrInvalidColor, string(sh.Color)))
			}
		}
	}
	return errs
}

// PluginResolves reports whether id is a known plugin or a local path.
func PluginResolves(id string) bool {
	if _, ok := KnownPlugins[id]; ok {
		return true
	}
	return strings.HasPrefix(id, "./") || strings.HasPrefix(id, "../") || strings.HasPrefix(id, "/")
}
