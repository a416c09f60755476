package style

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format is a serialisation format for StyleConfig.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath derives the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Load reads, decodes and validates the configuration file at path.
func Load(path string) (*StyleConfig, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open style config: %w", err)
	}
	defer func() { _ = f.Close() }()

	cfg, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate %s: %w", path, err)
	}
	return cfg, nil
}

// Decode parses a configuration without validating it. Unknown keys are
// rejected in every format.
func Decode(r io.Reader, format Format) (*StyleConfig, error) {
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		var cfg StyleConfig
		if err := dec.Decode(&cfg); err != nil {
			return nil, err
		}
		if dec.More() {
			return nil, errors.New("trailing data after configuration object")
		}
		return &cfg, nil
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		var cfg StyleConfig
		if err := dec.Decode(&cfg); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, errors.New("empty configuration")
			}
			return nil, err
		}
		return &cfg, nil
	case FormatTOML:
		return decodeTOML(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// Encode writes cfg as JSON or YAML. TOML is read-only.
func Encode(w io.Writer, cfg *StyleConfig, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w for encoding: %q", ErrUnsupportedFormat, format)
	}
}

type tomlDocument struct {
	DarkMode any      `toml:"darkMode"`
	Content  []string `toml:"content"`
	Theme    struct {
		Colors map[string]any `toml:"colors"`
		Extend struct {
			Colors     map[string]any      `toml:"colors"`
			FontFamily map[string][]string `toml:"fontFamily"`
		} `toml:"extend"`
	} `toml:"theme"`
	Plugins []string `toml:"plugins"`
}

func decodeTOML(r io.Reader) (*StyleConfig, error) {
	var doc tomlDocument
	md, err := toml.NewDecoder(r).Decode(&doc)
	if err != nil {
		return nil, err
	}
	if unknown := unknownTOMLKeys(md.Undecoded()); len(unknown) > 0 {
		return nil, fmt.Errorf("unknown keys: %v", unknown)
	}

	cfg := &StyleConfig{
		Content: doc.Content,
		Plugins: doc.Plugins,
	}

	if doc.DarkMode != nil {
		dm, err := tomlDarkMode(doc.DarkMode)
		if err != nil {
			return nil, err
		}
		cfg.DarkMode = dm
	}

	order := md.Keys()
	if cfg.Theme.Colors, err = tomlPalette(doc.Theme.Colors, order, "theme", "colors"); err != nil {
		return nil, err
	}
	if cfg.Theme.Extend.Colors, err = tomlPalette(doc.Theme.Extend.Colors, order, "theme", "extend", "colors"); err != nil {
		return nil, err
	}
	cfg.Theme.Extend.FontFamily = doc.Theme.Extend.FontFamily

	return cfg, nil
}

// paletteTables hold user-chosen keys. The decoder reports everything below
// them as undecoded; tomlPalette checks their shape instead.
var paletteTables = [][]string{
	{"theme", "colors"},
	{"theme", "extend", "colors"},
}

func unknownTOMLKeys(undecoded []toml.Key) []toml.Key {
	var unknown []toml.Key
	for _, key := range undecoded {
		if !slices.ContainsFunc(paletteTables, func(prefix []string) bool {
			return len(key) > len(prefix) && slices.Equal([]string(key[:len(prefix)]), prefix)
		}) {
			unknown = append(unknown, key)
		}
	}
	return unknown
}

func tomlDarkMode(v any) (DarkMode, error) {
	switch dm := v.(type) {
	case string:
		return DarkMode{Strategy: DarkModeStrategy(dm)}, nil
	case []any:
		values := make([]string, 0, len(dm))
		for _, item := range dm {
			s, ok := item.(string)
			if !ok {
				return DarkMode{}, fmt.Errorf("darkMode: expected strings, got %T", item)
			}
			values = append(values, s)
		}
		return darkModeFromValues(values)
	default:
		return DarkMode{}, fmt.Errorf("darkMode: expected a string or an array, got %T", v)
	}
}

// tomlPalette rebuilds an ordered palette from the decoded map using the
// key order recorded in the metadata. Keys the metadata does not report
// (inline tables on some parser versions) follow in lexical order.
func tomlPalette(raw map[string]any, order []toml.Key, prefix ...string) (Palette, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	names := orderedChildren(raw, order, prefix)
	out := make(Palette, 0, len(names))
	for _, name := range names {
		switch v := raw[name].(type) {
		case string:
			out = append(out, Swatch{Name: name, Color: Color(v)})
		case map[string]any:
			shadeNames := orderedChildren(v, order, append(slices.Clone(prefix), name))
			shades := make([]Shade, 0, len(shadeNames))
			for _, shade := range shadeNames {
				s, ok := v[shade].(string)
				if !ok {
					return nil, fmt.Errorf("%s.%s.%s: expected a colour string, got %T", strings.Join(prefix, "."), name, shade, v[shade])
				}
				shades = append(shades, Shade{Name: shade, Color: Color(s)})
			}
			out = append(out, Swatch{Name: name, Shades: shades})
		default:
			return nil, fmt.Errorf("%s.%s: expected a colour or a table, got %T", strings.Join(prefix, "."), name, v)
		}
	}
	return out, nil
}

func orderedChildren[V any](raw map[string]V, order []toml.Key, prefix []string) []string {
	names := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, key := range order {
		if len(key) != len(prefix)+1 || !slices.Equal([]string(key[:len(prefix)]), prefix) {
			continue
		}
		name := key[len(prefix)]
		if _, ok := raw[name]; !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	var rest []string
	for name := range raw {
		if _, ok := seen[name]; !ok {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}
