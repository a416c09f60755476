package style

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"

	"gopkg.in/yaml.v3"
)

var hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Color is a hexadecimal RGB colour such as "#1a1b26".
type Color string

// Valid reports whether c is '#' followed by exactly six hex digits.
func (c Color) Valid() bool {
	return hexColorPattern.MatchString(string(c))
}

// Shade is one named colour inside a palette, e.g. "background".
type Shade struct {
	Name  string
	Color Color
}

// Swatch is a palette entry. It is either a single colour (Shades nil) or a
// nested mapping of shades (Shades non-nil, possibly empty), never both.
type Swatch struct {
	Name   string
	Color  Color
	Shades []Shade
}

// IsSingle reports whether the swatch is a single colour. An empty shade
// mapping is still a group.
func (s Swatch) IsSingle() bool {
	return s.Shades == nil
}

// Palette is an ordered mapping of palette names to swatches. Order is
// preserved through every codec so rendered output matches the source.
type Palette []Swatch

// Lookup returns the colour of name or name.shade.
func (p Palette) Lookup(name, shade string) (Color, bool) {
	for _, sw := range p {
		if sw.Name != name {
			continue
		}
		if shade == "" {
			return sw.Color, sw.IsSingle()
		}
		for _, sh := range sw.Shades {
			if sh.Name == shade {
				return sh.Color, true
			}
		}
		return "", false
	}
	return "", false
}

func (p Palette) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, sw := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSONKey(&buf, sw.Name); err != nil {
			return nil, err
		}
		if sw.IsSingle() {
			if err := writeJSONString(&buf, string(sw.Color)); err != nil {
				return nil, err
			}
			continue
		}
		buf.WriteByte('{')
		for j, sh := range sw.Shades {
			if j > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONKey(&buf, sh.Name); err != nil {
				return nil, err
			}
			if err := writeJSONString(&buf, string(sh.Color)); err != nil {
				return nil, err
			}
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeJSONKey(buf *bytes.Buffer, key string) error {
	if err := writeJSONString(buf, key); err != nil {
		return err
	}
	buf.WriteByte(':')
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	encoded, err := json.Marshal(s)
	if err != nil {
		return err
	}
	buf.Write(encoded)
	return nil
}

func (p *Palette) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := expectDelim(dec, '{'); err != nil {
		return err
	}

	var out Palette
	seen := make(map[string]struct{})
	for dec.More() {
		name, err := readKey(dec)
		if err != nil {
			return err
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("palette: %w: %q", ErrDuplicateKey, name)
		}
		seen[name] = struct{}{}

		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("palette %q: %w", name, err)
		}
		switch v := tok.(type) {
		case string:
			out = append(out, Swatch{Name: name, Color: Color(v)})
		case json.Delim:
			if v != '{' {
				return fmt.Errorf("palette %q: expected a colour or an object, got %v", name, v)
			}
			shades, err := readShades(dec, name)
			if err != nil {
				return err
			}
			out = append(out, Swatch{Name: name, Shades: shades})
		default:
			return fmt.Errorf("palette %q: expected a colour or an object, got %v", name, tok)
		}
	}
	if err := expectDelim(dec, '}'); err != nil {
		return err
	}

	*p = out
	return nil
}

func readShades(dec *json.Decoder, palette string) ([]Shade, error) {
	var shades []Shade
	seen := make(map[string]struct{})
	for dec.More() {
		name, err := readKey(dec)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("palette %q: %w: %q", palette, ErrDuplicateKey, name)
		}
		seen[name] = struct{}{}

		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("palette %q shade %q: %w", palette, name, err)
		}
		value, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("palette %q shade %q: expected a colour string, got %v", palette, name, tok)
		}
		shades = append(shades, Shade{Name: name, Color: Color(value)})
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	if shades == nil {
		shades = []Shade{}
	}
	return shades, nil
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("palette: expected object key, got %v", tok)
	}
	return key, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("palette: unexpected end of input, want %v", want)
	}
	if err != nil {
		return err
	}
	if got, ok := tok.(json.Delim); !ok || got != want {
		return fmt.Errorf("palette: expected %v, got %v", want, tok)
	}
	return nil
}

func (p Palette) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, sw := range p {
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: sw.Name}
		if sw.IsSingle() {
			node.Content = append(node.Content, key, colorNode(sw.Color))
			continue
		}
		shades := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, sh := range sw.Shades {
			shades.Content = append(shades.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: sh.Name},
				colorNode(sh.Color),
			)
		}
		node.Content = append(node.Content, key, shades)
	}
	return node, nil
}

// colorNode quotes explicitly: an unquoted '#' starts a YAML comment.
func colorNode(c Color) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Style: yaml.DoubleQuotedStyle, Value: string(c)}
}

func (p *Palette) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("palette: line %d: expected a mapping", node.Line)
	}

	var out Palette
	seen := make(map[string]struct{})
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if _, dup := seen[key.Value]; dup {
			return fmt.Errorf("palette: line %d: %w: %q", key.Line, ErrDuplicateKey, key.Value)
		}
		seen[key.Value] = struct{}{}

		switch value.Kind {
		case yaml.ScalarNode:
			out = append(out, Swatch{Name: key.Value, Color: Color(value.Value)})
		case yaml.MappingNode:
			shades, err := yamlShades(key.Value, value)
			if err != nil {
				return err
			}
			out = append(out, Swatch{Name: key.Value, Shades: shades})
		default:
			return fmt.Errorf("palette %q: line %d: expected a colour or a mapping", key.Value, value.Line)
		}
	}

	*p = out
	return nil
}

func yamlShades(palette string, node *yaml.Node) ([]Shade, error) {
	shades := make([]Shade, 0, len(node.Content)/2)
	seen := make(map[string]struct{})
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if _, dup := seen[key.Value]; dup {
			return nil, fmt.Errorf("palette %q: line %d: %w: %q", palette, key.Line, ErrDuplicateKey, key.Value)
		}
		seen[key.Value] = struct{}{}

		if value.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("palette %q shade %q: line %d: expected a colour", palette, key.Value, value.Line)
		}
		shades = append(shades, Shade{Name: key.Value, Color: Color(value.Value)})
	}
	return shades, nil
}
