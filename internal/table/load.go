package table

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// ErrAssetLoad is returned when an equivalence table asset is missing or
// malformed.
var ErrAssetLoad = errors.New("failed to load equivalence tables")

//go:embed files/tables.yaml
var bundled []byte

// Asset is the on-disk layout of the equivalence tables.
type Asset struct {
	Version   string  `yaml:"version"`
	Homoglyph []Class `yaml:"homoglyph"`
	Kana      []Class `yaml:"kana"`
	Width     []Class `yaml:"width"`
}

// Default returns the tables bundled with the binary. The asset is parsed
// once; every caller shares the same immutable Set.
var Default = sync.OnceValues(func() (*Set, error) {
	return Parse(bundled)
})

// MustDefault is like Default but panics if the bundled asset is broken.
func MustDefault() *Set {
	set, err := Default()
	if err != nil {
		panic(err)
	}
	return set
}

// Parse decodes a YAML asset into a table set.
func Parse(data []byte) (*Set, error) {
	var asset Asset
	if err := yaml.Unmarshal(data, &asset); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAssetLoad, err)
	}
	return asset.Build()
}

// ReadAsset decodes the asset at path without building tables from it.
func ReadAsset(path string) (Asset, error) {
	var asset Asset
	data, err := os.ReadFile(path)
	if err != nil {
		return asset, fmt.Errorf("%w: %w", ErrAssetLoad, err)
	}
	if err := yaml.Unmarshal(data, &asset); err != nil {
		return asset, fmt.Errorf("%w: %s: %w", ErrAssetLoad, path, err)
	}
	return asset, nil
}

// LoadFile reads and parses an asset from path.
func LoadFile(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAssetLoad, err)
	}
	set, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

// Build validates the asset and constructs the table set.
func (a Asset) Build() (*Set, error) {
	if err := a.validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAssetLoad, err)
	}
	return &Set{
		Version:   a.Version,
		Homoglyph: New("homoglyph", a.Homoglyph),
		Kana:      New("kana", a.Kana),
		Width:     New("width", a.Width),
	}, nil
}

func (a Asset) validate() error {
	if a.Version == "" {
		return errors.New("missing version")
	}
	tables := []struct {
		name    string
		classes []Class
	}{
		{"homoglyph", a.Homoglyph},
		{"kana", a.Kana},
		{"width", a.Width},
	}
	for _, t := range tables {
		for i, class := range t.classes {
			if len(class) < 2 {
				return fmt.Errorf("%s class %d: need at least two members, got %d", t.name, i, len(class))
			}
			for _, member := range class {
				if member == "" {
					return fmt.Errorf("%s class %d: empty member", t.name, i)
				}
				if !utf8.ValidString(member) {
					return fmt.Errorf("%s class %d: member %q is not valid UTF-8", t.name, i, member)
				}
			}
		}
	}
	return nil
}

// Encode writes the asset as YAML, one flow sequence per class.
func (a Asset) Encode(w io.Writer) error {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	doc.Content = append(doc.Content,
		scalar("version", 0),
		scalar(a.Version, yaml.DoubleQuotedStyle),
	)
	for _, t := range []struct {
		name    string
		classes []Class
	}{
		{"homoglyph", a.Homoglyph},
		{"kana", a.Kana},
		{"width", a.Width},
	} {
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		for _, class := range t.classes {
			row := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
			for _, member := range class {
				row.Content = append(row.Content, scalar(member, yaml.DoubleQuotedStyle))
			}
			seq.Content = append(seq.Content, row)
		}
		doc.Content = append(doc.Content, scalar(t.name, 0), seq)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

func scalar(value string, style yaml.Style) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value, Style: style}
}
