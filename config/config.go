package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gnoswap-labs/hmgrep"
	"github.com/gnoswap-labs/hmgrep/internal/table"
)

// DefaultPath is the configuration file looked up in the working directory.
const DefaultPath = ".hmgrep.yaml"

// Config represents the overall configuration of hmgrep.
type Config struct {
	Name      string          `yaml:"name"`
	Expansion ExpansionConfig `yaml:"expansion"`
	Tables    TablesConfig    `yaml:"tables"`
	Search    SearchConfig    `yaml:"search"`
}

// ExpansionConfig holds the pattern expansion settings.
type ExpansionConfig struct {
	Literal       bool `yaml:"literal"`
	Kana          bool `yaml:"kana"`
	CJKWidth      bool `yaml:"cjk_width"`
	Grapheme      bool `yaml:"grapheme"`
	Normalize     bool `yaml:"normalize"`
	NonCapturing  bool `yaml:"non_capturing"`
	MaxCandidates int  `yaml:"max_candidates"`
}

// TablesConfig points at an equivalence table asset replacing the bundled one.
type TablesConfig struct {
	Path string `yaml:"path"`
}

// SearchConfig holds the settings of the grep subcommand.
type SearchConfig struct {
	IgnoreCase   bool     `yaml:"ignore_case"`
	LineNumber   bool     `yaml:"line_number"`
	OnlyMatching bool     `yaml:"only_matching"`
	Workers      int      `yaml:"workers"`
	MaxFileSize  int64    `yaml:"max_file_size"`
	Extensions   []string `yaml:"extensions"`
	ExcludeDirs  []string `yaml:"exclude_dirs"`
	// BeforeContext and AfterContext are the lines printed around a match.
	BeforeContext int `yaml:"before_context"`
	AfterContext  int `yaml:"after_context"`
	// IgnoreFiles names the gitignore-style files honored while walking
	// directories.
	IgnoreFiles []string `yaml:"ignore_files"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Name: "hmgrep",
		Expansion: ExpansionConfig{
			Literal:       true,
			MaxCandidates: hmgrep.DefaultMaxCandidates,
		},
		Search: SearchConfig{
			LineNumber:  true,
			Extensions:  []string{},
			ExcludeDirs: []string{".git"},
			IgnoreFiles: []string{".gitignore", ".ignore", ".hmgrepignore"},
		},
	}
}

// Load reads the configuration at path on top of the defaults. A missing
// file is not an error.
func Load(path string) (Config, error) {
	config := Default()
	if path == "" {
		path = DefaultPath
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return config, nil
		}
		return config, fmt.Errorf("open config %s: %w", path, err)
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return config, fmt.Errorf("parse config %s: %w", path, err)
	}

	return config, nil
}

// Write stores config at path, replacing any existing file.
func Write(path string, config Config) error {
	if path == "" {
		path = DefaultPath
	}

	d, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(d); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}

	return nil
}

// Options converts the expansion settings to engine options.
func (c ExpansionConfig) Options() hmgrep.Options {
	return hmgrep.Options{
		Literal:       c.Literal,
		Kana:          c.Kana,
		Width:         c.CJKWidth,
		Grapheme:      c.Grapheme,
		Normalize:     c.Normalize,
		NonCapturing:  c.NonCapturing,
		MaxCandidates: c.MaxCandidates,
	}
}

// LoadTables returns the configured table set, or the bundled one when no
// path is set.
func (c Config) LoadTables() (*table.Set, error) {
	if c.Tables.Path == "" {
		return table.Default()
	}
	return table.LoadFile(c.Tables.Path)
}
