package table

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	t.Parallel()
	tbl := New("test", []Class{
		{"a", "а", "ａ"},
		{"o", "о"},
		{"а", "ä"}, // overlaps the first class
	})

	tests := []struct {
		name  string
		input string
		want  Class
		found bool
	}{
		{"first member", "a", Class{"a", "а", "ａ"}, true},
		{"later member", "ａ", Class{"a", "а", "ａ"}, true},
		{"first class wins", "а", Class{"a", "а", "ａ"}, true},
		{"only in later class", "ä", Class{"а", "ä"}, true},
		{"miss", "x", nil, false},
		{"multi codepoint miss", "ao", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := tbl.Lookup(tt.input)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassContains(t *testing.T) {
	t.Parallel()
	c := Class{"は゛", "ば"}
	assert.True(t, c.Contains("ば"))
	assert.True(t, c.Contains("は゛"))
	assert.False(t, c.Contains("は"))
}

func TestDefaultTables(t *testing.T) {
	t.Parallel()
	set, err := Default()
	require.NoError(t, err)

	assert.NotEmpty(t, set.Version)
	assert.Greater(t, set.Homoglyph.Len(), 0)
	assert.Greater(t, set.Kana.Len(), 0)
	assert.Greater(t, set.Width.Len(), 0)

	again := MustDefault()
	assert.Same(t, set, again, "bundled tables should be loaded once")

	woman, ok := set.Homoglyph.Lookup("女")
	require.True(t, ok)
	assert.ElementsMatch(t, Class{"女", "⼥", "\uF981"}, woman)

	kana, ok := set.Kana.Lookup("ア")
	require.True(t, ok)
	assert.ElementsMatch(t, Class{"あ", "ア"}, kana)

	wide, ok := set.Width.Lookup("ﾊﾟ")
	require.True(t, ok)
	assert.ElementsMatch(t, Class{"パ", "ﾊﾟ"}, wide)
}

func TestParseErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		yaml string
	}{
		{"not yaml", "version: [unterminated"},
		{"missing version", "homoglyph:\n  - [\"a\", \"а\"]\n"},
		{"singleton class", "version: \"1\"\nkana:\n  - [\"あ\"]\n"},
		{"empty member", "version: \"1\"\nwidth:\n  - [\"ア\", \"\"]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			set, err := Parse([]byte(tt.yaml))
			assert.Nil(t, set)
			assert.True(t, errors.Is(err, ErrAssetLoad), "got %v", err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	path := filepath.Join(dir, "tables.yaml")
	content := "version: \"test\"\nhomoglyph:\n  - [\"a\", \"а\", \"ａ\"]\nkana:\n  - [\"あ\", \"ア\"]\nwidth:\n  - [\"ア\", \"ｱ\"]\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	set, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "test", set.Version)
	assert.Equal(t, 1, set.Homoglyph.Len())

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, ErrAssetLoad)

	asset, err := ReadAsset(path)
	require.NoError(t, err)
	assert.Equal(t, []Class{{"あ", "ア"}}, asset.Kana)

	_, err = ReadAsset(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, ErrAssetLoad)
}

func TestEncodeRoundTrip(t *testing.T) {
	t.Parallel()
	asset := Asset{
		Version:   "roundtrip",
		Homoglyph: []Class{{"a", "а"}, {"\"", "＂"}},
		Kana:      []Class{{"ぱ", "パ"}},
		Width:     []Class{{"パ", "ﾊﾟ"}, {"＼", "\\"}},
	}

	var buf bytes.Buffer
	require.NoError(t, asset.Encode(&buf))

	set, err := Parse(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, asset, set.Asset())
}
