package formatter

import (
	"bytes"
	"os"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnoswap-labs/hmgrep/internal/search"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

var sample = search.Match{
	Filename: "mail.txt",
	Line:     3,
	Text:     "visit pаypal.com or pаypal.net",
	Spans:    [][2]int{{6, 13}, {21, 28}},
}

func TestFormatMatchGrep(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		opts Options
		want string
	}{
		{
			name: "text only",
			opts: Options{},
			want: "visit pаypal.com or pаypal.net\n",
		},
		{
			name: "filename and line",
			opts: Options{WithFilename: true, LineNumber: true},
			want: "mail.txt:3:visit pаypal.com or pаypal.net\n",
		},
		{
			name: "only matching",
			opts: Options{LineNumber: true, OnlyMatching: true},
			want: "3:pаypal\n3:pаypal\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, FormatMatch(sample, tt.opts))
		})
	}
}

func TestFormatMatchSnippet(t *testing.T) {
	t.Parallel()
	got := FormatMatch(sample, Options{Style: StyleSnippet})
	want := " --> mail.txt:3:7\n" +
		"  |\n" +
		"3 | visit pаypal.com or pаypal.net\n" +
		"  |       ^^^^^^        ^^^^^^\n"
	assert.Equal(t, want, got)
}

func TestFormatMatchSnippetWide(t *testing.T) {
	t.Parallel()
	m := search.Match{
		Filename: "jp.txt",
		Line:     12,
		Text:     "女子\tパス",
		Spans:    [][2]int{{7, 13}},
	}
	got := FormatMatch(m, Options{Style: StyleSnippet})
	want := "  --> jp.txt:12:4\n" +
		"   |\n" +
		"12 | 女子    パス\n" +
		"   |         ^^^^\n"
	assert.Equal(t, want, got)
}

func TestWrite(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	matches := []search.Match{
		{Filename: "a.txt", Line: 1, Text: "one", Spans: [][2]int{{0, 3}}},
		{Filename: "b.txt", Line: 7, Text: "two", Spans: [][2]int{{0, 3}}},
	}
	require.NoError(t, Write(&buf, matches, Options{WithFilename: true, LineNumber: true}))
	assert.Equal(t, "a.txt:1:one\nb.txt:7:two\n", buf.String())
}

func TestWriteContext(t *testing.T) {
	t.Parallel()
	matches := []search.Match{
		{
			Filename: "a.txt", Line: 3, Text: "match", Spans: [][2]int{{0, 5}},
			Before: []search.Line{{Number: 2, Text: "b"}},
			After:  []search.Line{{Number: 4, Text: "c"}},
		},
		{
			Filename: "a.txt", Line: 5, Text: "match", Spans: [][2]int{{0, 5}},
			After: []search.Line{{Number: 6, Text: "d"}},
		},
		{
			Filename: "a.txt", Line: 9, Text: "match", Spans: [][2]int{{0, 5}},
			Before: []search.Line{{Number: 8, Text: "f"}},
		},
		{Filename: "b.txt", Line: 1, Text: "match", Spans: [][2]int{{0, 5}}},
	}

	tests := []struct {
		name string
		opts Options
		want string
	}{
		{
			name: "grep",
			opts: Options{WithFilename: true, LineNumber: true, Context: true},
			want: "a.txt-2-b\na.txt:3:match\na.txt-4-c\n" +
				"a.txt:5:match\na.txt-6-d\n" +
				"--\n" +
				"a.txt-8-f\na.txt:9:match\n" +
				"--\n" +
				"b.txt:1:match\n",
		},
		{
			name: "without separators",
			opts: Options{LineNumber: true},
			want: "2-b\n3:match\n4-c\n5:match\n6-d\n8-f\n9:match\n1:match\n",
		},
		{
			name: "only matching",
			opts: Options{LineNumber: true, OnlyMatching: true, Context: true},
			want: "3:match\n5:match\n9:match\n1:match\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			require.NoError(t, Write(&buf, matches, tt.opts))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestFormatMatchSnippetContext(t *testing.T) {
	t.Parallel()
	m := search.Match{
		Filename: "notes.txt",
		Line:     9,
		Text:     "match",
		Spans:    [][2]int{{0, 5}},
		Before:   []search.Line{{Number: 8, Text: "f"}},
		After:    []search.Line{{Number: 10, Text: "g"}},
	}
	got := FormatMatch(m, Options{Style: StyleSnippet})
	want := "  --> notes.txt:9:1\n" +
		"   |\n" +
		" 8 | f\n" +
		" 9 | match\n" +
		"   | ^^^^^\n" +
		"10 | g\n"
	assert.Equal(t, want, got)
}

func TestVisualWidth(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input string
		want  int
	}{
		{"", 0},
		{"abc", 3},
		{"\t", 8},
		{"ab\t", 8},
		{"女子", 4},
		{"ｶﾀｶﾅ", 4},
		{"a\tb", 9},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, visualWidth(tt.input), "%q", tt.input)
	}
}
