package hmgrep

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnoswap-labs/hmgrep/internal/pattern"
	"github.com/gnoswap-labs/hmgrep/internal/table"
)

func latinTables() *table.Set {
	return &table.Set{
		Version: "test",
		Homoglyph: table.New("homoglyph", []table.Class{
			{"a", "а", "ａ"},
			{"e", "е"},
			{"l", "|"},
		}),
		Kana:  table.New("kana", nil),
		Width: table.New("width", nil),
	}
}

func TestDefaultOptions(t *testing.T) {
	t.Parallel()
	opts := DefaultOptions()
	assert.True(t, opts.Literal)
	assert.False(t, opts.Kana)
	assert.False(t, opts.Width)
	assert.Equal(t, DefaultMaxCandidates, opts.MaxCandidates)
}

func TestExpanderRegex(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		opts  Options
		input string
		want  string
	}{
		{"literal", Options{Literal: true}, "a", "(a|а|ａ)"},
		{"literal dot", Options{Literal: true}, "a.e", `(a|а|ａ)\.(e|е)`},
		{"raw regex", Options{}, "a.e", "(a|а|ａ).(e|е)"},
		{"raw regex escape", Options{}, `\d+a`, `\d+(a|а|ａ)`},
		{"quoted member", Options{Literal: true}, "l", `(l|\|)`},
		{"non capturing", Options{Literal: true, NonCapturing: true}, "ea", "(?:e|е)(?:a|а|ａ)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := NewWithTables(latinTables(), tt.opts).Regex(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			_, err = regexp.Compile(got)
			assert.NoError(t, err)
		})
	}
}

func TestExpanderRegexMatches(t *testing.T) {
	t.Parallel()
	expr, err := NewWithTables(latinTables(), Options{Literal: true}).Regex("a.e")
	require.NoError(t, err)
	re := regexp.MustCompile(expr)

	assert.True(t, re.MatchString("xа.еx"))
	assert.True(t, re.MatchString("ａ.e"))
	assert.False(t, re.MatchString("aXe"))
}

func TestExpanderList(t *testing.T) {
	t.Parallel()
	e := NewWithTables(latinTables(), Options{Literal: true})

	got, err := e.List("ae")
	require.NoError(t, err)
	assert.Equal(t, []string{"ae", "aе", "аe", "ае", "ａe", "ａе"}, got)

	got, err = e.List("")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = e.List("a.")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.", "а.", "ａ."}, got)
}

func TestExpanderLimit(t *testing.T) {
	t.Parallel()

	e := NewWithTables(latinTables(), Options{Literal: true, MaxCandidates: 26})
	n, err := e.Count("aaa")
	require.NoError(t, err)
	assert.Equal(t, uint64(27), n)

	_, err = e.List("aaa")
	assert.ErrorIs(t, err, pattern.ErrResourceExhausted)

	// the regex is still available when the list is not
	_, err = e.Regex("aaa")
	assert.NoError(t, err)

	unbounded := NewWithTables(latinTables(), Options{Literal: true, MaxCandidates: -1})
	list, err := unbounded.List("aaa")
	require.NoError(t, err)
	assert.Len(t, list, 27)
}

func TestExpanderCandidates(t *testing.T) {
	t.Parallel()
	e := NewWithTables(latinTables(), Options{Literal: true})

	// List prints the escaped backslash, Candidates keeps the text itself
	listed, err := e.List(`C:\dir`)
	require.NoError(t, err)
	assert.Equal(t, []string{`C:\\dir`}, listed)

	got, err := e.Candidates(`C:\dir`)
	require.NoError(t, err)
	assert.Equal(t, []string{`C:\dir`}, got)

	re, err := e.Regex(`C:\dir`)
	require.NoError(t, err)
	line := `path C:\dir here`
	assert.True(t, regexp.MustCompile(re).MatchString(line))
	assert.Contains(t, line, got[0])

	got, err = e.Candidates("a.e")
	require.NoError(t, err)
	assert.Len(t, got, 6)
	assert.Contains(t, got, "а.е")
}

func TestExpanderRawRegexCompiles(t *testing.T) {
	t.Parallel()
	e, err := New(Options{Kana: true, Width: true})
	require.NoError(t, err)

	tests := []struct {
		input string
		match string
	}{
		{"fo+(ba)r", "fooobar"},
		{"[a-z]{2,3}x", "abx"},
		{"(?i)paypal", "PAYPAL"},
		{`\p{Greek}+`, "αβ"},
		{"^a|b$", "b"},
		{"(?P<year>[0-9]{4})-2", "2024-2"},
		{`\x{41}*?`, "A"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			expr, err := e.Regex(tt.input)
			require.NoError(t, err)
			re, err := regexp.Compile(expr)
			require.NoError(t, err, expr)
			assert.True(t, re.MatchString(tt.match), expr)
		})
	}
}

func TestExpanderErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		opts  Options
		input string
		want  error
	}{
		{"invalid utf8", Options{Literal: true}, "a\xffb", pattern.ErrInvalidText},
		{"trailing escape", Options{}, `ab\`, pattern.ErrMalformedInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := NewWithTables(latinTables(), tt.opts)

			_, err := e.Regex(tt.input)
			assert.ErrorIs(t, err, tt.want)
			_, err = e.List(tt.input)
			assert.ErrorIs(t, err, tt.want)
			_, err = e.Count(tt.input)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestExpanderTrailingBackslashLiteral(t *testing.T) {
	t.Parallel()
	e := NewWithTables(latinTables(), Options{Literal: true})

	got, err := e.Regex(`a\`)
	require.NoError(t, err)
	assert.Equal(t, `(a|а|ａ)\\`, got)
	assert.True(t, regexp.MustCompile(got).MatchString(`а\`))
}

func TestExpanderNormalize(t *testing.T) {
	t.Parallel()
	decomposed := "\u306F\u3099"

	raw := NewWithTables(latinTables(), Options{Literal: true})
	got, err := raw.List(decomposed)
	require.NoError(t, err)
	assert.Equal(t, []string{decomposed}, got)

	nfc := NewWithTables(latinTables(), Options{Literal: true, Normalize: true})
	got, err = nfc.List(decomposed)
	require.NoError(t, err)
	assert.Equal(t, []string{"\u3070"}, got)
}

func TestExpanderDefaultTables(t *testing.T) {
	t.Parallel()

	e, err := New(Options{Literal: true})
	require.NoError(t, err)
	list, err := e.List("女")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"\u5973", "\u2F25", "\uF981"}, list)

	e, err = New(Options{Literal: true, Kana: true, Width: true})
	require.NoError(t, err)
	list, err = e.List("ｶﾀｶﾅ")
	require.NoError(t, err)
	assert.Contains(t, list, "ｶﾀｶﾅ")
	assert.Contains(t, list, "カタカナ")
	assert.Contains(t, list, "かたかな")
	assert.Contains(t, list, "力夕力ナ")

	e, err = New(Options{Literal: true, Width: true, Grapheme: true})
	require.NoError(t, err)
	p, err := e.Pattern("ﾊﾟ")
	require.NoError(t, err)
	require.Len(t, p, 1)
	assert.Contains(t, p[0].Alternatives(), "パ")
}
