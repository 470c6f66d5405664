// Package hmgrep expands search text into patterns that also match its
// homoglyph, kana and width variants.
package hmgrep

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/gnoswap-labs/hmgrep/internal/pattern"
	"github.com/gnoswap-labs/hmgrep/internal/table"
)

// DefaultMaxCandidates caps literal expansion when Options.MaxCandidates is
// left at zero.
const DefaultMaxCandidates = 100_000

// Options configures an Expander.
type Options struct {
	// Literal escapes regex metacharacters in the input before tokenizing,
	// so the pattern matches its own text. When false the input is treated
	// as a regular expression fragment.
	Literal bool
	// Kana enables hiragana/katakana equivalence.
	Kana bool
	// Width enables full-width/half-width equivalence.
	Width bool
	// Grapheme tokenizes by extended grapheme cluster instead of codepoint.
	Grapheme bool
	// Normalize applies NFC to the input first.
	Normalize bool
	// NonCapturing renders alternation groups as "(?:...)".
	NonCapturing bool
	// MaxCandidates bounds List. Zero means DefaultMaxCandidates, a negative
	// value disables the bound.
	MaxCandidates int
}

// DefaultOptions returns the options used by the command line tool when no
// configuration file is present.
func DefaultOptions() Options {
	return Options{
		Literal:       true,
		MaxCandidates: DefaultMaxCandidates,
	}
}

func (o Options) limit() uint64 {
	switch {
	case o.MaxCandidates < 0:
		return 0
	case o.MaxCandidates == 0:
		return DefaultMaxCandidates
	default:
		return uint64(o.MaxCandidates)
	}
}

func (o Options) segmentation() pattern.Segmentation {
	if o.Grapheme {
		return pattern.SegmentGrapheme
	}
	return pattern.SegmentCodepoint
}

// Expander turns search text into homoglyph-aware patterns. It holds no
// mutable state and is safe for concurrent use.
type Expander struct {
	tables *table.Set
	opts   Options
}

// New returns an Expander backed by the bundled tables.
func New(opts Options) (*Expander, error) {
	tables, err := table.Default()
	if err != nil {
		return nil, err
	}
	return NewWithTables(tables, opts), nil
}

// NewWithTables returns an Expander backed by tables.
func NewWithTables(tables *table.Set, opts Options) *Expander {
	return &Expander{tables: tables, opts: opts}
}

// Options returns the options the expander was built with.
func (e *Expander) Options() Options { return e.opts }

// Tables returns the equivalence tables in use.
func (e *Expander) Tables() *table.Set { return e.tables }

// Pattern tokenizes text and resolves every plain unit against the tables.
// Without Literal, regular expression syntax in text is kept as written.
func (e *Expander) Pattern(text string) (pattern.Pattern, error) {
	if !utf8.ValidString(text) {
		return nil, fmt.Errorf("%w: %q", pattern.ErrInvalidText, text)
	}
	if e.opts.Normalize {
		text = norm.NFC.String(text)
	}
	if e.opts.Literal {
		text = regexp.QuoteMeta(text)
	}

	p, err := pattern.Tokenize(text, e.opts.segmentation())
	if err != nil {
		return nil, err
	}
	if !e.opts.Literal {
		pattern.MarkSyntax(p)
	}

	resolver := pattern.NewResolver(e.tables, e.opts.Kana, e.opts.Width).WithLimit(e.opts.limit())
	if err := resolver.Resolve(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Regex expands text into a single alternation regex.
func (e *Expander) Regex(text string) (string, error) {
	p, err := e.Pattern(text)
	if err != nil {
		return "", err
	}
	return pattern.Regex(p, pattern.RegexOptions{NonCapturing: e.opts.NonCapturing}), nil
}

// List expands text into every concrete candidate string, failing with
// pattern.ErrResourceExhausted when there are more than the configured
// maximum.
func (e *Expander) List(text string) ([]string, error) {
	p, err := e.Pattern(text)
	if err != nil {
		return nil, err
	}
	return pattern.List(p, e.opts.limit())
}

// Candidates is like List but returns the exact text of every candidate,
// without the escape sequences List uses to print escaped characters. It is
// meant for literal matchers.
func (e *Expander) Candidates(text string) ([]string, error) {
	p, err := e.Pattern(text)
	if err != nil {
		return nil, err
	}
	return pattern.ListRaw(p, e.opts.limit())
}

// Count returns the number of candidates List would produce for text
// without enumerating them.
func (e *Expander) Count(text string) (uint64, error) {
	p, err := e.Pattern(text)
	if err != nil {
		return 0, err
	}
	n, ok := pattern.Count(p)
	if !ok {
		return 0, fmt.Errorf("%w: candidate count overflows uint64", pattern.ErrResourceExhausted)
	}
	return n, nil
}
