package pattern

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// Segmentation selects what counts as one character when tokenizing.
type Segmentation int

const (
	// SegmentCodepoint emits one unit per Unicode codepoint.
	SegmentCodepoint Segmentation = iota
	// SegmentGrapheme emits one unit per extended grapheme cluster, so a
	// base character and its combining marks stay in the same slot.
	SegmentGrapheme
)

const escapeMarker = `\`

// Lexer splits a pattern into position units.
type Lexer struct {
	input    string // the entire input to tokenize
	position int    // current reading position in input
	mode     Segmentation
	state    int // grapheme segmentation state, -1 before the first cluster
	units    Pattern
}

// NewLexer returns a new Lexer with the given input and initializes state.
func NewLexer(input string, mode Segmentation) *Lexer {
	return &Lexer{
		input:    input,
		position: 0,
		mode:     mode,
		state:    -1,
		units:    make(Pattern, 0, utf8.RuneCountInString(input)),
	}
}

// Tokenize is shorthand for NewLexer(input, mode).Tokenize().
func Tokenize(input string, mode Segmentation) (Pattern, error) {
	return NewLexer(input, mode).Tokenize()
}

// Tokenize processes the entire input and produces the list of units.
// A backslash escapes the character after it and emits no unit of its own.
func (l *Lexer) Tokenize() (Pattern, error) {
	if !utf8.ValidString(l.input) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidText, l.input)
	}

	for l.position < len(l.input) {
		start := l.position
		seg := l.next()

		if !strings.HasPrefix(seg, escapeMarker) {
			l.units = append(l.units, NewPlainUnit(seg, start))
			continue
		}

		// A grapheme cluster may carry combining marks on the backslash
		// itself; those marks are what gets escaped.
		escaped := seg[len(escapeMarker):]
		if escaped == "" {
			if l.position >= len(l.input) {
				return nil, fmt.Errorf("%w: trailing escape marker at offset %d", ErrMalformedInput, start)
			}
			escaped = l.next()
		}
		l.units = append(l.units, &EscapedUnit{Char: escaped, pos: start})
	}

	return l.units, nil
}

// next consumes one character (codepoint or grapheme cluster) and returns it.
func (l *Lexer) next() string {
	rest := l.input[l.position:]
	if l.mode == SegmentGrapheme {
		cluster, _, _, state := uniseg.FirstGraphemeClusterInString(rest, l.state)
		l.state = state
		l.position += len(cluster)
		return cluster
	}
	_, size := utf8.DecodeRuneInString(rest)
	l.position += size
	return rest[:size]
}
