package pattern

import (
	"fmt"
	"strconv"
	"strings"
)

// UnitType distinguishes the two kinds of position units.
type UnitType int

const (
	UnitPlain   UnitType = iota // character subject to expansion
	UnitEscaped                 // character that followed a backslash
)

func (t UnitType) String() string {
	switch t {
	case UnitPlain:
		return "plain"
	case UnitEscaped:
		return "escaped"
	default:
		return fmt.Sprintf("UnitType(%d)", int(t))
	}
}

// Unit is one character slot of a pattern.
type Unit interface {
	Type() UnitType          // returns the unit kind
	Alternatives() []string  // members for this slot, in Set.Members order
	Position() int           // byte offset of the slot in the tokenized text
	String() string          // debugging or printing purpose
}

var (
	_ Unit = (*PlainUnit)(nil)
	_ Unit = (*EscapedUnit)(nil)
)

// PlainUnit is a character that may be replaced by any of its confusable
// alternatives.
type PlainUnit struct {
	Source string // the character as written in the pattern
	Alts   Set    // always contains Source before and after resolution
	// Verbatim marks regular expression syntax, which is never expanded.
	Verbatim bool
	pos      int
}

// NewPlainUnit returns a unit whose only alternative is source.
func NewPlainUnit(source string, pos int) *PlainUnit {
	return &PlainUnit{
		Source: source,
		Alts:   NewSet(source),
		pos:    pos,
	}
}

func (u *PlainUnit) Type() UnitType         { return UnitPlain }
func (u *PlainUnit) Alternatives() []string { return u.Alts.Members() }
func (u *PlainUnit) Position() int          { return u.pos }

func (u *PlainUnit) String() string {
	quoted := make([]string, 0, u.Alts.Len())
	for _, m := range u.Alts.Members() {
		quoted = append(quoted, strconv.Quote(m))
	}
	return fmt.Sprintf("PlainUnit(%s)", strings.Join(quoted, "|"))
}

// EscapedUnit is a character that followed a backslash. It is never
// expanded and always renders in escaped form.
type EscapedUnit struct {
	Char string
	pos  int
}

func (u *EscapedUnit) Type() UnitType         { return UnitEscaped }
func (u *EscapedUnit) Alternatives() []string { return []string{u.Char} }
func (u *EscapedUnit) Position() int          { return u.pos }

func (u *EscapedUnit) String() string {
	return fmt.Sprintf("EscapedUnit(%s)", strconv.Quote(u.Char))
}

// Pattern is the ordered sequence of units for one input string.
type Pattern []Unit

func (p Pattern) String() string {
	result := fmt.Sprintf("Pattern(%d units):\n", len(p))
	for i, u := range p {
		result += fmt.Sprintf("  %d: %s\n", i, u.String())
	}
	return strings.TrimRight(result, "\n")
}

// Sizes returns the alternative count of every unit, in order.
func (p Pattern) Sizes() []int {
	sizes := make([]int, len(p))
	for i, u := range p {
		if plain, ok := u.(*PlainUnit); ok {
			sizes[i] = plain.Alts.Len()
		} else {
			sizes[i] = 1
		}
	}
	return sizes
}
