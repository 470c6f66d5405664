package pattern

import (
	"fmt"
	"unicode/utf8"

	"github.com/gnoswap-labs/hmgrep/internal/table"
)

// Resolver expands plain units with the alternatives found in the
// equivalence tables.
type Resolver struct {
	tables *table.Set
	kana   bool
	width  bool
	limit  uint64 // cap on the alternatives produced for one cluster, 0 = none
}

// NewResolver returns a resolver over tables. kana and width enable the
// optional kana and CJK width passes; the homoglyph pass always runs.
func NewResolver(tables *table.Set, kana, width bool) *Resolver {
	return &Resolver{
		tables: tables,
		kana:   kana,
		width:  width,
	}
}

// WithLimit caps the number of alternatives a single multi-codepoint
// cluster may expand into.
func (r *Resolver) WithLimit(limit uint64) *Resolver {
	r.limit = limit
	return r
}

// Passes returns the tables applied to every plain unit, in order:
// kana, width, kana again (to catch forms exposed by the width pass),
// then homoglyph.
func (r *Resolver) Passes() []*table.Table {
	var passes []*table.Table
	if r.kana {
		passes = append(passes, r.tables.Kana)
	}
	if r.width {
		passes = append(passes, r.tables.Width)
	}
	if r.kana {
		passes = append(passes, r.tables.Kana)
	}
	return append(passes, r.tables.Homoglyph)
}

// Resolve replaces the alternatives of every plain unit of p in place.
// Escaped and verbatim units are left untouched.
func (r *Resolver) Resolve(p Pattern) error {
	passes := r.Passes()
	for _, u := range p {
		plain, ok := u.(*PlainUnit)
		if !ok || plain.Verbatim {
			continue
		}
		for _, t := range passes {
			alts, err := r.apply(t, plain.Alts)
			if err != nil {
				return fmt.Errorf("unit at offset %d: %w", plain.pos, err)
			}
			plain.Alts = alts
		}
	}
	return nil
}

// apply runs one lookup pass over every alternative and unions the results.
func (r *Resolver) apply(t *table.Table, alts Set) (Set, error) {
	next := make(Set, alts.Len())
	for alt := range alts {
		found, err := r.lookup(t, alt)
		if err != nil {
			return nil, err
		}
		for m := range found {
			next.Add(m)
		}
	}
	return next, nil
}

// lookup resolves a single string against t.
//
// A single codepoint resolves to its class, or to itself when no class
// contains it. A longer cluster resolves to the class containing the whole
// cluster (if any) plus the product of its codepoints resolved one by one.
func (r *Resolver) lookup(t *table.Table, s string) (Set, error) {
	if utf8.RuneCountInString(s) <= 1 {
		if class, ok := t.Lookup(s); ok {
			return NewSet(class...), nil
		}
		return NewSet(s), nil
	}

	result := NewSet()
	if class, ok := t.Lookup(s); ok {
		result.Add(class...)
	}

	parts := make([][]string, 0, utf8.RuneCountInString(s))
	for _, c := range s {
		alts, err := r.lookup(t, string(c))
		if err != nil {
			return nil, err
		}
		parts = append(parts, alts.Members())
	}
	combined, err := product(parts, r.limit)
	if err != nil {
		return nil, fmt.Errorf("cluster %q: %w", s, err)
	}
	result.Add(combined...)
	return result, nil
}

// Lookup resolves s against t with no cluster limit. It still fails with
// ErrResourceExhausted when the number of alternatives overflows a uint64.
func Lookup(t *table.Table, s string) (Set, error) {
	return (&Resolver{}).lookup(t, s)
}
