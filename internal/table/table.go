package table

import "slices"

// Class is a set of strings that are interchangeable when matching.
// Membership is exact string equality.
type Class []string

// Contains reports whether s is a member of the class.
func (c Class) Contains(s string) bool {
	return slices.Contains(c, s)
}

// Table is an ordered collection of equivalence classes. A Table is never
// modified after construction and can be shared between goroutines.
type Table struct {
	name    string
	classes []Class
	// index maps every member to the first class that contains it, so
	// lookups agree with a front-to-back scan of classes.
	index map[string]int
}

// New builds a table from the given classes. The classes slice is owned by
// the table afterwards.
func New(name string, classes []Class) *Table {
	t := &Table{
		name:    name,
		classes: classes,
		index:   make(map[string]int),
	}
	for i, class := range classes {
		for _, member := range class {
			if _, exists := t.index[member]; !exists {
				t.index[member] = i
			}
		}
	}
	return t
}

// Name returns the table name ("homoglyph", "kana" or "width" for the
// bundled tables).
func (t *Table) Name() string { return t.name }

// Len returns the number of classes in the table.
func (t *Table) Len() int { return len(t.classes) }

// Classes returns the classes in table order. Callers must not modify the
// returned slice.
func (t *Table) Classes() []Class { return t.classes }

// Lookup returns the first class containing s.
func (t *Table) Lookup(s string) (Class, bool) {
	i, ok := t.index[s]
	if !ok {
		return nil, false
	}
	return t.classes[i], true
}

// Set groups the three tables used during expansion.
type Set struct {
	Version   string
	Homoglyph *Table
	Kana      *Table
	Width     *Table
}

// Asset returns the serializable form of the set.
func (s *Set) Asset() Asset {
	return Asset{
		Version:   s.Version,
		Homoglyph: s.Homoglyph.Classes(),
		Kana:      s.Kana.Classes(),
		Width:     s.Width.Classes(),
	}
}
