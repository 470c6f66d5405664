package pattern

import "sort"

// Set is an unordered collection of unique alternative strings.
type Set map[string]struct{}

// NewSet returns a set holding the given members.
func NewSet(members ...string) Set {
	s := make(Set, len(members))
	s.Add(members...)
	return s
}

func (s Set) Add(members ...string) {
	for _, m := range members {
		s[m] = struct{}{}
	}
}

func (s Set) Has(member string) bool {
	_, ok := s[member]
	return ok
}

func (s Set) Len() int { return len(s) }

// Members returns the members in lexical order.
func (s Set) Members() []string {
	out := make([]string, 0, len(s))
	for m := range s {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// Equal reports whether both sets hold the same members.
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for m := range s {
		if !other.Has(m) {
			return false
		}
	}
	return true
}
