package pattern

import (
	"regexp"
	"strings"
)

// regexMeta lists the characters RE2 treats as operators outside a class.
const regexMeta = `.+*?()|[]{}^$`

var repeatCount = regexp.MustCompile(`^[0-9]+(,[0-9]*)?$`)

// MarkSyntax flags the plain units of p that belong to regular expression
// syntax so the resolver leaves them as written: operators, bracket
// classes, repetition counts, group flags and the arguments of `\p`, `\x`
// and `\Q...\E`. Use it when the pattern is a regular expression rather
// than quoted text.
func MarkSyntax(p Pattern) {
	for i := 0; i < len(p); i++ {
		switch u := p[i].(type) {
		case *EscapedUnit:
			i = markEscapeArgs(p, i, u.Char)
		case *PlainUnit:
			switch u.Source {
			case "[":
				i = markClass(p, i)
			case "{":
				i = markRepeat(p, i)
			case "(":
				u.Verbatim = true
				if plainIs(p, i+1, "?") {
					i = markUntil(p, i+1, ":", ")", ">")
				}
			default:
				if len(u.Source) == 1 && strings.Contains(regexMeta, u.Source) {
					u.Verbatim = true
				}
			}
		}
	}
}

func plainAt(p Pattern, i int) (*PlainUnit, bool) {
	if i < 0 || i >= len(p) {
		return nil, false
	}
	u, ok := p[i].(*PlainUnit)
	return u, ok
}

func plainIs(p Pattern, i int, s string) bool {
	u, ok := plainAt(p, i)
	return ok && u.Source == s
}

func markRange(p Pattern, from, to int) {
	for i := from; i <= to && i < len(p); i++ {
		if u, ok := plainAt(p, i); ok {
			u.Verbatim = true
		}
	}
}

// markUntil marks units from start up to and including the first plain
// unit equal to one of stops, and returns its index. Without a stop the
// rest of the pattern is marked.
func markUntil(p Pattern, start int, stops ...string) int {
	for i := start; i < len(p); i++ {
		u, ok := plainAt(p, i)
		if !ok {
			continue
		}
		u.Verbatim = true
		for _, stop := range stops {
			if u.Source == stop {
				return i
			}
		}
	}
	return len(p) - 1
}

// markClass marks the bracket class opening at i and returns the index of
// its closing bracket.
func markClass(p Pattern, i int) int {
	j := i + 1
	if plainIs(p, j, "^") {
		j++
	}
	// a leading ] is a member, not the end of the class
	if plainIs(p, j, "]") {
		j++
	}
	for ; j < len(p); j++ {
		switch {
		case plainIs(p, j, "[") && plainIs(p, j+1, ":"):
			// [:alpha:]
			for k := j + 2; k+1 < len(p); k++ {
				if plainIs(p, k, ":") && plainIs(p, k+1, "]") {
					j = k + 1
					break
				}
			}
		case plainIs(p, j, "]"):
			markRange(p, i, j)
			return j
		}
	}
	markRange(p, i, len(p)-1)
	return len(p) - 1
}

// markRepeat marks a {n}, {n,} or {n,m} repetition opening at i. A brace
// that does not start one is a literal and only the brace is marked.
func markRepeat(p Pattern, i int) int {
	p[i].(*PlainUnit).Verbatim = true

	var b strings.Builder
	for j := i + 1; j < len(p); j++ {
		u, ok := plainAt(p, j)
		if !ok {
			return i
		}
		if u.Source == "}" {
			if !repeatCount.MatchString(b.String()) {
				return i
			}
			markRange(p, i, j)
			return j
		}
		b.WriteString(u.Source)
	}
	return i
}

// markEscapeArgs marks the units an escape sequence consumes, such as the
// {Greek} of \p{Greek}, and returns the index of the last one.
func markEscapeArgs(p Pattern, i int, char string) int {
	switch char {
	case "p", "P":
		if plainIs(p, i+1, "{") {
			return markUntil(p, i+1, "}")
		}
		markRange(p, i+1, i+1)
		return min(i+1, len(p)-1)
	case "x":
		if plainIs(p, i+1, "{") {
			return markUntil(p, i+1, "}")
		}
		markRange(p, i+1, i+2)
		return min(i+2, len(p)-1)
	case "Q":
		for j := i + 1; j < len(p); j++ {
			if e, ok := p[j].(*EscapedUnit); ok && e.Char == "E" {
				return j
			}
			markRange(p, j, j)
		}
		return len(p) - 1
	}
	return i
}
