package pattern

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// RegexOptions controls regex assembly.
type RegexOptions struct {
	// NonCapturing opens alternation groups with "(?:" instead of "(".
	NonCapturing bool
}

// Regex renders p as a single regular expression. Every unit with more than
// one alternative becomes a parenthesized alternation group; all others are
// emitted as literals. The output is linear in the size of p.
func Regex(p Pattern, opts RegexOptions) string {
	open := "("
	if opts.NonCapturing {
		open = "(?:"
	}

	var b strings.Builder
	for _, u := range p {
		switch u := u.(type) {
		case *EscapedUnit:
			b.WriteString(escapeRegex(u.Char))
		case *PlainUnit:
			alts := regexAlternatives(u)
			if len(alts) == 1 {
				b.WriteString(alts[0])
				continue
			}
			b.WriteString(open)
			b.WriteString(strings.Join(alts, "|"))
			b.WriteString(")")
		}
	}
	return b.String()
}

// regexAlternatives renders the members of a plain unit. The unit's own
// source stays raw so that regex syntax written by the user keeps its
// meaning; table-provided members are quoted. Longer members come first so
// that leftmost-first matching prefers them.
func regexAlternatives(u *PlainUnit) []string {
	members := u.Alts.Members()
	sort.SliceStable(members, func(i, j int) bool {
		return utf8.RuneCountInString(members[i]) > utf8.RuneCountInString(members[j])
	})
	out := make([]string, len(members))
	for i, m := range members {
		if m == u.Source {
			out[i] = m
		} else {
			out[i] = regexp.QuoteMeta(m)
		}
	}
	return out
}

// List enumerates every concrete string p represents. It fails with
// ErrResourceExhausted, before allocating, when the number of candidates
// exceeds limit (0 disables the limit).
func List(p Pattern, limit uint64) ([]string, error) {
	return list(p, limit, escapeLiteral)
}

// ListRaw is like List but escaped units contribute their character as is,
// so every candidate is the exact text to look for.
func ListRaw(p Pattern, limit uint64) ([]string, error) {
	return list(p, limit, func(s string) string { return s })
}

func list(p Pattern, limit uint64, escaped func(string) string) ([]string, error) {
	if _, err := checkLimit(p.Sizes(), limit); err != nil {
		return nil, err
	}

	lists := make([][]string, len(p))
	for i, u := range p {
		switch u := u.(type) {
		case *EscapedUnit:
			lists[i] = []string{escaped(u.Char)}
		case *PlainUnit:
			lists[i] = u.Alts.Members()
		}
	}
	return product(lists, limit)
}

// Count returns the number of strings List would produce. ok is false when
// the number does not fit in a uint64.
func Count(p Pattern) (n uint64, ok bool) {
	return productCount(p.Sizes())
}

var regexControlEscapes = map[rune]string{
	'\a': `\a`,
	'\f': `\f`,
	'\t': `\t`,
	'\n': `\n`,
	'\r': `\r`,
	'\v': `\v`,
}

// escapeRegex renders an escaped character for a regular expression.
// ASCII characters keep their backslash (so `\.` stays a literal dot and
// `\d` stays a class), everything else becomes a hex escape.
func escapeRegex(s string) string {
	var b strings.Builder
	for _, r := range s {
		if esc, ok := regexControlEscapes[r]; ok {
			b.WriteString(esc)
			continue
		}
		if r < utf8.RuneSelf && unicode.IsPrint(r) {
			b.WriteByte('\\')
			b.WriteRune(r)
			continue
		}
		fmt.Fprintf(&b, `\x{%X}`, r)
	}
	return b.String()
}

// escapeLiteral renders an escaped character for the literal list. Printable
// characters are emitted as-is; backslash and non-printable characters use
// their escape sequence.
func escapeLiteral(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case unicode.IsPrint(r):
			b.WriteRune(r)
		case regexControlEscapes[r] != "":
			b.WriteString(regexControlEscapes[r])
		default:
			fmt.Fprintf(&b, `\u{%x}`, r)
		}
	}
	return b.String()
}
