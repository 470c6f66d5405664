// Package tablegen derives the equivalence tables from Unicode data.
package tablegen

import (
	"slices"
	"unicode"
	"unicode/utf8"

	"github.com/ergochat/confusables"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"

	"github.com/gnoswap-labs/hmgrep/internal/table"
)

const (
	hiraganaFirst = 0x3041
	hiraganaLast  = 0x3096
	kanaOffset    = 0x60 // hiragana -> katakana

	combiningVoiced     = 0x3099
	combiningSemiVoiced = 0x309A
	halfwidthVoiced     = 0xFF9E
	halfwidthSemiVoiced = 0xFF9F
)

// Kana pairs every hiragana with its katakana counterpart, including the
// iteration marks.
func Kana() []table.Class {
	classes := make([]table.Class, 0, hiraganaLast-hiraganaFirst+3)
	for r := rune(hiraganaFirst); r <= hiraganaLast; r++ {
		classes = append(classes, table.Class{string(r), string(r + kanaOffset)})
	}
	// ゝ ヽ, ゞ ヾ
	for r := rune(0x309D); r <= 0x309E; r++ {
		classes = append(classes, table.Class{string(r), string(r + kanaOffset)})
	}
	return classes
}

// spacingMarks maps the half-width sound marks to the spacing full-width
// marks. Their decomposition points at the combining marks instead, which
// never appear on their own in text.
var spacingMarks = map[rune]rune{
	halfwidthVoiced:     0x309B, // ゛
	halfwidthSemiVoiced: 0x309C, // ゜
}

// Width pairs the full-width and half-width forms of the Halfwidth and
// Fullwidth Forms block (plus the ideographic space) with their
// counterparts. Voiced katakana are also paired with their two-codepoint
// half-width spelling, e.g. パ and ﾊﾟ.
func Width() []table.Class {
	var pairs []table.Class
	narrowOf := make(map[rune]rune)
	add := func(wide, narrow rune) {
		pairs = append(pairs, table.Class{string(wide), string(narrow)})
		narrowOf[wide] = narrow
	}

	for _, r := range append([]rune{0x3000}, runeRange(0xFF01, 0xFFEE)...) {
		p := width.LookupRune(r)
		switch p.Kind() {
		case width.EastAsianFullwidth:
			if n := p.Narrow(); n != 0 {
				add(r, n)
			}
		case width.EastAsianHalfwidth:
			if w, ok := spacingMarks[r]; ok {
				add(w, r)
				continue
			}
			if w := p.Wide(); w != 0 {
				add(w, r)
			}
		}
	}

	halfMarks := map[rune]rune{
		combiningVoiced:     halfwidthVoiced,
		combiningSemiVoiced: halfwidthSemiVoiced,
	}
	for r := rune(0x30A1); r <= 0x30FA; r++ {
		decomposed := []rune(norm.NFD.String(string(r)))
		if len(decomposed) != 2 {
			continue
		}
		mark, ok := halfMarks[decomposed[1]]
		if !ok {
			continue
		}
		base, ok := narrowOf[decomposed[0]]
		if !ok {
			continue
		}
		pairs = append(pairs, table.Class{string(r), string([]rune{base, mark})})
	}

	return Merge(nil, pairs)
}

// Range is an inclusive span of codepoints.
type Range struct {
	Lo, Hi rune
}

// DefaultRanges are the blocks scanned for homoglyphs when no ranges are
// given.
var DefaultRanges = []Range{
	{0x0021, 0x007E}, // Basic Latin
	{0x00A1, 0x024F}, // Latin-1 Supplement, Latin Extended-A/B
	{0x0370, 0x04FF}, // Greek, Cyrillic
	{0x2000, 0x2BFF}, // punctuation, letterlike symbols, arrows, math
	{0x2E80, 0x2FDF}, // CJK and Kangxi radicals
	{0x3000, 0x30FF}, // CJK symbols, hiragana, katakana
	{0x4E00, 0x9FFF}, // CJK unified ideographs
	{0xF900, 0xFAFF}, // CJK compatibility ideographs
	{0xFF01, 0xFFEE}, // half-width and full-width forms
}

// Homoglyph groups the printable codepoints of ranges by their UTS #39
// skeleton. Codepoints sharing a skeleton form one class; singletons are
// dropped. Classes and their members are sorted by codepoint.
func Homoglyph(ranges ...Range) []table.Class {
	if len(ranges) == 0 {
		ranges = DefaultRanges
	}

	groups := make(map[string][]rune)
	var order []string
	seen := make(map[rune]bool)
	for _, rg := range ranges {
		for r := rg.Lo; r <= rg.Hi; r++ {
			if seen[r] || !candidate(r) {
				continue
			}
			seen[r] = true

			skeleton := confusables.Skeleton(string(r))
			if _, ok := groups[skeleton]; !ok {
				order = append(order, skeleton)
			}
			groups[skeleton] = append(groups[skeleton], r)
		}
	}

	var classes []table.Class
	for _, skeleton := range order {
		members := groups[skeleton]
		if len(members) < 2 {
			continue
		}
		slices.Sort(members)
		class := make(table.Class, len(members))
		for i, r := range members {
			class[i] = string(r)
		}
		classes = append(classes, class)
	}
	slices.SortFunc(classes, func(a, b table.Class) int {
		ra, _ := utf8.DecodeRuneInString(a[0])
		rb, _ := utf8.DecodeRuneInString(b[0])
		return int(ra - rb)
	})
	return classes
}

func candidate(r rune) bool {
	if !unicode.IsPrint(r) || unicode.IsSpace(r) {
		return false
	}
	// a lone combining mark is not something a reader can confuse
	return !unicode.Is(unicode.Mn, r)
}

func runeRange(lo, hi rune) []rune {
	out := make([]rune, 0, hi-lo+1)
	for r := lo; r <= hi; r++ {
		out = append(out, r)
	}
	return out
}
