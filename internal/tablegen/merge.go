package tablegen

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gnoswap-labs/hmgrep/internal/table"
)

// Merge unions classes that share a member. Classes of base keep their
// position; classes of extra that overlap nothing are appended in order.
// Duplicate members are removed, first occurrence wins.
func Merge(base, extra []table.Class) []table.Class {
	var merged []table.Class
	owner := make(map[string]int) // member -> index in merged

	for _, class := range append(append([]table.Class{}, base...), extra...) {
		target := -1
		for _, member := range class {
			if i, ok := owner[member]; ok {
				target = i
				break
			}
		}
		if target < 0 {
			target = len(merged)
			merged = append(merged, nil)
		}

		for _, member := range class {
			i, ok := owner[member]
			switch {
			case !ok:
				owner[member] = target
				merged[target] = append(merged[target], member)
			case i != target && merged[i] != nil:
				// the class bridges two existing classes
				for _, moved := range merged[i] {
					owner[moved] = target
				}
				merged[target] = append(merged[target], merged[i]...)
				merged[i] = nil
			}
		}
	}

	out := merged[:0]
	for _, class := range merged {
		if len(class) > 1 {
			out = append(out, class)
		}
	}
	return out
}

// ParseCharCodes reads classes written one per line as comma separated
// hexadecimal codepoints. A space inside a field joins several codepoints
// into one member ("30CF 309A" is a decomposed パ).
// Lines starting with '#' and blank lines are skipped.
func ParseCharCodes(r io.Reader) ([]table.Class, error) {
	var classes []table.Class
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "\uFEFF"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var class table.Class
		for _, field := range strings.Split(line, ",") {
			member, err := decodeCodepoints(field)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			class = append(class, member)
		}
		classes = append(classes, class)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return classes, nil
}

func decodeCodepoints(field string) (string, error) {
	var b strings.Builder
	for _, code := range strings.Fields(field) {
		v, err := strconv.ParseUint(strings.TrimPrefix(strings.ToUpper(code), "U+"), 16, 32)
		if err != nil {
			return "", fmt.Errorf("invalid codepoint %q: %w", code, err)
		}
		b.WriteRune(rune(v))
	}
	if b.Len() == 0 {
		return "", errors.New("empty field")
	}
	return b.String(), nil
}

// Build generates a complete asset: the homoglyph classes scanned from
// ranges merged into base's homoglyph classes, and freshly generated kana
// and width tables.
func Build(base table.Asset, version string, ranges ...Range) table.Asset {
	return table.Asset{
		Version:   version,
		Homoglyph: Merge(base.Homoglyph, Homoglyph(ranges...)),
		Kana:      Kana(),
		Width:     Width(),
	}
}
