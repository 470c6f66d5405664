/*
Package pattern expands a search pattern into the confusable variants an
author may have substituted for its characters.

# Overview

Expansion runs in three phases:

 1. Tokenize: the pattern is split into position units, one per codepoint
    (or per grapheme cluster with SegmentGrapheme).
 2. Resolve: every plain unit is replaced with the union of its confusable
    forms taken from the equivalence tables.
 3. Assemble: the units are rendered either as one alternation regex
    (Regex) or as the full list of concrete strings (List).

# Units

A backslash marks the character after it as escaped. Escaped units hold
exactly one character, are never expanded and always render in escaped
form. Every other character becomes a plain unit:

	`a\.b` -> PlainUnit("a"), EscapedUnit("."), PlainUnit("b")

A backslash at the end of the pattern is rejected with ErrMalformedInput.

# Resolution

Tables are applied in a fixed order: kana (when enabled), width (when
enabled), kana again (when enabled), and the homoglyph table, which always
runs. For one table, a single codepoint resolves to the first class that
contains it, or to itself. A multi-codepoint cluster such as "ﾊﾟ" resolves
to the class containing the whole cluster plus the product of its
codepoints resolved one by one.

# Assembly

Regex output groups multi-member units:

	"a" with class {a, а, ａ}  ->  (a|а|ａ)

List output enumerates the cartesian product with the last position
varying fastest. Its size is the product of the unit sizes, so List checks
that number against a limit before allocating and fails with
ErrResourceExhausted when it is exceeded. Regex output never grows
combinatorially.
*/
package pattern
