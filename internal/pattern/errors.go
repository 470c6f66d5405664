package pattern

import "errors"

var (
	// ErrMalformedInput reports a pattern ending in an unmatched escape marker.
	ErrMalformedInput = errors.New("malformed pattern")
	// ErrInvalidText reports input that is not well-formed UTF-8.
	ErrInvalidText = errors.New("pattern is not valid UTF-8")
	// ErrResourceExhausted reports a literal expansion larger than the
	// configured candidate limit.
	ErrResourceExhausted = errors.New("expansion exceeds candidate limit")
)
