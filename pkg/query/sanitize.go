package query

import (
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxSize is 4KB (conservative default)
const DefaultMaxSize = 4096

var (
	ErrQueryTooLarge    = errors.New("query exceeds maximum allowed size")
	ErrInvalidUTF8      = errors.New("query contains invalid UTF-8 sequences")
	ErrControlInLiteral = errors.New("query string literal contains control characters")
)

// Sanitize cleans user input by enforcing a size limit, validating UTF-8,
// and stripping control characters between tokens. Control characters
// inside a quoted string would change what it matches, so they are rejected
// with ErrControlInLiteral. A max of zero or less uses DefaultMaxSize.
func Sanitize(input string, max int) (string, error) {
	if max <= 0 {
		max = DefaultMaxSize
	}

	// 1. Enforce Size Limit
	if len(input) > max {
		// Reject rather than truncate: a truncated query means something else.
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrQueryTooLarge, len(input), max)
	}

	// 2. Validate UTF-8
	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}

	// 3. Strip Control Characters
	// Newline, tab and carriage return are kept; the lexer treats them as
	// whitespace. ESC, NULL, BEL and friends are removed outside string
	// literals.

	// Fast path: if no control chars, return as is.
	clean := true
	for _, r := range input {
		if unicode.IsControl(r) && !isSafeControl(r) {
			clean = false
			break
		}
	}
	if clean {
		return input, nil
	}

	// Slow path: build clean string
	out := make([]rune, 0, len(input))
	quoted, escaped := false, false
	for i, r := range input {
		unsafe := unicode.IsControl(r) && !isSafeControl(r)
		switch {
		case quoted && unsafe:
			return "", fmt.Errorf("%w: %U at offset %d", ErrControlInLiteral, r, i)
		case unsafe:
			continue
		case escaped:
			escaped = false
		case quoted && r == '\\':
			escaped = true
		case r == '"':
			quoted = !quoted
		}
		out = append(out, r)
	}
	return string(out), nil
}

func isSafeControl(r rune) bool {
	return r == '\n' || r == '\t' || r == '\r'
}
