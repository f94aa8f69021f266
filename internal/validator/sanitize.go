package validator

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxInputSize bounds free text when no limit is configured.
const DefaultMaxInputSize = 4096

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// Sanitize rejects oversized or malformed text and drops control
// characters other than newline, tab and carriage return.
// A non-positive limit selects DefaultMaxInputSize.
func Sanitize(input string, limit int) (string, error) {
	if limit <= 0 {
		limit = DefaultMaxInputSize
	}
	if n := len(input); n > limit {
		return "", fmt.Errorf("%w: %d bytes, limit %d", ErrInputTooLarge, n, limit)
	}
	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}
	if strings.IndexFunc(input, droppable) < 0 {
		return input, nil
	}
	return strings.Map(func(r rune) rune {
		if droppable(r) {
			return -1
		}
		return r
	}, input), nil
}

// droppable matches ESC, NUL, BEL and the other control runes that
// corrupt terminals and logs.
func droppable(r rune) bool {
	switch r {
	case '\n', '\t', '\r':
		return false
	}
	return unicode.IsControl(r)
}
