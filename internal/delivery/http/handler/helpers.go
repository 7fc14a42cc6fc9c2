package handler

import (
	"unicode"
	"unicode/utf8"
)

// capitalize turns a sentinel error text into a client-facing message.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
