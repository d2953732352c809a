package http

import "strings"

// The backing store indexes fields up to 1500 bytes. Keeping 50 bytes
// of margin and assuming up to 2 bytes per character leaves room for
// 700 characters per free-text field.
const maxFieldLength = 700

// clean trims surrounding whitespace and truncates to maxFieldLength
// characters. Oversized input is cut, not rejected. Idempotent.
func clean(field string) string {
	field = strings.TrimSpace(field)
	if runes := []rune(field); len(runes) > maxFieldLength {
		field = strings.TrimSpace(string(runes[:maxFieldLength]))
	}
	return field
}
