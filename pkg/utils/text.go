// Package utils provides shared utilities for text and logging.
package utils

import "unicode/utf8"

// Ellipsis is appended by Truncate to shortened strings.
const Ellipsis = "..."

// Truncate shortens s to at most maxLen runes plus Ellipsis, never splitting a rune.
// maxLen <= 0 disables truncation.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	n := 0
	for i := range s {
		if n == maxLen {
			return s[:i] + Ellipsis
		}
		n++
	}
	return s
}
