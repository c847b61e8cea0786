// Package strings holds text helpers for messages shown to MCP clients.
package strings

import (
	"strings"
)

const ellipsis = "..."

// minLen leaves room for one character plus the ellipsis.
const minLen = len(ellipsis) + 1

// SingleLine collapses every run of whitespace, newlines included, into a
// single space.
func SingleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate shortens s to at most maxLen runes, ending in "..." when cut.
// maxLen values below 4 are raised to 4.
func Truncate(s string, maxLen int) string {
	if maxLen < minLen {
		maxLen = minLen
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-len(ellipsis)]) + ellipsis
}

// Summarize is SingleLine followed by Truncate.
func Summarize(s string, maxLen int) string {
	return Truncate(SingleLine(s), maxLen)
}
