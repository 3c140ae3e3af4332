package chunking

import "strings"

// CountTokens approximates token count as whitespace-separated fields.
// The same measure is used for chunk budgets and overlap so both stay consistent.
func CountTokens(s string) int {
	return len(strings.Fields(s))
}

// tailTokens returns the last n tokens of s joined by single spaces
func tailTokens(s string, n int) string {
	if n <= 0 {
		return ""
	}
	fields := strings.Fields(s)
	if len(fields) <= n {
		return strings.Join(fields, " ")
	}
	return strings.Join(fields[len(fields)-n:], " ")
}
