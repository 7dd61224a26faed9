package internal

import "strings"

// CollapseSpace replaces every run of whitespace with a single space and
// trims the ends. Page titles routinely come back with embedded newlines and
// indentation.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
