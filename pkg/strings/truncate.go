// Package strings holds small text helpers shared by the CLI output paths.
package strings

import (
	"strings"
)

// DefaultDescriptionMaxLen is the default maximum length for descriptions in
// formatted output.
const DefaultDescriptionMaxLen = 60

// minTruncateLen leaves room for at least one character plus "...".
const minTruncateLen = 4

// TruncateDescription collapses a string to a single line and truncates it to
// maxLen runes, appending "..." when content was dropped. Operating on runes
// keeps multi-byte characters intact.
func TruncateDescription(s string, maxLen int) string {
	if maxLen < minTruncateLen {
		maxLen = minTruncateLen
	}

	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
