package strings

import (
	"strings"
)

// DefaultTextMaxLen bounds free-text fields (issue descriptions, comments)
// in summarized tool output.
const DefaultTextMaxLen = 280

// minTruncateLen leaves room for one rune plus the ellipsis.
const minTruncateLen = 4

// Truncate collapses whitespace to single spaces and cuts s to at most maxLen
// runes, marking a cut with "...".
func Truncate(s string, maxLen int) string {
	if maxLen < minTruncateLen {
		maxLen = minTruncateLen
	}

	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}

// FirstNonEmpty returns the first argument that is not blank.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
