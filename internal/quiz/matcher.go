package quiz

import "strings"

// Matches reports whether a submitted answer equals the expected one.
// Both sides are trimmed and case-folded before the comparison; there is
// no partial credit or fuzzy matching.
func Matches(submitted, expected string) bool {
	return normalize(submitted) == normalize(expected)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
