package reconcile

import (
	"regexp"
	"strings"
)

var (
	whitespaceRegex  = regexp.MustCompile(`\s+`)
	punctuationRegex = regexp.MustCompile(`[^\p{L}\p{N}_\s\-.]`)
)

// Normalize canonicalizes a free-text team or league name for cross-provider
// comparison: lowercase, "&" spelled out, whitespace collapsed, punctuation
// outside word characters, hyphens and periods stripped. Idempotent.
func Normalize(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, "&", "and")
	s = whitespaceRegex.ReplaceAllString(s, " ")
	s = punctuationRegex.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
