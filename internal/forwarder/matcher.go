package forwarder

import (
	"regexp"
	"strings"

	"github.com/nextlevelbuilder/beacon/internal/store"
)

// nonWord normalizes exact-mode tokens: every non-word character becomes
// a space before the run is collapsed and split.
var nonWord = regexp.MustCompile(`[^\w]+`)

// Match reports the first of f's ordered keywords that matches content
// under f's match mode, or ("", false) if none do. The first matching
// keyword always wins.
func Match(f *store.Forwarder, content string) (keyword string, ok bool) {
	body := strings.ToLower(content)

	switch f.MatchType {
	case store.MatchExact:
		bodyTokens := tokenize(body)
		for _, kw := range f.Keywords {
			kwTokens := tokenize(strings.ToLower(kw))
			if containsSubsequence(bodyTokens, kwTokens) {
				return kw, true
			}
		}
	default: // store.MatchContains
		for _, kw := range f.Keywords {
			lower := strings.ToLower(kw)
			if lower != "" && strings.Contains(body, lower) {
				return kw, true
			}
		}
	}
	return "", false
}

// tokenize replaces runs of non-word characters with a single space and
// splits on whitespace.
func tokenize(s string) []string {
	normalized := nonWord.ReplaceAllString(s, " ")
	return strings.Fields(normalized)
}

// containsSubsequence reports whether needle appears as a contiguous
// run within haystack. An empty needle never matches.
func containsSubsequence(haystack, needle []string) bool {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return false
	}
	for start := 0; start+len(needle) <= len(haystack); start++ {
		match := true
		for i, tok := range needle {
			if haystack[start+i] != tok {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
