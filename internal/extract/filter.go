package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Heuristics decide whether a string found under an unrecognised key is
// prose worth indexing. They favour precision: skipping real text is
// acceptable, indexing CSS or config is not.
type Heuristics struct {
	// MinLength is the rune count an unrecognised string must exceed
	// before it is considered at all.
	MinLength int
	// MinAlnumRatio is the minimum share of letters, digits and whitespace.
	MinAlnumRatio float64
	// ShortLength bounds the strings SkipSubstrings apply to.
	ShortLength int
	// SkipSubstrings mark short strings as metadata (case-insensitive).
	SkipSubstrings []string
}

// DefaultHeuristics returns the tuned defaults.
func DefaultHeuristics() Heuristics {
	return Heuristics{
		MinLength:      10,
		MinAlnumRatio:  0.6,
		ShortLength:    50,
		SkipSubstrings: []string{"_id", "_type", "css", "class", "id=", "style="},
	}
}

var (
	urlLikeRe = regexp.MustCompile(`(?i)^(https?://|/\w+/|[a-z]:\\)`)
	wrappedRe = regexp.MustCompile(`(?s)^[{\[\]].+[}\]]$`)
	cssLikeRe = regexp.MustCompile(`[{;}].*[:;]`)
)

// LooksLikeContent reports whether cleaned text reads as prose rather than
// code, a URL or builder metadata.
func (h Heuristics) LooksLikeContent(text string) bool {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return false
	}

	alnum := 0
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			alnum++
		}
	}
	if float64(alnum)/float64(n) < h.MinAlnumRatio {
		return false
	}

	if urlLikeRe.MatchString(text) {
		return false
	}
	if wrappedRe.MatchString(text) || cssLikeRe.MatchString(text) {
		return false
	}

	if n < h.ShortLength {
		lower := strings.ToLower(text)
		for _, p := range h.SkipSubstrings {
			if strings.Contains(lower, strings.ToLower(p)) {
				return false
			}
		}
	}
	return true
}

// candidate reports whether an unrecognised string is long enough to test.
func (h Heuristics) candidate(raw string) bool {
	return utf8.RuneCountInString(raw) > h.MinLength
}
