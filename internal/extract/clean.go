// clean.go strips markup, shortcodes and bracket tokens from stored text.

package extract

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// strict drops every element and the bodies of script and style.
	strict = bluemonday.StrictPolicy().AddSpaceWhenStrippingTag(true)

	shortcodeRe = regexp.MustCompile(`\[/?[A-Za-z][\w-]*(?:\s[^\]]*)?/?\]`)
	bracketRe   = regexp.MustCompile(`\[.*?\]`)
)

// StripTags removes all markup and decodes entities.
func StripTags(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// StripShortcodes removes shortcode tags such as [et_pb_text admin_label="x"]
// and [/et_pb_text] while keeping the text between them.
func StripShortcodes(s string) string {
	return shortcodeRe.ReplaceAllString(s, "")
}

// StripBrackets removes any remaining [ ... ] tokens on a single line.
func StripBrackets(s string) string {
	return bracketRe.ReplaceAllString(s, "")
}

// CollapseSpace folds whitespace runs, including non-breaking spaces, into
// single spaces and trims.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Clean prepares a builder string for indexing.
func Clean(s string) string {
	s = StripTags(s)
	s = StripShortcodes(s)
	s = StripBrackets(s)
	return CollapseSpace(s)
}

// CleanShortcodeMarkup prepares a shortcode-laden body for indexing.
func CleanShortcodeMarkup(s string) string {
	s = StripShortcodes(s)
	s = StripBrackets(s)
	s = StripTags(s)
	return CollapseSpace(s)
}
