package utils

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// StrictPolicy strips all markup; used for titles, recipients, and
	// anything rendered in listings.
	StrictPolicy *bluemonday.Policy
	// LetterPolicy allows the small set of formatting letters and forum
	// posts are written with.
	LetterPolicy *bluemonday.Policy
)

func init() {
	StrictPolicy = bluemonday.StrictPolicy()

	LetterPolicy = bluemonday.UGCPolicy()

	// Letters are prose: paragraphs, emphasis, quotes, lists
	LetterPolicy.AllowElements("p", "br", "div", "span")
	LetterPolicy.AllowElements("strong", "em", "u", "s")
	LetterPolicy.AllowElements("ul", "ol", "li")
	LetterPolicy.AllowElements("blockquote")
	LetterPolicy.AllowElements("h1", "h2", "h3")

	LetterPolicy.AllowAttrs("class").Globally()
	LetterPolicy.RequireParseableURLs(true)
	LetterPolicy.AllowURLSchemes("http", "https", "mailto")
}

// SanitizeLetterHTML sanitizes letter or forum body content.
func SanitizeLetterHTML(html string) string {
	return LetterPolicy.Sanitize(html)
}

// StripHTML removes all HTML tags from content
func StripHTML(html string) string {
	return StrictPolicy.Sanitize(html)
}

// NormalizeQuery lowercases and trims a search query.
func NormalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}
