package utils

import (
	"strings"

	"golang.org/x/net/html"
)

const previewLength = 150

// ExtractText walks an HTML fragment and returns its visible text with
// whitespace collapsed. Falls back to the raw input when parsing fails.
func ExtractText(fragment string) string {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return strings.Join(strings.Fields(fragment), " ")
	}

	var builder strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			builder.WriteString(n.Data)
			builder.WriteString(" ")
		}
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.Join(strings.Fields(builder.String()), " ")
}

// CreatePreview returns a short plain-text preview of letter content,
// broken at a word boundary where possible.
func CreatePreview(content string) string {
	text := ExtractText(content)

	if len(text) > previewLength {
		if idx := strings.LastIndex(text[:previewLength], " "); idx > 0 {
			return text[:idx] + "..."
		}
		return text[:previewLength] + "..."
	}
	return text
}
