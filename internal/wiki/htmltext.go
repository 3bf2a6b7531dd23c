package wiki

import (
	"strings"

	"golang.org/x/net/html"
)

// ExtractArticleText converts rendered MediaWiki HTML into plain text.
// Navigation chrome, tables, headings, citation markers and reference
// lists are dropped; paragraph boundaries become newlines so the chunker
// sees the same paragraph structure as the page.
func ExtractArticleText(htmlContent string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}

	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "table",
				"h1", "h2", "h3", "h4", "h5", "h6", "figure":
				return
			case "sup":
				// Citation markers like [1]
				if hasClass(n, "reference") {
					return
				}
			case "span":
				if hasClass(n, "mw-editsection") {
					return
				}
			case "div":
				if hasClass(n, "reflist") || hasClass(n, "navbox") || hasClass(n, "infobox") {
					return
				}
			case "ol":
				if hasClass(n, "references") {
					return
				}
			}
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		// Paragraph and list-item boundaries become line breaks.
		if n.Type == html.ElementNode && (n.Data == "p" || n.Data == "li") {
			buf.WriteString("\n")
		}
	}
	walk(doc)

	return strings.TrimSpace(buf.String()), nil
}

// hasClass checks if a node carries the given CSS class
func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(attr.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}
