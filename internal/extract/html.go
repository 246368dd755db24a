package extract

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/ppiankov/greenlens/internal/model"
)

// Elements whose end marks a break between independent pieces of copy
var blockElements = map[string]bool{
	"p": true, "div": true, "li": true, "br": true, "tr": true, "td": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"section": true, "article": true, "header": true, "footer": true, "title": true,
}

// ExtractFromHTML extracts claims from the visible text of a product page
func (e *ClaimExtractor) ExtractFromHTML(htmlContent string) ([]model.Claim, error) {
	text, err := PageText(htmlContent)
	if err != nil {
		return nil, err
	}
	return e.ExtractClaims(text), nil
}

// PageText returns the meta description plus the visible text of an HTML page,
// one block element per line
func PageText(htmlContent string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	var buf strings.Builder
	for _, meta := range findAll(doc, isDescriptionMeta) {
		if content := strings.TrimSpace(attribute(meta, "content")); content != "" {
			buf.WriteString(content)
			buf.WriteString("\n")
		}
	}
	buf.WriteString(visibleText(doc))

	return buf.String(), nil
}

// visibleText extracts text nodes, skipping scripts and styles
func visibleText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "template", "svg":
				return
			}
		}

		if n.Type == html.TextNode {
			text := strings.Join(strings.Fields(n.Data), " ")
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == html.ElementNode && blockElements[n.Data] {
			buf.WriteString("\n")
		}
	}

	walk(n)
	return buf.String()
}

func isDescriptionMeta(n *html.Node) bool {
	if n.Type != html.ElementNode || n.Data != "meta" {
		return false
	}
	name := strings.ToLower(attribute(n, "name"))
	property := strings.ToLower(attribute(n, "property"))
	return name == "description" || property == "og:description"
}

func attribute(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func findAll(n *html.Node, predicate func(*html.Node) bool) []*html.Node {
	var results []*html.Node

	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if predicate(node) {
			results = append(results, node)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return results
}
