package mail

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// Anchor is a single <a> element extracted from an HTML body.
// The pair of destination and visible text is what the URL-mismatch
// heuristic compares.
type Anchor struct {
	// Href is the link destination from the href attribute.
	Href string

	// Text is the visible anchor text with nested tags removed.
	Text string
}

// StripTags converts an HTML fragment to plain text.
//
// Design decision: We use golang.org/x/net/html rather than regex because
// it correctly handles the malformed HTML that phishing kits produce, and
// script/style contents must not leak into the analyzed text.
func StripTags(htmlText string) string {
	node, err := html.Parse(strings.NewReader(htmlText))
	if err != nil {
		return htmlText
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(node)

	return strings.Join(strings.Fields(sb.String()), " ")
}

// ExtractAnchors returns every <a href> element with its visible text.
// Nested markup inside the anchor is flattened to text.
func ExtractAnchors(htmlText string) []Anchor {
	node, err := html.Parse(strings.NewReader(htmlText))
	if err != nil {
		return nil
	}

	var anchors []Anchor
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			var href string
			for _, attr := range n.Attr {
				if attr.Key == "href" {
					href = attr.Val
					break
				}
			}
			if href != "" {
				anchors = append(anchors, Anchor{
					Href: href,
					Text: anchorText(n),
				})
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(node)

	return anchors
}

// anchorText collects the text content of a node subtree.
func anchorText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}

// Normalize applies NFKC normalization to message text before keyword
// matching. Phishing campaigns pad lure words with fullwidth or otherwise
// compatibility-equivalent characters to dodge naive substring filters;
// NFKC folds those back to their plain forms.
func Normalize(text string) string {
	return norm.NFKC.String(text)
}
