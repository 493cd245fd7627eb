package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Text returns the text of every node in sel, each text node trimmed and joined by a single space.
func Text(sel *goquery.Selection) string {
	var parts []string
	for _, n := range sel.Nodes {
		collectText(n, &parts)
	}
	return strings.Join(parts, " ")
}

func collectText(n *html.Node, parts *[]string) {
	switch n.Type {
	case html.TextNode:
		if t := strings.Join(strings.Fields(n.Data), " "); t != "" {
			*parts = append(*parts, t)
		}
		return
	case html.ElementNode:
		if n.Data == "script" || n.Data == "style" {
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}

// FirstText returns the text of the first element under card matching selector
func FirstText(card *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	return Text(card.Find(selector).First())
}

// Truncate cuts s to max runes and appends "..." when something was cut
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

// Description returns the first description-like element's text, else the title
func Description(card *goquery.Selection, selector, title string) string {
	if desc := FirstText(card, selector); desc != "" {
		return desc
	}
	return title
}
