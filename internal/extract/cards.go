package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Cards returns every element matching any of the selectors, in document order.
// The selectors are evaluated as one selector group, so an element is included once
// even when it satisfies several alternatives.
func Cards(doc *goquery.Document, selectors []string) *goquery.Selection {
	group := JoinSelectors(selectors)
	if group == "" {
		return doc.Selection.Slice(0, 0)
	}
	return doc.Find(group)
}

// JoinSelectors builds a CSS selector group out of alternatives
func JoinSelectors(selectors []string) string {
	var parts []string
	for _, s := range selectors {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}
