package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// pricePattern matches digit groups separated by space, NBSP or comma, or a plain run of
// digits, each optionally followed by a tenge marker.
var pricePattern = regexp.MustCompile(`(?i)(\d{1,3}(?:[ \x{00A0},]\d{3})+|\d+)\s*(₸|тенге|тг)?`)

// MinBarePrice is the smallest number accepted as a price without a currency marker
const MinBarePrice = 10_000

type priceCandidate struct {
	value       int
	hasCurrency bool
}

// ParsePrice extracts a price from free text.
// Currency-marked numbers win and the largest of them is returned; otherwise the largest
// bare number is returned when it is at least MinBarePrice. 0 means no price.
func ParsePrice(text string) int {
	var candidates []priceCandidate
	for _, m := range pricePattern.FindAllStringSubmatch(text, -1) {
		raw := strings.NewReplacer(" ", "", "\u00a0", "", ",", "").Replace(m[1])
		if !isDigits(raw) {
			continue
		}
		val, err := strconv.Atoi(raw)
		if err != nil {
			continue
		}
		candidates = append(candidates, priceCandidate{value: val, hasCurrency: m[2] != ""})
	}

	best, bestMarked := 0, 0
	for _, c := range candidates {
		if c.hasCurrency {
			bestMarked = max(bestMarked, c.value)
		} else {
			best = max(best, c.value)
		}
	}

	if bestMarked > 0 {
		return bestMarked
	}
	if best >= MinBarePrice {
		return best
	}
	return 0
}

// PriceFromCard parses the price element's text, or the whole card text when there is no
// price element. When that yields nothing, the text of the first fallback element is tried.
func PriceFromCard(card *goquery.Selection, priceSelector, fallbackSelector string) int {
	text := Text(card)
	if priceSelector != "" {
		if el := card.Find(priceSelector).First(); el.Length() > 0 {
			text = Text(el)
		}
	}

	if price := ParsePrice(text); price > 0 {
		return price
	}

	if fallback := FirstText(card, fallbackSelector); fallback != "" {
		return ParsePrice(fallback)
	}
	return 0
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
