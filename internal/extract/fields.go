package extract

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CategoryRule maps a category label to the keywords that select it
type CategoryRule struct {
	Label    string
	Keywords []string
}

// Vocabulary is an ordered list of category rules; the first matching rule wins
type Vocabulary []CategoryRule

// DefaultDistrictKeywords are the stems that mark a district segment
var DefaultDistrictKeywords = []string{"район", "р-н", "мкр", "микрорайон"}

var (
	areaPattern  = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*м²`)
	roomsPattern = regexp.MustCompile(`(?i)(\d+)\s*(?:комн|комнат)`)
)

// lower folds text with Russian casing rules. Casers keep state, so one is built per call.
func lower(s string) string {
	return cases.Lower(language.Russian).String(s)
}

// DetectLocation returns the first gazetteer entry contained in text
func DetectLocation(text string, gazetteer []string) string {
	for _, place := range gazetteer {
		if place != "" && strings.Contains(text, place) {
			return place
		}
	}
	return NotSpecified
}

// DetectDistrict returns the first comma-separated segment of text that contains the first
// district keyword present in text.
func DetectDistrict(text string, keywords []string) string {
	lowered := lower(text)
	for _, keyword := range keywords {
		if !strings.Contains(lowered, keyword) {
			continue
		}
		for _, part := range strings.Split(text, ",") {
			if strings.Contains(lower(part), keyword) {
				return strings.TrimSpace(part)
			}
		}
		break
	}
	return NotSpecified
}

// DetermineCategory returns the label of the first rule with a keyword contained in
// the lowercased title and description.
func DetermineCategory(title, desc string, vocab Vocabulary) string {
	text := lower(title + " " + desc)
	for _, rule := range vocab {
		for _, kw := range rule.Keywords {
			if strings.Contains(text, kw) {
				return rule.Label
			}
		}
	}
	return OtherCategory
}

// Area parses "<number> м²" from the first area-like element
func Area(card *goquery.Selection, selector string) (float64, bool) {
	text := FirstText(card, selector)
	if text == "" {
		return 0, false
	}
	m := areaPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	area, err := strconv.ParseFloat(strings.Replace(m[1], ",", ".", 1), 64)
	if err != nil {
		return 0, false
	}
	return area, true
}

// Rooms parses the digits before a room-count word from the first room-like element
func Rooms(card *goquery.Selection, selector string) (int, bool) {
	text := FirstText(card, selector)
	if text == "" {
		return 0, false
	}
	m := roomsPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	rooms, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return rooms, true
}

// ResolveURL resolves the first link in card against pageURL
func ResolveURL(card *goquery.Selection, pageURL string) string {
	href, ok := card.Find("a[href]").First().Attr("href")
	href = strings.TrimSpace(href)
	if !ok || href == "" {
		return NoURL
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return NoURL
	}
	return base.ResolveReference(ref).String()
}
