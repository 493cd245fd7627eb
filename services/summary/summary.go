// Package summary renders scrape results as a short chat message.
package summary

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"kzmarket/listingworker/internal/adapter"
	"kzmarket/listingworker/internal/extract"
)

const (
	// PreviewSize is the number of records rendered in full
	PreviewSize = 5
	titleRunes  = 50
)

var printer = message.NewPrinter(language.English)

// FormatPrice renders 1200000 as "1 200 000 ₸"
func FormatPrice(price int) string {
	return strings.ReplaceAll(printer.Sprintf("%d", price), ",", " ") + " ₸"
}

// Format renders the first PreviewSize records followed by a notice for the rest.
// appURL, when set, is offered as the richer view of the full result.
func Format(records []adapter.ListingRecord, appURL string) string {
	if len(records) == 0 {
		return "❌ Объявления не найдены"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "✅ Найдено объявлений: %d\n\n", len(records))

	for i, r := range records {
		if i == PreviewSize {
			break
		}
		fmt.Fprintf(&b, "%d. %s...\n", i+1, cut(r.Title, titleRunes))
		fmt.Fprintf(&b, "💰 %s\n", FormatPrice(r.Price))
		fmt.Fprintf(&b, "📍 %s\n", r.Location)
		if r.District != "" && r.District != extract.NotSpecified {
			fmt.Fprintf(&b, "🏘️ %s\n", r.District)
		}
		fmt.Fprintf(&b, "Открыть: %s\n\n", r.URL)
	}

	if len(records) > PreviewSize {
		fmt.Fprintf(&b, "... и еще %d объявлений\n", len(records)-PreviewSize)
	}

	if appURL != "" {
		fmt.Fprintf(&b, "\n💡 Все объявления с графиками и картой: %s\n", appURL)
	}

	return b.String()
}

func cut(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		return string(runes[:n])
	}
	return s
}
