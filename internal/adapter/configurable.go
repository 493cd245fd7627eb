package adapter

import (
	"bytes"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"kzmarket/listingworker/internal/extract"
	"kzmarket/listingworker/logger"
	apperrors "kzmarket/listingworker/pkg/errors"
)

const defaultDescriptionRunes = 200

// ConfigurableAdapter is an adapter driven entirely by a SiteConfig
type ConfigurableAdapter struct {
	config SiteConfig
	now    func() time.Time
	log    *logger.Logger
}

// NewConfigurableAdapter creates a new configurable adapter
func NewConfigurableAdapter(config SiteConfig) *ConfigurableAdapter {
	if config.DescriptionRunes <= 0 {
		config.DescriptionRunes = defaultDescriptionRunes
	}
	if config.DistrictKeywords == nil {
		config.DistrictKeywords = extract.DefaultDistrictKeywords
	}
	return &ConfigurableAdapter{
		config: config,
		now:    time.Now,
		log:    logger.ForAdapter(config.SiteKey),
	}
}

// WithClock replaces the clock used for ScrapedAt
func (a *ConfigurableAdapter) WithClock(now func() time.Time) *ConfigurableAdapter {
	a.now = now
	return a
}

// SiteKey returns the adapter's site key
func (a *ConfigurableAdapter) SiteKey() string {
	return a.config.SiteKey
}

// Marketplace returns the marketplace identifier
func (a *ConfigurableAdapter) Marketplace() string {
	return a.config.Marketplace
}

// Hosts returns the hosts served by the adapter
func (a *ConfigurableAdapter) Hosts() []string {
	return a.config.Hosts
}

// Extract parses the page and assembles one record per card with a resolvable price
func (a *ConfigurableAdapter) Extract(page []byte, pageURL string) ([]ListingRecord, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, apperrors.NewParsing(a.config.Marketplace, "HTML parsing failed", err)
	}

	cards := extract.Cards(doc, a.config.Selectors.Cards)
	if cards.Length() == 0 {
		a.log.Info().Str("url", pageURL).Msg("no listing cards found")
		return []ListingRecord{}, nil
	}

	scrapedAt := a.now()
	records := make([]ListingRecord, 0, cards.Length())
	dropped := 0

	cards.Each(func(_ int, card *goquery.Selection) {
		record, ok := a.assemble(card, pageURL, scrapedAt)
		if !ok {
			dropped++
			return
		}
		records = append(records, record)
	})

	a.log.Debug().
		Str("url", pageURL).
		Int("cards", cards.Length()).
		Int("records", len(records)).
		Int("dropped", dropped).
		Msg("page extracted")

	return records, nil
}

// assemble runs every field extractor over one card. Cards without a price yield no record.
func (a *ConfigurableAdapter) assemble(card *goquery.Selection, pageURL string, scrapedAt time.Time) (ListingRecord, bool) {
	sel := a.config.Selectors

	price := extract.PriceFromCard(card, sel.Price, sel.PriceFallback)
	if price <= 0 {
		return ListingRecord{}, false
	}

	title := extract.FirstText(card, sel.Title)
	if title == "" && a.config.TitleFallbackRunes > 0 {
		title = string(truncateRunes(extract.Text(card), a.config.TitleFallbackRunes))
	}

	locationText := extract.FirstText(card, sel.Location)
	if locationText == "" {
		locationText = extract.Text(card)
	}

	description := extract.Description(card, sel.Description, title)

	record := ListingRecord{
		Marketplace: a.config.Marketplace,
		Category:    extract.DetermineCategory(title, description, a.config.Categories),
		Title:       title,
		Price:       price,
		Description: extract.Truncate(description, a.config.DescriptionRunes),
		Location:    extract.DetectLocation(locationText, a.config.Gazetteer),
		District:    extract.DetectDistrict(locationText, a.config.DistrictKeywords),
		URL:         extract.ResolveURL(card, pageURL),
		ScrapedAt:   scrapedAt,
	}

	if area, ok := extract.Area(card, sel.Area); ok {
		record.Area = &area
	}
	if rooms, ok := extract.Rooms(card, sel.Rooms); ok {
		record.Rooms = &rooms
	}

	return record, true
}

func truncateRunes(s string, n int) []rune {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) > n {
		runes = runes[:n]
	}
	return runes
}
