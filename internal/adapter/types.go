package adapter

import (
	"time"

	"kzmarket/listingworker/internal/extract"
)

// ListingRecord is one normalized marketplace listing
type ListingRecord struct {
	Marketplace string    `json:"marketplace"`
	Category    string    `json:"category"`
	Title       string    `json:"title"`
	Price       int       `json:"price"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	District    string    `json:"district"`
	Area        *float64  `json:"area"`
	Rooms       *int      `json:"rooms"`
	URL         string    `json:"url"`
	ScrapedAt   time.Time `json:"scraped_at"`
}

// Adapter extracts listing records from one marketplace's pages
type Adapter interface {
	// SiteKey identifies the adapter and its category vocabulary
	SiteKey() string

	// Marketplace is the value stamped on every record
	Marketplace() string

	// Extract returns the records of a page, in the document order of their cards
	Extract(page []byte, pageURL string) ([]ListingRecord, error)
}

// Selectors contains the CSS selector groups of a marketplace's listing markup.
// Each group is matched as a whole: the first element in document order wins.
type Selectors struct {
	Cards         []string
	Title         string
	Price         string
	PriceFallback string
	Location      string
	Description   string
	Area          string
	Rooms         string
}

// SiteConfig contains the configuration of a marketplace adapter
type SiteConfig struct {
	SiteKey     string
	Marketplace string
	// Hosts are matched exactly or as a dot-suffix of the request host
	Hosts            []string
	Selectors        Selectors
	Categories       extract.Vocabulary
	Gazetteer        []string
	DistrictKeywords []string
	// TitleFallbackRunes > 0 uses the card text, cut to this length, when no title element is found
	TitleFallbackRunes int
	DescriptionRunes   int
}
