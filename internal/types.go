package internal

import (
	"kzmarket/listingworker/internal/adapter"
	"kzmarket/listingworker/internal/scraper"
	"kzmarket/listingworker/services/publisher"
)

// Dependencies holds all service dependencies
type Dependencies struct {
	Registry  *adapter.Registry
	Scraper   *scraper.Scraper
	Publisher publisher.Publisher
}

// Close releases the dependencies that hold connections
func (d *Dependencies) Close() error {
	if d.Publisher != nil {
		return d.Publisher.Close()
	}
	return nil
}
