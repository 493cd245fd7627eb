// Package scraper runs one fetch-and-extract invocation per call: the registry picks the
// adapter for the URL's host, a fresh session fetches the page and the adapter turns it
// into listing records.
package scraper

import (
	"context"
	"net/url"
	"time"

	"github.com/google/uuid"

	"kzmarket/listingworker/helpers"
	"kzmarket/listingworker/internal/adapter"
	"kzmarket/listingworker/logger"
	apperrors "kzmarket/listingworker/pkg/errors"
)

// Options configures the sessions created by the scraper. Zero values fall back to the
// session defaults.
type Options struct {
	Timeout time.Duration
	PaceMin time.Duration
	PaceMax time.Duration

	// Pacer and Sleeper override the real-time policy, mainly for tests
	Pacer   helpers.Pacer
	Sleeper helpers.Sleeper
}

// Scraper is safe for concurrent use; it holds no per-call state.
type Scraper struct {
	registry *adapter.Registry
	opts     Options
}

// New creates a scraper over the given registry
func New(registry *adapter.Registry, opts Options) *Scraper {
	return &Scraper{registry: registry, opts: opts}
}

// Registry returns the adapter registry
func (s *Scraper) Registry() *adapter.Registry {
	return s.registry
}

// ParseURL fetches rawURL and extracts its listing records in card order.
// It fails with a validation error for malformed URLs, UnsupportedDomain when no adapter
// serves the host and FetchFailure when the page could not be retrieved.
func (s *Scraper) ParseURL(ctx context.Context, rawURL string, verifyTLS bool) ([]adapter.ListingRecord, error) {
	runID := uuid.NewString()
	log := logger.ForScraper(runID)

	target, err := ValidateURL(rawURL)
	if err != nil {
		return nil, err
	}

	a, err := s.registry.Resolve(target.Hostname())
	if err != nil {
		log.Warn().Str("host", target.Hostname()).Msg("unsupported domain")
		return nil, err
	}

	session := helpers.NewSession(s.sessionConfig(verifyTLS))
	defer session.Close()

	start := time.Now()
	page := session.Fetch(ctx, target.String())
	if page == nil {
		return nil, apperrors.NewFetch(a.Marketplace(), "failed to retrieve "+target.String(), ctx.Err())
	}

	records, err := a.Extract(page, target.String())
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("host", target.Hostname()).
		Str("adapter", a.SiteKey()).
		Int("records", len(records)).
		Dur("elapsed", time.Since(start)).
		Msg("page scraped")

	return records, nil
}

func (s *Scraper) sessionConfig(verifyTLS bool) helpers.SessionConfig {
	cfg := helpers.DefaultSessionConfig()
	cfg.VerifyTLS = verifyTLS
	if s.opts.Timeout > 0 {
		cfg.Timeout = s.opts.Timeout
	}
	if s.opts.PaceMin > 0 || s.opts.PaceMax > 0 {
		cfg.Pacer = helpers.NewRandomPacer(s.opts.PaceMin, s.opts.PaceMax)
	}
	if s.opts.Pacer != nil {
		cfg.Pacer = s.opts.Pacer
	}
	if s.opts.Sleeper != nil {
		cfg.Sleeper = s.opts.Sleeper
		if rp, ok := cfg.Pacer.(*helpers.RandomPacer); ok {
			rp.Sleeper = s.opts.Sleeper
		}
	}
	return cfg
}

// ValidateURL parses rawURL and requires an absolute http(s) URL with a host
func ValidateURL(rawURL string) (*url.URL, error) {
	if rawURL == "" {
		return nil, apperrors.NewValidation("", "URL is required")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, apperrors.NewValidation("", "malformed URL: "+rawURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, apperrors.NewValidation("", "URL must use http or https: "+rawURL)
	}
	if u.Hostname() == "" {
		return nil, apperrors.NewValidation("", "URL has no host: "+rawURL)
	}
	return u, nil
}
