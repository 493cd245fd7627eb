package worker

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"kzmarket/listingworker/internal/adapter"
	"kzmarket/listingworker/logger"
	"kzmarket/listingworker/services/publisher"
)

// Parser runs one fetch-and-extract invocation
type Parser interface {
	ParseURL(ctx context.Context, rawURL string, verifyTLS bool) ([]adapter.ListingRecord, error)
}

// Worker periodically scrapes the watched pages and publishes their records
type Worker struct {
	ctx           context.Context
	parser        Parser
	publisher     publisher.Publisher
	urls          []string
	verifyTLS     bool
	crawlInterval time.Duration
	log           *logger.Logger
}

// NewWorker creates a new worker. pub may be nil, in which case records are only logged.
func NewWorker(
	ctx context.Context,
	parser Parser,
	pub publisher.Publisher,
	urls []string,
	verifyTLS bool,
	crawlInterval time.Duration,
) *Worker {
	return &Worker{
		ctx:           ctx,
		parser:        parser,
		publisher:     pub,
		urls:          urls,
		verifyTLS:     verifyTLS,
		crawlInterval: crawlInterval,
		log:           logger.ForWorker(),
	}
}

// Start runs a scrape round immediately and then every crawl interval until the context ends
func (w *Worker) Start() error {
	ticker := time.NewTicker(w.crawlInterval)
	defer ticker.Stop()

	for {
		start := time.Now()
		published := w.RunOnce()
		w.log.Info().
			Int("urls", len(w.urls)).
			Int("published", published).
			Dur("elapsed", time.Since(start)).
			Msg("scrape round finished")

		select {
		case <-w.ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// RunOnce scrapes every watched URL in parallel, each in its own invocation, then trims
// the streams. It returns the number of records published.
func (w *Worker) RunOnce() int {
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		total int
	)

	for _, u := range w.urls {
		wg.Add(1)
		go func(u string) {
			defer wg.Done()
			n := w.scrapeAndPublish(u)
			mu.Lock()
			total += n
			mu.Unlock()
		}(u)
	}
	wg.Wait()

	if w.publisher != nil {
		if err := w.publisher.TrimStreams(); err != nil {
			logger.LogError("worker", err, "stream trimming failed")
		}
	}
	return total
}

// scrapeAndPublish scrapes one URL and publishes each record as JSON keyed by marketplace
func (w *Worker) scrapeAndPublish(u string) int {
	records, err := w.parser.ParseURL(w.ctx, u, w.verifyTLS)
	if err != nil {
		w.log.Error().Err(err).Str("url", u).Msg("scrape failed")
		return 0
	}

	if len(records) > 0 && logger.IsDebugEnabled() {
		w.log.Debug().Interface("record", records[0]).Str("url", u).Msg("first record")
	}

	if w.publisher == nil {
		w.log.Info().Str("url", u).Int("records", len(records)).Msg("records scraped")
		return 0
	}

	published := 0
	for _, record := range records {
		data, err := json.Marshal(record)
		if err != nil {
			w.log.Error().Err(err).Str("url", u).Msg("record encoding failed")
			continue
		}
		if err := w.publisher.Publish(publisher.FieldKey(record.Marketplace), data); err != nil {
			w.log.Error().Err(err).Str("url", u).Msg("publish failed")
			continue
		}
		published++
	}
	return published
}
