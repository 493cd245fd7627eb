package helpers

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html/charset"

	"kzmarket/listingworker/logger"
)

// Header and retry defaults
var (
	userAgents = []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.3 Safari/605.1.15",
		"Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:115.0) Gecko/20100101 Firefox/115.0",
	}

	// DefaultRetryStatuses are the transient statuses worth another attempt
	DefaultRetryStatuses = []int{
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
	}
)

const (
	DefaultTimeout       = 15 * time.Second
	DefaultMaxAttempts   = 3
	DefaultBackoffFactor = 500 * time.Millisecond
	maxRetryAfter        = 30 * time.Second
)

// SessionConfig configures a fetch session
type SessionConfig struct {
	VerifyTLS     bool
	Timeout       time.Duration
	MaxAttempts   int
	BackoffFactor time.Duration
	RetryStatuses []int
	UserAgents    []string
	Pacer         Pacer
	Sleeper       Sleeper
}

// DefaultSessionConfig returns the production retry and pacing policy
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		VerifyTLS:     true,
		Timeout:       DefaultTimeout,
		MaxAttempts:   DefaultMaxAttempts,
		BackoffFactor: DefaultBackoffFactor,
		RetryStatuses: DefaultRetryStatuses,
		UserAgents:    userAgents,
		Pacer:         NewRandomPacer(DefaultPaceMin, DefaultPaceMax),
		Sleeper:       RealSleeper,
	}
}

// Session owns one pooled HTTP client and the retry/pacing policy of a single scrape invocation.
// It is not meant to be shared between invocations.
type Session struct {
	cfg       SessionConfig
	client    *http.Client
	transport *http.Transport
	log       *logger.Logger
}

// NewSession creates a session, filling zero fields of cfg with defaults
func NewSession(cfg SessionConfig) *Session {
	def := DefaultSessionConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.BackoffFactor < 0 {
		cfg.BackoffFactor = 0
	}
	if cfg.RetryStatuses == nil {
		cfg.RetryStatuses = def.RetryStatuses
	}
	if len(cfg.UserAgents) == 0 {
		cfg.UserAgents = def.UserAgents
	}
	if cfg.Pacer == nil {
		cfg.Pacer = def.Pacer
	}
	if cfg.Sleeper == nil {
		cfg.Sleeper = def.Sleeper
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = 4
	transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: !cfg.VerifyTLS} //nolint:gosec // opt-out is a caller decision

	return &Session{
		cfg:       cfg,
		client:    &http.Client{Transport: transport},
		transport: transport,
		log:       logger.ForSession(),
	}
}

// Close releases the pooled connections
func (s *Session) Close() {
	s.transport.CloseIdleConnections()
}

// Fetch retrieves a page and returns its UTF-8 body, or nil when the page could not be
// retrieved. Failures are logged, never returned.
func (s *Session) Fetch(ctx context.Context, url string) []byte {
	body, err := s.Get(ctx, url)
	if err != nil {
		s.log.Warn().Err(err).Str("url", url).Msg("fetch failed")
		return nil
	}
	return body
}

// Get retrieves a page with retries and, on success, waits for the pacer before returning.
func (s *Session) Get(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		body, retryAfter, err := s.attempt(ctx, url)
		if err == nil {
			if err := s.cfg.Pacer.Pace(ctx); err != nil {
				return nil, err
			}
			return body, nil
		}
		lastErr = err

		if ctx.Err() != nil || !isRetryable(err) || attempt == s.cfg.MaxAttempts {
			break
		}

		wait := s.backoff(attempt)
		if retryAfter > 0 {
			wait = retryAfter
		}
		s.log.Debug().
			Err(err).
			Int("attempt", attempt).
			Dur("wait", wait).
			Str("url", url).
			Msg("retrying request")
		if err := s.cfg.Sleeper.Sleep(ctx, wait); err != nil {
			return nil, err
		}
	}

	return nil, lastErr
}

// backoff returns factor * 2^(n-1) for the n-th retry
func (s *Session) backoff(retry int) time.Duration {
	return s.cfg.BackoffFactor * time.Duration(1<<uint(retry-1))
}

// statusError is a non-2xx response
type statusError struct {
	code      int
	retryable bool
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.code)
}

// transportError is a network-level failure
type transportError struct {
	err error
}

func (e *transportError) Error() string { return "failed to fetch URL: " + e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

func isRetryable(err error) bool {
	switch e := err.(type) {
	case *statusError:
		return e.retryable
	case *transportError:
		return true
	default:
		return false
	}
}

// attempt performs one bounded request
func (s *Session) attempt(ctx context.Context, url string) ([]byte, time.Duration, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	s.setHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, 0, ctx.Err()
		}
		return nil, 0, &transportError{err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		retryable := slices.Contains(s.cfg.RetryStatuses, resp.StatusCode)
		var retryAfter time.Duration
		if retryable && (resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable) {
			retryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
		}
		return nil, retryAfter, &statusError{code: resp.StatusCode, retryable: retryable}
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, 0, ctx.Err()
		}
		return nil, 0, &transportError{err: fmt.Errorf("failed to read response body: %w", err)}
	}

	utf8Body, err := toUTF8(bodyBytes, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, 0, err
	}
	return utf8Body, 0, nil
}

// setHeaders sets browser-like headers with a randomly chosen User-Agent
func (s *Session) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", s.cfg.UserAgents[rand.Intn(len(s.cfg.UserAgents))])
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "ru-RU,ru;q=0.9,kk;q=0.8,en-US;q=0.7,en;q=0.6")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
}

// parseRetryAfter understands the delta-seconds form only
func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 {
		return 0
	}
	d := time.Duration(secs) * time.Second
	if d > maxRetryAfter {
		return maxRetryAfter
	}
	return d
}

// toUTF8 converts the body according to the Content-Type header and meta tags
func toUTF8(body []byte, contentType string) ([]byte, error) {
	encoding, name, _ := charset.DetermineEncoding(body, contentType)
	if strings.EqualFold(name, "utf-8") {
		return body, nil
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, encoding.NewDecoder().Reader(bytes.NewReader(body))); err != nil {
		return nil, fmt.Errorf("failed to read converted UTF-8 body: %w", err)
	}
	return buf.Bytes(), nil
}
