package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kzmarket/listingworker/internal/adapter"
	apperrors "kzmarket/listingworker/pkg/errors"
)

type parseCall struct {
	url       string
	verifyTLS bool
}

// mockParser returns canned records and remembers its calls
type mockParser struct {
	mu      sync.Mutex
	records []adapter.ListingRecord
	err     error
	calls   []parseCall
}

var _ Parser = (*mockParser)(nil)

func (m *mockParser) ParseURL(_ context.Context, rawURL string, verifyTLS bool) ([]adapter.ListingRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, parseCall{url: rawURL, verifyTLS: verifyTLS})
	return m.records, m.err
}

func sampleRecords() []adapter.ListingRecord {
	rooms := 2
	return []adapter.ListingRecord{
		{
			Marketplace: "krisha.kz",
			Category:    "Квартиры",
			Title:       "2-комнатная квартира",
			Price:       25_000_000,
			Description: "Светлая квартира",
			Location:    "Алматы",
			District:    "Бостандыкский р-н",
			Rooms:       &rooms,
			URL:         "https://krisha.kz/a/show/1",
			ScrapedAt:   time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC),
		},
		{
			Marketplace: "krisha.kz",
			Category:    "Дома",
			Title:       "Дом",
			Price:       85_000_000,
			Description: "Дом",
			Location:    "Шымкент",
			District:    "Не указано",
			URL:         "https://krisha.kz/a/show/3",
			ScrapedAt:   time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC),
		},
	}
}

func newTestServer(parser Parser) *Server {
	s := NewServer(":0", parser, Options{AppURL: "https://app.example.kz", Sites: []string{"krisha_kz", "market_kz"}, VerifyTLS: true})
	s.now = func() time.Time { return time.Date(2026, 10, 18, 12, 30, 45, 0, time.UTC) }
	return s
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) ScrapeResponse {
	t.Helper()
	var resp ScrapeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestScrapeGet(t *testing.T) {
	parser := &mockParser{records: sampleRecords()}
	rec := do(t, newTestServer(parser), http.MethodGet, "/api/parser/scrape?url=https%3A%2F%2Fkrisha.kz%2Fprodazha%2F&verify_ssl=false", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	resp := decode(t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.Count)
	assert.Len(t, resp.Items, resp.Count)
	assert.Equal(t, "Найдено 2 объявлений", resp.Message)
	assert.Equal(t, 25_000_000, resp.Items[0].Price)

	require.Len(t, parser.calls, 1)
	assert.Equal(t, parseCall{url: "https://krisha.kz/prodazha/", verifyTLS: false}, parser.calls[0])
}

func TestScrapePost(t *testing.T) {
	parser := &mockParser{records: sampleRecords()}
	s := newTestServer(parser)

	rec := do(t, s, http.MethodPost, "/api/parser/scrape", `{"url":"https://krisha.kz/arenda/"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decode(t, rec).Count)
	assert.True(t, parser.calls[0].verifyTLS, "verify_ssl defaults to the configured value")

	rec = do(t, s, http.MethodPost, "/api/parser/scrape", `{"url":"https://krisha.kz/arenda/","verify_ssl":false}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, parser.calls[1].verifyTLS)
}

func TestScrapeEmptyResult(t *testing.T) {
	rec := do(t, newTestServer(&mockParser{}), http.MethodGet, "/api/parser/scrape?url=https://krisha.kz/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"items":[]`)

	resp := decode(t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, 0, resp.Count)
	assert.Equal(t, "Найдено 0 объявлений", resp.Message)
}

func TestScrapeErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", apperrors.NewValidation("", "URL is required"), http.StatusBadRequest},
		{"unsupported domain", apperrors.NewUnsupportedDomain("olx.kz"), http.StatusBadRequest},
		{"fetch failure", apperrors.NewFetch("krisha.kz", "failed to retrieve page", nil), http.StatusBadGateway},
		{"parsing", apperrors.NewParsing("krisha.kz", "HTML parsing failed", nil), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newTestServer(&mockParser{err: tt.err}), http.MethodGet, "/api/parser/scrape?url=https://krisha.kz/", "")
			assert.Equal(t, tt.status, rec.Code)

			resp := decode(t, rec)
			assert.False(t, resp.Success)
			assert.Equal(t, 0, resp.Count)
			assert.Empty(t, resp.Items)
			assert.Equal(t, tt.err.Error(), resp.Message)
		})
	}
}

func TestScrapeBadInput(t *testing.T) {
	parser := &mockParser{records: sampleRecords()}
	s := newTestServer(parser)

	rec := do(t, s, http.MethodGet, "/api/parser/scrape?url=https://krisha.kz/&verify_ssl=maybe", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/parser/scrape", `{"url":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Empty(t, parser.calls)
}

func TestExportCSV(t *testing.T) {
	rec := do(t, newTestServer(&mockParser{records: sampleRecords()}), http.MethodGet, "/api/parser/export.csv?url=https://krisha.kz/prodazha/", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="export_krisha.kz_20261018_123045.csv"`, rec.Header().Get("Content-Disposition"))

	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "\ufeffmarketplace,category,title,price"))
	assert.Equal(t, 3, strings.Count(body, "\n"), "header plus one row per record")
	assert.Contains(t, body, "krisha.kz,Квартиры,2-комнатная квартира,25000000")
}

func TestSummary(t *testing.T) {
	rec := do(t, newTestServer(&mockParser{records: sampleRecords()}), http.MethodGet, "/api/parser/summary?url=https://krisha.kz/", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Найдено объявлений: 2")
	assert.Contains(t, rec.Body.String(), "25 000 000 ₸")
	assert.Contains(t, rec.Body.String(), "https://app.example.kz")
}

func TestHealthRootAndSites(t *testing.T) {
	s := newTestServer(&mockParser{})

	rec := do(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "running")

	rec = do(t, s, http.MethodGet, "/api/parser/sites", "")
	assert.JSONEq(t, `{"sites":["krisha_kz","market_kz"]}`, rec.Body.String())
}

func TestRequestIDAndCORS(t *testing.T) {
	s := newTestServer(&mockParser{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://app.example.kz")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
