package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"kzmarket/listingworker/internal/adapter"
	apperrors "kzmarket/listingworker/pkg/errors"
	"kzmarket/listingworker/services/export"
	"kzmarket/listingworker/services/summary"
)

// ScrapeRequest is the POST /api/parser/scrape body
type ScrapeRequest struct {
	URL       string `json:"url"`
	VerifySSL *bool  `json:"verify_ssl,omitempty"`
}

// ScrapeResponse wraps a scrape result; Count always equals len(Items)
type ScrapeResponse struct {
	Success bool                    `json:"success"`
	Count   int                     `json:"count"`
	Items   []adapter.ListingRecord `json:"items"`
	Message string                  `json:"message,omitempty"`
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"message": "Listing parser API", "status": "running"})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSites(w http.ResponseWriter, _ *http.Request) {
	sites := s.opts.Sites
	if sites == nil {
		sites = []string{}
	}
	respondJSON(w, http.StatusOK, map[string][]string{"sites": sites})
}

func (s *Server) handleScrapeQuery(w http.ResponseWriter, r *http.Request) {
	verify, err := s.verifyFromQuery(r.URL.Query())
	if err != nil {
		respondError(w, err)
		return
	}
	s.scrape(w, r, r.URL.Query().Get("url"), verify)
}

func (s *Server) handleScrapeBody(w http.ResponseWriter, r *http.Request) {
	var req ScrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperrors.NewValidation("", "invalid request body"))
		return
	}

	verify := s.opts.VerifyTLS
	if req.VerifySSL != nil {
		verify = *req.VerifySSL
	}
	s.scrape(w, r, req.URL, verify)
}

func (s *Server) scrape(w http.ResponseWriter, r *http.Request, rawURL string, verify bool) {
	records, err := s.parser.ParseURL(r.Context(), rawURL, verify)
	if err != nil {
		s.log.Warn().Err(err).Str("url", rawURL).Msg("scrape failed")
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, ScrapeResponse{
		Success: true,
		Count:   len(records),
		Items:   nonNil(records),
		Message: fmt.Sprintf("Найдено %d объявлений", len(records)),
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	verify, err := s.verifyFromQuery(r.URL.Query())
	if err != nil {
		respondError(w, err)
		return
	}

	rawURL := r.URL.Query().Get("url")
	records, err := s.parser.ParseURL(r.Context(), rawURL, verify)
	if err != nil {
		respondError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, records); err != nil {
		respondError(w, err)
		return
	}

	host := ""
	if u, err := url.Parse(rawURL); err == nil {
		host = u.Host
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(host, s.now())))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	verify, err := s.verifyFromQuery(r.URL.Query())
	if err != nil {
		respondError(w, err)
		return
	}

	records, err := s.parser.ParseURL(r.Context(), r.URL.Query().Get("url"), verify)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(summary.Format(records, s.opts.AppURL)))
}

func (s *Server) verifyFromQuery(q url.Values) (bool, error) {
	raw := q.Get("verify_ssl")
	if raw == "" {
		return s.opts.VerifyTLS, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, apperrors.NewValidation("", "verify_ssl must be a boolean")
	}
	return v, nil
}

// statusFor maps the error taxonomy onto HTTP statuses
func statusFor(err error) int {
	switch {
	case apperrors.IsType(err, apperrors.ErrorTypeValidation), apperrors.IsUnsupportedDomain(err):
		return http.StatusBadRequest
	case apperrors.IsFetchFailure(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondError(w http.ResponseWriter, err error) {
	respondJSON(w, statusFor(err), ScrapeResponse{
		Success: false,
		Items:   []adapter.ListingRecord{},
		Message: err.Error(),
	})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func nonNil(records []adapter.ListingRecord) []adapter.ListingRecord {
	if records == nil {
		return []adapter.ListingRecord{}
	}
	return records
}
