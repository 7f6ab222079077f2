package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"rental-pricing-ai/llm"
)

// defaultRangeDays is the analysis window when the request leaves the
// dates out
const defaultRangeDays = 30

type pricingRequest struct {
	DateFrom string               `json:"date_from"`
	DateTo   string               `json:"date_to"`
	Context  *llm.PropertyContext `json:"property_context,omitempty"`
}

// resolveRange fills missing dates with a default window starting today
// and validates the ones provided
func (p *pricingRequest) resolveRange() error {
	today := time.Now()
	if p.DateFrom == "" {
		p.DateFrom = today.Format("2006-01-02")
	}
	if p.DateTo == "" {
		p.DateTo = today.AddDate(0, 0, defaultRangeDays).Format("2006-01-02")
	}

	from, err := time.Parse("2006-01-02", p.DateFrom)
	if err != nil {
		return err
	}
	to, err := time.Parse("2006-01-02", p.DateTo)
	if err != nil {
		return err
	}
	if to.Before(from) {
		p.DateFrom, p.DateTo = p.DateTo, p.DateFrom
	}
	return nil
}

// handleFetchPricing returns normalized nightly records without running
// any analysis
func (s *Server) handleFetchPricing(w http.ResponseWriter, r *http.Request) {
	var req pricingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.resolveRange(); err != nil {
		writeError(w, http.StatusBadRequest, "dates must be YYYY-MM-DD")
		return
	}

	records, err := s.analysis.FetchNightlyRecords(r.Context(), req.DateFrom, req.DateTo)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"date_from": req.DateFrom,
		"date_to":   req.DateTo,
		"count":     len(records),
		"nights":    records,
	})
}

// handleAnalyzePricing runs per-night pricing analysis over the range
func (s *Server) handleAnalyzePricing(w http.ResponseWriter, r *http.Request) {
	var req pricingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.resolveRange(); err != nil {
		writeError(w, http.StatusBadRequest, "dates must be YYYY-MM-DD")
		return
	}

	suggestions, err := s.analysis.AnalyzePricing(r.Context(), req.DateFrom, req.DateTo, req.Context)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"date_from":   req.DateFrom,
		"date_to":     req.DateTo,
		"count":       len(suggestions),
		"suggestions": suggestions,
	})
}

// handleSuggestionHistory returns stored suggestions, newest first
func (s *Server) handleSuggestionHistory(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	rows, err := s.analysis.SuggestionHistory(limit)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":       len(rows),
		"suggestions": rows,
	})
}

// handleAvailability summarizes available gaps over the next 60 days
func (s *Server) handleAvailability(w http.ResponseWriter, r *http.Request) {
	summary, err := s.analysis.UnbookedOpenings(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"summary": summary,
	})
}

// handleRevenueForecast splits a date range into booked and potential
// revenue
func (s *Server) handleRevenueForecast(w http.ResponseWriter, r *http.Request) {
	req := pricingRequest{
		DateFrom: r.URL.Query().Get("date_from"),
		DateTo:   r.URL.Query().Get("date_to"),
	}
	if err := req.resolveRange(); err != nil {
		writeError(w, http.StatusBadRequest, "dates must be YYYY-MM-DD")
		return
	}

	forecast, err := s.analysis.RevenueForecast(r.Context(), req.DateFrom, req.DateTo)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"date_from": req.DateFrom,
		"date_to":   req.DateTo,
		"forecast":  forecast,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
