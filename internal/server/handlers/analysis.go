// internal/server/handlers/analysis.go

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"brandtrust/internal/adapter/storage"
	"brandtrust/internal/domain/brand"
	"brandtrust/internal/domain/report"
	"brandtrust/internal/service/analysis"
)

// ReportArchive is the read side of the report archive. Nil when archiving
// is not configured.
type ReportArchive interface {
	GetLatestForBrand(ctx context.Context, brandName string) (*report.Report, error)
	ListReports(ctx context.Context, limit int) ([]report.Summary, error)
}

// AnalysisHandler handles analysis-related HTTP requests
type AnalysisHandler struct {
	analyzer *analysis.Analyzer
	archive  ReportArchive
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(analyzer *analysis.Analyzer, archive ReportArchive) *AnalysisHandler {
	return &AnalysisHandler{
		analyzer: analyzer,
		archive:  archive,
	}
}

// StartAnalysis launches a background analysis run and returns its ID
func (h *AnalysisHandler) StartAnalysis(w http.ResponseWriter, r *http.Request) {
	var q brand.Query
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	runID, err := h.analyzer.Start(q)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	respondWithJSON(w, http.StatusAccepted, map[string]string{"id": runID})
}

// GetAnalysis returns the state of one run
func (h *AnalysisHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "Missing run ID", nil)
		return
	}

	run, ok := h.analyzer.GetRun(id)
	if !ok {
		respondWithError(w, http.StatusNotFound, "Run not found", nil)
		return
	}

	respondWithJSON(w, http.StatusOK, run)
}

// ListAnalyses returns all tracked runs
func (h *AnalysisHandler) ListAnalyses(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.analyzer.ListRuns())
}

// GetReport returns the latest archived report for a brand
func (h *AnalysisHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		respondWithError(w, http.StatusServiceUnavailable, "Report archive not configured", nil)
		return
	}

	brandName := chi.URLParam(r, "brand")
	if brandName == "" {
		respondWithError(w, http.StatusBadRequest, "Missing brand", nil)
		return
	}

	rep, err := h.archive.GetLatestForBrand(r.Context(), brandName)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "No report for brand", nil)
		} else {
			respondWithError(w, http.StatusInternalServerError, "Failed to load report", err)
		}
		return
	}

	respondWithJSON(w, http.StatusOK, rep)
}

// ListReports returns summaries of recent archived reports
func (h *AnalysisHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		respondWithError(w, http.StatusServiceUnavailable, "Report archive not configured", nil)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	summaries, err := h.archive.ListReports(r.Context(), limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list reports", err)
		return
	}

	respondWithJSON(w, http.StatusOK, summaries)
}

// Helper for JSON responses
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Failed to marshal response"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// Helper for error responses
func respondWithError(w http.ResponseWriter, code int, message string, err error) {
	if err != nil && code >= 500 {
		log.Error().Err(err).Int("code", code).Str("message", message).Msg("request failed")
	}

	response := map[string]string{"error": message}
	jsonResponse, _ := json.Marshal(response)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(jsonResponse)
}
