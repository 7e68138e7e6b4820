package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nao1215/sitescout/internal/config"
	"github.com/nao1215/sitescout/internal/database"
	"github.com/nao1215/sitescout/internal/model"
	"github.com/nao1215/sitescout/internal/pipeline"
)

// maxRequestBody bounds the JSON body of a scrape request.
const maxRequestBody = 1 << 16

// ScrapeRequest is the body of POST /api/scrape.
type ScrapeRequest struct {
	URL string `json:"url"`

	// PageBudget is the total number of pages, seed included. Zero means
	// the configured budget for the site.
	PageBudget int `json:"page_budget,omitempty"`
}

// ScrapeResponse is returned by POST /api/scrape.
type ScrapeResponse struct {
	// ID is the stored result ID, zero when nothing was stored.
	ID     int64               `json:"id,omitempty"`
	Result *model.ScrapeResult `json:"result"`
}

// ListResponse is returned by GET /api/results.
type ListResponse struct {
	Results  []database.Summary `json:"results"`
	Total    int                `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
}

// SearchResponse is returned by GET /api/search.
type SearchResponse struct {
	Query   string             `json:"query"`
	Results []database.Summary `json:"results"`
}

func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	var req ScrapeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		s.respondWithError(w, http.StatusBadRequest, "url is required")
		return
	}
	if req.PageBudget < 0 || req.PageBudget > config.MaxPageBudget {
		s.respondWithError(w, http.StatusBadRequest, config.ErrInvalidPageBudget.Error())
		return
	}

	budget := req.PageBudget
	if budget == 0 {
		budget = s.crawler.BudgetFor(req.URL)
	}

	result, err := s.crawler.Crawl(r.Context(), req.URL, budget)
	switch {
	case errors.Is(err, model.ErrInvalidSeed), errors.Is(err, model.ErrInvalidBudget):
		s.respondWithError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, pipeline.ErrSeedFetch):
		s.respondWithError(w, http.StatusBadGateway, err.Error())
		return
	case err != nil:
		s.logger.Error("scrape failed", "url", req.URL, "error", err)
		s.respondWithError(w, http.StatusInternalServerError, "scrape failed")
		return
	}

	resp := ScrapeResponse{Result: result}
	if s.store != nil {
		// The crawl may have consumed the request deadline.
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), 5*time.Second)
		defer cancel()
		id, err := s.store.SaveResult(saveCtx, result)
		if err != nil {
			s.logger.Error("failed to save result", "url", result.SeedURL, "error", err)
		} else {
			resp.ID = id
		}
	}
	s.respondWithJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListResults(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	page := queryInt(r, "page", 1)
	pageSize := database.ClampPageSize(queryInt(r, "page_size", database.DefaultPageSize))

	results, total, err := s.store.ListResults(r.Context(), page, pageSize)
	if err != nil {
		s.logger.Error("failed to list results", "error", err)
		s.respondWithError(w, http.StatusInternalServerError, "could not list results")
		return
	}
	if results == nil {
		results = []database.Summary{}
	}
	s.respondWithJSON(w, http.StatusOK, ListResponse{
		Results:  results,
		Total:    total,
		Page:     max(page, 1),
		PageSize: pageSize,
	})
}

func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	record, err := s.store.GetResultByID(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		s.respondWithError(w, http.StatusNotFound, "result not found")
		return
	}
	if err != nil {
		s.logger.Error("failed to get result", "id", id, "error", err)
		s.respondWithError(w, http.StatusInternalServerError, "could not retrieve result")
		return
	}
	s.respondWithJSON(w, http.StatusOK, record)
}

func (s *Server) handleDeleteResult(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	err := s.store.DeleteResult(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		s.respondWithError(w, http.StatusNotFound, "result not found")
		return
	}
	if err != nil {
		s.logger.Error("failed to delete result", "id", id, "error", err)
		s.respondWithError(w, http.StatusInternalServerError, "could not delete result")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	q := r.URL.Query().Get("q")
	if q == "" {
		s.respondWithError(w, http.StatusBadRequest, "q query parameter is required")
		return
	}

	results, err := s.store.SearchResults(r.Context(), q, queryInt(r, "limit", database.DefaultPageSize))
	if err != nil {
		s.logger.Error("failed to search results", "error", err)
		s.respondWithError(w, http.StatusInternalServerError, "could not search results")
		return
	}
	if results == nil {
		results = []database.Summary{}
	}
	s.respondWithJSON(w, http.StatusOK, SearchResponse{Query: q, Results: results})
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	health := map[string]string{
		"status":  "healthy",
		"version": s.version,
		"store":   "disabled",
	}

	if s.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.store.Ping(ctx); err != nil {
			s.logger.Error("health check failed for store", "error", err)
			health["status"] = "unhealthy"
			health["store"] = "unhealthy"
			s.respondWithJSON(w, http.StatusServiceUnavailable, health)
			return
		}
		health["store"] = "healthy"
	}

	s.respondWithJSON(w, http.StatusOK, health)
}

// --- Helper Functions ---

func (s *Server) requireStore(w http.ResponseWriter) bool {
	if s.store == nil {
		s.respondWithError(w, http.StatusServiceUnavailable, "result store is disabled")
		return false
	}
	return true
}

func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		s.respondWithError(w, http.StatusBadRequest, "invalid result id")
		return 0, false
	}
	return id, true
}

// queryInt returns the integer query parameter name, or def when it is
// missing or malformed.
func queryInt(r *http.Request, name string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return def
	}
	return v
}

func (s *Server) respondWithError(w http.ResponseWriter, code int, message string) {
	s.respondWithJSON(w, code, map[string]string{"error": message})
}

func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("failed to encode response", "error", err)
		code = http.StatusInternalServerError
		response = []byte(`{"error":"internal error"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}
