package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/ObaidOIS/TSFSE/internal/search"
)

// searchRequest is the POST body for /api/search. The GET form maps
// the same fields from the query string.
type searchRequest struct {
	Query    string `json:"query"`
	Category string `json:"category"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	SortBy   string `json:"sort_by"`
}

// handleSearch executes a search. Accepts GET with query parameters
// or POST with a JSON body.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	params, err := searchParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := s.searcher.Search(r.Context(), params)
	if err != nil {
		var qerr *search.QueryError
		if errors.As(err, &qerr) {
			writeError(w, http.StatusBadRequest, qerr.Reason)
			return
		}
		s.internalError(w, "execute search", err)
		return
	}

	writeJSON(w, http.StatusOK, toSearchResponse(resp))
}

func searchParams(r *http.Request) (search.Params, error) {
	if r.Method == http.MethodPost {
		var req searchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return search.Params{}, errors.New("invalid JSON body")
		}
		return search.Params{
			Query:    req.Query,
			Category: req.Category,
			Page:     req.Page,
			PageSize: req.PageSize,
			SortBy:   req.SortBy,
		}, nil
	}

	q := r.URL.Query()
	params := search.Params{
		Query:    q.Get("q"),
		Category: q.Get("category"),
		SortBy:   q.Get("sort_by"),
	}
	if params.Query == "" {
		params.Query = q.Get("query")
	}

	var err error
	if params.Page, err = intParam(r, "page", 0); err != nil {
		return search.Params{}, errors.New("page must be an integer")
	}
	if params.PageSize, err = intParam(r, "page_size", 0); err != nil {
		return search.Params{}, errors.New("page_size must be an integer")
	}
	return params, nil
}

// handleSuggestions serves query completions for a prefix.
func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("q")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	suggestions, err := s.searcher.Suggest(r.Context(), prefix, limit)
	if err != nil {
		s.internalError(w, "fetch suggestions", err)
		return
	}
	if suggestions == nil {
		suggestions = []string{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}

// handleSearchStats serves corpus and query-log aggregates.
func (s *Server) handleSearchStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.searcher.Stats(r.Context())
	if err != nil {
		s.internalError(w, "fetch search stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
