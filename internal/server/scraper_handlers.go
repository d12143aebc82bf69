package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/ObaidOIS/TSFSE/internal/ingest"
)

// handleScraperStatus reports the scheduler state.
func (s *Server) handleScraperStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ingester.State())
}

type toggleRequest struct {
	Fetch *bool `json:"fetch"`
}

// handleScraperToggle sets scheduled ingestion to the requested fetch
// value, or flips it when the body omits the field, and returns the
// new state. A cycle already in flight keeps running either way.
func (s *Server) handleScraperToggle(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	writeJSON(w, http.StatusOK, s.ingester.Toggle(req.Fetch))
}

// handleScraperTrigger starts an ingest cycle immediately. A cycle
// already running yields a 409.
func (s *Server) handleScraperTrigger(w http.ResponseWriter, r *http.Request) {
	if err := s.ingester.Trigger(); err != nil {
		if errors.Is(err, ingest.ErrBusy) {
			writeError(w, http.StatusConflict, "an ingest cycle is already running")
			return
		}
		s.internalError(w, "trigger ingest cycle", err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}

const recentlyScrapedLimit = 10

// handleScraperHistory lists recent cycle summaries, newest first,
// along with the most recently scraped articles.
func (s *Server) handleScraperHistory(w http.ResponseWriter, r *http.Request) {
	history := s.ingester.History()
	if history == nil {
		history = []ingest.CycleSummary{}
	}

	articles, err := s.store.RecentlyScraped(r.Context(), recentlyScrapedLimit)
	if err != nil {
		s.internalError(w, "fetch recently scraped articles", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"results":         history,
		"recent_articles": toArticleSummaries(articles),
	})
}
