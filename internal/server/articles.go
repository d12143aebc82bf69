package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ObaidOIS/TSFSE/internal/database"
)

const (
	defaultListPageSize = 10
	maxListPageSize     = 100
	latestArticleLimit  = 20
)

// handleArticleList serves a paginated article listing, optionally
// filtered by category.
func (s *Server) handleArticleList(w http.ResponseWriter, r *http.Request) {
	s.listArticles(w, r, r.URL.Query().Get("category"))
}

// handleArticlesByCategory serves the listing scoped to one category,
// 404ing on unknown category names.
func (s *Server) handleArticlesByCategory(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if _, err := s.store.GetCategoryByName(r.Context(), name); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("unknown category %q", name))
			return
		}
		s.internalError(w, "look up category", err)
		return
	}

	s.listArticles(w, r, name)
}

func (s *Server) listArticles(w http.ResponseWriter, r *http.Request, category string) {
	ctx := r.Context()

	page, pageSize, err := pageParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	total, err := s.store.CountArticles(ctx, category)
	if err != nil {
		s.internalError(w, "count articles", err)
		return
	}

	articles, err := s.store.ListArticles(ctx, category, pageSize, (page-1)*pageSize)
	if err != nil {
		s.internalError(w, "list articles", err)
		return
	}

	writeJSON(w, http.StatusOK, pagedArticles{
		Count:    total,
		Next:     pageLink(r, page+1, pageSize, (page*pageSize) < total),
		Previous: pageLink(r, page-1, pageSize, page > 1),
		Results:  toArticleSummaries(articles),
	})
}

// handleLatestArticles serves the most recently published articles.
// A single fixed-size page, wrapped in the standard envelope.
func (s *Server) handleLatestArticles(w http.ResponseWriter, r *http.Request) {
	articles, err := s.store.LatestArticles(r.Context(), latestArticleLimit)
	if err != nil {
		s.internalError(w, "fetch latest articles", err)
		return
	}
	writeJSON(w, http.StatusOK, pagedArticles{
		Count:    len(articles),
		Next:     nil,
		Previous: nil,
		Results:  toArticleSummaries(articles),
	})
}

// handleArticleDetail serves one article with its full content,
// resolved category and entities.
func (s *Server) handleArticleDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	article, err := s.store.GetArticleByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeError(w, http.StatusNotFound, "article not found")
			return
		}
		s.internalError(w, "fetch article", err)
		return
	}

	category, err := s.store.GetCategoryByName(r.Context(), article.CategoryName)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		s.internalError(w, "look up category", err)
		return
	}

	writeJSON(w, http.StatusOK, toArticleDetail(article, category))
}

// handleCategories lists categories with their article counts. The
// category set is small enough that the envelope never pages.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	counts, err := s.store.CategoryCounts(r.Context())
	if err != nil {
		s.internalError(w, "fetch categories", err)
		return
	}
	if counts == nil {
		counts = []database.CategoryCount{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":    len(counts),
		"next":     nil,
		"previous": nil,
		"results":  counts,
	})
}

// handleRSS generates and serves the RSS feed
func (s *Server) handleRSS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	since := time.Now().AddDate(0, 0, -30)
	articles, err := s.store.RecentArticles(ctx, since, 50)
	if err != nil {
		s.internalError(w, "fetch recent articles", err)
		return
	}

	feed, err := GenerateRSSFeed(articles, s.config)
	if err != nil {
		s.internalError(w, "generate feed", err)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.Write([]byte(feed))
}

func (s *Server) internalError(w http.ResponseWriter, action string, err error) {
	s.logger.Errorw("request failed", "action", action, "error", err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

// pageParams extracts 1-indexed pagination from the query string.
func pageParams(r *http.Request) (page, pageSize int, err error) {
	page, err = intParam(r, "page", 1)
	if err != nil || page < 1 {
		return 0, 0, fmt.Errorf("page must be a positive integer")
	}
	pageSize, err = intParam(r, "page_size", defaultListPageSize)
	if err != nil || pageSize < 1 || pageSize > maxListPageSize {
		return 0, 0, fmt.Errorf("page_size must be between 1 and %d", maxListPageSize)
	}
	return page, pageSize, nil
}

func intParam(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

// pageLink builds the next/previous URL for the pagination envelope,
// or nil when the page does not exist.
func pageLink(r *http.Request, page, pageSize int, exists bool) *string {
	if !exists {
		return nil
	}
	u := *r.URL
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(pageSize))
	u.RawQuery = q.Encode()
	link := u.String()
	return &link
}
