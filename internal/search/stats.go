package search

import (
	"context"
	"fmt"

	"github.com/ObaidOIS/TSFSE/internal/database"
)

const popularQueryLimit = 10

// Stats summarizes the searchable corpus and the query log.
type Stats struct {
	TotalArticles  int                      `json:"total_articles"`
	TotalSearches  int                      `json:"total_searches"`
	PopularQueries []database.PopularQuery  `json:"popular_queries"`
	Categories     []database.CategoryCount `json:"categories"`
}

// Stats gathers corpus and query-log aggregates.
func (e *Engine) Stats(ctx context.Context) (*Stats, error) {
	articles, err := e.store.CountArticles(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("count articles: %w", err)
	}

	searches, err := e.store.CountQueries(ctx)
	if err != nil {
		return nil, fmt.Errorf("count queries: %w", err)
	}

	popular, err := e.store.PopularQueries(ctx, popularQueryLimit)
	if err != nil {
		return nil, fmt.Errorf("popular queries: %w", err)
	}

	categories, err := e.store.CategoryCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("category counts: %w", err)
	}

	return &Stats{
		TotalArticles:  articles,
		TotalSearches:  searches,
		PopularQueries: popular,
		Categories:     categories,
	}, nil
}
