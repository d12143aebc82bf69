package database

import (
	"context"
	"fmt"
)

// LogQuery appends one search to the query log.
func (db *DB) LogQuery(ctx context.Context, entry *QueryLogEntry) error {
	query := `
		INSERT INTO search_queries (query, detected_category, results_count, execution_time_ms)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := db.pool.QueryRow(ctx, query,
		entry.Query,
		entry.DetectedCategory,
		entry.ResultsCount,
		entry.ExecutionTimeMS,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to log query: %w", err)
	}

	return nil
}

// QueriesWithPrefix returns distinct logged queries starting with the
// given prefix, most frequent first. Matching is case-insensitive.
func (db *DB) QueriesWithPrefix(ctx context.Context, prefix string, limit int) ([]string, error) {
	query := `
		SELECT lower(query)
		FROM search_queries
		WHERE lower(query) LIKE lower($1) || '%'
		GROUP BY lower(query)
		ORDER BY count(*) DESC, lower(query) ASC
		LIMIT $2
	`

	rows, err := db.pool.Query(ctx, query, prefix, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query suggestions: %w", err)
	}
	defer rows.Close()

	var queries []string
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return nil, fmt.Errorf("failed to scan suggestion: %w", err)
		}
		queries = append(queries, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating suggestions: %w", err)
	}

	return queries, nil
}

// KeywordsWithPrefix returns distinct extracted keywords starting with
// the given prefix, alphabetical. Used to pad autocomplete when the
// query log is thin.
func (db *DB) KeywordsWithPrefix(ctx context.Context, prefix string, limit int) ([]string, error) {
	query := `
		SELECT DISTINCT kw->>'word' AS word
		FROM articles, jsonb_array_elements(keywords) AS kw
		WHERE kw->>'word' LIKE lower($1) || '%'
		ORDER BY word
		LIMIT $2
	`

	rows, err := db.pool.Query(ctx, query, prefix, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query keyword suggestions: %w", err)
	}
	defer rows.Close()

	var words []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, fmt.Errorf("failed to scan keyword suggestion: %w", err)
		}
		words = append(words, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating keyword suggestions: %w", err)
	}

	return words, nil
}

// PopularQueries aggregates the query log into the most frequent
// queries.
func (db *DB) PopularQueries(ctx context.Context, limit int) ([]PopularQuery, error) {
	query := `
		SELECT lower(query), count(*)
		FROM search_queries
		GROUP BY lower(query)
		ORDER BY count(*) DESC, lower(query) ASC
		LIMIT $1
	`

	rows, err := db.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query popular queries: %w", err)
	}
	defer rows.Close()

	var popular []PopularQuery
	for rows.Next() {
		var p PopularQuery
		if err := rows.Scan(&p.Query, &p.Count); err != nil {
			return nil, fmt.Errorf("failed to scan popular query: %w", err)
		}
		popular = append(popular, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating popular queries: %w", err)
	}

	return popular, nil
}

// CountQueries returns the total number of logged searches.
func (db *DB) CountQueries(ctx context.Context) (int, error) {
	var count int
	if err := db.pool.QueryRow(ctx, `SELECT count(*) FROM search_queries`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count queries: %w", err)
	}
	return count, nil
}
