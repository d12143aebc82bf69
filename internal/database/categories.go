package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ObaidOIS/TSFSE/internal/classify"
)

// ListCategories retrieves all categories ordered by name.
func (db *DB) ListCategories(ctx context.Context) ([]*Category, error) {
	query := `
		SELECT id, name, display_name, description, keywords, created_at
		FROM categories
		ORDER BY name
	`

	rows, err := db.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []*Category
	for rows.Next() {
		var c Category
		err := rows.Scan(&c.ID, &c.Name, &c.DisplayName, &c.Description, &c.Keywords, &c.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// GetCategoryByName retrieves a single category by its slug.
func (db *DB) GetCategoryByName(ctx context.Context, name string) (*Category, error) {
	query := `
		SELECT id, name, display_name, description, keywords, created_at
		FROM categories
		WHERE name = $1
	`

	var c Category
	err := db.pool.QueryRow(ctx, query, name).
		Scan(&c.ID, &c.Name, &c.DisplayName, &c.Description, &c.Keywords, &c.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	return &c, nil
}

// SeedCategories inserts the given categories if they do not exist yet.
// Existing rows are left untouched so administrator edits survive
// restarts.
func (db *DB) SeedCategories(ctx context.Context, categories []*Category) error {
	query := `
		INSERT INTO categories (name, display_name, description, keywords)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO NOTHING
	`

	for _, c := range categories {
		if _, err := db.pool.Exec(ctx, query, c.Name, c.DisplayName, c.Description, c.Keywords); err != nil {
			return fmt.Errorf("failed to seed category %q: %w", c.Name, err)
		}
	}
	return nil
}

// KeywordTables assembles the categorizer tables from all stored
// categories.
func (db *DB) KeywordTables(ctx context.Context) (classify.Tables, error) {
	categories, err := db.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	tables := make(classify.Tables, len(categories))
	for _, c := range categories {
		tables[c.Name] = c.Keywords
	}
	return tables, nil
}

// CategoryCounts returns article counts per category. Counts are
// derived on read rather than stored.
func (db *DB) CategoryCounts(ctx context.Context) ([]CategoryCount, error) {
	query := `
		SELECT c.id, c.name, c.display_name, c.description, count(a.id)
		FROM categories c
		LEFT JOIN articles a ON a.category_name = c.name
		GROUP BY c.id, c.name, c.display_name, c.description
		ORDER BY c.name
	`

	rows, err := db.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query category counts: %w", err)
	}
	defer rows.Close()

	var counts []CategoryCount
	for rows.Next() {
		var cc CategoryCount
		if err := rows.Scan(&cc.ID, &cc.Name, &cc.DisplayName, &cc.Description, &cc.ArticleCount); err != nil {
			return nil, fmt.Errorf("failed to scan category count: %w", err)
		}
		counts = append(counts, cc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category counts: %w", err)
	}

	return counts, nil
}
