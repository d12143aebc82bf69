package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned when a lookup by identifier finds nothing.
var ErrNotFound = errors.New("not found")

const articleColumns = `a.id, a.url, a.url_hash, a.content_hash, a.title, a.summary, a.content,
		a.author, a.image_url, a.category_name,
		coalesce(c.display_name, initcap(a.category_name)) AS category_display,
		a.category_confidence, a.keywords, a.entities,
		a.search_vector, a.published_at, a.scraped_at, a.created_at, a.updated_at`

const articleFrom = `FROM articles a LEFT JOIN categories c ON c.name = a.category_name`

// CreateArticle inserts a new article into the database
func (db *DB) CreateArticle(ctx context.Context, article *Article) error {
	query := `
		INSERT INTO articles (id, url, url_hash, content_hash, title, summary, content,
			author, image_url, category_name, category_confidence, keywords, entities,
			search_vector, published_at, scraped_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING created_at, updated_at
	`

	err := db.pool.QueryRow(ctx, query,
		article.ID,
		article.URL,
		article.URLHash,
		article.ContentHash,
		article.Title,
		article.Summary,
		article.Content,
		article.Author,
		article.ImageURL,
		article.CategoryName,
		article.CategoryConfidence,
		article.Keywords,
		article.Entities,
		article.SearchVector,
		article.PublishedAt,
		article.ScrapedAt,
	).Scan(&article.CreatedAt, &article.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create article: %w", err)
	}

	return nil
}

// UpdateArticle rewrites the content and derived fields of an existing
// article in a single statement, so a reader never sees content and
// search vector from different revisions. The id and scraped_at are
// preserved; updated_at advances.
func (db *DB) UpdateArticle(ctx context.Context, article *Article) error {
	query := `
		UPDATE articles
		SET content_hash = $2, title = $3, summary = $4, content = $5, author = $6,
			image_url = $7, category_name = $8, category_confidence = $9,
			keywords = $10, entities = $11, search_vector = $12, published_at = $13,
			updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`

	err := db.pool.QueryRow(ctx, query,
		article.ID,
		article.ContentHash,
		article.Title,
		article.Summary,
		article.Content,
		article.Author,
		article.ImageURL,
		article.CategoryName,
		article.CategoryConfidence,
		article.Keywords,
		article.Entities,
		article.SearchVector,
		article.PublishedAt,
	).Scan(&article.UpdatedAt)

	if err == pgx.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update article: %w", err)
	}

	return nil
}

// GetArticleByID retrieves an article by its ID
func (db *DB) GetArticleByID(ctx context.Context, id string) (*Article, error) {
	query := `SELECT ` + articleColumns + ` ` + articleFrom + ` WHERE a.id = $1`

	article, err := scanArticle(db.pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article: %w", err)
	}

	return article, nil
}

// GetArticleByURLHash retrieves an article by its URL hash (for
// deduplication). A miss returns nil, nil.
func (db *DB) GetArticleByURLHash(ctx context.Context, urlHash string) (*Article, error) {
	query := `SELECT ` + articleColumns + ` ` + articleFrom + ` WHERE a.url_hash = $1`

	article, err := scanArticle(db.pool.QueryRow(ctx, query, urlHash))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article by url hash: %w", err)
	}

	return article, nil
}

// ListArticles retrieves a page of articles ordered by published_at
// descending. An empty category means no filter.
func (db *DB) ListArticles(ctx context.Context, category string, limit, offset int) ([]*Article, error) {
	query := `
		SELECT ` + articleColumns + `
		` + articleFrom + `
		WHERE ($1 = '' OR a.category_name = $1)
		ORDER BY a.published_at DESC, a.id ASC
		LIMIT $2 OFFSET $3
	`

	rows, err := db.pool.Query(ctx, query, category, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	defer rows.Close()

	return collectArticles(rows)
}

// CountArticles counts stored articles, optionally per category.
func (db *DB) CountArticles(ctx context.Context, category string) (int, error) {
	query := `SELECT count(*) FROM articles WHERE ($1 = '' OR category_name = $1)`

	var count int
	if err := db.pool.QueryRow(ctx, query, category).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count articles: %w", err)
	}
	return count, nil
}

// LatestArticles retrieves the most recently published articles.
func (db *DB) LatestArticles(ctx context.Context, limit int) ([]*Article, error) {
	return db.ListArticles(ctx, "", limit, 0)
}

// RecentArticles retrieves articles published within a time range,
// newest first. Used by the RSS output feed.
func (db *DB) RecentArticles(ctx context.Context, since time.Time, limit int) ([]*Article, error) {
	query := `
		SELECT ` + articleColumns + `
		` + articleFrom + `
		WHERE a.published_at >= $1
		ORDER BY a.published_at DESC, a.id ASC
		LIMIT $2
	`

	rows, err := db.pool.Query(ctx, query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent articles: %w", err)
	}
	defer rows.Close()

	return collectArticles(rows)
}

// RecentlyScraped retrieves articles ordered by scrape time, newest
// first. Used by the ingest history endpoint.
func (db *DB) RecentlyScraped(ctx context.Context, limit int) ([]*Article, error) {
	query := `
		SELECT ` + articleColumns + `
		` + articleFrom + `
		ORDER BY a.scraped_at DESC, a.id ASC
		LIMIT $1
	`

	rows, err := db.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scraped articles: %w", err)
	}
	defer rows.Close()

	return collectArticles(rows)
}

// SearchCandidates retrieves articles whose search vector contains at
// least one of the query tokens, optionally restricted to a category.
// The limit caps how many candidates the ranking stage considers.
func (db *DB) SearchCandidates(ctx context.Context, tokens []string, category string, limit int) ([]*Article, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	query := `
		SELECT ` + articleColumns + `
		` + articleFrom + `
		WHERE a.search_vector ?| $1
		  AND ($2 = '' OR a.category_name = $2)
		ORDER BY a.published_at DESC, a.id ASC
		LIMIT $3
	`

	rows, err := db.pool.Query(ctx, query, tokens, category, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query search candidates: %w", err)
	}
	defer rows.Close()

	return collectArticles(rows)
}

// TokenDocCounts returns, for each token, the number of stored articles
// whose search vector contains it. Tokens with no matches are absent.
func (db *DB) TokenDocCounts(ctx context.Context, tokens []string) (map[string]int, error) {
	if len(tokens) == 0 {
		return map[string]int{}, nil
	}

	query := `
		SELECT t.token, count(*)
		FROM unnest($1::text[]) AS t(token)
		JOIN articles a ON a.search_vector ? t.token
		GROUP BY t.token
	`

	rows, err := db.pool.Query(ctx, query, tokens)
	if err != nil {
		return nil, fmt.Errorf("failed to query token counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int, len(tokens))
	for rows.Next() {
		var token string
		var count int
		if err := rows.Scan(&token, &count); err != nil {
			return nil, fmt.Errorf("failed to scan token count: %w", err)
		}
		counts[token] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating token counts: %w", err)
	}

	return counts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (*Article, error) {
	var article Article
	err := row.Scan(
		&article.ID,
		&article.URL,
		&article.URLHash,
		&article.ContentHash,
		&article.Title,
		&article.Summary,
		&article.Content,
		&article.Author,
		&article.ImageURL,
		&article.CategoryName,
		&article.CategoryDisplay,
		&article.CategoryConfidence,
		&article.Keywords,
		&article.Entities,
		&article.SearchVector,
		&article.PublishedAt,
		&article.ScrapedAt,
		&article.CreatedAt,
		&article.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &article, nil
}

func collectArticles(rows pgx.Rows) ([]*Article, error) {
	var articles []*Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating articles: %w", err)
	}
	return articles, nil
}
