package database

import (
	"time"

	"github.com/ObaidOIS/TSFSE/internal/classify"
)

// Article is the stored unit of content. URLHash is unique: re-fetching
// the same URL updates the existing row instead of inserting a second
// one. SearchVector is the weighted token representation maintained by
// the indexer and is rewritten whenever the content fields change.
type Article struct {
	ID                 string
	URL                string
	URLHash            string
	ContentHash        string
	Title              string
	Summary            string
	Content            string
	Author             string
	ImageURL           string
	CategoryName       string
	CategoryDisplay    string
	CategoryConfidence float64
	Keywords           []classify.Keyword
	Entities           map[string][]string
	SearchVector       map[string]float64
	PublishedAt        time.Time
	ScrapedAt          time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// KeywordsList returns just the keyword strings, in rank order.
func (a *Article) KeywordsList() []string {
	words := make([]string, len(a.Keywords))
	for i, k := range a.Keywords {
		words[i] = k.Word
	}
	return words
}

// Category is a taxonomy entry. Keywords is the keyword-weight table
// consumed by the categorizer: lowercase token to positive weight.
type Category struct {
	ID          int
	Name        string
	DisplayName string
	Description string
	Keywords    map[string]float64
	CreatedAt   time.Time
}

// QueryLogEntry is one recorded search, kept for suggestions and
// aggregate statistics. Append-only.
type QueryLogEntry struct {
	ID               int64
	Query            string
	DetectedCategory string
	ResultsCount     int
	ExecutionTimeMS  int64
	CreatedAt        time.Time
}

// PopularQuery is an aggregate over the query log.
type PopularQuery struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

// CategoryCount pairs a category with its article count.
type CategoryCount struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	DisplayName  string `json:"display_name"`
	Description  string `json:"description"`
	ArticleCount int    `json:"article_count"`
}
