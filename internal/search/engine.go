// Package search ranks stored articles against free-text queries and
// serves suggestions and aggregate statistics.
package search

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/ObaidOIS/TSFSE/internal/classify"
	"github.com/ObaidOIS/TSFSE/internal/database"
)

// QueryError marks a rejected request. Handlers map it to a 400.
type QueryError struct {
	Reason string
}

func (e *QueryError) Error() string { return e.Reason }

// Store is the database surface the engine depends on.
type Store interface {
	SearchCandidates(ctx context.Context, tokens []string, category string, limit int) ([]*database.Article, error)
	TokenDocCounts(ctx context.Context, tokens []string) (map[string]int, error)
	CountArticles(ctx context.Context, category string) (int, error)
	LogQuery(ctx context.Context, entry *database.QueryLogEntry) error
	QueriesWithPrefix(ctx context.Context, prefix string, limit int) ([]string, error)
	KeywordsWithPrefix(ctx context.Context, prefix string, limit int) ([]string, error)
	PopularQueries(ctx context.Context, limit int) ([]database.PopularQuery, error)
	CategoryCounts(ctx context.Context) ([]database.CategoryCount, error)
	CountQueries(ctx context.Context) (int, error)
}

// Detector infers a category from query text.
type Detector interface {
	DetectQueryCategory(query string) (string, float64)
}

// Config holds ranking parameters.
type Config struct {
	// SuppressionThreshold is the minimum detection confidence at
	// which the detected category filters results. Below it the
	// detection is still reported but only boosts.
	SuppressionThreshold float64
	// RecencyHalfLife is the article age at which the recency
	// contribution halves.
	RecencyHalfLife time.Duration
	// RecencyWeight scales the recency contribution.
	RecencyWeight float64
	// CategoryBoost is added to articles matching a detected but
	// non-filtering category.
	CategoryBoost float64
	// MaxCandidates caps how many articles are pulled for ranking.
	MaxCandidates int
	// TermSaturation dampens repeated term occurrences. Higher
	// values flatten the term-frequency curve.
	TermSaturation float64
}

// DefaultConfig returns the ranking parameters used when none are
// configured.
func DefaultConfig() Config {
	return Config{
		SuppressionThreshold: 0.3,
		RecencyHalfLife:      72 * time.Hour,
		RecencyWeight:        1.0,
		CategoryBoost:        0.5,
		MaxCandidates:        1000,
		TermSaturation:       1.2,
	}
}

// Params is a validated-on-entry search request.
type Params struct {
	Query    string
	Category string
	Page     int
	PageSize int
	SortBy   string
}

// Result pairs an article with its composite score. The score is zero
// for date-ordered requests.
type Result struct {
	Article *database.Article
	Score   float64
}

// Response is a complete page of search results.
type Response struct {
	Query                      string
	DetectedCategory           string
	DetectedCategoryConfidence float64
	AppliedCategory            string
	TotalResults               int
	Page                       int
	PageSize                   int
	TotalPages                 int
	ExecutionTimeMS            int64
	Results                    []Result
}

// Engine executes searches against the store.
type Engine struct {
	store    Store
	detector Detector
	cfg      Config
	logger   *zap.SugaredLogger
	now      func() time.Time

	searches atomic.Int64
}

// New creates a search engine. Zero-valued config fields take their
// defaults.
func New(store Store, detector Detector, cfg Config, logger *zap.SugaredLogger) *Engine {
	defaults := DefaultConfig()
	if cfg.SuppressionThreshold <= 0 {
		cfg.SuppressionThreshold = defaults.SuppressionThreshold
	}
	if cfg.RecencyHalfLife <= 0 {
		cfg.RecencyHalfLife = defaults.RecencyHalfLife
	}
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = defaults.MaxCandidates
	}
	if cfg.TermSaturation <= 0 {
		cfg.TermSaturation = defaults.TermSaturation
	}
	return &Engine{
		store:    store,
		detector: detector,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// validate normalizes paging and sorting defaults and rejects
// malformed requests.
func validate(params *Params) error {
	params.Query = strings.TrimSpace(params.Query)
	if params.Query == "" {
		return &QueryError{Reason: "query must not be empty"}
	}
	if params.Page == 0 {
		params.Page = 1
	}
	if params.Page < 1 {
		return &QueryError{Reason: "page must be at least 1"}
	}
	if params.PageSize == 0 {
		params.PageSize = defaultPageSize
	}
	if params.PageSize < 1 || params.PageSize > maxPageSize {
		return &QueryError{Reason: fmt.Sprintf("page_size must be between 1 and %d", maxPageSize)}
	}
	switch params.SortBy {
	case "":
		params.SortBy = "relevance"
	case "relevance", "date", "-date":
	default:
		return &QueryError{Reason: "sort_by must be one of relevance, date, -date"}
	}
	return nil
}

// Search runs the full query pipeline: tokenize, detect category,
// gather candidates, score, order and paginate. The detected category
// is always reported; it filters results only when its confidence
// clears the suppression threshold and no explicit category was
// requested.
func (e *Engine) Search(ctx context.Context, params Params) (*Response, error) {
	started := e.now()

	if err := validate(&params); err != nil {
		return nil, err
	}

	tokens := classify.Tokenize(params.Query)
	detected, confidence := e.detector.DetectQueryCategory(params.Query)

	filterCategory := params.Category
	boostCategory := ""
	if filterCategory == "" && detected != "" {
		if confidence >= e.cfg.SuppressionThreshold {
			filterCategory = detected
		} else {
			boostCategory = detected
		}
	}

	results, err := e.rank(ctx, tokens, filterCategory, boostCategory, params.SortBy)
	if err != nil {
		return nil, err
	}

	total := len(results)
	totalPages := (total + params.PageSize - 1) / params.PageSize

	resp := &Response{
		Query:                      params.Query,
		DetectedCategory:           detected,
		DetectedCategoryConfidence: confidence,
		AppliedCategory:            filterCategory,
		TotalResults:               total,
		Page:                       params.Page,
		PageSize:                   params.PageSize,
		TotalPages:                 totalPages,
		Results:                    pageOf(results, params.Page, params.PageSize),
		ExecutionTimeMS:            e.now().Sub(started).Milliseconds(),
	}

	e.searches.Add(1)
	e.logQuery(ctx, resp)

	return resp, nil
}

// rank gathers candidates and orders them. Relevance ordering uses
// the composite score; date orderings skip scoring entirely.
func (e *Engine) rank(ctx context.Context, tokens []string, filterCategory, boostCategory, sortBy string) ([]Result, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	candidates, err := e.store.SearchCandidates(ctx, tokens, filterCategory, e.cfg.MaxCandidates)
	if err != nil {
		return nil, fmt.Errorf("gather candidates: %w", err)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	results := make([]Result, 0, len(candidates))

	switch sortBy {
	case "date":
		for _, a := range candidates {
			results = append(results, Result{Article: a})
		}
		sort.SliceStable(results, func(i, j int) bool {
			return byDate(results[i].Article, results[j].Article, true)
		})
	case "-date":
		for _, a := range candidates {
			results = append(results, Result{Article: a})
		}
		sort.SliceStable(results, func(i, j int) bool {
			return byDate(results[i].Article, results[j].Article, false)
		})
	default:
		docCounts, err := e.store.TokenDocCounts(ctx, tokens)
		if err != nil {
			return nil, fmt.Errorf("count token documents: %w", err)
		}
		totalDocs, err := e.store.CountArticles(ctx, "")
		if err != nil {
			return nil, fmt.Errorf("count articles: %w", err)
		}

		now := e.now()
		for _, a := range candidates {
			score := e.score(a, tokens, docCounts, totalDocs, now, boostCategory)
			results = append(results, Result{Article: a, Score: score})
		}
		sort.SliceStable(results, func(i, j int) bool {
			if results[i].Score != results[j].Score {
				return results[i].Score > results[j].Score
			}
			return byDate(results[i].Article, results[j].Article, false)
		})
	}

	return results, nil
}

// byDate orders two articles by published time with the article ID as
// a stable tie-break.
func byDate(a, b *database.Article, ascending bool) bool {
	if !a.PublishedAt.Equal(b.PublishedAt) {
		if ascending {
			return a.PublishedAt.Before(b.PublishedAt)
		}
		return a.PublishedAt.After(b.PublishedAt)
	}
	return a.ID < b.ID
}

// score computes the composite relevance score: a saturated
// inverse-document-frequency term sum, an exponentially decaying
// recency term, and a flat boost for the detected category.
func (e *Engine) score(article *database.Article, tokens []string, docCounts map[string]int, totalDocs int, now time.Time, boostCategory string) float64 {
	var score float64
	for _, token := range tokens {
		tf := article.SearchVector[token]
		if tf <= 0 {
			continue
		}
		df := float64(docCounts[token])
		idf := math.Log(1 + (float64(totalDocs)-df+0.5)/(df+0.5))
		score += idf * tf / (tf + e.cfg.TermSaturation)
	}
	if score <= 0 {
		return 0
	}

	if e.cfg.RecencyWeight > 0 && !article.PublishedAt.IsZero() {
		age := now.Sub(article.PublishedAt)
		if age < 0 {
			age = 0
		}
		decay := math.Exp(-math.Ln2 * age.Seconds() / e.cfg.RecencyHalfLife.Seconds())
		score += e.cfg.RecencyWeight * decay
	}

	if boostCategory != "" && article.CategoryName == boostCategory {
		score += e.cfg.CategoryBoost
	}

	return score
}

// pageOf slices one 1-indexed page out of the ordered results. Pages
// past the end are empty, not an error.
func pageOf(results []Result, page, pageSize int) []Result {
	offset := (page - 1) * pageSize
	if offset >= len(results) {
		return nil
	}
	end := offset + pageSize
	if end > len(results) {
		end = len(results)
	}
	return results[offset:end]
}

// logQuery appends the search to the query log. Failures are logged
// and swallowed; the response is already built.
func (e *Engine) logQuery(ctx context.Context, resp *Response) {
	entry := &database.QueryLogEntry{
		Query:            resp.Query,
		DetectedCategory: resp.DetectedCategory,
		ResultsCount:     resp.TotalResults,
		ExecutionTimeMS:  resp.ExecutionTimeMS,
	}
	if err := e.store.LogQuery(ctx, entry); err != nil {
		e.logger.Warnw("failed to log search query", "query", resp.Query, "error", err)
	}
}

// SearchesServed reports the number of searches handled by this
// process since start.
func (e *Engine) SearchesServed() int64 {
	return e.searches.Load()
}
