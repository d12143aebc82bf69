package search

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ObaidOIS/TSFSE/internal/database"
)

// fakeStore serves canned articles and records logged queries.
type fakeStore struct {
	articles []*database.Article
	queries  []string
	popular  []database.PopularQuery
	keywords []string
	counts   []database.CategoryCount
	logged   []*database.QueryLogEntry
	logErr   error
}

func (f *fakeStore) SearchCandidates(_ context.Context, tokens []string, category string, limit int) ([]*database.Article, error) {
	var out []*database.Article
	for _, a := range f.articles {
		if category != "" && a.CategoryName != category {
			continue
		}
		for _, tok := range tokens {
			if a.SearchVector[tok] > 0 {
				out = append(out, a)
				break
			}
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeStore) TokenDocCounts(_ context.Context, tokens []string) (map[string]int, error) {
	counts := make(map[string]int)
	for _, tok := range tokens {
		for _, a := range f.articles {
			if a.SearchVector[tok] > 0 {
				counts[tok]++
			}
		}
	}
	return counts, nil
}

func (f *fakeStore) CountArticles(_ context.Context, category string) (int, error) {
	if category == "" {
		return len(f.articles), nil
	}
	n := 0
	for _, a := range f.articles {
		if a.CategoryName == category {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) LogQuery(_ context.Context, entry *database.QueryLogEntry) error {
	if f.logErr != nil {
		return f.logErr
	}
	f.logged = append(f.logged, entry)
	return nil
}

func (f *fakeStore) QueriesWithPrefix(_ context.Context, prefix string, limit int) ([]string, error) {
	var out []string
	for _, q := range f.queries {
		if strings.HasPrefix(strings.ToLower(q), prefix) && len(out) < limit {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeStore) KeywordsWithPrefix(_ context.Context, prefix string, limit int) ([]string, error) {
	var out []string
	for _, kw := range f.keywords {
		if strings.HasPrefix(strings.ToLower(kw), prefix) && len(out) < limit {
			out = append(out, kw)
		}
	}
	return out, nil
}

func (f *fakeStore) PopularQueries(_ context.Context, limit int) ([]database.PopularQuery, error) {
	if len(f.popular) > limit {
		return f.popular[:limit], nil
	}
	return f.popular, nil
}

func (f *fakeStore) CategoryCounts(_ context.Context) ([]database.CategoryCount, error) {
	return f.counts, nil
}

func (f *fakeStore) CountQueries(_ context.Context) (int, error) {
	return len(f.logged), nil
}

// fakeDetector returns a fixed detection.
type fakeDetector struct {
	category   string
	confidence float64
}

func (f *fakeDetector) DetectQueryCategory(string) (string, float64) {
	return f.category, f.confidence
}

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func article(id, category string, published time.Time, vector map[string]float64) *database.Article {
	return &database.Article{
		ID:           id,
		Title:        "Article " + id,
		URL:          "https://example.com/" + id,
		CategoryName: category,
		PublishedAt:  published,
		SearchVector: vector,
	}
}

func newTestEngine(store *fakeStore, detector Detector) *Engine {
	if detector == nil {
		detector = &fakeDetector{}
	}
	e := New(store, detector, DefaultConfig(), zap.NewNop().Sugar())
	e.now = func() time.Time { return testNow }
	return e
}

func TestSearchRejectsBadParams(t *testing.T) {
	e := newTestEngine(&fakeStore{}, nil)
	ctx := context.Background()

	cases := []struct {
		name   string
		params Params
	}{
		{"empty query", Params{Query: "   "}},
		{"negative page", Params{Query: "rally", Page: -1}},
		{"oversized page size", Params{Query: "rally", PageSize: 101}},
		{"unknown sort", Params{Query: "rally", SortBy: "title"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.Search(ctx, tc.params)
			var qerr *QueryError
			assert.ErrorAs(t, err, &qerr)
		})
	}
}

func TestSearchZeroHits(t *testing.T) {
	store := &fakeStore{articles: []*database.Article{
		article("a1", "market", testNow, map[string]float64{"rally": 3}),
	}}
	e := newTestEngine(store, nil)

	resp, err := e.Search(context.Background(), Params{Query: "zzzqqq"})
	require.NoError(t, err)

	assert.Zero(t, resp.TotalResults)
	assert.Empty(t, resp.Results)
	assert.Zero(t, resp.TotalPages)
	assert.Equal(t, 1, resp.Page)
}

func TestSearchRecencyOrdersEqualTermScores(t *testing.T) {
	old := article("old", "market", testNow.Add(-30*24*time.Hour), map[string]float64{"rally": 3})
	fresh := article("new", "market", testNow.Add(-1*time.Hour), map[string]float64{"rally": 3})
	store := &fakeStore{articles: []*database.Article{old, fresh}}
	e := newTestEngine(store, nil)

	resp, err := e.Search(context.Background(), Params{Query: "rally"})
	require.NoError(t, err)

	require.Len(t, resp.Results, 2)
	assert.Equal(t, "new", resp.Results[0].Article.ID)
	assert.Equal(t, "old", resp.Results[1].Article.ID)
	assert.Greater(t, resp.Results[0].Score, resp.Results[1].Score)
}

func TestSearchPaginationDeterministic(t *testing.T) {
	store := &fakeStore{}
	published := testNow
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		published = published.Add(-time.Hour)
		store.articles = append(store.articles, article(id, "market", published, map[string]float64{"rally": 3}))
	}
	e := newTestEngine(store, nil)
	ctx := context.Background()

	page1, err := e.Search(ctx, Params{Query: "rally", Page: 1, PageSize: 2})
	require.NoError(t, err)
	page2, err := e.Search(ctx, Params{Query: "rally", Page: 2, PageSize: 2})
	require.NoError(t, err)
	again, err := e.Search(ctx, Params{Query: "rally", Page: 1, PageSize: 2})
	require.NoError(t, err)

	assert.Equal(t, 5, page1.TotalResults)
	assert.Equal(t, 3, page1.TotalPages)
	require.Len(t, page1.Results, 2)
	require.Len(t, page2.Results, 2)

	ids := func(resp *Response) []string {
		var out []string
		for _, r := range resp.Results {
			out = append(out, r.Article.ID)
		}
		return out
	}
	assert.Equal(t, ids(page1), ids(again))
	assert.NotEqual(t, ids(page1), ids(page2))
}

func TestSearchPageBeyondEnd(t *testing.T) {
	store := &fakeStore{articles: []*database.Article{
		article("a1", "market", testNow, map[string]float64{"rally": 3}),
	}}
	e := newTestEngine(store, nil)

	resp, err := e.Search(context.Background(), Params{Query: "rally", Page: 9})
	require.NoError(t, err)

	assert.Equal(t, 1, resp.TotalResults)
	assert.Empty(t, resp.Results)
	assert.Equal(t, 9, resp.Page)
}

func TestSearchDetectedCategoryFilters(t *testing.T) {
	store := &fakeStore{articles: []*database.Article{
		article("m1", "market", testNow, map[string]float64{"rally": 3}),
		article("h1", "health", testNow, map[string]float64{"rally": 1}),
	}}
	e := newTestEngine(store, &fakeDetector{category: "market", confidence: 0.9})

	resp, err := e.Search(context.Background(), Params{Query: "rally"})
	require.NoError(t, err)

	assert.Equal(t, "market", resp.DetectedCategory)
	assert.Equal(t, 0.9, resp.DetectedCategoryConfidence)
	assert.Equal(t, "market", resp.AppliedCategory)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "m1", resp.Results[0].Article.ID)
}

func TestSearchLowConfidenceDetectionReportedNotApplied(t *testing.T) {
	store := &fakeStore{articles: []*database.Article{
		article("m1", "market", testNow, map[string]float64{"rally": 3}),
		article("h1", "health", testNow, map[string]float64{"rally": 3}),
	}}
	e := newTestEngine(store, &fakeDetector{category: "market", confidence: 0.1})

	resp, err := e.Search(context.Background(), Params{Query: "rally"})
	require.NoError(t, err)

	assert.Equal(t, "market", resp.DetectedCategory)
	assert.Empty(t, resp.AppliedCategory)
	require.Len(t, resp.Results, 2)
	// The below-threshold detection still boosts matching articles.
	assert.Equal(t, "m1", resp.Results[0].Article.ID)
}

func TestSearchExplicitCategoryWins(t *testing.T) {
	store := &fakeStore{articles: []*database.Article{
		article("m1", "market", testNow, map[string]float64{"rally": 3}),
		article("h1", "health", testNow, map[string]float64{"rally": 3}),
	}}
	e := newTestEngine(store, &fakeDetector{category: "market", confidence: 0.9})

	resp, err := e.Search(context.Background(), Params{Query: "rally", Category: "health"})
	require.NoError(t, err)

	assert.Equal(t, "health", resp.AppliedCategory)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "h1", resp.Results[0].Article.ID)
}

func TestSearchDateSort(t *testing.T) {
	oldest := article("oldest", "market", testNow.Add(-48*time.Hour), map[string]float64{"rally": 9})
	newest := article("newest", "market", testNow.Add(-1*time.Hour), map[string]float64{"rally": 1})
	store := &fakeStore{articles: []*database.Article{oldest, newest}}
	e := newTestEngine(store, nil)
	ctx := context.Background()

	desc, err := e.Search(ctx, Params{Query: "rally", SortBy: "-date"})
	require.NoError(t, err)
	require.Len(t, desc.Results, 2)
	assert.Equal(t, "newest", desc.Results[0].Article.ID)
	assert.Zero(t, desc.Results[0].Score)

	asc, err := e.Search(ctx, Params{Query: "rally", SortBy: "date"})
	require.NoError(t, err)
	assert.Equal(t, "oldest", asc.Results[0].Article.ID)
}

func TestSearchLogsQueries(t *testing.T) {
	store := &fakeStore{articles: []*database.Article{
		article("a1", "market", testNow, map[string]float64{"rally": 3}),
	}}
	e := newTestEngine(store, &fakeDetector{category: "market", confidence: 0.9})

	_, err := e.Search(context.Background(), Params{Query: "rally"})
	require.NoError(t, err)

	require.Len(t, store.logged, 1)
	assert.Equal(t, "rally", store.logged[0].Query)
	assert.Equal(t, "market", store.logged[0].DetectedCategory)
	assert.Equal(t, 1, store.logged[0].ResultsCount)
	assert.Equal(t, int64(1), e.SearchesServed())
}

func TestSearchSurvivesLogFailure(t *testing.T) {
	store := &fakeStore{
		articles: []*database.Article{
			article("a1", "market", testNow, map[string]float64{"rally": 3}),
		},
		logErr: assert.AnError,
	}
	e := newTestEngine(store, nil)

	resp, err := e.Search(context.Background(), Params{Query: "rally"})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.TotalResults)
}

func TestSuggest(t *testing.T) {
	store := &fakeStore{
		queries:  []string{"inflation rate", "inflation forecast"},
		keywords: []string{"inflation", "industrial"},
	}
	e := newTestEngine(store, nil)
	ctx := context.Background()

	got, err := e.Suggest(ctx, "inf", 10)
	require.NoError(t, err)
	// Logged queries first, then keywords that add something new.
	assert.Equal(t, []string{"inflation rate", "inflation forecast", "inflation"}, got)

	got, err = e.Suggest(ctx, "inf", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"inflation rate", "inflation forecast"}, got)

	got, err = e.Suggest(ctx, "  ", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStats(t *testing.T) {
	store := &fakeStore{
		articles: []*database.Article{
			article("a1", "market", testNow, map[string]float64{"rally": 3}),
			article("a2", "health", testNow, map[string]float64{"vaccine": 3}),
		},
		popular: []database.PopularQuery{{Query: "rally", Count: 4}},
		counts: []database.CategoryCount{
			{Name: "market", DisplayName: "Markets", ArticleCount: 1},
		},
	}
	e := newTestEngine(store, nil)

	_, err := e.Search(context.Background(), Params{Query: "rally"})
	require.NoError(t, err)

	stats, err := e.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TotalArticles)
	assert.Equal(t, 1, stats.TotalSearches)
	assert.Equal(t, "rally", stats.PopularQueries[0].Query)
	assert.Len(t, stats.Categories, 1)
}
