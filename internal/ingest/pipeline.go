package ingest

import (
	"context"
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/ObaidOIS/TSFSE/internal/database"
	"github.com/ObaidOIS/TSFSE/internal/dedup"
	"github.com/ObaidOIS/TSFSE/internal/fetch"
)

// reloadTables refreshes the categorizer's keyword tables from the
// database so category edits apply on the next cycle. A read failure
// or an empty table set keeps the tables already loaded.
func (s *Scheduler) reloadTables(ctx context.Context) {
	tables, err := s.store.KeywordTables(ctx)
	if err != nil {
		s.logger.Warnw("keyword table reload failed", "error", err)
		return
	}
	if len(tables) == 0 {
		return
	}
	s.categorizer.Reload(tables)
}

// workItem is a candidate that survived dedup and is headed for the
// database.
type workItem struct {
	article *database.Article
	outcome dedup.Outcome
}

// runCycle executes one full ingest pass: fetch all feeds, classify
// each candidate against stored articles, enrich survivors in
// parallel, then persist serially. The cycle fails only when every
// feed fails; per-entry problems are recorded and skipped.
func (s *Scheduler) runCycle(ctx context.Context) CycleSummary {
	started := s.now()
	summary := CycleSummary{StartedAt: started}

	s.reloadTables(ctx)

	candidates, feedsOK := s.fetchAll(ctx, &summary)
	if feedsOK == 0 && len(s.cfg.FeedURLs) > 0 {
		summary.Failed = true
		summary.DurationMS = s.now().Sub(started).Milliseconds()
		return summary
	}

	if len(candidates) > s.cfg.MaxPerCycle {
		candidates = candidates[:s.cfg.MaxPerCycle]
	}
	summary.Fetched = len(candidates)

	items := s.dedupAll(ctx, candidates, &summary)
	s.enrichAll(items)
	s.persistAll(ctx, items, &summary)

	summary.DurationMS = s.now().Sub(started).Milliseconds()
	return summary
}

// fetchAll pulls every configured feed, tolerating individual feed
// failures. Returns the combined candidates and how many feeds
// succeeded.
func (s *Scheduler) fetchAll(ctx context.Context, summary *CycleSummary) ([]fetch.Candidate, int) {
	var candidates []fetch.Candidate
	feedsOK := 0

	for _, feedURL := range s.cfg.FeedURLs {
		if ctx.Err() != nil {
			break
		}
		fetched, skipped, err := s.fetcher.Fetch(ctx, feedURL)
		if err != nil {
			summary.Errors = append(summary.Errors, err.Error())
			s.logger.Warnw("feed fetch failed", "feed", feedURL, "error", err)
			continue
		}
		feedsOK++
		summary.Skipped += skipped
		candidates = append(candidates, fetched...)
	}

	return candidates, feedsOK
}

// dedupAll classifies candidates sequentially against the store so
// that two copies of the same story inside one cycle collapse into
// one write.
func (s *Scheduler) dedupAll(ctx context.Context, candidates []fetch.Candidate, summary *CycleSummary) []*workItem {
	items := make([]*workItem, 0, len(candidates))
	seen := make(map[string]bool, len(candidates))

	for _, c := range candidates {
		if ctx.Err() != nil {
			break
		}

		decision, err := s.deduper.Check(ctx, c.URL, c.Title, c.Summary, c.Content)
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("dedup %s: %v", c.URL, err))
			continue
		}
		if seen[decision.URLHash] {
			summary.Duplicates++
			continue
		}
		seen[decision.URLHash] = true

		switch decision.Outcome {
		case dedup.OutcomeDuplicate:
			summary.Duplicates++
		case dedup.OutcomeNew:
			items = append(items, &workItem{
				article: s.newArticle(c, decision),
				outcome: dedup.OutcomeNew,
			})
		case dedup.OutcomeUpdated:
			items = append(items, &workItem{
				article: s.revisedArticle(c, decision),
				outcome: dedup.OutcomeUpdated,
			})
		}
	}

	return items
}

// enrichAll categorizes and indexes work items on the worker pool.
// Each item is touched by exactly one worker, so no locking is needed
// on the articles themselves.
func (s *Scheduler) enrichAll(items []*workItem) {
	var wg sync.WaitGroup
	for _, item := range items {
		item := item
		wg.Add(1)
		task := func() {
			defer wg.Done()
			s.enrich(item.article)
		}
		if err := s.pool.Submit(task); err != nil {
			// Pool exhausted or released; do the work inline.
			task()
		}
	}
	wg.Wait()
}

func (s *Scheduler) enrich(article *database.Article) {
	result := s.categorizer.Categorize(article.Title, article.Summary+" "+article.Content)
	article.CategoryName = result.Category
	article.CategoryConfidence = result.Confidence
	article.Keywords = result.Keywords
	article.Entities = result.Entities
	s.indexer.Apply(article)
}

// persistAll writes items one at a time, checking for cancellation
// between writes. Counters advance only on successful writes.
func (s *Scheduler) persistAll(ctx context.Context, items []*workItem, summary *CycleSummary) {
	for _, item := range items {
		if ctx.Err() != nil {
			break
		}

		var err error
		if item.outcome == dedup.OutcomeNew {
			err = s.store.CreateArticle(ctx, item.article)
		} else {
			err = s.store.UpdateArticle(ctx, item.article)
		}
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("persist %s: %v", item.article.URL, err))
			continue
		}

		if item.outcome == dedup.OutcomeNew {
			summary.New++
		} else {
			summary.Updated++
		}
		summary.LastArticleURL = item.article.URL
	}
}

// newArticle builds a fresh article from a candidate. A candidate
// without a publication time is dated by its scrape time so ordering
// by published_at never sees a zero value.
func (s *Scheduler) newArticle(c fetch.Candidate, decision dedup.Decision) *database.Article {
	now := s.now()
	published := c.PublishedAt
	if published.IsZero() {
		published = now
	}
	return &database.Article{
		ID:          uuid.NewString(),
		URL:         dedup.NormalizeURL(c.URL),
		URLHash:     decision.URLHash,
		ContentHash: decision.ContentHash,
		Title:       c.Title,
		Summary:     summaryOrFallback(c),
		Content:     c.Content,
		Author:      c.Author,
		ImageURL:    c.ImageURL,
		PublishedAt: published,
		ScrapedAt:   now,
	}
}

// revisedArticle carries updated content onto the stored article,
// preserving its identity and first-scraped time.
func (s *Scheduler) revisedArticle(c fetch.Candidate, decision dedup.Decision) *database.Article {
	article := decision.Existing
	article.ContentHash = decision.ContentHash
	article.Title = c.Title
	article.Summary = summaryOrFallback(c)
	article.Content = c.Content
	if c.Author != "" {
		article.Author = c.Author
	}
	if c.ImageURL != "" {
		article.ImageURL = c.ImageURL
	}
	if !c.PublishedAt.IsZero() {
		article.PublishedAt = c.PublishedAt
	}
	return article
}

const fallbackSummaryLen = 300

// summaryOrFallback returns the feed summary, or the opening of the
// content when the feed provided none.
func summaryOrFallback(c fetch.Candidate) string {
	if c.Summary != "" {
		return c.Summary
	}
	if len(c.Content) <= fallbackSummaryLen {
		return c.Content
	}
	cut := truncateOnRune(c.Content, fallbackSummaryLen)
	if i := lastSentenceEnd(cut); i > 0 {
		return cut[:i+1]
	}
	return cut
}

// truncateOnRune cuts s to at most n bytes without splitting a
// multi-byte rune.
func truncateOnRune(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func lastSentenceEnd(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		switch s[i] {
		case '.', '!', '?':
			return i
		}
	}
	return -1
}
