// Package fetch pulls syndication feeds and normalizes their entries
// into candidate article records.
package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"
)

// Candidate is a raw fetched entry, not yet confirmed as new, updated
// or duplicate.
type Candidate struct {
	URL         string
	Title       string
	Summary     string
	Content     string
	Author      string
	ImageURL    string
	PublishedAt time.Time
}

// FetchError reports a total failure fetching or parsing a feed.
// Individual malformed entries are skipped, not raised.
type FetchError struct {
	FeedURL string
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.FeedURL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Config holds fetcher settings.
type Config struct {
	// Timeout bounds every HTTP call; a stalled feed becomes a
	// FetchError rather than a hang.
	Timeout time.Duration
	// FetchContent enables fetching the article page for entries
	// whose feed body is empty.
	FetchContent bool
	// MaxPerFeed caps entries taken from a single feed per fetch.
	MaxPerFeed int
}

// Fetcher downloads and parses syndication feeds. It performs no
// retries; retry policy belongs to the scheduler.
type Fetcher struct {
	client *http.Client
	parser *gofeed.Parser
	cfg    Config
	logger *zap.SugaredLogger
}

// New creates a fetcher.
func New(cfg Config, logger *zap.SugaredLogger) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxPerFeed <= 0 {
		cfg.MaxPerFeed = 50
	}
	return &Fetcher{
		client: &http.Client{Timeout: cfg.Timeout},
		parser: gofeed.NewParser(),
		cfg:    cfg,
		logger: logger,
	}
}

// Fetch downloads one feed and returns its normalized candidates plus
// the number of entries skipped as malformed. A network or parse
// failure of the whole feed returns a *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, feedURL string) ([]Candidate, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, 0, &FetchError{FeedURL: feedURL, Err: err}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, &FetchError{FeedURL: feedURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, &FetchError{FeedURL: feedURL, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	feed, err := f.parser.Parse(resp.Body)
	if err != nil {
		return nil, 0, &FetchError{FeedURL: feedURL, Err: err}
	}

	candidates := make([]Candidate, 0, len(feed.Items))
	skipped := 0
	for _, item := range feed.Items {
		if len(candidates) >= f.cfg.MaxPerFeed {
			break
		}
		candidate, ok := f.normalizeItem(ctx, item)
		if !ok {
			skipped++
			continue
		}
		candidates = append(candidates, candidate)
	}

	return candidates, skipped, nil
}

// normalizeItem converts one feed entry to a candidate. Entries
// without a usable link or title are rejected.
func (f *Fetcher) normalizeItem(ctx context.Context, item *gofeed.Item) (Candidate, bool) {
	link := extractLink(item)
	if link == "" || strings.TrimSpace(item.Title) == "" {
		f.logger.Debugw("skipping malformed feed entry", "title", item.Title, "link", link)
		return Candidate{}, false
	}

	candidate := Candidate{
		URL:      link,
		Title:    strings.TrimSpace(item.Title),
		Summary:  StripHTML(item.Description),
		Content:  StripHTML(item.Content),
		Author:   extractAuthor(item),
		ImageURL: extractImage(item),
	}
	if item.PublishedParsed != nil {
		candidate.PublishedAt = *item.PublishedParsed
	}

	if candidate.Content == "" && f.cfg.FetchContent {
		content, err := f.fetchReadable(ctx, link)
		if err != nil {
			// Soft failure: the entry is still usable with
			// summary only, and a later cycle may fill it in.
			f.logger.Debugw("full content fetch failed", "url", link, "error", err)
		} else {
			candidate.Content = content
		}
	}

	return candidate, true
}

// fetchReadable downloads an article page and extracts its readable
// plain text.
func (f *Fetcher) fetchReadable(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	parsed, err := url.Parse(pageURL)
	if err != nil {
		return "", err
	}

	article, err := readability.FromReader(resp.Body, parsed)
	if err != nil {
		return "", fmt.Errorf("extract content: %w", err)
	}

	return collapseWhitespace(article.TextContent), nil
}

// extractLink returns the best available URL from a feed entry,
// preferring the explicit link and falling back to a URL-shaped GUID.
func extractLink(item *gofeed.Item) string {
	if item.Link != "" {
		return item.Link
	}
	if strings.HasPrefix(item.GUID, "http") {
		return item.GUID
	}
	return ""
}

func extractAuthor(item *gofeed.Item) string {
	if item.Author != nil && item.Author.Name != "" {
		return item.Author.Name
	}
	for _, a := range item.Authors {
		if a != nil && a.Name != "" {
			return a.Name
		}
	}
	return ""
}

// extractImage finds a usable image URL: the entry image, then image
// enclosures, then media:content extensions, then the first <img> in
// the summary HTML.
func extractImage(item *gofeed.Item) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}

	for _, enc := range item.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "image") && enc.URL != "" {
			return enc.URL
		}
	}

	if media, ok := item.Extensions["media"]; ok {
		for _, ext := range media["content"] {
			if u := ext.Attrs["url"]; u != "" {
				return u
			}
		}
		for _, ext := range media["thumbnail"] {
			if u := ext.Attrs["url"]; u != "" {
				return u
			}
		}
	}

	if item.Description != "" {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(item.Description))
		if err == nil {
			if src, exists := doc.Find("img").First().Attr("src"); exists {
				return src
			}
		}
	}

	return ""
}

// StripHTML converts an HTML fragment to plain text with collapsed
// whitespace. Non-HTML input passes through unchanged apart from
// whitespace normalization.
func StripHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return collapseWhitespace(s)
	}
	return collapseWhitespace(doc.Text())
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
