// Package dedup decides whether a fetched candidate is new, an update
// to a stored article, or an exact duplicate.
package dedup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/ObaidOIS/TSFSE/internal/database"
)

// Outcome classifies a candidate against the article store.
type Outcome int

const (
	// OutcomeNew means no stored article shares the candidate's URL.
	OutcomeNew Outcome = iota
	// OutcomeUpdated means the URL is known but the content changed.
	OutcomeUpdated
	// OutcomeDuplicate means both URL and content are already stored.
	OutcomeDuplicate
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNew:
		return "new"
	case OutcomeUpdated:
		return "updated"
	case OutcomeDuplicate:
		return "duplicate"
	default:
		return "unknown"
	}
}

// Store is the subset of the database used for duplicate detection.
type Store interface {
	GetArticleByURLHash(ctx context.Context, urlHash string) (*database.Article, error)
}

// Decision is the result of checking one candidate.
type Decision struct {
	Outcome     Outcome
	URLHash     string
	ContentHash string
	// Existing is the stored article for updated and duplicate
	// outcomes, nil for new ones.
	Existing *database.Article
}

// Deduplicator checks candidates against stored articles by hash.
type Deduplicator struct {
	store Store
}

// New creates a deduplicator backed by the given store.
func New(store Store) *Deduplicator {
	return &Deduplicator{store: store}
}

// Check hashes the candidate and classifies it against the store.
func (d *Deduplicator) Check(ctx context.Context, rawURL, title, summary, content string) (Decision, error) {
	decision := Decision{
		URLHash:     URLHash(rawURL),
		ContentHash: ContentHash(title, summary, content),
	}

	existing, err := d.store.GetArticleByURLHash(ctx, decision.URLHash)
	if err != nil {
		return Decision{}, fmt.Errorf("look up article by url hash: %w", err)
	}
	if existing == nil {
		decision.Outcome = OutcomeNew
		return decision, nil
	}

	decision.Existing = existing
	if existing.ContentHash == decision.ContentHash {
		decision.Outcome = OutcomeDuplicate
	} else {
		decision.Outcome = OutcomeUpdated
	}
	return decision, nil
}

// tracking query parameters stripped during URL normalization
var trackingParams = map[string]bool{
	"fbclid": true,
	"gclid":  true,
	"mc_cid": true,
	"mc_eid": true,
	"ref":    true,
	"source": true,
}

// NormalizeURL canonicalizes a URL so that cosmetic variants hash the
// same: lowercased scheme and host, no fragment, no tracking
// parameters, no trailing slash, remaining query keys sorted.
func NormalizeURL(rawURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return strings.TrimSpace(rawURL)
	}

	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Fragment = ""
	parsed.Path = strings.TrimRight(parsed.Path, "/")

	query := parsed.Query()
	for key := range query {
		if trackingParams[key] || strings.HasPrefix(key, "utm_") {
			query.Del(key)
		}
	}
	parsed.RawQuery = encodeSorted(query)

	return parsed.String()
}

func encodeSorted(values url.Values) string {
	if len(values) == 0 {
		return ""
	}
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		for _, value := range values[key] {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(key))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(value))
		}
	}
	return b.String()
}

// URLHash returns the hex SHA-256 digest of the normalized URL.
func URLHash(rawURL string) string {
	return hashString(NormalizeURL(rawURL))
}

// ContentHash returns the hex SHA-256 digest over the normalized
// title, summary and content. A whitespace-only edit does not change
// the hash.
func ContentHash(title, summary, content string) string {
	normalized := normalizeField(title) + "\n" + normalizeField(summary) + "\n" + normalizeField(content)
	return hashString(normalized)
}

func normalizeField(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func hashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
