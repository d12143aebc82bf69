package search

import (
	"context"
	"fmt"
	"strings"
)

const defaultSuggestLimit = 10

// Suggest returns completion candidates for a query prefix. Logged
// queries come first, padded with indexed article keywords when the
// log alone cannot fill the limit. An empty prefix yields no
// suggestions.
func (e *Engine) Suggest(ctx context.Context, prefix string, limit int) ([]string, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = defaultSuggestLimit
	}

	suggestions, err := e.store.QueriesWithPrefix(ctx, prefix, limit)
	if err != nil {
		return nil, fmt.Errorf("suggest from query log: %w", err)
	}
	if len(suggestions) >= limit {
		return suggestions[:limit], nil
	}

	keywords, err := e.store.KeywordsWithPrefix(ctx, prefix, limit)
	if err != nil {
		return nil, fmt.Errorf("suggest from keywords: %w", err)
	}

	seen := make(map[string]bool, len(suggestions))
	for _, s := range suggestions {
		seen[strings.ToLower(s)] = true
	}
	for _, kw := range keywords {
		if len(suggestions) >= limit {
			break
		}
		if seen[strings.ToLower(kw)] {
			continue
		}
		seen[strings.ToLower(kw)] = true
		suggestions = append(suggestions, kw)
	}

	return suggestions, nil
}
