// Package classify assigns categories, keywords and entities to article
// text using keyword-weight tables. It has no storage dependencies; the
// caller loads tables and hands them in.
package classify

import (
	"sort"
	"strings"
	"sync"

	ahocorasick "github.com/cloudflare/ahocorasick"
)

// Keyword is a ranked keyword extracted from article text.
type Keyword struct {
	Word  string  `json:"word"`
	Score float64 `json:"score"`
}

// Result is the outcome of categorizing a piece of text.
type Result struct {
	Category   string
	Confidence float64
	Keywords   []Keyword
	Entities   map[string][]string
}

// Config holds the tunable classification constants.
type Config struct {
	// TitleBoost multiplies the contribution of matches found in the
	// title relative to matches in the body.
	TitleBoost float64
	// MaxKeywords caps the number of extracted keywords.
	MaxKeywords int
	// SuppressionThreshold is the minimum confidence at which a
	// category detected from a search query may be used as a filter.
	SuppressionThreshold float64
	// DefaultCategory is assigned when no table entry matches.
	DefaultCategory string
}

// tableRef locates one keyword-weight entry.
type tableRef struct {
	category  string
	weight    float64
	tableSize int
}

// Categorizer scores text against keyword-weight tables using a single
// Aho-Corasick pass. Tables are swapped wholesale by Reload; a
// categorization call never observes a partial update.
type Categorizer struct {
	mu       sync.RWMutex
	tables   Tables
	matcher  *ahocorasick.Matcher
	vocab    []string
	byToken  map[string][]tableRef
	cfg      Config
	entities EntityExtractor
}

// New builds a Categorizer from the given tables. A nil extractor
// disables entity extraction.
func New(tables Tables, extractor EntityExtractor, cfg Config) *Categorizer {
	if cfg.TitleBoost <= 0 {
		cfg.TitleBoost = 2.0
	}
	if cfg.MaxKeywords <= 0 {
		cfg.MaxKeywords = 10
	}
	c := &Categorizer{cfg: cfg, entities: extractor}
	c.rebuild(tables)
	return c
}

// Reload replaces the keyword-weight tables, rebuilding the matcher.
func (c *Categorizer) Reload(tables Tables) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rebuild(tables)
}

// rebuild constructs the automaton. Callers other than New must hold
// the write lock. Every vocabulary entry is padded with spaces so the
// matcher only hits on whole words within the normalized text.
func (c *Categorizer) rebuild(tables Tables) {
	c.tables = tables
	c.byToken = make(map[string][]tableRef)
	c.vocab = c.vocab[:0]

	for category, table := range tables {
		for token, weight := range table {
			normalized := normalizeText(token)
			if normalized == "" || weight <= 0 {
				continue
			}
			if _, seen := c.byToken[normalized]; !seen {
				c.vocab = append(c.vocab, " "+normalized+" ")
			}
			c.byToken[normalized] = append(c.byToken[normalized], tableRef{
				category:  category,
				weight:    weight,
				tableSize: len(table),
			})
		}
	}

	if len(c.vocab) > 0 {
		c.matcher = ahocorasick.NewStringMatcher(c.vocab)
	} else {
		c.matcher = nil
	}
}

// Categorize scores title and body against the tables and returns the
// winning category, its confidence, extracted keywords and entities.
// It never fails: with empty tables or no matches the default category
// is returned with confidence 0.
func (c *Categorizer) Categorize(title, body string) Result {
	c.mu.RLock()
	defer c.mu.RUnlock()

	titleHits := c.matchCounts(title)
	bodyHits := c.matchCounts(body)

	res := Result{
		Category: c.cfg.DefaultCategory,
		Keywords: c.extractKeywords(titleHits, bodyHits),
	}
	if c.entities != nil {
		res.Entities = c.entities.Extract(title + "\n" + body)
	}

	scores := make(map[string]float64, len(c.tables))
	for token, refs := range c.byToken {
		freq := float64(bodyHits[token]) + c.cfg.TitleBoost*float64(titleHits[token])
		if freq == 0 {
			continue
		}
		for _, ref := range refs {
			scores[ref.category] += ref.weight * freq
		}
	}

	var best string
	var bestScore, total float64
	for category, score := range scores {
		total += score
		// Alphabetical tie-break keeps the winner deterministic.
		if score > bestScore || (score == bestScore && best != "" && category < best) {
			best = category
			bestScore = score
		}
	}
	if total == 0 {
		return res
	}

	res.Category = best
	res.Confidence = clamp01(bestScore / total)
	return res
}

// DetectQueryCategory categorizes a free-text search query. Unlike
// Categorize it reports no category at all when nothing matches, so
// callers can distinguish "no signal" from a low-confidence winner.
// The caller decides whether confidence clears SuppressionThreshold
// before using the category as a filter.
func (c *Categorizer) DetectQueryCategory(query string) (string, float64) {
	if strings.TrimSpace(query) == "" {
		return "", 0
	}
	res := c.Categorize("", query)
	if res.Confidence == 0 {
		return "", 0
	}
	return res.Category, res.Confidence
}

// SuppressionThreshold exposes the configured query-filter cutoff.
func (c *Categorizer) SuppressionThreshold() float64 {
	return c.cfg.SuppressionThreshold
}

// matchCounts returns occurrence counts of vocabulary tokens in text.
func (c *Categorizer) matchCounts(text string) map[string]int {
	counts := make(map[string]int)
	if c.matcher == nil || text == "" {
		return counts
	}

	padded := " " + normalizeText(text) + " "
	for _, idx := range c.matcher.Match([]byte(padded)) {
		if idx >= len(c.vocab) {
			continue
		}
		token := strings.TrimSpace(c.vocab[idx])
		counts[token] = countOverlapping(padded, " "+token+" ")
	}
	return counts
}

// countOverlapping counts occurrences of sub in s allowing the padding
// spaces of adjacent hits to overlap ("a a a" contains " a " three
// times even though strings.Count sees two).
func countOverlapping(s, sub string) int {
	n := 0
	for i := 0; ; {
		j := strings.Index(s[i:], sub)
		if j < 0 {
			return n
		}
		n++
		i += j + len(sub) - 1
	}
}

// extractKeywords ranks matched tokens by frequency times a
// specificity proxy: tokens from smaller tables identify their topic
// more strongly, so they score higher at equal frequency. Scores are
// normalized so the top keyword is 1.0.
func (c *Categorizer) extractKeywords(titleHits, bodyHits map[string]int) []Keyword {
	type scored struct {
		word string
		raw  float64
	}

	matched := make(map[string]bool)
	for t := range titleHits {
		matched[t] = true
	}
	for t := range bodyHits {
		matched[t] = true
	}

	ranked := make([]scored, 0, len(matched))
	for token := range matched {
		freq := float64(titleHits[token] + bodyHits[token])
		if freq == 0 {
			continue
		}
		smallest := 0
		for _, ref := range c.byToken[token] {
			if smallest == 0 || ref.tableSize < smallest {
				smallest = ref.tableSize
			}
		}
		if smallest == 0 {
			continue
		}
		ranked = append(ranked, scored{word: token, raw: freq / float64(smallest)})
	}
	if len(ranked) == 0 {
		return nil
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].raw != ranked[j].raw {
			return ranked[i].raw > ranked[j].raw
		}
		return ranked[i].word < ranked[j].word
	})
	if len(ranked) > c.cfg.MaxKeywords {
		ranked = ranked[:c.cfg.MaxKeywords]
	}

	top := ranked[0].raw
	keywords := make([]Keyword, len(ranked))
	for i, s := range ranked {
		keywords[i] = Keyword{Word: s.word, Score: clamp01(s.raw / top)}
	}
	return keywords
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
