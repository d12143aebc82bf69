// Package index builds weighted term vectors from article text for
// storage in the search_vector column.
package index

import (
	"github.com/ObaidOIS/TSFSE/internal/classify"
	"github.com/ObaidOIS/TSFSE/internal/database"
)

// Weights controls how much each field contributes to a term's
// vector weight.
type Weights struct {
	Title   float64
	Summary float64
	Content float64
}

// DefaultWeights ranks title matches above summary matches above
// content matches.
func DefaultWeights() Weights {
	return Weights{Title: 3, Summary: 2, Content: 1}
}

// Indexer computes search vectors.
type Indexer struct {
	weights Weights
}

// New creates an indexer. Non-positive weights fall back to defaults.
func New(weights Weights) *Indexer {
	if weights.Title <= 0 && weights.Summary <= 0 && weights.Content <= 0 {
		weights = DefaultWeights()
	}
	return &Indexer{weights: weights}
}

// BuildVector tokenizes the three fields and sums weighted term
// frequencies into a single vector. Stopwords and sub-two-character
// tokens never enter the vector.
func (ix *Indexer) BuildVector(title, summary, content string) map[string]float64 {
	vector := make(map[string]float64)
	accumulate(vector, title, ix.weights.Title)
	accumulate(vector, summary, ix.weights.Summary)
	accumulate(vector, content, ix.weights.Content)
	return vector
}

// Apply computes and attaches the search vector for an article.
func (ix *Indexer) Apply(article *database.Article) {
	article.SearchVector = ix.BuildVector(article.Title, article.Summary, article.Content)
}

func accumulate(vector map[string]float64, text string, weight float64) {
	if weight <= 0 {
		return
	}
	for token, count := range classify.TokenCounts(text) {
		vector[token] += weight * float64(count)
	}
}
