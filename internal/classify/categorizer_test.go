package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTables() Tables {
	return Tables{
		"market": {
			"stock": 2, "market": 1, "rally": 2, "trading": 2,
		},
		"health": {
			"vaccine": 2, "hospital": 2, "clinical trial": 2,
		},
		"technology": {
			"software": 2, "ai": 2, "chip": 1,
		},
	}
}

func newTestCategorizer(t *testing.T) *Categorizer {
	t.Helper()
	return New(testTables(), nil, Config{
		SuppressionThreshold: 0.3,
		DefaultCategory:      "economy",
	})
}

func TestCategorizeSingleCategory(t *testing.T) {
	c := newTestCategorizer(t)

	res := c.Categorize("Stock market rally continues", "Trading volumes rose as the rally extended.")

	assert.Equal(t, "market", res.Category)
	assert.Equal(t, 1.0, res.Confidence)
	require.NotEmpty(t, res.Keywords)
	assert.Equal(t, 1.0, res.Keywords[0].Score)
}

func TestCategorizeConfidenceBounds(t *testing.T) {
	c := newTestCategorizer(t)

	cases := []struct {
		name  string
		title string
		body  string
	}{
		{"no matches", "Quarterly report", "Nothing notable happened."},
		{"mixed categories", "Software stocks", "The vaccine maker's stock rallied on chip news."},
		{"heavy repetition", "stock stock stock", "stock stock stock stock stock"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := c.Categorize(tc.title, tc.body)
			assert.GreaterOrEqual(t, res.Confidence, 0.0)
			assert.LessOrEqual(t, res.Confidence, 1.0)
		})
	}
}

func TestCategorizeNoMatchesUsesDefault(t *testing.T) {
	c := newTestCategorizer(t)

	res := c.Categorize("Weekend weather outlook", "Sunny with a chance of rain.")

	assert.Equal(t, "economy", res.Category)
	assert.Zero(t, res.Confidence)
	assert.Empty(t, res.Keywords)
}

func TestCategorizeWholeWordsOnly(t *testing.T) {
	c := newTestCategorizer(t)

	// "stockpile" must not match the "stock" entry.
	res := c.Categorize("Nations stockpile grain", "Warehouses filled with stockpiled goods.")

	assert.Equal(t, "economy", res.Category)
	assert.Zero(t, res.Confidence)
}

func TestCategorizeMultiWordEntry(t *testing.T) {
	c := newTestCategorizer(t)

	res := c.Categorize("Clinical trial results announced", "The clinical trial enrolled ten thousand patients.")

	assert.Equal(t, "health", res.Category)
	assert.Greater(t, res.Confidence, 0.0)
}

func TestCategorizeTitleBoost(t *testing.T) {
	c := New(testTables(), nil, Config{TitleBoost: 2.0, DefaultCategory: "economy"})

	// One title hit for market outweighs one body hit for health.
	res := c.Categorize("Stock watch", "The hospital expansion continues.")

	assert.Equal(t, "market", res.Category)
}

func TestDetectQueryCategory(t *testing.T) {
	c := newTestCategorizer(t)

	category, confidence := c.DetectQueryCategory("stock market rally")
	assert.Equal(t, "market", category)
	assert.Greater(t, confidence, 0.3)

	category, confidence = c.DetectQueryCategory("zzzqqq nonsense")
	assert.Empty(t, category)
	assert.Zero(t, confidence)

	category, confidence = c.DetectQueryCategory("   ")
	assert.Empty(t, category)
	assert.Zero(t, confidence)
}

func TestReloadSwapsTables(t *testing.T) {
	c := newTestCategorizer(t)

	before := c.Categorize("stock rally", "")
	require.Equal(t, "market", before.Category)

	c.Reload(Tables{"industry": {"stock": 1}})

	after := c.Categorize("stock rally", "")
	assert.Equal(t, "industry", after.Category)
}

func TestExtractKeywordsCapped(t *testing.T) {
	c := New(testTables(), nil, Config{MaxKeywords: 2, DefaultCategory: "economy"})

	res := c.Categorize("stock market rally", "trading software ai chip")

	assert.Len(t, res.Keywords, 2)
}

func TestTokenize(t *testing.T) {
	tokens := Tokenize("The Stock-Market, and the RALLY!")

	assert.Equal(t, []string{"stock", "market", "rally"}, tokens)
}

func TestTokenizeDropsShortAndStopwords(t *testing.T) {
	tokens := Tokenize("a an of to I it is on 5g ai")

	// Stopwords and single-character tokens are gone; short domain
	// terms of two characters survive.
	assert.Equal(t, []string{"5g", "ai"}, tokens)
}
