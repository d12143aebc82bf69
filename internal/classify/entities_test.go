package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractMoneyAndPercentages(t *testing.T) {
	e := NewRegexEntityExtractor()

	entities := e.Extract("Revenue rose 12.5% to $4.2 billion, beating the $4 billion estimate.")

	assert.Contains(t, entities[EntityMoney], "$4.2 billion")
	assert.Contains(t, entities[EntityPercentages], "12.5%")
}

func TestExtractKnownOrganizations(t *testing.T) {
	e := NewRegexEntityExtractor()

	entities := e.Extract("Shares of NVIDIA and Goldman Sachs climbed after the Federal Reserve meeting.")

	assert.Contains(t, entities[EntityOrganizations], "Nvidia")
	assert.Contains(t, entities[EntityOrganizations], "Goldman Sachs")
	assert.Contains(t, entities[EntityOrganizations], "Federal Reserve")
	// Known organizations never leak into the people bucket.
	assert.NotContains(t, entities[EntityPeople], "Goldman Sachs")
	assert.NotContains(t, entities[EntityPeople], "Federal Reserve")
}

func TestExtractPeopleAndLocations(t *testing.T) {
	e := NewRegexEntityExtractor()

	entities := e.Extract("Jerome Powell spoke in New York about rates.")

	assert.Contains(t, entities[EntityPeople], "Jerome Powell")
	assert.Contains(t, entities[EntityLocations], "New York")
	assert.NotContains(t, entities[EntityPeople], "New York")
}

func TestExtractDates(t *testing.T) {
	e := NewRegexEntityExtractor()

	entities := e.Extract("The report is due January 15, 2026, revised from 2025-11-30.")

	assert.Contains(t, entities[EntityDates], "January 15, 2026")
	assert.Contains(t, entities[EntityDates], "2025-11-30")
}

func TestExtractEmptyText(t *testing.T) {
	e := NewRegexEntityExtractor()

	assert.Empty(t, e.Extract("   "))
}

func TestExtractDedupesAndCaps(t *testing.T) {
	e := NewRegexEntityExtractor()

	entities := e.Extract("5% 5% 5% up, then 5% again")

	assert.Equal(t, []string{"5%"}, entities[EntityPercentages])
}
