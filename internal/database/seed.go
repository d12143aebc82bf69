package database

import (
	"sort"

	"github.com/ObaidOIS/TSFSE/internal/classify"
)

var categoryMeta = map[string]struct {
	display     string
	description string
}{
	"economy":    {"Economy", "Macroeconomic policy, inflation, employment and trade."},
	"market":     {"Markets", "Equity, bond, currency and commodity markets."},
	"health":     {"Health", "Public health, medicine and the healthcare industry."},
	"technology": {"Technology", "Software, hardware, AI and the technology sector."},
	"industry":   {"Industry", "Manufacturing, energy, logistics and industrial firms."},
}

// DefaultCategories builds the seed rows from the built-in keyword
// taxonomy. Categories without registered metadata fall back to their
// slug as display name.
func DefaultCategories() []*Category {
	tables := classify.DefaultTables()

	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)

	categories := make([]*Category, 0, len(names))
	for _, name := range names {
		c := &Category{
			Name:        name,
			DisplayName: name,
			Keywords:    tables[name],
		}
		if meta, ok := categoryMeta[name]; ok {
			c.DisplayName = meta.display
			c.Description = meta.description
		}
		categories = append(categories, c)
	}
	return categories
}
