package classify

import (
	"regexp"
	"sort"
	"strings"
)

// EntityExtractor recognizes named entities in text. Implementations
// are heuristic and best-effort; Extract never fails, it returns what
// it found. Kept behind an interface so the pattern rules can be
// swapped without touching categorization.
type EntityExtractor interface {
	Extract(text string) map[string][]string
}

// Entity kind names used as keys in the extracted map.
const (
	EntityOrganizations = "organizations"
	EntityPeople        = "people"
	EntityLocations     = "locations"
	EntityMoney         = "money"
	EntityDates         = "dates"
	EntityPercentages   = "percentages"
)

const maxEntitiesPerKind = 10

// knownOrganizations are matched case-insensitively and reported under
// the organizations kind even when they look like person names.
var knownOrganizations = []string{
	"apple", "google", "microsoft", "amazon", "meta", "facebook",
	"tesla", "nvidia", "netflix", "uber", "airbnb", "spotify",
	"salesforce", "oracle", "ibm", "intel", "amd", "qualcomm", "cisco",
	"jpmorgan", "goldman sachs", "morgan stanley", "bank of america",
	"wells fargo", "citigroup", "blackrock", "vanguard", "berkshire",
	"walmart", "target", "costco", "home depot", "starbucks",
	"pfizer", "moderna", "johnson & johnson", "merck", "abbvie",
	"exxon", "chevron", "shell", "boeing", "airbus", "lockheed martin",
	"general electric", "ford", "toyota", "volkswagen", "bmw", "honda",
	"federal reserve", "world bank", "imf", "opec",
}

var knownLocations = []string{
	"united states", "china", "japan", "germany", "france",
	"united kingdom", "india", "brazil", "canada", "mexico", "russia",
	"europe", "asia", "new york", "london", "tokyo", "beijing",
	"washington", "california", "texas", "hong kong", "singapore",
}

// RegexEntityExtractor implements EntityExtractor with compiled
// patterns for money, percentages, dates and capitalized sequences.
type RegexEntityExtractor struct {
	money    *regexp.Regexp
	percent  *regexp.Regexp
	date     *regexp.Regexp
	capitals *regexp.Regexp
	orgs     *regexp.Regexp
	places   *regexp.Regexp
}

// NewRegexEntityExtractor compiles the recognition patterns.
func NewRegexEntityExtractor() *RegexEntityExtractor {
	return &RegexEntityExtractor{
		money: regexp.MustCompile(
			`[$€£][\d,]+(?:\.\d+)?(?:\s*(?:million|billion|trillion|[MBT]))?`),
		percent: regexp.MustCompile(`\d+(?:\.\d+)?\s?%`),
		date: regexp.MustCompile(
			`(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2}(?:,\s*\d{4})?|\d{4}-\d{2}-\d{2}`),
		capitals: regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)+\b`),
		orgs:     alternationPattern(knownOrganizations),
		places:   alternationPattern(knownLocations),
	}
}

func alternationPattern(names []string) *regexp.Regexp {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = regexp.QuoteMeta(n)
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`)
}

// Extract pulls entities from text, grouped by kind. Each kind holds a
// deduplicated, sorted list capped at a fixed count.
func (e *RegexEntityExtractor) Extract(text string) map[string][]string {
	if strings.TrimSpace(text) == "" {
		return map[string][]string{}
	}

	entities := make(map[string][]string)

	if money := dedupeCap(e.money.FindAllString(text, -1)); len(money) > 0 {
		entities[EntityMoney] = money
	}
	if pct := dedupeCap(e.percent.FindAllString(text, -1)); len(pct) > 0 {
		entities[EntityPercentages] = pct
	}
	if dates := dedupeCap(e.date.FindAllString(text, -1)); len(dates) > 0 {
		entities[EntityDates] = dates
	}

	orgs := make([]string, 0, 8)
	for _, m := range e.orgs.FindAllString(text, -1) {
		orgs = append(orgs, titleCase(m))
	}
	if orgs = dedupeCap(orgs); len(orgs) > 0 {
		entities[EntityOrganizations] = orgs
	}

	if places := dedupeCap(matchTitleCased(e.places, text)); len(places) > 0 {
		entities[EntityLocations] = places
	}

	// Remaining capitalized multi-word sequences are treated as
	// probable person names once known organizations and locations
	// are accounted for.
	people := make([]string, 0, 8)
	orgSet := toSet(entities[EntityOrganizations])
	placeSet := toSet(entities[EntityLocations])
	for _, m := range e.capitals.FindAllString(text, -1) {
		if orgSet[strings.ToLower(m)] || placeSet[strings.ToLower(m)] {
			continue
		}
		people = append(people, m)
	}
	if people = dedupeCap(people); len(people) > 0 {
		entities[EntityPeople] = people
	}

	return entities
}

func matchTitleCased(re *regexp.Regexp, text string) []string {
	matches := re.FindAllString(text, -1)
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = titleCase(m)
	}
	return out
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		if w == "&" || w == "of" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[strings.ToLower(v)] = true
	}
	return set
}

func dedupeCap(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	if len(out) > maxEntitiesPerKind {
		out = out[:maxEntitiesPerKind]
	}
	return out
}
