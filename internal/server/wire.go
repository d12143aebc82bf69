package server

import (
	"time"

	"github.com/ObaidOIS/TSFSE/internal/classify"
	"github.com/ObaidOIS/TSFSE/internal/database"
	"github.com/ObaidOIS/TSFSE/internal/search"
)

// articleSummary is the compact article shape used in lists and
// search results.
type articleSummary struct {
	ID                 string             `json:"id"`
	Title              string             `json:"title"`
	Summary            string             `json:"summary"`
	URL                string             `json:"url"`
	ImageURL           string             `json:"image_url,omitempty"`
	Author             string             `json:"author,omitempty"`
	CategoryName       string             `json:"category_name"`
	CategoryDisplay    string             `json:"category_display"`
	CategoryConfidence float64            `json:"category_confidence"`
	Keywords           []classify.Keyword `json:"keywords"`
	PublishedAt        time.Time          `json:"published_at"`
	ScrapedAt          time.Time          `json:"scraped_at"`
}

// categoryObject is the full category shape embedded in article
// detail responses.
type categoryObject struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
}

// articleDetail extends the summary with full content, the resolved
// category object, the flat keyword list and extracted entities.
type articleDetail struct {
	articleSummary
	Category     *categoryObject     `json:"category"`
	KeywordsList []string            `json:"keywords_list"`
	Content      string              `json:"content"`
	Entities     map[string][]string `json:"entities"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// searchResult is an article summary with its relevance score.
type searchResult struct {
	articleSummary
	Score float64 `json:"score"`
}

// searchResponse mirrors search.Response on the wire.
type searchResponse struct {
	Query                      string         `json:"query"`
	DetectedCategory           string         `json:"detected_category"`
	DetectedCategoryConfidence float64        `json:"detected_category_confidence"`
	AppliedCategory            string         `json:"applied_category,omitempty"`
	TotalResults               int            `json:"total_results"`
	Page                       int            `json:"page"`
	PageSize                   int            `json:"page_size"`
	TotalPages                 int            `json:"total_pages"`
	ExecutionTimeMS            int64          `json:"execution_time_ms"`
	Results                    []searchResult `json:"results"`
}

// pagedArticles is the envelope for article list endpoints.
type pagedArticles struct {
	Count    int              `json:"count"`
	Next     *string          `json:"next"`
	Previous *string          `json:"previous"`
	Results  []articleSummary `json:"results"`
}

func toArticleSummary(a *database.Article) articleSummary {
	keywords := a.Keywords
	if keywords == nil {
		keywords = []classify.Keyword{}
	}
	display := a.CategoryDisplay
	if display == "" {
		display = a.CategoryName
	}
	return articleSummary{
		ID:                 a.ID,
		Title:              a.Title,
		Summary:            a.Summary,
		URL:                a.URL,
		ImageURL:           a.ImageURL,
		Author:             a.Author,
		CategoryName:       a.CategoryName,
		CategoryDisplay:    display,
		CategoryConfidence: a.CategoryConfidence,
		Keywords:           keywords,
		PublishedAt:        a.PublishedAt,
		ScrapedAt:          a.ScrapedAt,
	}
}

func toArticleDetail(a *database.Article, category *database.Category) articleDetail {
	entities := a.Entities
	if entities == nil {
		entities = map[string][]string{}
	}
	var cat *categoryObject
	if category != nil {
		cat = &categoryObject{
			ID:          category.ID,
			Name:        category.Name,
			DisplayName: category.DisplayName,
			Description: category.Description,
		}
	}
	return articleDetail{
		articleSummary: toArticleSummary(a),
		Category:       cat,
		KeywordsList:   a.KeywordsList(),
		Content:        a.Content,
		Entities:       entities,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

func toArticleSummaries(articles []*database.Article) []articleSummary {
	out := make([]articleSummary, 0, len(articles))
	for _, a := range articles {
		out = append(out, toArticleSummary(a))
	}
	return out
}

func toSearchResponse(resp *search.Response) searchResponse {
	results := make([]searchResult, 0, len(resp.Results))
	for _, r := range resp.Results {
		results = append(results, searchResult{
			articleSummary: toArticleSummary(r.Article),
			Score:          r.Score,
		})
	}
	return searchResponse{
		Query:                      resp.Query,
		DetectedCategory:           resp.DetectedCategory,
		DetectedCategoryConfidence: resp.DetectedCategoryConfidence,
		AppliedCategory:            resp.AppliedCategory,
		TotalResults:               resp.TotalResults,
		Page:                       resp.Page,
		PageSize:                   resp.PageSize,
		TotalPages:                 resp.TotalPages,
		ExecutionTimeMS:            resp.ExecutionTimeMS,
		Results:                    results,
	}
}
