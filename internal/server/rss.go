package server

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/gorilla/feeds"

	"github.com/ObaidOIS/TSFSE/internal/config"
	"github.com/ObaidOIS/TSFSE/internal/database"
)

const rssDescriptionLimit = 500

// GenerateRSSFeed creates an RSS feed from articles
func GenerateRSSFeed(articles []*database.Article, cfg *config.Config) (string, error) {
	now := time.Now()

	feed := &feeds.Feed{
		Title:       cfg.FeedTitle,
		Link:        &feeds.Link{Href: cfg.FeedLink},
		Description: cfg.FeedDescription,
		Author:      &feeds.Author{Name: cfg.FeedAuthor},
		Created:     now,
	}

	feed.Items = make([]*feeds.Item, 0, len(articles))
	for _, article := range articles {
		item := &feeds.Item{
			Title:       article.Title,
			Link:        &feeds.Link{Href: article.URL},
			Id:          fmt.Sprintf("%s/api/articles/%s", cfg.FeedLink, article.ID),
			Description: rssDescription(article),
			Created:     article.PublishedAt,
		}

		if article.Author != "" {
			item.Author = &feeds.Author{Name: article.Author}
		}
		if article.CategoryName != "" {
			item.Description = fmt.Sprintf("[%s] %s", article.CategoryName, item.Description)
		}

		feed.Items = append(feed.Items, item)
	}

	rss, err := feed.ToRss()
	if err != nil {
		return "", fmt.Errorf("failed to generate RSS: %w", err)
	}

	return rss, nil
}

func rssDescription(article *database.Article) string {
	description := article.Summary
	if description == "" {
		description = article.Content
	}
	if len(description) > rssDescriptionLimit {
		cut := rssDescriptionLimit
		for cut > 0 && !utf8.RuneStart(description[cut]) {
			cut--
		}
		description = description[:cut] + "..."
	}
	return description
}
