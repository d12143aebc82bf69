package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Database
	DatabaseURL string

	// Server
	Port int

	// Feed ingestion
	FeedURLs     []string
	FetchTimeout time.Duration
	FetchContent bool

	// Scheduler
	IngestInterval time.Duration
	IngestActive   bool
	IngestWorkers  int
	MaxPerCycle    int
	HistorySize    int

	// Categorizer
	TitleBoost           float64
	MaxKeywords          int
	SuppressionThreshold float64
	DefaultCategory      string

	// Search ranking. TitleWeight/SummaryWeight/ContentWeight shape the
	// indexed vector; the rest shape the composite score.
	TitleWeight     float64
	SummaryWeight   float64
	ContentWeight   float64
	RecencyHalfLife time.Duration
	RecencyWeight   float64
	CategoryBoost   float64
	MaxCandidates   int

	// RSS output feed
	FeedTitle       string
	FeedDescription string
	FeedLink        string
	FeedAuthor      string
}

// Load reads configuration from environment variables. A .env file in
// the working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		Port:         getEnvAsInt("PORT", 8080),
		FeedURLs:     getEnvAsList("FEED_URLS", nil),
		FetchTimeout: getEnvAsDuration("FETCH_TIMEOUT", 30*time.Second),
		FetchContent: getEnvAsBool("FETCH_CONTENT", true),

		IngestInterval: getEnvAsDuration("INGEST_INTERVAL", 5*time.Minute),
		IngestActive:   getEnvAsBool("INGEST_ACTIVE", false),
		IngestWorkers:  getEnvAsInt("INGEST_WORKERS", 4),
		MaxPerCycle:    getEnvAsInt("INGEST_MAX_PER_CYCLE", 50),
		HistorySize:    getEnvAsInt("INGEST_HISTORY_SIZE", 20),

		TitleBoost:           getEnvAsFloat("CLASSIFY_TITLE_BOOST", 2.0),
		MaxKeywords:          getEnvAsInt("CLASSIFY_MAX_KEYWORDS", 10),
		SuppressionThreshold: getEnvAsFloat("CLASSIFY_SUPPRESSION_THRESHOLD", 0.3),
		DefaultCategory:      getEnv("CLASSIFY_DEFAULT_CATEGORY", "economy"),

		TitleWeight:     getEnvAsFloat("SEARCH_TITLE_WEIGHT", 3.0),
		SummaryWeight:   getEnvAsFloat("SEARCH_SUMMARY_WEIGHT", 2.0),
		ContentWeight:   getEnvAsFloat("SEARCH_CONTENT_WEIGHT", 1.0),
		RecencyHalfLife: getEnvAsDuration("SEARCH_RECENCY_HALF_LIFE", 72*time.Hour),
		RecencyWeight:   getEnvAsFloat("SEARCH_RECENCY_WEIGHT", 1.0),
		CategoryBoost:   getEnvAsFloat("SEARCH_CATEGORY_BOOST", 0.5),
		MaxCandidates:   getEnvAsInt("SEARCH_MAX_CANDIDATES", 1000),

		FeedTitle:       getEnv("FEED_TITLE", "News Pipeline Feed"),
		FeedDescription: getEnv("FEED_DESCRIPTION", "Latest ingested articles"),
		FeedLink:        getEnv("FEED_LINK", "http://localhost:8080"),
		FeedAuthor:      getEnv("FEED_AUTHOR", "newsd"),
	}

	// Validate required fields
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if len(cfg.FeedURLs) == 0 {
		return nil, fmt.Errorf("FEED_URLS is required")
	}
	if cfg.IngestInterval < time.Second {
		return nil, fmt.Errorf("INGEST_INTERVAL must be at least 1s")
	}
	if cfg.IngestWorkers < 1 {
		cfg.IngestWorkers = 1
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
