package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/news")
	t.Setenv("FEED_URLS", "https://feeds.example.com/a,https://feeds.example.com/b")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, []string{"https://feeds.example.com/a", "https://feeds.example.com/b"}, cfg.FeedURLs)
	assert.Equal(t, 5*time.Minute, cfg.IngestInterval)
	assert.False(t, cfg.IngestActive)
	assert.Equal(t, 4, cfg.IngestWorkers)
	assert.Equal(t, 0.3, cfg.SuppressionThreshold)
	assert.Equal(t, "economy", cfg.DefaultCategory)
	assert.Equal(t, 72*time.Hour, cfg.RecencyHalfLife)
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9000")
	t.Setenv("INGEST_INTERVAL", "90s")
	t.Setenv("INGEST_ACTIVE", "true")
	t.Setenv("CLASSIFY_SUPPRESSION_THRESHOLD", "0.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 90*time.Second, cfg.IngestInterval)
	assert.True(t, cfg.IngestActive)
	assert.Equal(t, 0.5, cfg.SuppressionThreshold)
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("FEED_URLS", "https://feeds.example.com/a")

	_, err := Load()
	assert.ErrorContains(t, err, "DATABASE_URL")
}

func TestLoadRequiresFeedURLs(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/news")
	t.Setenv("FEED_URLS", "")

	_, err := Load()
	assert.ErrorContains(t, err, "FEED_URLS")
}

func TestLoadRejectsShortInterval(t *testing.T) {
	setRequired(t)
	t.Setenv("INGEST_INTERVAL", "500ms")

	_, err := Load()
	assert.ErrorContains(t, err, "INGEST_INTERVAL")
}
