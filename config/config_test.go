package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("API_TIMEZONE", "")
	t.Setenv("LIVE_EVENTS_INTERVAL_SECONDS", "")
	t.Setenv("YT_LOOKBACK_HOURS", "")
	t.Setenv("YT_MAX_RESULTS", "")
	t.Setenv("YT_CACHE_MINUTES", "")
	t.Setenv("REDDIT_LOOKBACK_HOURS", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("PORT", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "Europe/Prague", cfg.FootballTimezone)
	assert.Equal(t, time.Minute, cfg.LiveEventsInterval)
	assert.Equal(t, SearchConfig{Lookback: 6 * time.Hour, MaxResults: 10, CacheTTL: 10 * time.Minute}, cfg.YouTube)
	assert.Equal(t, 24*time.Hour, cfg.Reddit.Lookback)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestLoad_ParsesValues(t *testing.T) {
	t.Setenv("ENABLE_LIVE_EVENTS_TRACKER", "true")
	t.Setenv("LIVE_EVENTS_LEAGUE_IDS", "39, 140,abc,-2")
	t.Setenv("LIVE_EVENTS_INTERVAL_SECONDS", "30")
	t.Setenv("TELEGRAM_CHAT_ID", "-1001234")
	t.Setenv("PROXY_URLS", "socks5://a:1080, ,socks5://b:1080")
	t.Setenv("YT_SPAM_KEYWORDS", "fifa,pes")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg := Load()

	assert.True(t, cfg.EnableLiveEventsTracker)
	assert.Equal(t, map[int64]bool{39: true, 140: true}, cfg.LiveEventsLeagueIDs)
	assert.Equal(t, 30*time.Second, cfg.LiveEventsInterval)
	assert.Equal(t, int64(-1001234), cfg.TelegramChatID)
	assert.Equal(t, []string{"socks5://a:1080", "socks5://b:1080"}, cfg.ProxyURLs)
	assert.Equal(t, []string{"fifa", "pes"}, cfg.YouTubeSpamKeywords)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("ENABLE_LIVE_EVENTS_TRACKER", "maybe")
	t.Setenv("YT_MAX_RESULTS", "many")
	t.Setenv("LOG_LEVEL", "LOUD")

	cfg := Load()

	assert.False(t, cfg.EnableLiveEventsTracker)
	assert.Equal(t, 10, cfg.YouTube.MaxResults)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestLoad_NonPositiveIntegersFallBack(t *testing.T) {
	t.Setenv("LIVE_EVENTS_INTERVAL_SECONDS", "0")
	t.Setenv("YT_MAX_RESULTS", "-5")
	t.Setenv("REDDIT_CACHE_MINUTES", "0")

	cfg := Load()

	assert.Equal(t, time.Minute, cfg.LiveEventsInterval)
	assert.Equal(t, 10, cfg.YouTube.MaxResults)
	assert.Equal(t, 10*time.Minute, cfg.Reddit.CacheTTL)
}

func TestTrackerEnabled(t *testing.T) {
	cfg := AppConfig{
		EnableLiveEventsTracker: true,
		FootballAPIKey:          "key",
		TelegramBotToken:        "token",
		TelegramChatID:          -100,
		LiveEventsLeagueIDs:     map[int64]bool{39: true},
		LiveEventsInterval:      time.Minute,
	}

	enabled, reasons := cfg.TrackerEnabled()
	assert.True(t, enabled)
	assert.Empty(t, reasons)

	cfg.LiveEventsLeagueIDs = nil
	cfg.TelegramBotToken = ""
	enabled, reasons = cfg.TrackerEnabled()
	assert.False(t, enabled)
	assert.Equal(t, []string{"TELEGRAM_BOT_TOKEN is not set", "LIVE_EVENTS_LEAGUE_IDS is empty"}, reasons)

	cfg.LiveEventsInterval = 0
	_, reasons = cfg.TrackerEnabled()
	assert.Contains(t, reasons, "LIVE_EVENTS_INTERVAL_SECONDS must be positive")
}

func TestIsProduction(t *testing.T) {
	assert.True(t, AppConfig{AppEnv: EnvProduction}.IsProduction())
	assert.False(t, AppConfig{AppEnv: EnvDevelopment}.IsProduction())
	assert.False(t, AppConfig{}.IsProduction())
}
