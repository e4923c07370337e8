package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kova98/footroll.api/matchers"
)

const (
	EnvDevelopment = "DEV"
	EnvProduction  = "PROD"
)

type SearchConfig struct {
	Lookback   time.Duration
	MaxResults int
	CacheTTL   time.Duration
}

type AppConfig struct {
	Port        string
	AppEnv      string // EnvDevelopment or EnvProduction
	LogLevel    slog.Level
	PostgresURL string
	ProxyURLs   []string

	KeycloakClientID     string
	KeycloakClientSecret string
	KeycloakRealm        string
	KeycloakURL          string

	EnableLiveEventsTracker bool
	FootballAPIKey          string
	FootballTimezone        string
	LiveEventsLeagueIDs     map[int64]bool
	LiveEventsInterval      time.Duration

	TelegramBotToken      string
	TelegramChatID        int64
	TelegramWebhookSecret string

	YouTubeAPIKey            string
	YouTubeRegionCode        string
	YouTubeRelevanceLanguage string
	YouTubeSpamKeywords      []string
	YouTube                  SearchConfig
	Reddit                   SearchConfig
}

var Config AppConfig

func LoadConfig() {
	Config = Load()
}

// Load reads the configuration from the environment. Nothing here is fatal: a
// missing credential only turns the features depending on it off.
func Load() AppConfig {
	cfg := AppConfig{}

	cfg.Port = loadOptional("PORT", "8080")
	cfg.AppEnv = os.Getenv("APP_ENV")
	cfg.PostgresURL = os.Getenv("POSTGRES_URL")
	cfg.ProxyURLs = loadList("PROXY_URLS")

	cfg.KeycloakClientID = os.Getenv("KEYCLOAK_CLIENT_ID")
	cfg.KeycloakClientSecret = os.Getenv("KEYCLOAK_CLIENT_SECRET")
	cfg.KeycloakRealm = os.Getenv("KEYCLOAK_REALM")
	cfg.KeycloakURL = os.Getenv("KEYCLOAK_URL")

	cfg.EnableLiveEventsTracker = loadBool("ENABLE_LIVE_EVENTS_TRACKER", false)
	cfg.FootballAPIKey = os.Getenv("API_KEY")
	cfg.FootballTimezone = loadOptional("API_TIMEZONE", "Europe/Prague")
	cfg.LiveEventsLeagueIDs = matchers.ParseLeagueIDs(os.Getenv("LIVE_EVENTS_LEAGUE_IDS"))
	cfg.LiveEventsInterval = time.Duration(loadInt("LIVE_EVENTS_INTERVAL_SECONDS", 60)) * time.Second

	cfg.TelegramBotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.TelegramChatID = loadChatID("TELEGRAM_CHAT_ID")
	cfg.TelegramWebhookSecret = os.Getenv("TELEGRAM_WEBHOOK_SECRET")

	cfg.YouTubeAPIKey = os.Getenv("YOUTUBE_API_KEY")
	cfg.YouTubeRegionCode = os.Getenv("YT_REGION_CODE")
	cfg.YouTubeRelevanceLanguage = os.Getenv("YT_RELEVANCE_LANGUAGE")
	cfg.YouTubeSpamKeywords = loadList("YT_SPAM_KEYWORDS")
	cfg.YouTube = SearchConfig{
		Lookback:   time.Duration(loadInt("YT_LOOKBACK_HOURS", 6)) * time.Hour,
		MaxResults: loadInt("YT_MAX_RESULTS", 10),
		CacheTTL:   time.Duration(loadInt("YT_CACHE_MINUTES", 10)) * time.Minute,
	}
	cfg.Reddit = SearchConfig{
		Lookback:   time.Duration(loadInt("REDDIT_LOOKBACK_HOURS", 24)) * time.Hour,
		MaxResults: loadInt("REDDIT_MAX_RESULTS", 10),
		CacheTTL:   time.Duration(loadInt("REDDIT_CACHE_MINUTES", 10)) * time.Minute,
	}

	lvlString := loadOptional("LOG_LEVEL", "INFO")
	var err error
	cfg.LogLevel, err = parseLogLevel(lvlString)
	if err != nil {
		slog.Error("Invalid LOG_LEVEL", "error", err)
		cfg.LogLevel = slog.LevelInfo
	}

	return cfg
}

// TrackerEnabled reports whether the live events tracker can run. When it cannot,
// the returned reasons name what is missing.
func (c AppConfig) TrackerEnabled() (bool, []string) {
	var reasons []string
	if !c.EnableLiveEventsTracker {
		reasons = append(reasons, "ENABLE_LIVE_EVENTS_TRACKER is off")
	}
	if c.FootballAPIKey == "" {
		reasons = append(reasons, "API_KEY is not set")
	}
	if c.TelegramBotToken == "" {
		reasons = append(reasons, "TELEGRAM_BOT_TOKEN is not set")
	}
	if c.TelegramChatID == 0 {
		reasons = append(reasons, "TELEGRAM_CHAT_ID is not set")
	}
	if len(c.LiveEventsLeagueIDs) == 0 {
		reasons = append(reasons, "LIVE_EVENTS_LEAGUE_IDS is empty")
	}
	if c.LiveEventsInterval <= 0 {
		reasons = append(reasons, "LIVE_EVENTS_INTERVAL_SECONDS must be positive")
	}
	return len(reasons) == 0, reasons
}

// KeycloakConfigured reports whether admin routes can be guarded.
func (c AppConfig) KeycloakConfigured() bool {
	return c.KeycloakURL != "" && c.KeycloakRealm != ""
}

func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	var err = level.UnmarshalText([]byte(s))
	return level, err
}

func loadOptional(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// loadInt falls back to the default for anything that is not a positive integer.
func loadInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n <= 0 {
		slog.Warn("Invalid integer env var, using default", "key", key, "value", value, "default", defaultValue)
		return defaultValue
	}
	return n
}

// loadChatID accepts negative ids, which Telegram uses for groups and channels.
func loadChatID(key string) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return 0
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		slog.Warn("Invalid chat id env var", "key", key, "value", value)
		return 0
	}
	return id
}

func loadBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		slog.Warn("Invalid boolean env var, using default", "key", key, "value", value, "default", defaultValue)
		return defaultValue
	}
	return b
}

func loadList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsProduction turns off source locations in logs and flags an unsigned webhook.
func (c AppConfig) IsProduction() bool {
	return c.AppEnv == EnvProduction
}
