package main

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Nerzal/gocloak/v13"
	"github.com/jmoiron/sqlx"
	_ "github.com/joho/godotenv/autoload"
	_ "github.com/lib/pq"

	"github.com/kova98/footroll.api/config"
	"github.com/kova98/footroll.api/data"
	"github.com/kova98/footroll.api/data/repos"
	"github.com/kova98/footroll.api/enums"
	"github.com/kova98/footroll.api/handlers"
	"github.com/kova98/footroll.api/matchers"
	"github.com/kova98/footroll.api/metrics"
	"github.com/kova98/footroll.api/models"
	"github.com/kova98/footroll.api/notifiers"
	"github.com/kova98/footroll.api/ranking"
	"github.com/kova98/footroll.api/sources"
	"github.com/kova98/footroll.api/tracker"
)

const (
	footballTimeout = 15 * time.Second
	telegramTimeout = 10 * time.Second
	searchTimeout   = 10 * time.Second
	ledgerCleanup   = 1 * time.Hour
)

var auth *handlers.AuthHandler

//go:embed data/migrations/*.sql
var embedMigrations embed.FS

type storage struct {
	events tracker.EventStore
	ledger tracker.Ledger
	close  func()
}

func main() {
	config.LoadConfig()

	opts := slog.HandlerOptions{Level: config.Config.LogLevel, AddSource: !config.Config.IsProduction()}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &opts))
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := openStorage(ctx, logger)
	if err != nil {
		slog.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer store.close()

	trackerEnabled, reasons := config.Config.TrackerEnabled()
	var callbacks handlers.CallbackHandler
	var poller handlers.Poller
	if trackerEnabled {
		controller, p, err := buildTracker(logger, store)
		if err != nil {
			slog.Error("live events tracker disabled", "error", err)
			trackerEnabled, reasons = false, []string{err.Error()}
		} else {
			callbacks, poller = controller, p
			go p.StartPolling(ctx)
		}
	} else {
		slog.Info("live events tracker disabled", "reasons", reasons)
	}

	health := handlers.NewHealthHandler(trackerEnabled, reasons)
	if config.Config.IsProduction() && callbacks != nil && config.Config.TelegramWebhookSecret == "" {
		slog.Warn("TELEGRAM_WEBHOOK_SECRET not set, webhook accepts unsigned updates")
	}
	telegram := handlers.NewTelegramHandler(callbacks, config.Config.TelegramWebhookSecret)
	events := handlers.NewEventsHandler(store.events, poller)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", public(health.GetHealth))
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("POST /telegram/webhook", public(telegram.Webhook))

	if config.Config.KeycloakConfigured() {
		auth = handlers.NewAuthHandler(gocloak.NewClient(config.Config.KeycloakURL))
		mux.HandleFunc("POST /events/live/poll", private(events.PollLiveEvents))
		mux.HandleFunc("GET /events/{id}", private(events.GetEvent))
	} else {
		slog.Warn("keycloak is not configured, admin routes are disabled")
	}

	server := &http.Server{Addr: ":" + config.Config.Port, Handler: withCORS(mux)}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sigCh
		slog.Info("Shutting down...")
		cancel()
		shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
		defer done()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shut down server", "error", err)
		}
	}()

	slog.Info("Starting server", "port", config.Config.Port)
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("failed to start server", "error", err)
	}
}

// openStorage uses Postgres when POSTGRES_URL is set and falls back to process
// memory otherwise.
func openStorage(ctx context.Context, logger *slog.Logger) (storage, error) {
	if config.Config.PostgresURL == "" {
		slog.Info("POSTGRES_URL not set, using in-memory event store")
		ledger := tracker.NewMemoryLedger(tracker.LedgerRetention)
		return storage{
			events: tracker.NewMemoryStore(),
			ledger: ledger,
			close:  ledger.Close,
		}, nil
	}

	db, err := sqlx.Connect("postgres", config.Config.PostgresURL)
	if err != nil {
		return storage{}, err
	}

	db.SetMaxOpenConns(90)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)

	if err := data.RunMigrations(db.DB, embedMigrations); err != nil {
		_ = db.Close()
		return storage{}, err
	}

	notifications := repos.NewNotificationRepo(db, tracker.LedgerRetention)
	go notifications.StartCleanup(ctx, logger, ledgerCleanup)

	return storage{
		events: repos.NewEventRepo(db),
		ledger: notifications,
		close: func() {
			if err := db.Close(); err != nil {
				slog.Error("failed to close database connection", "error", err)
			}
		},
	}, nil
}

func buildTracker(logger *slog.Logger, store storage) (*tracker.Controller, *tracker.Poller, error) {
	cfg := config.Config

	messenger, err := notifiers.NewTelegram(logger, &http.Client{Timeout: telegramTimeout}, cfg.TelegramBotToken, cfg.TelegramChatID)
	if err != nil {
		return nil, nil, err
	}

	egress, err := sources.NewEgressPool(cfg.ProxyURLs, searchTimeout)
	if err != nil {
		return nil, nil, err
	}

	youtube := sources.NewYouTubeClient(&http.Client{Timeout: searchTimeout}, cfg.YouTubeAPIKey, cfg.YouTubeRegionCode, cfg.YouTubeRelevanceLanguage)
	reddit := sources.NewRedditClient(egress)
	providers := map[enums.Provider]tracker.ProviderConfig{
		enums.ProviderVideo: {Searcher: youtube, Lookback: cfg.YouTube.Lookback, MaxResults: cfg.YouTube.MaxResults, TTL: cfg.YouTube.CacheTTL},
		enums.ProviderPost:  {Searcher: reddit, Lookback: cfg.Reddit.Lookback, MaxResults: cfg.Reddit.MaxResults, TTL: cfg.Reddit.CacheTTL},
	}
	if cfg.YouTubeAPIKey == "" {
		slog.Warn("YOUTUBE_API_KEY not set, video search will report it is not configured")
	}

	cache := tracker.NewCacheManager(logger, store.events, ranking.NewRanker(cfg.YouTubeSpamKeywords), providers)
	controller := tracker.NewController(logger, store.events, cache, messenger, matchers.NewLanguageDetector())

	feed := sources.NewFootballClient(&http.Client{Timeout: footballTimeout}, cfg.FootballAPIKey, cfg.FootballTimezone)
	poller := tracker.NewPoller(logger, feed, store.ledger, store.events, messenger, tracker.PollerConfig{
		Enabled:  true,
		Interval: cfg.LiveEventsInterval,
		Leagues:  cfg.LiveEventsLeagueIDs,
	})

	return controller, poller, nil
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func private(handler handlers.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result := auth.GetOperator(r.Context(), r.Header.Get("Authorization"))
		if result.Code != http.StatusOK {
			slog.Debug("unauthorized request", "path", r.URL.Path)
			writeResult(w, result)
			return
		}

		operator := result.Body.(models.Operator)
		ctx := context.WithValue(r.Context(), handlers.OperatorContextKey, operator)

		public(handler)(w, r.WithContext(ctx))
	}
}

func public(handler handlers.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ts := time.Now()
		res := handler(w, r)
		elapsedMs := time.Since(ts).Milliseconds()
		slog.Debug("req", "method", r.Method, "path", r.URL.Path, "code", res.Code, "elapsed", elapsedMs)
		writeResult(w, res)
	}
}

func writeResult(w http.ResponseWriter, res handlers.Result) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.Code)
	if res.Body != nil {
		if err := json.NewEncoder(w).Encode(res.Body); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
	if res.Code == http.StatusInternalServerError {
		slog.Error("internal error", "error", res.Error.Error())
	}
}
