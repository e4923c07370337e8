package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kova98/footroll.api/data"
	"github.com/kova98/footroll.api/enums"
	"github.com/kova98/footroll.api/metrics"
	"github.com/kova98/footroll.api/queries"
	"github.com/kova98/footroll.api/ranking"
	"github.com/kova98/footroll.api/sources"
)

// ProviderConfig binds a search adapter to its lookback window, page size and cache TTL.
type ProviderConfig struct {
	Searcher   Searcher
	Lookback   time.Duration
	MaxResults int
	TTL        time.Duration
}

// CacheManager keeps per event, per provider search results fresh. Every write
// replaces the provider cache as a whole.
type CacheManager struct {
	logger    *slog.Logger
	store     EventStore
	providers map[enums.Provider]ProviderConfig
	ranker    *ranking.Ranker
	now       func() time.Time
}

func NewCacheManager(logger *slog.Logger, store EventStore, ranker *ranking.Ranker, providers map[enums.Provider]ProviderConfig) *CacheManager {
	return &CacheManager{
		logger:    logger,
		store:     store,
		providers: providers,
		ranker:    ranker,
		now:       time.Now,
	}
}

// GetOrRefresh returns the event's provider cache when fresh. Otherwise it runs the
// initial query set, ranks video results and replaces the stored cache. An empty
// result set is stored with a zero CachedAt, so it is stale and a retry searches again.
func (m *CacheManager) GetOrRefresh(ctx context.Context, event data.MatchEvent, provider enums.Provider) (data.MatchEvent, *data.ProviderCache, error) {
	cfg, err := m.provider(provider)
	if err != nil {
		return event, nil, err
	}

	now := m.now()
	if cache := event.Cache(provider); cache.IsFresh(now, cfg.TTL) {
		return event, cache, nil
	}

	qs := buildQueries(provider, event)
	pages := make([][]data.SearchResult, 0, len(qs))
	nextToken := ""
	for i, q := range qs {
		page, err := m.search(ctx, provider, cfg, sources.SearchParams{
			Query:          q,
			PublishedAfter: now.Add(-cfg.Lookback),
			MaxResults:     cfg.MaxResults,
		})
		if err != nil {
			return event, nil, err
		}
		if i == 0 {
			nextToken = page.NextToken
		}
		pages = append(pages, page.Items)
	}

	results := data.MergeResults(pages...)
	if provider == enums.ProviderVideo {
		results = m.ranker.Rank(results, event, now)
	}

	cache := &data.ProviderCache{
		Results:   results,
		NextToken: nextToken,
		CachedAt:  now,
		Queries:   qs,
	}
	if len(results) == 0 {
		cache.CachedAt = time.Time{}
	}

	updated, err := m.store.Upsert(ctx, data.MatchEvent{DedupeKey: event.DedupeKey}.WithCache(provider, cache))
	if err != nil {
		return event, nil, fmt.Errorf("store %s cache: %w", provider, err)
	}

	return updated, cache, nil
}

// Extend fetches the next page of the first query and appends it to the cache.
// It returns ErrNoMoreResults when the cache has no continuation token.
func (m *CacheManager) Extend(ctx context.Context, event data.MatchEvent, provider enums.Provider) (data.MatchEvent, *data.ProviderCache, error) {
	cfg, err := m.provider(provider)
	if err != nil {
		return event, nil, err
	}

	current := event.Cache(provider)
	if current == nil || current.NextToken == "" || current.FirstQuery() == "" {
		return event, current, ErrNoMoreResults
	}

	now := m.now()
	page, err := m.search(ctx, provider, cfg, sources.SearchParams{
		Query:          current.FirstQuery(),
		PublishedAfter: now.Add(-cfg.Lookback),
		MaxResults:     cfg.MaxResults,
		PageToken:      current.NextToken,
	})
	if err != nil {
		return event, current, err
	}

	results := data.MergeResults(current.Results, page.Items)
	if provider == enums.ProviderVideo {
		results = m.ranker.Rank(results, event, now)
	}

	cache := &data.ProviderCache{
		Results:   results,
		NextToken: page.NextToken,
		CachedAt:  current.CachedAt,
		Queries:   current.Queries,
	}

	updated, err := m.store.Upsert(ctx, data.MatchEvent{DedupeKey: event.DedupeKey}.WithCache(provider, cache))
	if err != nil {
		return event, current, fmt.Errorf("store %s cache: %w", provider, err)
	}

	return updated, cache, nil
}

func (m *CacheManager) provider(provider enums.Provider) (ProviderConfig, error) {
	cfg, ok := m.providers[provider]
	if !ok || cfg.Searcher == nil {
		return ProviderConfig{}, fmt.Errorf("search provider %q is not configured", provider)
	}
	return cfg, nil
}

func (m *CacheManager) search(ctx context.Context, provider enums.Provider, cfg ProviderConfig, p sources.SearchParams) (sources.SearchPage, error) {
	page, err := cfg.Searcher.Search(ctx, p)
	if err != nil {
		metrics.SearchRequests.WithLabelValues(string(provider), metrics.OutcomeError).Inc()
		m.logger.Error("search failed", "provider", provider, "query", p.Query, "error", err)
		return sources.SearchPage{}, fmt.Errorf("%s search: %w", provider, err)
	}

	outcome := metrics.OutcomeOK
	if len(page.Items) == 0 {
		outcome = metrics.OutcomeEmpty
	}
	metrics.SearchRequests.WithLabelValues(string(provider), outcome).Inc()

	return page, nil
}

func buildQueries(provider enums.Provider, event data.MatchEvent) []string {
	switch provider {
	case enums.ProviderVideo:
		return queries.BuildVideoQueries(event)
	case enums.ProviderPost:
		return queries.BuildPostQueries(event)
	default:
		return nil
	}
}
