package tracker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kova98/footroll.api/data"
	"github.com/kova98/footroll.api/enums"
	"github.com/kova98/footroll.api/queries"
	"github.com/kova98/footroll.api/sources"
)

func TestGetOrRefresh_MergesRanksAndPersists(t *testing.T) {
	store := newTestStore()
	event := storedEvent(store)
	video := newFakeSearcher()
	qs := queries.BuildVideoQueries(event)

	spam := data.SearchResult{ExternalID: "spam", Title: "FIFA gameplay Arsenal Chelsea", URL: "u", PublishedAt: testNow}
	video.pages[pageKey(qs[0], "")] = sources.SearchPage{Items: []data.SearchResult{spam, results("a")[0]}, NextToken: "NEXT"}
	video.pages[pageKey(qs[1], "")] = sources.SearchPage{Items: results("a", "b"), NextToken: "IGNORED"}

	m := newTestCacheManager(store, video, newFakeSearcher())
	updated, cache, err := m.GetOrRefresh(context.Background(), event, enums.ProviderVideo)
	require.NoError(t, err)

	require.Len(t, cache.Results, 3)
	assert.Equal(t, "spam", cache.Results[2].ExternalID)
	assert.Equal(t, "NEXT", cache.NextToken)
	assert.Equal(t, qs, cache.Queries)
	assert.Equal(t, testNow, cache.CachedAt)
	assert.Equal(t, 2, video.callCount())
	assert.Equal(t, testNow.Add(-6*time.Hour), video.calls[0].PublishedAfter)
	assert.Equal(t, 10, video.calls[0].MaxResults)

	stored, err := store.Get(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, cache, stored.VideoCache)
	assert.Equal(t, updated.VideoCache, stored.VideoCache)
	assert.Equal(t, "<b>original</b>", stored.OriginalText)
}

func TestGetOrRefresh_FreshCacheIsReused(t *testing.T) {
	store := newTestStore()
	event := storedEvent(store)
	event.PostCache = &data.ProviderCache{Results: results("x"), CachedAt: testNow.Add(-time.Minute)}
	post := newFakeSearcher()

	m := newTestCacheManager(store, newFakeSearcher(), post)
	_, cache, err := m.GetOrRefresh(context.Background(), event, enums.ProviderPost)
	require.NoError(t, err)

	assert.Same(t, event.PostCache, cache)
	assert.Equal(t, 0, post.callCount())
}

func TestGetOrRefresh_StaleCacheIsRefreshed(t *testing.T) {
	store := newTestStore()
	event := storedEvent(store)
	event.PostCache = &data.ProviderCache{Results: results("x"), CachedAt: testNow.Add(-10 * time.Minute)}
	post := newFakeSearcher()
	qs := queries.BuildPostQueries(event)
	post.pages[pageKey(qs[0], "")] = sources.SearchPage{Items: results("y"), NextToken: "t3_y"}

	m := newTestCacheManager(store, newFakeSearcher(), post)
	_, cache, err := m.GetOrRefresh(context.Background(), event, enums.ProviderPost)
	require.NoError(t, err)

	assert.Equal(t, 2, post.callCount())
	require.Len(t, cache.Results, 1)
	assert.Equal(t, "y", cache.Results[0].ExternalID)
}

func TestGetOrRefresh_EmptyResultsReplaceStaleCache(t *testing.T) {
	store := newTestStore()
	event := storedEvent(store)
	event, err := store.Upsert(context.Background(), data.MatchEvent{
		DedupeKey:  event.DedupeKey,
		VideoCache: &data.ProviderCache{Results: results("old"), NextToken: "OLD", CachedAt: testNow.Add(-time.Hour)},
	})
	require.NoError(t, err)
	video := newFakeSearcher()

	m := newTestCacheManager(store, video, newFakeSearcher())
	_, cache, err := m.GetOrRefresh(context.Background(), event, enums.ProviderVideo)
	require.NoError(t, err)

	assert.Empty(t, cache.Results)
	stored, _ := store.Get(context.Background(), event.ID)
	require.NotNil(t, stored.VideoCache)
	assert.Empty(t, stored.VideoCache.Results)
	assert.Empty(t, stored.VideoCache.NextToken)
	assert.True(t, stored.VideoCache.CachedAt.IsZero())

	calls := video.callCount()
	_, _, err = m.GetOrRefresh(context.Background(), *stored, enums.ProviderVideo)
	require.NoError(t, err)
	assert.Greater(t, video.callCount(), calls)
}

func TestGetOrRefresh_SearchError(t *testing.T) {
	store := newTestStore()
	event := storedEvent(store)
	video := newFakeSearcher()
	video.err = sources.ErrMissingAPIKey

	m := newTestCacheManager(store, video, newFakeSearcher())
	_, _, err := m.GetOrRefresh(context.Background(), event, enums.ProviderVideo)

	assert.ErrorIs(t, err, sources.ErrMissingAPIKey)
	assert.Equal(t, 1, video.callCount())
}

func TestGetOrRefresh_UnknownProvider(t *testing.T) {
	store := newTestStore()
	m := newTestCacheManager(store, newFakeSearcher(), newFakeSearcher())

	_, _, err := m.GetOrRefresh(context.Background(), storedEvent(store), enums.ProviderInvalid)

	assert.Error(t, err)
}

func TestExtend_AppendsNextPage(t *testing.T) {
	store := newTestStore()
	event := storedEvent(store)
	cachedAt := testNow.Add(-5 * time.Minute)
	event.PostCache = &data.ProviderCache{Results: results("a", "b"), NextToken: "t3_b", CachedAt: cachedAt, Queries: []string{"q1", "q2"}}
	post := newFakeSearcher()
	post.pages[pageKey("q1", "t3_b")] = sources.SearchPage{Items: results("b", "c"), NextToken: "t3_c"}

	m := newTestCacheManager(store, newFakeSearcher(), post)
	_, cache, err := m.Extend(context.Background(), event, enums.ProviderPost)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, ids(cache.Results))
	assert.Equal(t, "t3_c", cache.NextToken)
	assert.Equal(t, cachedAt, cache.CachedAt)
	assert.Equal(t, []string{"q1", "q2"}, cache.Queries)
	require.Equal(t, 1, post.callCount())
	assert.Equal(t, "q1", post.calls[0].Query)

	stored, _ := store.Get(context.Background(), event.ID)
	assert.Equal(t, cache, stored.PostCache)
}

func TestExtend_WithoutTokenSignalsNoMore(t *testing.T) {
	store := newTestStore()
	event := storedEvent(store)
	event.VideoCache = &data.ProviderCache{Results: results("a"), Queries: []string{"q1"}}
	video := newFakeSearcher()

	m := newTestCacheManager(store, video, newFakeSearcher())
	_, _, err := m.Extend(context.Background(), event, enums.ProviderVideo)

	assert.ErrorIs(t, err, ErrNoMoreResults)
	assert.Equal(t, 0, video.callCount())

	_, _, err = m.Extend(context.Background(), data.MatchEvent{DedupeKey: "k"}, enums.ProviderVideo)
	assert.ErrorIs(t, err, ErrNoMoreResults)
}

func TestExtend_SearchErrorKeepsCache(t *testing.T) {
	store := newTestStore()
	event := storedEvent(store)
	event.VideoCache = &data.ProviderCache{Results: results("a"), NextToken: "N", Queries: []string{"q1"}}
	video := newFakeSearcher()
	video.err = errors.New("timeout")

	m := newTestCacheManager(store, video, newFakeSearcher())
	_, cache, err := m.Extend(context.Background(), event, enums.ProviderVideo)

	assert.ErrorContains(t, err, "timeout")
	assert.Same(t, event.VideoCache, cache)
}

func ids(rs []data.SearchResult) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.ExternalID)
	}
	return out
}
