package tracker

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/kova98/footroll.api/data"
	"github.com/kova98/footroll.api/enums"
	"github.com/kova98/footroll.api/models"
	"github.com/kova98/footroll.api/ranking"
	"github.com/kova98/footroll.api/sources"
)

var testNow = time.Date(2026, 5, 10, 20, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type sentMessage struct {
	Text     string
	Keyboard models.Keyboard
}

type editedMessage struct {
	Ref      models.SentMessage
	Text     string
	Keyboard models.Keyboard
}

type fakeMessenger struct {
	mu      sync.Mutex
	sent    []sentMessage
	edits   []editedMessage
	answers map[string]string
	sendErr error
	editErr error
	nextID  int
	onSend  func()
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{answers: make(map[string]string), nextID: 100}
}

func (m *fakeMessenger) Send(ctx context.Context, text string, keyboard models.Keyboard) (models.SentMessage, error) {
	if m.onSend != nil {
		m.onSend()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return models.SentMessage{}, m.sendErr
	}
	m.sent = append(m.sent, sentMessage{Text: text, Keyboard: keyboard})
	m.nextID++
	return models.SentMessage{ChatID: -100, MessageID: m.nextID}, nil
}

func (m *fakeMessenger) Edit(ctx context.Context, ref models.SentMessage, text string, keyboard models.Keyboard) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.editErr != nil {
		return m.editErr
	}
	m.edits = append(m.edits, editedMessage{Ref: ref, Text: text, Keyboard: keyboard})
	return nil
}

func (m *fakeMessenger) AnswerCallback(ctx context.Context, callbackID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.answers[callbackID] = text
	return nil
}

func (m *fakeMessenger) lastEdit() editedMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.edits) == 0 {
		return editedMessage{}
	}
	return m.edits[len(m.edits)-1]
}

type fakeSearcher struct {
	mu     sync.Mutex
	calls  []sources.SearchParams
	pages  map[string]sources.SearchPage
	err    error
	panics bool
}

func newFakeSearcher() *fakeSearcher {
	return &fakeSearcher{pages: make(map[string]sources.SearchPage)}
}

// pageKey identifies a canned page by query and token.
func pageKey(query, token string) string {
	return query + "#" + token
}

func (s *fakeSearcher) Search(ctx context.Context, p sources.SearchParams) (sources.SearchPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.panics {
		panic("boom")
	}
	s.calls = append(s.calls, p)
	if s.err != nil {
		return sources.SearchPage{}, s.err
	}
	return s.pages[pageKey(p.Query, p.PageToken)], nil
}

func (s *fakeSearcher) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type fakeFeed struct {
	fixtures  []models.LiveFixture
	events    map[int64][]models.FixtureEvent
	err       error
	eventErrs map[int64]error
	block     chan struct{}
}

func (f *fakeFeed) LiveFixtures(ctx context.Context) ([]models.LiveFixture, error) {
	if f.block != nil {
		<-f.block
	}
	return f.fixtures, f.err
}

func (f *fakeFeed) FixtureEvents(ctx context.Context, fixtureID int64) ([]models.FixtureEvent, error) {
	if err := f.eventErrs[fixtureID]; err != nil {
		return nil, err
	}
	return f.events[fixtureID], nil
}

func fixedClock() func() time.Time {
	return func() time.Time { return testNow }
}

func newTestStore() *MemoryStore {
	s := NewMemoryStore()
	s.now = fixedClock()
	return s
}

func newTestCacheManager(store EventStore, video, post Searcher) *CacheManager {
	providers := map[enums.Provider]ProviderConfig{
		enums.ProviderVideo: {Searcher: video, Lookback: 6 * time.Hour, MaxResults: 10, TTL: 10 * time.Minute},
		enums.ProviderPost:  {Searcher: post, Lookback: 24 * time.Hour, MaxResults: 10, TTL: 10 * time.Minute},
	}
	m := NewCacheManager(discardLogger(), store, ranking.NewRanker(nil), providers)
	m.now = fixedClock()
	return m
}

func storedEvent(store *MemoryStore) data.MatchEvent {
	e, err := store.Upsert(context.Background(), data.MatchEvent{
		DedupeKey:    "42|60||Card|Red Card|1|7||",
		FixtureID:    42,
		Home:         "Arsenal",
		Away:         "Chelsea",
		League:       "Premier League",
		MinuteLabel:  "60'",
		Player:       "Rice",
		EventType:    "Card",
		EventDetail:  "Red Card",
		OriginalText: "<b>original</b>",
		ChatID:       -100,
		MessageID:    55,
	})
	if err != nil {
		panic(err)
	}
	return e
}

func results(ids ...string) []data.SearchResult {
	out := make([]data.SearchResult, 0, len(ids))
	for _, id := range ids {
		out = append(out, data.SearchResult{
			ExternalID:  id,
			Title:       "Arsenal v Chelsea " + id,
			Label:       "Channel",
			URL:         "https://example.com/" + id,
			PublishedAt: testNow.Add(-time.Hour),
		})
	}
	return out
}
