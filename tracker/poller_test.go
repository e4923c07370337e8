package tracker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kova98/footroll.api/data"
	"github.com/kova98/footroll.api/models"
)

type pollerFixture struct {
	feed      *fakeFeed
	ledger    *MemoryLedger
	store     *MemoryStore
	messenger *fakeMessenger
	poller    *Poller
}

func newPollerFixture(t *testing.T, cfg PollerConfig) *pollerFixture {
	f := &pollerFixture{
		feed:      &fakeFeed{events: make(map[int64][]models.FixtureEvent)},
		ledger:    NewMemoryLedger(LedgerRetention),
		store:     newTestStore(),
		messenger: newFakeMessenger(),
	}
	t.Cleanup(f.ledger.Close)
	f.poller = NewPoller(discardLogger(), f.feed, f.ledger, f.store, f.messenger, cfg)
	f.poller.now = fixedClock()
	return f
}

func enabledConfig() PollerConfig {
	return PollerConfig{Enabled: true, Interval: time.Minute, Leagues: map[int64]bool{39: true}}
}

func fixtureWith(id, league int64) models.LiveFixture {
	f := testFixture()
	f.Fixture.ID = id
	f.League.ID = league
	return f
}

func TestPollOnce_SendsNotableEvent(t *testing.T) {
	f := newPollerFixture(t, enabledConfig())
	f.feed.fixtures = []models.LiveFixture{testFixture()}
	redCard := testEvent("Card", "Red Card", intPtr(60), nil)
	f.feed.events[42] = []models.FixtureEvent{redCard}

	res := f.poller.PollOnce(context.Background())

	assert.Equal(t, models.PollResult{Enabled: true, Sent: 1, LiveFixtures: 1, TrackedLiveFixtures: 1, ScopedLiveFixtures: 1}, res)
	require.Len(t, f.messenger.sent, 1)
	msg := f.messenger.sent[0]
	assert.Contains(t, msg.Text, "🟥 Live Match Event")
	assert.Contains(t, msg.Text, "Arsenal 2:0 Chelsea &amp; Co")
	assert.Contains(t, msg.Text, "Minute: <b>60'</b>")

	id := data.EventID(EventKey(42, redCard))
	assert.Equal(t, InitialKeyboard(id), msg.Keyboard)
	assert.Equal(t, []string{"search-video:" + id, "search-post:" + id}, actions(msg.Keyboard[0]))
	assert.Equal(t, []string{"skip:" + id}, actions(msg.Keyboard[1]))

	stored, err := f.store.Get(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, msg.Text, stored.OriginalText)
	assert.Equal(t, int64(-100), stored.ChatID)
	assert.Equal(t, 101, stored.MessageID)
	assert.Equal(t, "60'", stored.MinuteLabel)
	assert.Equal(t, "Rice", stored.Player)
}

func TestPollOnce_LateGoalIsNotable(t *testing.T) {
	f := newPollerFixture(t, enabledConfig())
	f.feed.fixtures = []models.LiveFixture{testFixture()}
	f.feed.events[42] = []models.FixtureEvent{
		testEvent("Goal", "Normal Goal", intPtr(90), intPtr(2)),
		testEvent("Goal", "Normal Goal", intPtr(30), nil),
	}

	res := f.poller.PollOnce(context.Background())

	assert.Equal(t, 1, res.Sent)
	require.Len(t, f.messenger.sent, 1)
	assert.Contains(t, f.messenger.sent[0].Text, "90+2'")
}

func TestPollOnce_IgnoresRoutineEvents(t *testing.T) {
	f := newPollerFixture(t, enabledConfig())
	f.feed.fixtures = []models.LiveFixture{testFixture()}
	f.feed.events[42] = []models.FixtureEvent{
		testEvent("subst", "Substitution 1", intPtr(70), nil),
		testEvent("Card", "Yellow Card", intPtr(20), nil),
	}

	res := f.poller.PollOnce(context.Background())

	assert.Equal(t, 0, res.Sent)
	assert.Empty(t, f.messenger.sent)
	assert.Equal(t, 0, f.store.Len())
	assert.Empty(t, f.ledger.notified)
}

func TestPollOnce_DoesNotResend(t *testing.T) {
	f := newPollerFixture(t, enabledConfig())
	f.feed.fixtures = []models.LiveFixture{testFixture()}
	f.feed.events[42] = []models.FixtureEvent{testEvent("Card", "Red Card", intPtr(60), nil)}

	first := f.poller.PollOnce(context.Background())
	second := f.poller.PollOnce(context.Background())

	assert.Equal(t, 1, first.Sent)
	assert.Equal(t, 0, second.Sent)
	assert.Empty(t, second.Error)
	assert.Len(t, f.messenger.sent, 1)
}

func TestPollOnce_FailedSendIsNotRetried(t *testing.T) {
	f := newPollerFixture(t, enabledConfig())
	f.feed.fixtures = []models.LiveFixture{testFixture()}
	f.feed.events[42] = []models.FixtureEvent{testEvent("Card", "Red Card", intPtr(60), nil)}
	f.messenger.sendErr = errors.New("telegram down")

	first := f.poller.PollOnce(context.Background())
	f.messenger.sendErr = nil
	second := f.poller.PollOnce(context.Background())

	assert.Equal(t, 0, first.Sent)
	assert.Contains(t, first.Error, "telegram down")
	assert.Equal(t, 0, second.Sent)
	assert.Empty(t, f.messenger.sent)
}

func TestPollOnce_NarrowsByTrackedAndLeague(t *testing.T) {
	cfg := enabledConfig()
	cfg.Tracked = func(ctx context.Context) (map[int64]bool, error) {
		return map[int64]bool{42: true, 44: true}, nil
	}
	f := newPollerFixture(t, cfg)
	f.feed.fixtures = []models.LiveFixture{fixtureWith(42, 39), fixtureWith(43, 39), fixtureWith(44, 140)}
	f.feed.events[43] = []models.FixtureEvent{testEvent("Card", "Red Card", intPtr(60), nil)}
	f.feed.events[44] = []models.FixtureEvent{testEvent("Card", "Red Card", intPtr(60), nil)}

	res := f.poller.PollOnce(context.Background())

	assert.Equal(t, 3, res.LiveFixtures)
	assert.Equal(t, 2, res.TrackedLiveFixtures)
	assert.Equal(t, 1, res.ScopedLiveFixtures)
	assert.Equal(t, 0, res.Sent)
}

func TestPollOnce_TrackedFixturesError(t *testing.T) {
	cfg := enabledConfig()
	cfg.Tracked = func(ctx context.Context) (map[int64]bool, error) {
		return nil, errors.New("tracked lookup failed")
	}
	f := newPollerFixture(t, cfg)
	f.feed.fixtures = []models.LiveFixture{testFixture()}

	res := f.poller.PollOnce(context.Background())

	assert.Equal(t, 1, res.LiveFixtures)
	assert.Contains(t, res.Error, "tracked lookup failed")
}

func TestPollOnce_FixtureErrorDoesNotStopOthers(t *testing.T) {
	f := newPollerFixture(t, enabledConfig())
	f.feed.fixtures = []models.LiveFixture{fixtureWith(42, 39), fixtureWith(43, 39)}
	f.feed.eventErrs = map[int64]error{42: errors.New("events unavailable")}
	f.feed.events[43] = []models.FixtureEvent{testEvent("Card", "Red Card", intPtr(60), nil)}

	res := f.poller.PollOnce(context.Background())

	assert.Equal(t, 1, res.Sent)
	assert.Equal(t, 2, res.ScopedLiveFixtures)
	assert.Contains(t, res.Error, "fetch fixture events")
}

func TestPollOnce_LiveFixturesError(t *testing.T) {
	f := newPollerFixture(t, enabledConfig())
	f.feed.err = errors.New("api-football unavailable")

	res := f.poller.PollOnce(context.Background())

	assert.True(t, res.Enabled)
	assert.Equal(t, 0, res.LiveFixtures)
	assert.Contains(t, res.Error, "api-football unavailable")
}

func TestPollOnce_Disabled(t *testing.T) {
	f := newPollerFixture(t, PollerConfig{})
	f.feed.fixtures = []models.LiveFixture{testFixture()}

	res := f.poller.PollOnce(context.Background())

	assert.Equal(t, models.PollResult{}, res)
	assert.Empty(t, f.messenger.sent)
}

func TestPollOnce_ConcurrentCallIsSkipped(t *testing.T) {
	f := newPollerFixture(t, enabledConfig())
	f.feed.fixtures = []models.LiveFixture{testFixture()}
	f.feed.events[42] = []models.FixtureEvent{testEvent("Card", "Red Card", intPtr(60), nil)}
	f.feed.block = make(chan struct{})

	done := make(chan models.PollResult)
	go func() { done <- f.poller.PollOnce(context.Background()) }()

	assert.Eventually(t, f.poller.inProgress.Load, time.Second, 5*time.Millisecond)

	skipped := f.poller.PollOnce(context.Background())
	assert.Equal(t, models.PollResult{Enabled: true}, skipped)

	close(f.feed.block)
	first := <-done
	assert.Equal(t, 1, first.Sent)
	assert.False(t, f.poller.inProgress.Load())
}

func TestStartPolling_PollsImmediatelyAndStops(t *testing.T) {
	cfg := enabledConfig()
	cfg.Interval = time.Hour
	f := newPollerFixture(t, cfg)
	f.feed.fixtures = []models.LiveFixture{testFixture()}
	f.feed.events[42] = []models.FixtureEvent{testEvent("Card", "Red Card", intPtr(60), nil)}

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		f.poller.StartPolling(ctx)
		close(stopped)
	}()

	assert.Eventually(t, func() bool {
		f.messenger.mu.Lock()
		defer f.messenger.mu.Unlock()
		return len(f.messenger.sent) == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("polling did not stop")
	}
}

func TestStartPolling_NonPositiveIntervalReturns(t *testing.T) {
	cfg := enabledConfig()
	cfg.Interval = 0
	f := newPollerFixture(t, cfg)
	f.feed.fixtures = []models.LiveFixture{testFixture()}
	f.feed.events[42] = []models.FixtureEvent{testEvent("Card", "Red Card", intPtr(60), nil)}

	stopped := make(chan struct{})
	go func() {
		f.poller.StartPolling(context.Background())
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("polling did not return")
	}
	assert.Empty(t, f.messenger.sent)
}
