package tracker

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/kova98/footroll.api/data"
	"github.com/kova98/footroll.api/matchers"
	"github.com/kova98/footroll.api/metrics"
	"github.com/kova98/footroll.api/models"
)

// TrackedFixtures optionally narrows live fixtures to an explicit id set.
type TrackedFixtures func(ctx context.Context) (map[int64]bool, error)

type PollerConfig struct {
	Enabled  bool
	Interval time.Duration
	Leagues  map[int64]bool
	Tracked  TrackedFixtures
}

type Poller struct {
	logger     *slog.Logger
	feed       FixtureFeed
	ledger     Ledger
	store      EventStore
	messenger  Messenger
	cfg        PollerConfig
	inProgress atomic.Bool
	now        func() time.Time
}

func NewPoller(logger *slog.Logger, feed FixtureFeed, ledger Ledger, store EventStore, messenger Messenger, cfg PollerConfig) *Poller {
	return &Poller{
		logger:    logger,
		feed:      feed,
		ledger:    ledger,
		store:     store,
		messenger: messenger,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (p *Poller) StartPolling(ctx context.Context) {
	if !p.cfg.Enabled {
		p.logger.Info("live events tracker disabled")
		return
	}

	if p.cfg.Interval <= 0 {
		p.logger.Error("live events polling disabled, interval must be positive", "interval", p.cfg.Interval.String())
		return
	}

	p.logger.Info("starting live events polling", "interval", p.cfg.Interval.Seconds(), "leagues", len(p.cfg.Leagues))
	p.PollOnce(ctx)

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("stopping live events polling")
			return
		case <-ticker.C:
			p.PollOnce(ctx)
		}
	}
}

// PollOnce runs one cycle. A call made while another cycle runs returns at once
// with nothing sent.
func (p *Poller) PollOnce(ctx context.Context) models.PollResult {
	res := models.PollResult{Enabled: p.cfg.Enabled}
	if !p.cfg.Enabled {
		return res
	}
	if !p.inProgress.CompareAndSwap(false, true) {
		metrics.PollCycles.WithLabelValues(metrics.OutcomeSkipped).Inc()
		return res
	}
	defer p.inProgress.Store(false)

	fixtures, err := p.feed.LiveFixtures(ctx)
	if err != nil {
		return p.fail(res, errors.Wrap(err, "poll live events"))
	}
	res.LiveFixtures = len(fixtures)

	tracked := fixtures
	if p.cfg.Tracked != nil {
		ids, err := p.cfg.Tracked(ctx)
		if err != nil {
			return p.fail(res, errors.Wrap(err, "poll live events: tracked fixtures"))
		}
		tracked = filterFixtures(fixtures, func(f models.LiveFixture) bool { return ids[f.Fixture.ID] })
	}
	res.TrackedLiveFixtures = len(tracked)

	scoped := filterFixtures(tracked, func(f models.LiveFixture) bool {
		return matchers.MatchesLeague(p.cfg.Leagues, f.League.ID)
	})
	res.ScopedLiveFixtures = len(scoped)

	var lastErr error
	for _, fixture := range scoped {
		sent, err := p.processFixture(ctx, fixture)
		res.Sent += sent
		if err != nil {
			lastErr = err
			p.logger.Error("failed to process fixture", "error", err, "fixture_id", fixture.Fixture.ID)
		}
	}

	if lastErr != nil {
		res.Error = lastErr.Error()
		metrics.PollCycles.WithLabelValues(metrics.OutcomeError).Inc()
	} else {
		metrics.PollCycles.WithLabelValues(metrics.OutcomeOK).Inc()
	}
	if res.Sent > 0 {
		p.logger.Info("sent live events", "sent", res.Sent, "scoped_fixtures", res.ScopedLiveFixtures)
	}

	return res
}

func (p *Poller) fail(res models.PollResult, err error) models.PollResult {
	p.logger.Error("live events poll failed", "error", err)
	metrics.PollCycles.WithLabelValues(metrics.OutcomeError).Inc()
	res.Error = err.Error()
	return res
}

// processFixture dispatches the fixture's notable events that were not notified yet.
// The ledger entry is written before sending, so a failed send is never retried.
func (p *Poller) processFixture(ctx context.Context, fixture models.LiveFixture) (int, error) {
	fixtureID := fixture.Fixture.ID
	if fixtureID == 0 {
		return 0, nil
	}

	events, err := p.feed.FixtureEvents(ctx, fixtureID)
	if err != nil {
		return 0, errors.Wrap(err, "fetch fixture events")
	}

	sent := 0
	var lastErr error
	for _, ev := range events {
		if !matchers.IsNotable(ev) {
			continue
		}

		if err := p.dispatch(ctx, fixture, ev); err != nil {
			if errors.Is(err, errAlreadyNotified) {
				continue
			}
			lastErr = err
			p.logger.Error("failed to dispatch event", "error", err, "fixture_id", fixtureID, "event_key", EventKey(fixtureID, ev))
			continue
		}
		sent++
	}

	return sent, lastErr
}

var errAlreadyNotified = errors.New("already notified")

func (p *Poller) dispatch(ctx context.Context, fixture models.LiveFixture, ev models.FixtureEvent) error {
	fresh := NewMatchEvent(fixture, ev)

	inserted, err := p.ledger.Insert(ctx, data.NewNotification(fresh.DedupeKey, fixture.Fixture.ID, p.now().UTC()))
	if err != nil {
		return errors.Wrap(err, "ledger insert")
	}
	if !inserted {
		metrics.LedgerDuplicates.Inc()
		return errAlreadyNotified
	}

	text, err := RenderEventMessage(fixture, ev)
	if err != nil {
		return err
	}
	fresh.OriginalText = text

	event, err := p.store.Upsert(ctx, fresh)
	if err != nil {
		return errors.Wrap(err, "store event")
	}

	sent, err := p.messenger.Send(ctx, text, InitialKeyboard(event.ID))
	if err != nil {
		return errors.Wrap(err, "send event")
	}
	metrics.EventsSent.Inc()

	_, err = p.store.Upsert(ctx, data.MatchEvent{
		DedupeKey: event.DedupeKey,
		ChatID:    sent.ChatID,
		MessageID: sent.MessageID,
	})
	if err != nil {
		p.logger.Warn("failed to store message reference", "error", err, "event_id", event.ID)
	}

	return nil
}

func filterFixtures(fixtures []models.LiveFixture, keep func(models.LiveFixture) bool) []models.LiveFixture {
	out := make([]models.LiveFixture, 0, len(fixtures))
	for _, f := range fixtures {
		if keep(f) {
			out = append(out, f)
		}
	}
	return out
}
