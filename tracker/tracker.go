// Package tracker turns live fixture events into operator notifications and drives
// the interactive highlight search workflow behind them.
package tracker

import (
	"context"
	"errors"

	"github.com/kova98/footroll.api/data"
	"github.com/kova98/footroll.api/models"
	"github.com/kova98/footroll.api/sources"
)

var (
	ErrEventNotFound  = errors.New("event not found")
	ErrResultNotFound = errors.New("result not found in cache")
	ErrNoMoreResults  = errors.New("no more results")
)

// EventStore keeps MatchEvents keyed by dedupe key. Upsert always merges.
type EventStore interface {
	Upsert(ctx context.Context, update data.MatchEvent) (data.MatchEvent, error)
	Get(ctx context.Context, id string) (*data.MatchEvent, error)
}

// Ledger records already notified event keys. Insert returns false for a key that
// was inserted within the retention window.
type Ledger interface {
	Insert(ctx context.Context, n data.Notification) (bool, error)
}

type Messenger interface {
	Send(ctx context.Context, text string, keyboard models.Keyboard) (models.SentMessage, error)
	Edit(ctx context.Context, ref models.SentMessage, text string, keyboard models.Keyboard) error
	AnswerCallback(ctx context.Context, callbackID, text string) error
}

type Searcher interface {
	Search(ctx context.Context, p sources.SearchParams) (sources.SearchPage, error)
}

type FixtureFeed interface {
	LiveFixtures(ctx context.Context) ([]models.LiveFixture, error)
	FixtureEvents(ctx context.Context, fixtureID int64) ([]models.FixtureEvent, error)
}
