package repos

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/kova98/footroll.api/data"
)

type EventRepo struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewEventRepo(db *sqlx.DB) *EventRepo {
	return &EventRepo{db: db, now: time.Now}
}

type eventRow struct {
	ID        string    `db:"id"`
	DedupeKey string    `db:"dedupe_key"`
	Payload   []byte    `db:"payload"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Upsert merges the update into the stored event with the same dedupe key.
// Writers of the same key are serialized by a transaction scoped advisory lock.
func (r *EventRepo) Upsert(ctx context.Context, update data.MatchEvent) (data.MatchEvent, error) {
	update.DedupeKey = strings.TrimSpace(update.DedupeKey)
	if update.DedupeKey == "" {
		return data.MatchEvent{}, fmt.Errorf("upsert event: %w: dedupe key is required", data.ErrValidation)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return data.MatchEvent{}, fmt.Errorf("begin upsert event: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", update.DedupeKey); err != nil {
		return data.MatchEvent{}, fmt.Errorf("lock event key: %w", err)
	}

	query, args, err := selectEventByKey(update.DedupeKey).ToSql()
	if err != nil {
		return data.MatchEvent{}, fmt.Errorf("build event query: %w", err)
	}

	var row eventRow
	var existing *data.MatchEvent
	err = tx.GetContext(ctx, &row, query, args...)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return data.MatchEvent{}, fmt.Errorf("get event by dedupe key: %w", err)
	default:
		event, err := row.toEvent()
		if err != nil {
			return data.MatchEvent{}, err
		}
		existing = &event
	}

	merged, err := data.MergeEvent(existing, update, r.now().UTC())
	if err != nil {
		return data.MatchEvent{}, err
	}

	payload, err := json.Marshal(merged)
	if err != nil {
		return data.MatchEvent{}, fmt.Errorf("marshal event: %w", err)
	}

	query, args, err = upsertEvent(merged, payload).ToSql()
	if err != nil {
		return data.MatchEvent{}, fmt.Errorf("build upsert event: %w", err)
	}
	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return data.MatchEvent{}, fmt.Errorf("upsert event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return data.MatchEvent{}, fmt.Errorf("commit upsert event: %w", err)
	}

	return merged, nil
}

func (r *EventRepo) Get(ctx context.Context, id string) (*data.MatchEvent, error) {
	query, args, err := selectEvent(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build event query: %w", err)
	}

	var row eventRow
	err = r.db.GetContext(ctx, &row, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get event by id: %w", err)
	}

	event, err := row.toEvent()
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (row eventRow) toEvent() (data.MatchEvent, error) {
	var event data.MatchEvent
	if err := json.Unmarshal(row.Payload, &event); err != nil {
		return data.MatchEvent{}, fmt.Errorf("unmarshal event %s: %w", row.ID, err)
	}
	event.ID = row.ID
	event.DedupeKey = row.DedupeKey
	return event, nil
}
