package repos

import (
	"testing"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kova98/footroll.api/data"
)

var t0 = time.Date(2026, 5, 10, 18, 0, 0, 0, time.UTC)

func TestSelectEvent(t *testing.T) {
	query, args, err := selectEvent(sq.Eq{"dedupe_key": "42|60"}).ToSql()

	require.NoError(t, err)
	assert.Equal(t, "SELECT id, dedupe_key, payload, created_at, updated_at FROM match_events WHERE dedupe_key = $1", query)
	assert.Equal(t, []interface{}{"42|60"}, args)
}

func TestSelectEventByKey_Trims(t *testing.T) {
	query, args, err := selectEventByKey(" 42|60\n").ToSql()

	require.NoError(t, err)
	assert.Contains(t, query, "WHERE dedupe_key = $1")
	assert.Equal(t, []interface{}{"42|60"}, args)
}

func TestUpsertEvent(t *testing.T) {
	e := data.MatchEvent{ID: "abc", DedupeKey: "42|60", CreatedAt: t0, UpdatedAt: t0.Add(time.Second)}

	query, args, err := upsertEvent(e, []byte(`{}`)).ToSql()

	require.NoError(t, err)
	assert.Contains(t, query, "INSERT INTO match_events")
	assert.Contains(t, query, "ON CONFLICT (dedupe_key) DO UPDATE")
	assert.Equal(t, []interface{}{"abc", "42|60", []byte(`{}`), t0, t0.Add(time.Second)}, args)
}

func TestInsertNotification_ReplacesOnlyExpiredRows(t *testing.T) {
	n := data.NewNotification("42|60", 42, t0)
	expiry := t0.Add(-72 * time.Hour)

	query, args, err := insertNotification(n, expiry).ToSql()

	require.NoError(t, err)
	assert.Contains(t, query, "ON CONFLICT (event_key) DO UPDATE")
	assert.Contains(t, query, "WHERE live_event_notifications.created_at < $5")
	assert.Equal(t, []interface{}{n.ID, "42|60", int64(42), t0, expiry}, args)
}

func TestDeleteNotificationsBefore(t *testing.T) {
	query, args, err := deleteNotificationsBefore(t0).ToSql()

	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM live_event_notifications WHERE created_at < $1", query)
	assert.Equal(t, []interface{}{t0}, args)
}
