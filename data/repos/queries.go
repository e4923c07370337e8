package repos

import (
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/kova98/footroll.api/data"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var eventColumns = []string{"id", "dedupe_key", "payload", "created_at", "updated_at"}

func selectEvent(where sq.Eq) sq.SelectBuilder {
	return psql.Select(eventColumns...).From("match_events").Where(where)
}

// selectEventByKey matches the trimmed key, the form MergeEvent stores.
func selectEventByKey(key string) sq.SelectBuilder {
	return selectEvent(sq.Eq{"dedupe_key": strings.TrimSpace(key)})
}

func upsertEvent(e data.MatchEvent, payload []byte) sq.InsertBuilder {
	return psql.Insert("match_events").
		Columns(eventColumns...).
		Values(e.ID, e.DedupeKey, payload, e.CreatedAt, e.UpdatedAt).
		Suffix("ON CONFLICT (dedupe_key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at")
}

// insertNotification replaces a conflicting row only when it is older than expiry,
// so a live row leaves the statement with zero affected rows.
func insertNotification(n data.Notification, expiry time.Time) sq.InsertBuilder {
	return psql.Insert("live_event_notifications").
		Columns("id", "event_key", "fixture_id", "created_at").
		Values(n.ID, n.EventKey, n.FixtureID, n.CreatedAt).
		Suffix("ON CONFLICT (event_key) DO UPDATE "+
			"SET id = EXCLUDED.id, fixture_id = EXCLUDED.fixture_id, created_at = EXCLUDED.created_at "+
			"WHERE live_event_notifications.created_at < ?", expiry)
}

func deleteNotificationsBefore(cutoff time.Time) sq.DeleteBuilder {
	return psql.Delete("live_event_notifications").Where(sq.Lt{"created_at": cutoff})
}
