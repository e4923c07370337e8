package data

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kova98/footroll.api/enums"
)

var ErrValidation = errors.New("validation error")

// EventID derives the short stable identifier of an event from its dedupe key.
func EventID(dedupeKey string) string {
	sum := sha256.Sum256([]byte(dedupeKey))
	return hex.EncodeToString(sum[:])[:12]
}

// MergeEvent applies a partial update onto the existing record (nil on first insert).
// Zero-valued fields of update keep the existing value. Identity fields and createdAt
// always come from the existing record, and updatedAt strictly increases.
func MergeEvent(existing *MatchEvent, update MatchEvent, now time.Time) (MatchEvent, error) {
	dedupeKey := strings.TrimSpace(update.DedupeKey)
	if dedupeKey == "" {
		return MatchEvent{}, fmt.Errorf("%w: dedupe key is required", ErrValidation)
	}

	if existing == nil {
		next := update
		next.ID = EventID(dedupeKey)
		next.DedupeKey = dedupeKey
		next.CreatedAt = now
		next.UpdatedAt = now
		if next.Status == "" {
			next.Status = enums.EventStatusPending
		}
		return next, nil
	}

	next := *existing
	mergeString(&next.Home, update.Home)
	mergeString(&next.Away, update.Away)
	mergeString(&next.League, update.League)
	mergeString(&next.Country, update.Country)
	mergeString(&next.MinuteLabel, update.MinuteLabel)
	mergeString(&next.Team, update.Team)
	mergeString(&next.Player, update.Player)
	mergeString(&next.EventType, update.EventType)
	mergeString(&next.EventDetail, update.EventDetail)
	mergeString(&next.OriginalText, update.OriginalText)
	if update.FixtureID != 0 {
		next.FixtureID = update.FixtureID
	}
	if update.Status != "" {
		next.Status = update.Status
	}
	if update.ChatID != 0 {
		next.ChatID = update.ChatID
	}
	if update.MessageID != 0 {
		next.MessageID = update.MessageID
	}
	if update.VideoCache != nil {
		next.VideoCache = update.VideoCache
	}
	if update.PostCache != nil {
		next.PostCache = update.PostCache
	}
	if update.Approved != nil {
		next.Approved = update.Approved
	}

	next.UpdatedAt = now
	if !next.UpdatedAt.After(existing.UpdatedAt) {
		next.UpdatedAt = existing.UpdatedAt.Add(time.Nanosecond)
	}
	if next.Status == "" {
		next.Status = enums.EventStatusPending
	}

	return next, nil
}

func mergeString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}
