package data

import (
	"time"

	"github.com/google/uuid"
	"github.com/kova98/footroll.api/enums"
)

// MatchEvent is the canonical record of one notable live event and its operator workflow.
type MatchEvent struct {
	ID        string `json:"id"`
	DedupeKey string `json:"dedupeKey"`
	FixtureID int64  `json:"fixtureId"`

	Home        string `json:"home"`
	Away        string `json:"away"`
	League      string `json:"league"`
	Country     string `json:"country"`
	MinuteLabel string `json:"minuteLabel"`
	Team        string `json:"team"`
	Player      string `json:"player"`
	EventType   string `json:"eventType"`
	EventDetail string `json:"eventDetail"`

	Status       enums.EventStatus `json:"status"`
	OriginalText string            `json:"originalText"`
	ChatID       int64             `json:"chatId"`
	MessageID    int               `json:"messageId"`

	VideoCache *ProviderCache `json:"videoCache,omitempty"`
	PostCache  *ProviderCache `json:"postCache,omitempty"`
	Approved   *Approval      `json:"approved,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Cache returns the cache entry of the given provider.
func (e MatchEvent) Cache(provider enums.Provider) *ProviderCache {
	switch provider {
	case enums.ProviderVideo:
		return e.VideoCache
	case enums.ProviderPost:
		return e.PostCache
	default:
		return nil
	}
}

// WithCache returns a copy of e carrying c as the provider's cache.
func (e MatchEvent) WithCache(provider enums.Provider, c *ProviderCache) MatchEvent {
	switch provider {
	case enums.ProviderVideo:
		e.VideoCache = c
	case enums.ProviderPost:
		e.PostCache = c
	}
	return e
}

type ProviderCache struct {
	Results   []SearchResult `json:"results"`
	NextToken string         `json:"nextToken,omitempty"`
	CachedAt  time.Time      `json:"cachedAt"`
	Queries   []string       `json:"queries"`
}

// SearchResult is a normalized hit from either search provider. Label holds the
// video channel or the subreddit.
type SearchResult struct {
	ExternalID  string    `json:"externalId"`
	Title       string    `json:"title"`
	Label       string    `json:"label"`
	Author      string    `json:"author,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
	Thumbnail   string    `json:"thumbnail,omitempty"`
	URL         string    `json:"url"`
	Permalink   string    `json:"permalink,omitempty"`
	Score       int       `json:"score"`
}

type Approval struct {
	Source     enums.Provider `json:"source"`
	ExternalID string         `json:"externalId"`
	URL        string         `json:"url"`
	Title      string         `json:"title"`
	ApprovedAt time.Time      `json:"approvedAt"`
}

// Notification is one row of the "already notified" ledger.
type Notification struct {
	ID        uuid.UUID `db:"id"`
	EventKey  string    `db:"event_key"`
	FixtureID int64     `db:"fixture_id"`
	CreatedAt time.Time `db:"created_at"`
}

func NewNotification(eventKey string, fixtureID int64, now time.Time) Notification {
	return Notification{
		ID:        uuid.New(),
		EventKey:  eventKey,
		FixtureID: fixtureID,
		CreatedAt: now,
	}
}
