package tracker

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/kova98/footroll.api/data"
)

// MemoryStore is an EventStore that lives for the process lifetime.
type MemoryStore struct {
	mu       sync.RWMutex
	events   map[string]data.MatchEvent
	byDedupe map[string]string
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		events:   make(map[string]data.MatchEvent),
		byDedupe: make(map[string]string),
		now:      time.Now,
	}
}

func (s *MemoryStore) Upsert(ctx context.Context, update data.MatchEvent) (data.MatchEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var existing *data.MatchEvent
	if id, ok := s.byDedupe[strings.TrimSpace(update.DedupeKey)]; ok {
		e := s.events[id]
		existing = &e
	}

	merged, err := data.MergeEvent(existing, update, s.now().UTC())
	if err != nil {
		return data.MatchEvent{}, fmt.Errorf("upsert event: %w", err)
	}

	s.events[merged.ID] = merged
	s.byDedupe[merged.DedupeKey] = merged.ID

	return merged, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*data.MatchEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.events[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.events)
}
