package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/kova98/footroll.api/data"
)

// LedgerRetention is how long an event key counts as already notified.
const LedgerRetention = 72 * time.Hour

// MemoryLedger is a Ledger kept in a map and purged hourly.
type MemoryLedger struct {
	mu            sync.Mutex
	notified      map[string]data.Notification
	retention     time.Duration
	cleanupTicker *time.Ticker
	stopChan      chan struct{}
	stopOnce      sync.Once
}

func NewMemoryLedger(retention time.Duration) *MemoryLedger {
	l := &MemoryLedger{
		notified:  make(map[string]data.Notification),
		retention: retention,
		stopChan:  make(chan struct{}),
	}

	l.cleanupTicker = time.NewTicker(1 * time.Hour)
	go l.cleanup()

	return l
}

func (l *MemoryLedger) Insert(ctx context.Context, n data.Notification) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if existing, ok := l.notified[n.EventKey]; ok && n.CreatedAt.Sub(existing.CreatedAt) < l.retention {
		return false, nil
	}

	l.notified[n.EventKey] = n
	return true, nil
}

func (l *MemoryLedger) cleanup() {
	for {
		select {
		case <-l.cleanupTicker.C:
			l.performCleanup(time.Now())
		case <-l.stopChan:
			return
		}
	}
}

func (l *MemoryLedger) performCleanup(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := now.Add(-l.retention)
	removed := 0
	for key, n := range l.notified {
		if n.CreatedAt.Before(cutoff) {
			delete(l.notified, key)
			removed++
		}
	}
	return removed
}

func (l *MemoryLedger) Close() {
	l.stopOnce.Do(func() {
		l.cleanupTicker.Stop()
		close(l.stopChan)
	})
}
