package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryReminderLedger is the single-process ReminderLedger used when no
// redis is configured.
type MemoryReminderLedger struct {
	mu      sync.Mutex
	expires map[string]time.Time
	now     func() time.Time
}

func NewMemoryReminderLedger() *MemoryReminderLedger {
	return &MemoryReminderLedger{
		expires: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (l *MemoryReminderLedger) MarkSent(_ context.Context, auctionID uuid.UUID, horizon, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return false, ErrInvalidTTL
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for k, exp := range l.expires {
		if !exp.After(now) {
			delete(l.expires, k)
		}
	}

	key := reminderKey(auctionID, horizon)
	if _, ok := l.expires[key]; ok {
		return false, nil
	}
	l.expires[key] = now.Add(ttl)
	return true, nil
}

func (l *MemoryReminderLedger) Release(_ context.Context, auctionID uuid.UUID, horizon time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.expires, reminderKey(auctionID, horizon))
	return nil
}
