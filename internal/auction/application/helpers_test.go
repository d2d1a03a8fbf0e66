package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cristianortiz/bidmaster/internal/auction/domain"
	"github.com/cristianortiz/bidmaster/internal/auction/infra/cache"
	"github.com/cristianortiz/bidmaster/internal/auction/infra/repository/memory"
	notifdomain "github.com/cristianortiz/bidmaster/internal/notification/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []notifdomain.Event
	err    error
}

func (n *recordingNotifier) record(events []notifdomain.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, events...)
	return n.err
}

func (n *recordingNotifier) Dispatch(_ context.Context, events ...notifdomain.Event) error {
	return n.record(events)
}

func (n *recordingNotifier) DispatchWithin(_ context.Context, events ...notifdomain.Event) error {
	return n.record(events)
}

func (n *recordingNotifier) DispatchAsync(events ...notifdomain.Event) {
	_ = n.record(events)
}

func (n *recordingNotifier) Events() []notifdomain.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notifdomain.Event(nil), n.events...)
}

type recordingPublisher struct {
	mu      sync.Mutex
	updates []domain.Auction
}

func (p *recordingPublisher) PublishAuctionUpdate(a *domain.Auction, _ *domain.Bid) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updates = append(p.updates, *a)
}

func (p *recordingPublisher) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.updates)
}

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type testEnv struct {
	store     *memory.Store
	notifier  *recordingNotifier
	publisher *recordingPublisher
	clock     *testClock
	ledger    *cache.MemoryReminderLedger

	placeBid  *PlaceBidUseCase
	buyNow    *BuyNowUseCase
	cancel    *CancelAuctionUseCase
	sweep     *SweepUseCase
	reminders *ReminderUseCase
	get       *GetAuctionUseCase
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	e := &testEnv{
		store:     memory.NewStore(),
		notifier:  &recordingNotifier{},
		publisher: &recordingPublisher{},
		clock:     &testClock{t: time.Date(2026, 5, 4, 15, 0, 0, 0, time.UTC)},
		ledger:    cache.NewMemoryReminderLedger(),
	}
	e.placeBid = NewPlaceBidUseCase(e.store, e.store, e.store, e.notifier, e.publisher)
	e.placeBid.now = e.clock.Now
	e.buyNow = NewBuyNowUseCase(e.store, e.store, e.store, e.notifier, e.publisher)
	e.buyNow.now = e.clock.Now
	e.cancel = NewCancelAuctionUseCase(e.store, e.store, e.store, e.notifier, e.publisher)
	e.cancel.now = e.clock.Now
	e.sweep = NewSweepUseCase(e.store, e.store, e.store, e.notifier, e.publisher)
	e.sweep.now = e.clock.Now
	e.reminders = NewReminderUseCase(e.store, e.store, e.ledger, e.notifier,
		[]time.Duration{time.Hour, 24 * time.Hour}, 5*time.Minute)
	e.reminders.now = e.clock.Now
	e.get = NewGetAuctionUseCase(e.store, e.store, e.sweep)
	return e
}

// seed lists an auction that started a day ago and ends endIn from the
// current test time.
func (e *testEnv) seed(t *testing.T, starting int64, buyNow *decimal.Decimal, endIn time.Duration) *domain.Auction {
	t.Helper()
	now := e.clock.Now()
	a, err := domain.NewAuction(uuid.New(), "Road bike", "sports", "used",
		usd(starting), buyNow, now.Add(-24*time.Hour), now.Add(endIn))
	require.NoError(t, err)
	require.NoError(t, e.store.Create(context.Background(), a))
	return a
}

func (e *testEnv) bid(t *testing.T, auctionID, bidderID uuid.UUID, amount int64) *domain.Bid {
	t.Helper()
	res, err := e.placeBid.Execute(context.Background(), PlaceBidDTO{
		AuctionID: auctionID,
		BidderID:  bidderID,
		Amount:    usd(amount),
	})
	require.NoError(t, err)
	return res.Bid
}

func (e *testEnv) load(t *testing.T, id uuid.UUID) *domain.Auction {
	t.Helper()
	a, err := e.store.GetByID(context.Background(), id)
	require.NoError(t, err)
	return a
}

func usd(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func eventsOf[T notifdomain.Event](events []notifdomain.Event) []T {
	var out []T
	for _, ev := range events {
		if typed, ok := ev.(T); ok {
			out = append(out, typed)
		}
	}
	return out
}
