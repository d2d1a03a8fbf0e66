package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cristianortiz/bidmaster/internal/auction/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type txKey struct{}

// Store is a concurrency-safe in-memory implementation of domain.Transactor,
// domain.AuctionRepository and domain.BidRepository.
//
// Transactions are serialized by txMu for their whole duration and rolled back
// from a snapshot on error, which gives the same guarantees as the row lock
// the postgres repository takes. Reads and writes outside a transaction also
// take txMu, so they never observe uncommitted state and a rollback can never
// discard them.
type Store struct {
	txMu sync.Mutex

	mu       sync.RWMutex
	auctions map[uuid.UUID]domain.Auction
	bids     map[uuid.UUID][]domain.Bid // key: auctionID, insertion order
}

// NewStore creates a new in-memory store instance
func NewStore() *Store {
	return &Store{
		auctions: make(map[uuid.UUID]domain.Auction),
		bids:     make(map[uuid.UUID][]domain.Bid),
	}
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if inTx(ctx) {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	auctions, bids := s.snapshot()
	defer func() {
		if r := recover(); r != nil {
			s.restore(auctions, bids)
			panic(r)
		}
		if err != nil {
			s.restore(auctions, bids)
		}
	}()

	return fn(context.WithValue(ctx, txKey{}, true))
}

func (s *Store) Create(ctx context.Context, a *domain.Auction) error {
	defer s.writeLock(ctx)()
	if _, exists := s.auctions[a.ID]; exists {
		return fmt.Errorf("create auction %s: already exists", a.ID)
	}
	s.auctions[a.ID] = copyAuction(*a)
	return nil
}

func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*domain.Auction, error) {
	defer s.readLock(ctx)()

	a, ok := s.auctions[id]
	if !ok {
		return nil, domain.ErrAuctionNotFound
	}
	out := copyAuction(a)
	return &out, nil
}

// GetForUpdate needs no extra locking: the surrounding transaction already
// holds txMu.
func (s *Store) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Auction, error) {
	if !inTx(ctx) {
		return nil, fmt.Errorf("memory store: GetForUpdate called outside a transaction")
	}
	return s.GetByID(ctx, id)
}

func (s *Store) FindActivePastEndTime(ctx context.Context, now time.Time) ([]*domain.Auction, error) {
	return s.filter(ctx, func(a domain.Auction) bool {
		return a.Status == domain.StatusActive && !a.EndTime.After(now)
	}), nil
}

func (s *Store) FindActiveEndingBetween(ctx context.Context, from, to time.Time) ([]*domain.Auction, error) {
	return s.filter(ctx, func(a domain.Auction) bool {
		return a.Status == domain.StatusActive && !a.EndTime.Before(from) && !a.EndTime.After(to)
	}), nil
}

func (s *Store) UpdateStatus(ctx context.Context, id uuid.UUID, update domain.StatusUpdate) error {
	defer s.writeLock(ctx)()

	a, ok := s.auctions[id]
	if !ok {
		return domain.ErrAuctionNotFound
	}
	if a.Status != domain.StatusActive {
		return domain.ErrAlreadySettled
	}
	a.Status = update.Status
	if update.WinnerID != nil {
		winner := *update.WinnerID
		a.WinnerID = &winner
	}
	if update.CurrentPrice != nil {
		a.CurrentPrice = *update.CurrentPrice
	}
	a.UpdatedAt = time.Now().UTC()
	s.auctions[id] = a
	return nil
}

func (s *Store) UpdateCurrentPrice(ctx context.Context, id uuid.UUID, price decimal.Decimal) error {
	defer s.writeLock(ctx)()

	a, ok := s.auctions[id]
	if !ok {
		return domain.ErrAuctionNotFound
	}
	if a.Status != domain.StatusActive || !a.CurrentPrice.LessThan(price) {
		return domain.ErrBidTooLow
	}
	a.CurrentPrice = price
	a.UpdatedAt = time.Now().UTC()
	s.auctions[id] = a
	return nil
}

func (s *Store) Insert(ctx context.Context, bid *domain.Bid) error {
	defer s.writeLock(ctx)()

	if _, ok := s.auctions[bid.AuctionID]; !ok {
		return fmt.Errorf("insert bid for auction %s: %w", bid.AuctionID, domain.ErrAuctionNotFound)
	}
	s.bids[bid.AuctionID] = append(s.bids[bid.AuctionID], *bid)
	return nil
}

func (s *Store) ListByAuction(ctx context.Context, auctionID uuid.UUID) ([]*domain.Bid, error) {
	defer s.readLock(ctx)()

	stored := s.bids[auctionID]
	out := make([]*domain.Bid, 0, len(stored))
	for i := range stored {
		b := stored[i]
		out = append(out, &b)
	}
	return domain.RankBids(out), nil
}

func (s *Store) HighestBid(ctx context.Context, auctionID uuid.UUID) (*domain.Bid, error) {
	bids, err := s.ListByAuction(ctx, auctionID)
	if err != nil || len(bids) == 0 {
		return nil, err
	}
	return bids[0], nil
}

// writeLock takes txMu for writes made outside a transaction and mu for the
// map mutation. The returned func releases both.
func (s *Store) writeLock(ctx context.Context) func() {
	standalone := !inTx(ctx)
	if standalone {
		s.txMu.Lock()
	}
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		if standalone {
			s.txMu.Unlock()
		}
	}
}

// readLock is writeLock for reads: outside a transaction it waits for any
// running one to commit or roll back.
func (s *Store) readLock(ctx context.Context) func() {
	standalone := !inTx(ctx)
	if standalone {
		s.txMu.Lock()
	}
	s.mu.RLock()
	return func() {
		s.mu.RUnlock()
		if standalone {
			s.txMu.Unlock()
		}
	}
}

func (s *Store) filter(ctx context.Context, keep func(domain.Auction) bool) []*domain.Auction {
	defer s.readLock(ctx)()

	var out []*domain.Auction
	for _, a := range s.auctions {
		if keep(a) {
			c := copyAuction(a)
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EndTime.Before(out[j].EndTime) })
	return out
}

func (s *Store) snapshot() (map[uuid.UUID]domain.Auction, map[uuid.UUID][]domain.Bid) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	auctions := make(map[uuid.UUID]domain.Auction, len(s.auctions))
	for id, a := range s.auctions {
		auctions[id] = copyAuction(a)
	}
	bids := make(map[uuid.UUID][]domain.Bid, len(s.bids))
	for id, b := range s.bids {
		bids[id] = append([]domain.Bid(nil), b...)
	}
	return auctions, bids
}

func (s *Store) restore(auctions map[uuid.UUID]domain.Auction, bids map[uuid.UUID][]domain.Bid) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auctions = auctions
	s.bids = bids
}

func copyAuction(a domain.Auction) domain.Auction {
	if a.BuyNowPrice != nil {
		p := *a.BuyNowPrice
		a.BuyNowPrice = &p
	}
	if a.WinnerID != nil {
		w := *a.WinnerID
		a.WinnerID = &w
	}
	return a
}

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
}
