package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transactor runs fn as one atomic unit. Repository calls made with the ctx
// passed to fn join that unit.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// StatusUpdate describes a terminal transition. Nil fields keep their value.
type StatusUpdate struct {
	Status       Status
	WinnerID     *uuid.UUID
	CurrentPrice *decimal.Decimal
}

type AuctionRepository interface {
	Create(ctx context.Context, auction *Auction) error
	GetByID(ctx context.Context, id uuid.UUID) (*Auction, error)
	// GetForUpdate loads the auction and locks its row until the
	// surrounding transaction ends.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Auction, error)
	FindActivePastEndTime(ctx context.Context, now time.Time) ([]*Auction, error)
	FindActiveEndingBetween(ctx context.Context, from, to time.Time) ([]*Auction, error)
	// UpdateStatus only applies to ACTIVE rows; it returns ErrAlreadySettled
	// when the row had already left ACTIVE.
	UpdateStatus(ctx context.Context, id uuid.UUID, update StatusUpdate) error
	// UpdateCurrentPrice only raises the price of an ACTIVE row; it returns
	// ErrBidTooLow when the stored price is already at or above price.
	UpdateCurrentPrice(ctx context.Context, id uuid.UUID, price decimal.Decimal) error
}

type BidRepository interface {
	Insert(ctx context.Context, bid *Bid) error
	// ListByAuction returns the ledger ranked by amount desc, created_at asc.
	ListByAuction(ctx context.Context, auctionID uuid.UUID) ([]*Bid, error)
	// HighestBid returns nil, nil when the auction has no bids.
	HighestBid(ctx context.Context, auctionID uuid.UUID) (*Bid, error)
}

// ReminderLedger records which ending-soon reminders were already sent.
type ReminderLedger interface {
	// MarkSent returns true the first time it is called for a pair and
	// false afterwards, until ttl expires.
	MarkSent(ctx context.Context, auctionID uuid.UUID, horizon time.Duration, ttl time.Duration) (bool, error)
	// Release forgets a pair so the next run sends it again.
	Release(ctx context.Context, auctionID uuid.UUID, horizon time.Duration) error
}
