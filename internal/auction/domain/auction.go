package domain

import (
	"strings"
	"time"

	"github.com/cristianortiz/bidmaster/internal/shared/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// Status is the lifecycle state of an auction. ACTIVE is the only
// non-terminal state.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusEnded     Status = "ENDED"
	StatusCancelled Status = "CANCELLED"
)

func (s Status) IsTerminal() bool {
	return s == StatusEnded || s == StatusCancelled
}

type Auction struct {
	ID            uuid.UUID
	SellerID      uuid.UUID
	Title         string
	Category      string
	Condition     string
	StartingPrice decimal.Decimal
	CurrentPrice  decimal.Decimal // never decreases while ACTIVE
	BuyNowPrice   *decimal.Decimal
	StartTime     time.Time
	EndTime       time.Time
	Status        Status
	WinnerID      *uuid.UUID // set only by settlement or buy now
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewAuction builds an ACTIVE auction whose current price starts at the
// starting price.
func NewAuction(sellerID uuid.UUID, title, category, condition string, startingPrice decimal.Decimal,
	buyNowPrice *decimal.Decimal, startTime, endTime time.Time) (*Auction, error) {

	if sellerID == uuid.Nil || strings.TrimSpace(title) == "" {
		return nil, ErrInvalidAuction
	}
	if startingPrice.IsNegative() || !IsWholeCents(startingPrice) || !endTime.After(startTime) {
		return nil, ErrInvalidAuction
	}
	if buyNowPrice != nil && (!buyNowPrice.GreaterThan(startingPrice) || !IsWholeCents(*buyNowPrice)) {
		return nil, ErrInvalidAuction
	}

	now := time.Now().UTC()
	return &Auction{
		ID:            uuid.New(),
		SellerID:      sellerID,
		Title:         title,
		Category:      category,
		Condition:     condition,
		StartingPrice: startingPrice,
		CurrentPrice:  startingPrice,
		BuyNowPrice:   buyNowPrice,
		StartTime:     startTime,
		EndTime:       endTime,
		Status:        StatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// IsWholeCents reports whether amount has no precision beyond the cent, the
// scale prices are stored at.
func IsWholeCents(amount decimal.Decimal) bool {
	return amount.Equal(amount.Truncate(2))
}

// IsExpired reports whether the end time is at or before now.
func (a *Auction) IsExpired(now time.Time) bool {
	return !a.EndTime.After(now)
}

// IsOpen reports whether the auction can still take bids at now.
func (a *Auction) IsOpen(now time.Time) bool {
	return a.Status == StatusActive && !a.IsExpired(now)
}

// AdmitBid checks the admission rules against the auction as loaded and, on
// success, raises the current price and returns the new bid. The caller must
// hold the auction row lock and persist both the bid and the price.
func (a *Auction) AdmitBid(bidderID uuid.UUID, amount decimal.Decimal, now time.Time) (*Bid, error) {
	if !amount.IsPositive() || !IsWholeCents(amount) {
		return nil, ErrInvalidAmount
	}
	if err := a.checkOpen(now); err != nil {
		log.Warn("Bid rejected: auction closed",
			zap.String("auctionID", a.ID.String()),
			zap.String("status", string(a.Status)),
			zap.Time("endTime", a.EndTime),
			zap.String("bidderID", bidderID.String()),
		)
		return nil, err
	}
	if bidderID == a.SellerID {
		return nil, ErrSelfBid
	}
	if !amount.GreaterThan(a.CurrentPrice) {
		log.Warn("Bid rejected: amount too low",
			zap.String("auctionID", a.ID.String()),
			zap.String("bidAmount", amount.String()),
			zap.String("currentPrice", a.CurrentPrice.String()),
			zap.String("bidderID", bidderID.String()),
		)
		return nil, &BidTooLowError{Amount: amount, CurrentPrice: a.CurrentPrice}
	}

	a.CurrentPrice = amount
	a.UpdatedAt = now
	return NewBid(uuid.New(), a.ID, bidderID, amount, now), nil
}

// BuyNow records a bid at the buy-now price and ends the auction with the
// buyer as winner.
func (a *Auction) BuyNow(buyerID uuid.UUID, now time.Time) (*Bid, error) {
	if err := a.checkOpen(now); err != nil {
		return nil, err
	}
	if buyerID == a.SellerID {
		return nil, ErrSelfBid
	}
	if a.BuyNowPrice == nil || !a.BuyNowPrice.GreaterThan(a.CurrentPrice) {
		return nil, ErrBuyNowUnavailable
	}

	price := *a.BuyNowPrice
	bid := NewBid(uuid.New(), a.ID, buyerID, price, now)
	if err := a.Settle(Won{WinnerID: buyerID, FinalPrice: price, BidID: bid.ID}, now); err != nil {
		return nil, err
	}
	return bid, nil
}

// Cancel moves an ACTIVE auction to CANCELLED. Only the seller may cancel.
func (a *Auction) Cancel(requesterID uuid.UUID, now time.Time) error {
	if requesterID != a.SellerID {
		return ErrNotSeller
	}
	if a.Status != StatusActive {
		return ErrAuctionNotActive
	}
	a.Status = StatusCancelled
	a.UpdatedAt = now
	log.Info("Auction cancelled", zap.String("auctionID", a.ID.String()))
	return nil
}

// Settle applies a settlement outcome. It fails with ErrAlreadySettled once
// the auction has left ACTIVE, which is what keeps settlement idempotent.
func (a *Auction) Settle(outcome Outcome, now time.Time) error {
	if a.Status != StatusActive {
		return ErrAlreadySettled
	}
	switch o := outcome.(type) {
	case Won:
		winner := o.WinnerID
		a.WinnerID = &winner
		a.CurrentPrice = o.FinalPrice
	case Unsold:
		a.WinnerID = nil
	}
	a.Status = StatusEnded
	a.UpdatedAt = now
	return nil
}

func (a *Auction) checkOpen(now time.Time) error {
	if a.Status != StatusActive {
		return ErrAuctionNotActive
	}
	if a.IsExpired(now) {
		return ErrAuctionExpired
	}
	return nil
}
