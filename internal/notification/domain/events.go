package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event is a closed set of things that happened to an auction and that some
// user must hear about. The unexported method keeps the set closed, so the
// dispatcher's type switch is exhaustive.
type Event interface {
	Recipient() uuid.UUID
	isEvent()
}

// Outbid goes to the previous highest bidder after a higher bid (or a buy
// now) was admitted.
type Outbid struct {
	UserID    uuid.UUID
	AuctionID uuid.UUID
	Title     string
	NewAmount decimal.Decimal
	BoughtNow bool
}

// BidPlaced tells the seller a new bid was admitted.
type BidPlaced struct {
	SellerID  uuid.UUID
	AuctionID uuid.UUID
	Title     string
	Amount    decimal.Decimal
}

// AuctionWon goes to the winner of a settled auction.
type AuctionWon struct {
	WinnerID   uuid.UUID
	AuctionID  uuid.UUID
	Title      string
	FinalPrice decimal.Decimal
	BoughtNow  bool
}

// AuctionEnded goes to the seller. WinnerID is nil when the auction ended
// without bids.
type AuctionEnded struct {
	SellerID   uuid.UUID
	AuctionID  uuid.UUID
	Title      string
	WinnerID   *uuid.UUID
	FinalPrice decimal.Decimal
}

// EndingSoon reminds the current highest bidder that the auction closes in
// about Horizon.
type EndingSoon struct {
	BidderID     uuid.UUID
	AuctionID    uuid.UUID
	Title        string
	CurrentPrice decimal.Decimal
	Horizon      time.Duration
	EndTime      time.Time
}

// AuctionCancelled goes to every bidder of a cancelled auction.
type AuctionCancelled struct {
	BidderID  uuid.UUID
	AuctionID uuid.UUID
	Title     string
}

func (e Outbid) Recipient() uuid.UUID           { return e.UserID }
func (e BidPlaced) Recipient() uuid.UUID        { return e.SellerID }
func (e AuctionWon) Recipient() uuid.UUID       { return e.WinnerID }
func (e AuctionEnded) Recipient() uuid.UUID     { return e.SellerID }
func (e EndingSoon) Recipient() uuid.UUID       { return e.BidderID }
func (e AuctionCancelled) Recipient() uuid.UUID { return e.BidderID }

func (Outbid) isEvent()           {}
func (BidPlaced) isEvent()        {}
func (AuctionWon) isEvent()       {}
func (AuctionEnded) isEvent()     {}
func (EndingSoon) isEvent()       {}
func (AuctionCancelled) isEvent() {}
