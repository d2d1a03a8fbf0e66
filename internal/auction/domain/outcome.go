package domain

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Outcome is the result of settling an auction: Won or Unsold.
type Outcome interface {
	isOutcome()
}

type Won struct {
	WinnerID   uuid.UUID
	FinalPrice decimal.Decimal
	BidID      uuid.UUID
}

type Unsold struct{}

func (Won) isOutcome()    {}
func (Unsold) isOutcome() {}

// RankBids returns a copy of bids ordered by amount desc, then earliest
// CreatedAt, then ID so the order is total.
func RankBids(bids []*Bid) []*Bid {
	ranked := make([]*Bid, len(bids))
	copy(ranked, bids)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if c := a.Amount.Cmp(b.Amount); c != 0 {
			return c > 0
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
	return ranked
}

// Resolve decides the outcome of an auction from its bid ledger. It has no
// side effects; bids belonging to other auctions are ignored.
func Resolve(auction *Auction, bids []*Bid) Outcome {
	own := make([]*Bid, 0, len(bids))
	for _, b := range bids {
		if b != nil && b.AuctionID == auction.ID {
			own = append(own, b)
		}
	}
	if len(own) == 0 {
		return Unsold{}
	}
	top := RankBids(own)[0]
	return Won{WinnerID: top.BidderID, FinalPrice: top.Amount, BidID: top.ID}
}
