package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrAuctionNotFound   = errors.New("auction not found")
	ErrAuctionNotActive  = errors.New("auction is no longer active")
	ErrAuctionExpired    = errors.New("auction has already ended")
	ErrBidTooLow         = errors.New("bid amount is too low")
	ErrInvalidAmount     = errors.New("bid amount must be a positive amount in whole cents")
	ErrSelfBid           = errors.New("seller cannot bid on their own auction")
	ErrBuyNowUnavailable = errors.New("buy now is not available for this auction")
	ErrNotSeller         = errors.New("only the seller can do this")
	ErrAlreadySettled    = errors.New("auction is already settled")
	ErrInvalidAuction    = errors.New("invalid auction data")
)

// BidTooLowError is returned when a bid does not exceed the current price.
// Outpaced is set when the bidder saw a lower price than the one the bid was
// checked against, i.e. another bid was admitted in between.
type BidTooLowError struct {
	Amount       decimal.Decimal
	CurrentPrice decimal.Decimal
	Outpaced     bool
}

func (e *BidTooLowError) Error() string {
	if e.Outpaced {
		return fmt.Sprintf("someone placed a higher bid first, current price is now $%s", e.CurrentPrice.StringFixed(2))
	}
	return fmt.Sprintf("bid must be higher than current price of $%s", e.CurrentPrice.StringFixed(2))
}

func (e *BidTooLowError) Unwrap() error { return ErrBidTooLow }

var rejectionCodes = []struct {
	err  error
	code string
}{
	{ErrAuctionNotFound, "AUCTION_NOT_FOUND"},
	{ErrAuctionNotActive, "AUCTION_NOT_ACTIVE"},
	{ErrAuctionExpired, "AUCTION_EXPIRED"},
	{ErrBidTooLow, "BID_TOO_LOW"},
	{ErrInvalidAmount, "INVALID_AMOUNT"},
	{ErrSelfBid, "SELF_BID"},
	{ErrBuyNowUnavailable, "BUY_NOW_UNAVAILABLE"},
	{ErrNotSeller, "NOT_SELLER"},
	{ErrAlreadySettled, "ALREADY_SETTLED"},
	{ErrInvalidAuction, "INVALID_AUCTION"},
}

// RejectionCode returns the client-facing code of an expected rejection, or
// "" when err is an infrastructure failure.
func RejectionCode(err error) string {
	for _, rc := range rejectionCodes {
		if errors.Is(err, rc.err) {
			return rc.code
		}
	}
	return ""
}

// IsRejection reports whether err is an expected, client-facing rejection.
func IsRejection(err error) bool {
	return RejectionCode(err) != ""
}
