package application

import (
	"context"
	"fmt"
	"time"

	"github.com/cristianortiz/bidmaster/internal/notification/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type rendered struct {
	kind    domain.Type
	text    string
	link    string
	email   domain.EmailKind // empty when the event has no email
	subject string
}

func (d *Dispatcher) render(ctx context.Context, ev domain.Event) (rendered, error) {
	switch e := ev.(type) {
	case domain.Outbid:
		text := fmt.Sprintf("You were outbid on %q. New highest bid: %s", e.Title, money(e.NewAmount))
		if e.BoughtNow {
			text = fmt.Sprintf("Auction %q was bought now for %s", e.Title, money(e.NewAmount))
		}
		return rendered{
			kind:    domain.TypeBidOutbid,
			text:    text,
			link:    auctionLink(e.AuctionID),
			email:   domain.EmailOutbid,
			subject: fmt.Sprintf("You've been outbid on %s", e.Title),
		}, nil

	case domain.BidPlaced:
		return rendered{
			kind: domain.TypeBidPlaced,
			text: fmt.Sprintf("New bid placed on %q. Current price: %s", e.Title, money(e.Amount)),
			link: auctionLink(e.AuctionID),
		}, nil

	case domain.AuctionWon:
		return rendered{
			kind:    domain.TypeAuctionWon,
			text:    fmt.Sprintf("Congratulations! You won %q for %s", e.Title, money(e.FinalPrice)),
			link:    auctionLink(e.AuctionID),
			email:   domain.EmailAuctionWon,
			subject: fmt.Sprintf("You won %s!", e.Title),
		}, nil

	case domain.AuctionEnded:
		text := fmt.Sprintf("Your auction %q ended without any bids.", e.Title)
		if e.WinnerID != nil {
			text = fmt.Sprintf("Your auction %q ended. Winner: %s (%s)",
				e.Title, d.displayName(ctx, *e.WinnerID), money(e.FinalPrice))
		}
		return rendered{
			kind: domain.TypeAuctionEnded,
			text: text,
			link: auctionLink(e.AuctionID),
		}, nil

	case domain.EndingSoon:
		return rendered{
			kind: domain.TypeAuctionEnding,
			text: fmt.Sprintf("%q is ending in %s. Current bid: %s",
				e.Title, humanizeHorizon(e.Horizon), money(e.CurrentPrice)),
			link:    auctionLink(e.AuctionID),
			email:   domain.EmailAuctionEnding,
			subject: fmt.Sprintf("%s is ending soon", e.Title),
		}, nil

	case domain.AuctionCancelled:
		return rendered{
			kind: domain.TypeAuctionCancelled,
			text: fmt.Sprintf("Auction %q was cancelled by the seller.", e.Title),
			link: auctionLink(e.AuctionID),
		}, nil
	}
	return rendered{}, fmt.Errorf("unsupported notification event %T", ev)
}

func auctionLink(id uuid.UUID) string {
	return "/auctions/" + id.String()
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func humanizeHorizon(h time.Duration) string {
	const day = 24 * time.Hour
	switch {
	case h > day && h%day == 0:
		return fmt.Sprintf("%d days", int(h/day))
	case h > time.Hour && h%time.Hour == 0:
		return fmt.Sprintf("%d hours", int(h/time.Hour))
	case h == time.Hour:
		return "1 hour"
	}
	return fmt.Sprintf("%d minutes", int(h.Minutes()))
}
