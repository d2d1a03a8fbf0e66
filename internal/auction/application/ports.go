package application

import (
	"context"
	"time"

	"github.com/cristianortiz/bidmaster/internal/auction/domain"
	notifdomain "github.com/cristianortiz/bidmaster/internal/notification/domain"
)

// Notifier is the slice of the notification dispatcher the auction use cases
// need.
type Notifier interface {
	Dispatch(ctx context.Context, events ...notifdomain.Event) error
	// DispatchWithin waits for the dispatch for a bounded time only.
	DispatchWithin(ctx context.Context, events ...notifdomain.Event) error
	DispatchAsync(events ...notifdomain.Event)
}

// UpdatePublisher pushes auction changes to live subscribers. lastBid is nil
// when the change was not caused by a bid.
type UpdatePublisher interface {
	PublishAuctionUpdate(auction *domain.Auction, lastBid *domain.Bid)
}

type noopPublisher struct{}

func (noopPublisher) PublishAuctionUpdate(*domain.Auction, *domain.Bid) {}

func publisherOrNoop(p UpdatePublisher) UpdatePublisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}

func utcNow() time.Time {
	return time.Now().UTC()
}
