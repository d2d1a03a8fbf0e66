package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeBidOutbid        Type = "BID_OUTBID"
	TypeBidPlaced        Type = "BID_PLACED"
	TypeAuctionWon       Type = "AUCTION_WON"
	TypeAuctionEnded     Type = "AUCTION_ENDED"
	TypeAuctionEnding    Type = "AUCTION_ENDING"
	TypeAuctionCancelled Type = "AUCTION_CANCELLED"
)

// Notification is an in-app message shown to a user.
type Notification struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Type      Type
	Message   string
	Link      string
	Read      bool
	CreatedAt time.Time
}

type EmailKind string

const (
	EmailAuctionWon    EmailKind = "auction-won"
	EmailOutbid        EmailKind = "outbid"
	EmailAuctionEnding EmailKind = "auction-ending"
)

type Email struct {
	Kind    EmailKind
	To      string
	Name    string
	Subject string
	Body    string
}

type NotificationStore interface {
	Create(ctx context.Context, n *Notification) error
}

// Mailer hands an email to the delivery provider.
type Mailer interface {
	Send(ctx context.Context, email Email) error
}
