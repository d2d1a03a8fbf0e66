package websocket

import (
	"time"

	"github.com/cristianortiz/bidmaster/internal/auction/application"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MessageType defines ws type message
type MessageType string

const (
	MessageTypeClientBid           MessageType = "client_bid"            // client msg to make a bid
	MessageTypeServerAuctionUpdate MessageType = "server_auction_update" // server msg with auction update
	MessageTypeServerError         MessageType = "server_error"          // server msg indicating error
	MessageTypeServerInitialState  MessageType = "server_initial_state"  // server msg with auction state on connect
)

// BaseMessage is base struct for all the WS messages, includes a Type field for identify the message type
type BaseMessage struct {
	Type MessageType `json:"type"`
}

// ClientBidMessage is sent by a client to bid on the auction of its room.
// SeenPrice is the current price the client was showing.
type ClientBidMessage struct {
	BaseMessage
	Payload struct {
		AuctionID string           `json:"auction_id" validate:"required,uuid"`
		BidderID  string           `json:"bidder_id" validate:"required,uuid"`
		Amount    decimal.Decimal  `json:"amount"`
		SeenPrice *decimal.Decimal `json:"seen_price,omitempty"`
	} `json:"payload"`
}

type ServerAuctionUpdateMessage struct {
	BaseMessage
	Payload struct {
		AuctionID       uuid.UUID        `json:"auction_id"`
		Status          string           `json:"status"`
		CurrentPrice    decimal.Decimal  `json:"current_price"`
		EndTime         time.Time        `json:"end_time"`
		WinnerID        *uuid.UUID       `json:"winner_id,omitempty"`
		LastBidAmount   *decimal.Decimal `json:"last_bid_amount,omitempty"`
		LastBidBidderID *uuid.UUID       `json:"last_bid_bidder_id,omitempty"`
		LastBidTime     *time.Time       `json:"last_bid_time,omitempty"`
	} `json:"payload"`
}

type ServerErrorMessage struct {
	BaseMessage
	Payload struct {
		Error string `json:"error"`
		Code  string `json:"code,omitempty"`
	} `json:"payload"`
}

// ServerInitialStateMessage carries the full auction read model, sent once
// right after a client joins a room.
type ServerInitialStateMessage struct {
	BaseMessage
	Payload *application.AuctionDTO `json:"payload"`
}
