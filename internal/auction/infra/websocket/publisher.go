package websocket

import (
	"encoding/json"

	"github.com/cristianortiz/bidmaster/internal/auction/domain"
	"github.com/cristianortiz/bidmaster/internal/shared/websocket"
	"go.uber.org/zap"
)

// HubPublisher broadcasts auction changes to the auction's room.
type HubPublisher struct {
	hub *websocket.Hub
}

func NewHubPublisher(hub *websocket.Hub) *HubPublisher {
	return &HubPublisher{hub: hub}
}

func (p *HubPublisher) PublishAuctionUpdate(auction *domain.Auction, lastBid *domain.Bid) {
	data, err := json.Marshal(newAuctionUpdate(auction, lastBid))
	if err != nil {
		log.Error("failed to marshal auction update",
			zap.String("auctionID", auction.ID.String()), zap.Error(err))
		return
	}
	p.hub.BroadcastToRoom(auction.ID.String(), data)
}

func newAuctionUpdate(a *domain.Auction, lastBid *domain.Bid) ServerAuctionUpdateMessage {
	msg := ServerAuctionUpdateMessage{
		BaseMessage: BaseMessage{Type: MessageTypeServerAuctionUpdate},
	}
	msg.Payload.AuctionID = a.ID
	msg.Payload.Status = string(a.Status)
	msg.Payload.CurrentPrice = a.CurrentPrice
	msg.Payload.EndTime = a.EndTime
	msg.Payload.WinnerID = a.WinnerID
	if lastBid != nil {
		msg.Payload.LastBidAmount = &lastBid.Amount
		msg.Payload.LastBidBidderID = &lastBid.BidderID
		msg.Payload.LastBidTime = &lastBid.CreatedAt
	}
	return msg
}
