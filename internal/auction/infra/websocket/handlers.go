package websocket

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/cristianortiz/bidmaster/internal/auction/application"
	"github.com/cristianortiz/bidmaster/internal/auction/domain"
	"github.com/cristianortiz/bidmaster/internal/shared/logger"
	"github.com/cristianortiz/bidmaster/internal/shared/validator"
	"github.com/cristianortiz/bidmaster/internal/shared/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// AuctionWSHandler handles the inbound websocket messages of the auction
// module.
type AuctionWSHandler struct {
	auctionService application.AuctionService
	hub            *websocket.Hub
}

func NewAuctionWSHandler(auctionService application.AuctionService, hub *websocket.Hub) *AuctionWSHandler {
	return &AuctionWSHandler{
		auctionService: auctionService,
		hub:            hub,
	}
}

// ListenForMessages consumes the hub inbound channel until ctx is done. Each
// message is processed on its own goroutine; ordering between bids is
// decided by the auction row lock, not by arrival here.
func (h *AuctionWSHandler) ListenForMessages(ctx context.Context) {
	log.Info("AuctionWSHandler started listening for inbound messages from hub")
	for {
		select {
		case <-ctx.Done():
			log.Info("AuctionWSHandler stopped listening for inbound messages from hub")
			return
		case msg := <-h.hub.InboundMessages:
			go h.processMessage(ctx, msg.Client, msg.Data)
		}
	}
}

func (h *AuctionWSHandler) processMessage(ctx context.Context, client *websocket.Client, data []byte) {
	var baseMsg BaseMessage
	if err := json.Unmarshal(data, &baseMsg); err != nil {
		h.sendErrorToClient(client, "invalid message format", "")
		return
	}
	switch baseMsg.Type {
	case MessageTypeClientBid:
		h.handleClientBidMessage(ctx, client, data)
	default:
		h.sendErrorToClient(client, "unknown message type", "")
	}
}

func (h *AuctionWSHandler) handleClientBidMessage(ctx context.Context, client *websocket.Client, data []byte) {
	var bidMsg ClientBidMessage
	if err := json.Unmarshal(data, &bidMsg); err != nil {
		h.sendErrorToClient(client, "invalid bid message format", "")
		return
	}
	if details, err := validator.Struct(bidMsg.Payload); err != nil || len(details) > 0 {
		h.sendErrorToClient(client, "invalid bid message", "VALIDATION_FAILED")
		return
	}
	if bidMsg.Payload.AuctionID != client.Room {
		h.sendErrorToClient(client, "auction ID mismatch", "")
		return
	}

	cmd := application.PlaceBidDTO{
		AuctionID: uuid.MustParse(bidMsg.Payload.AuctionID),
		BidderID:  uuid.MustParse(bidMsg.Payload.BidderID),
		Amount:    bidMsg.Payload.Amount,
		SeenPrice: bidMsg.Payload.SeenPrice,
	}
	// the update broadcast to the room is published by the use case
	if _, err := h.auctionService.PlaceBid(ctx, cmd); err != nil {
		code := domain.RejectionCode(err)
		if code == "" {
			h.sendErrorToClient(client, "failed to place bid", "INTERNAL_ERROR")
			return
		}
		h.sendErrorToClient(client, rejectionMessage(err), code)
	}
}

// sendInitialState sends the auction read model to a freshly joined client.
func (h *AuctionWSHandler) sendInitialState(ctx context.Context, client *websocket.Client, auctionID uuid.UUID) error {
	dto, err := h.auctionService.GetAuction(ctx, auctionID)
	if err != nil {
		return err
	}
	data, err := json.Marshal(ServerInitialStateMessage{
		BaseMessage: BaseMessage{Type: MessageTypeServerInitialState},
		Payload:     dto,
	})
	if err != nil {
		return err
	}
	if !client.SendTo(data) {
		return errors.New("client send buffer full")
	}
	return nil
}

// sendErrorToClient serializes and sends an error msg to a specific client
func (h *AuctionWSHandler) sendErrorToClient(client *websocket.Client, errorMessage, code string) {
	errMsg := ServerErrorMessage{
		BaseMessage: BaseMessage{Type: MessageTypeServerError},
	}
	errMsg.Payload.Error = errorMessage
	errMsg.Payload.Code = code
	data, err := json.Marshal(errMsg)
	if err != nil {
		log.Error("failed to marshal ServerErrorMessage", zap.Error(err))
		return
	}
	if !client.SendTo(data) {
		log.Warn("client send channel full or closed, could not send error msg",
			zap.String("clientID", client.ID))
	}
}

// rejectionMessage returns the innermost domain message of a rejection,
// without the use case wrapping.
func rejectionMessage(err error) string {
	var tooLow *domain.BidTooLowError
	if errors.As(err, &tooLow) {
		return tooLow.Error()
	}
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}
