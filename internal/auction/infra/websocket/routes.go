package websocket

import (
	"context"

	"github.com/cristianortiz/bidmaster/internal/shared/websocket"
	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RegisterRoutes mounts GET /ws/auctions/:id. Connections live until the
// peer leaves or ctx is done.
func (h *AuctionWSHandler) RegisterRoutes(ctx context.Context, app *fiber.App) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if fiberws.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/auctions/:id", func(c *fiber.Ctx) error {
		if _, err := uuid.Parse(c.Params("id")); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid auction id")
		}
		return c.Next()
	}, fiberws.New(func(conn *fiberws.Conn) {
		h.serveConn(ctx, conn)
	}))
}

func (h *AuctionWSHandler) serveConn(ctx context.Context, conn *fiberws.Conn) {
	auctionID := uuid.MustParse(conn.Params("id"))
	client := websocket.NewClient(h.hub, conn, auctionID.String(), uuid.NewString())
	if !h.hub.RegisterClient(client) {
		return
	}

	if err := h.sendInitialState(ctx, client, auctionID); err != nil {
		log.Warn("Failed to send initial auction state",
			zap.String("clientID", client.ID),
			zap.String("auctionID", auctionID.String()),
			zap.Error(err),
		)
		h.sendErrorToClient(client, "auction not available", "AUCTION_NOT_FOUND")
	}

	go client.WritePump(ctx)
	client.ReadPump(ctx)
}
