package http

import (
	"time"

	"github.com/cristianortiz/bidmaster/internal/auction/application"
	"github.com/cristianortiz/bidmaster/internal/shared/validator"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateAuctionRequest struct {
	SellerID      string           `json:"seller_id" validate:"required,uuid"`
	Title         string           `json:"title" validate:"required,min=3,max=200"`
	Category      string           `json:"category" validate:"omitempty,max=100"`
	Condition     string           `json:"condition" validate:"omitempty,max=50"`
	StartingPrice decimal.Decimal  `json:"starting_price"`
	BuyNowPrice   *decimal.Decimal `json:"buy_now_price,omitempty"`
	StartTime     time.Time        `json:"start_time"`
	EndTime       time.Time        `json:"end_time" validate:"required"`
}

type PlaceBidRequest struct {
	BidderID  string           `json:"bidder_id" validate:"required,uuid"`
	Amount    decimal.Decimal  `json:"amount"`
	SeenPrice *decimal.Decimal `json:"seen_price,omitempty"`
}

type BuyNowRequest struct {
	BuyerID string `json:"buyer_id" validate:"required,uuid"`
}

type CancelAuctionRequest struct {
	SellerID string `json:"seller_id" validate:"required,uuid"`
}

type BidResponse struct {
	Bid     application.BidDTO `json:"bid"`
	Status  string             `json:"status"`
	Current decimal.Decimal    `json:"current_price"`
}

// AuctionHandler exposes the auction use cases and the scheduled trigger over
// HTTP.
type AuctionHandler struct {
	service    application.AuctionService
	cronSecret string
}

func NewAuctionHandler(service application.AuctionService, cronSecret string) *AuctionHandler {
	return &AuctionHandler{service: service, cronSecret: cronSecret}
}

func (h *AuctionHandler) RegisterRoutes(app *fiber.App) {
	api := app.Group("/api")
	api.Post("/auctions", h.CreateAuction)
	api.Get("/auctions/:id", h.GetAuction)
	api.Post("/auctions/:id/bids", h.PlaceBid)
	api.Post("/auctions/:id/buy-now", h.BuyNow)
	api.Post("/auctions/:id/cancel", h.CancelAuction)
	api.Get("/cron", h.Cron)
	api.Post("/cron", h.Cron)
}

func (h *AuctionHandler) CreateAuction(c *fiber.Ctx) error {
	var req CreateAuctionRequest
	if !bindAndValidate(c, &req) {
		return nil
	}
	auction, err := h.service.CreateAuction(c.UserContext(), application.CreateAuctionDTO{
		SellerID:      uuid.MustParse(req.SellerID),
		Title:         req.Title,
		Category:      req.Category,
		Condition:     req.Condition,
		StartingPrice: req.StartingPrice,
		BuyNowPrice:   req.BuyNowPrice,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(application.NewAuctionDTO(auction, nil))
}

func (h *AuctionHandler) GetAuction(c *fiber.Ctx) error {
	id, ok := auctionIDParam(c)
	if !ok {
		return nil
	}
	dto, err := h.service.GetAuction(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto)
}

func (h *AuctionHandler) PlaceBid(c *fiber.Ctx) error {
	id, ok := auctionIDParam(c)
	if !ok {
		return nil
	}
	var req PlaceBidRequest
	if !bindAndValidate(c, &req) {
		return nil
	}
	res, err := h.service.PlaceBid(c.UserContext(), application.PlaceBidDTO{
		AuctionID: id,
		BidderID:  uuid.MustParse(req.BidderID),
		Amount:    req.Amount,
		SeenPrice: req.SeenPrice,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(newBidResponse(res))
}

func (h *AuctionHandler) BuyNow(c *fiber.Ctx) error {
	id, ok := auctionIDParam(c)
	if !ok {
		return nil
	}
	var req BuyNowRequest
	if !bindAndValidate(c, &req) {
		return nil
	}
	res, err := h.service.BuyNow(c.UserContext(), application.BuyNowDTO{
		AuctionID: id,
		BuyerID:   uuid.MustParse(req.BuyerID),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(newBidResponse(res))
}

func (h *AuctionHandler) CancelAuction(c *fiber.Ctx) error {
	id, ok := auctionIDParam(c)
	if !ok {
		return nil
	}
	var req CancelAuctionRequest
	if !bindAndValidate(c, &req) {
		return nil
	}
	auction, err := h.service.CancelAuction(c.UserContext(), application.CancelAuctionDTO{
		AuctionID: id,
		SellerID:  uuid.MustParse(req.SellerID),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"id": auction.ID, "status": auction.Status})
}

// auctionIDParam parses :id. On failure the 400 has already been written.
func auctionIDParam(c *fiber.Ctx) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		_ = respondBadRequest(c, "invalid auction id", nil)
		return uuid.Nil, false
	}
	return id, true
}

// bindAndValidate decodes the JSON body into req and validates it. On failure
// the 400 has already been written.
func bindAndValidate(c *fiber.Ctx, req any) bool {
	if err := c.BodyParser(req); err != nil {
		_ = respondBadRequest(c, "invalid JSON body", nil)
		return false
	}
	details, err := validator.Struct(req)
	if err != nil {
		_ = respondError(c, err)
		return false
	}
	if len(details) > 0 {
		_ = respondBadRequest(c, "input validation failed", details)
		return false
	}
	return true
}

func newBidResponse(res *application.PlaceBidResult) BidResponse {
	return BidResponse{
		Bid: application.BidDTO{
			ID:        res.Bid.ID,
			BidderID:  res.Bid.BidderID,
			Amount:    res.Bid.Amount,
			CreatedAt: res.Bid.CreatedAt,
		},
		Status:  string(res.Auction.Status),
		Current: res.Auction.CurrentPrice,
	}
}
