package application

import (
	"context"
	"fmt"
	"time"

	"github.com/cristianortiz/bidmaster/internal/auction/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CreateAuctionDTO struct {
	SellerID      uuid.UUID
	Title         string
	Category      string
	Condition     string
	StartingPrice decimal.Decimal
	BuyNowPrice   *decimal.Decimal
	StartTime     time.Time // zero means now
	EndTime       time.Time
}

// CreateAuctionUseCase lists a new ACTIVE auction.
type CreateAuctionUseCase struct {
	auctions domain.AuctionRepository
	now      func() time.Time
}

func NewCreateAuctionUseCase(auctions domain.AuctionRepository) *CreateAuctionUseCase {
	return &CreateAuctionUseCase{auctions: auctions, now: utcNow}
}

func (uc *CreateAuctionUseCase) Execute(ctx context.Context, cmd CreateAuctionDTO) (*domain.Auction, error) {
	start := cmd.StartTime
	if start.IsZero() {
		start = uc.now()
	}
	auction, err := domain.NewAuction(cmd.SellerID, cmd.Title, cmd.Category, cmd.Condition,
		cmd.StartingPrice, cmd.BuyNowPrice, start, cmd.EndTime)
	if err != nil {
		return nil, err
	}
	if !auction.EndTime.After(uc.now()) {
		return nil, domain.ErrInvalidAuction
	}
	if err := uc.auctions.Create(ctx, auction); err != nil {
		return nil, fmt.Errorf("create auction: %w", err)
	}

	log.Info("Auction created",
		zap.String("auctionID", auction.ID.String()),
		zap.String("sellerID", auction.SellerID.String()),
		zap.Time("endTime", auction.EndTime),
	)
	return auction, nil
}
