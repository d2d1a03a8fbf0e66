package application

import (
	"context"
	"errors"
	"time"

	"github.com/cristianortiz/bidmaster/internal/auction/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type BidDTO struct {
	ID        uuid.UUID       `json:"id"`
	BidderID  uuid.UUID       `json:"bidder_id"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}

// AuctionDTO is the read model of an auction exposed to HTTP and websocket
// clients. Bids are ranked, highest first.
type AuctionDTO struct {
	ID            uuid.UUID        `json:"id"`
	SellerID      uuid.UUID        `json:"seller_id"`
	Title         string           `json:"title"`
	Category      string           `json:"category,omitempty"`
	Condition     string           `json:"condition,omitempty"`
	StartingPrice decimal.Decimal  `json:"starting_price"`
	CurrentPrice  decimal.Decimal  `json:"current_price"`
	BuyNowPrice   *decimal.Decimal `json:"buy_now_price,omitempty"`
	StartTime     time.Time        `json:"start_time"`
	EndTime       time.Time        `json:"end_time"`
	Status        string           `json:"status"`
	WinnerID      *uuid.UUID       `json:"winner_id,omitempty"`
	BidCount      int              `json:"bid_count"`
	Bids          []BidDTO         `json:"bids"`
}

// Settler is implemented by SweepUseCase.
type Settler interface {
	SettleOne(ctx context.Context, auctionID uuid.UUID) (*SettlementResult, error)
}

// GetAuctionUseCase reads an auction and its bid history. An auction that is
// past its end time is settled first, so readers never see a stale ACTIVE
// status while waiting for the next sweep.
type GetAuctionUseCase struct {
	auctions domain.AuctionRepository
	bids     domain.BidRepository
	settler  Settler
}

func NewGetAuctionUseCase(auctions domain.AuctionRepository, bids domain.BidRepository, settler Settler) *GetAuctionUseCase {
	return &GetAuctionUseCase{
		auctions: auctions,
		bids:     bids,
		settler:  settler,
	}
}

func (uc *GetAuctionUseCase) Execute(ctx context.Context, auctionID uuid.UUID) (*AuctionDTO, error) {
	if uc.settler != nil {
		if _, err := uc.settler.SettleOne(ctx, auctionID); err != nil && !errors.Is(err, domain.ErrAuctionNotFound) {
			log.Warn("Lazy settlement failed, serving stored state",
				zap.String("auctionID", auctionID.String()), zap.Error(err))
		}
	}

	auction, err := uc.auctions.GetByID(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	ledger, err := uc.bids.ListByAuction(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	return NewAuctionDTO(auction, ledger), nil
}

// NewAuctionDTO maps an auction and its ranked bids to the read model.
func NewAuctionDTO(a *domain.Auction, ranked []*domain.Bid) *AuctionDTO {
	dto := &AuctionDTO{
		ID:            a.ID,
		SellerID:      a.SellerID,
		Title:         a.Title,
		Category:      a.Category,
		Condition:     a.Condition,
		StartingPrice: a.StartingPrice,
		CurrentPrice:  a.CurrentPrice,
		BuyNowPrice:   a.BuyNowPrice,
		StartTime:     a.StartTime,
		EndTime:       a.EndTime,
		Status:        string(a.Status),
		WinnerID:      a.WinnerID,
		BidCount:      len(ranked),
		Bids:          make([]BidDTO, 0, len(ranked)),
	}
	for _, b := range ranked {
		dto.Bids = append(dto.Bids, BidDTO{
			ID:        b.ID,
			BidderID:  b.BidderID,
			Amount:    b.Amount,
			CreatedAt: b.CreatedAt,
		})
	}
	return dto
}
