package application

import (
	"context"

	"github.com/cristianortiz/bidmaster/internal/auction/domain"
	"github.com/google/uuid"
)

// AuctionService is the application layer of the auction module as seen by
// the transport adapters (HTTP, websocket, cron trigger).
type AuctionService interface {
	CreateAuction(ctx context.Context, cmd CreateAuctionDTO) (*domain.Auction, error)
	PlaceBid(ctx context.Context, cmd PlaceBidDTO) (*PlaceBidResult, error)
	BuyNow(ctx context.Context, cmd BuyNowDTO) (*PlaceBidResult, error)
	CancelAuction(ctx context.Context, cmd CancelAuctionDTO) (*domain.Auction, error)
	GetAuction(ctx context.Context, auctionID uuid.UUID) (*AuctionDTO, error)
	SweepExpired(ctx context.Context) (*SweepReport, error)
	SendEndingReminders(ctx context.Context) (*ReminderReport, error)
}

type auctionService struct {
	createUC   *CreateAuctionUseCase
	placeBidUC *PlaceBidUseCase
	buyNowUC   *BuyNowUseCase
	cancelUC   *CancelAuctionUseCase
	getUC      *GetAuctionUseCase
	sweepUC    *SweepUseCase
	reminderUC *ReminderUseCase
}

func NewAuctionService(createUC *CreateAuctionUseCase, placeBidUC *PlaceBidUseCase, buyNowUC *BuyNowUseCase,
	cancelUC *CancelAuctionUseCase, getUC *GetAuctionUseCase, sweepUC *SweepUseCase, reminderUC *ReminderUseCase) AuctionService {

	return &auctionService{
		createUC:   createUC,
		placeBidUC: placeBidUC,
		buyNowUC:   buyNowUC,
		cancelUC:   cancelUC,
		getUC:      getUC,
		sweepUC:    sweepUC,
		reminderUC: reminderUC,
	}
}

func (s *auctionService) CreateAuction(ctx context.Context, cmd CreateAuctionDTO) (*domain.Auction, error) {
	return s.createUC.Execute(ctx, cmd)
}

func (s *auctionService) PlaceBid(ctx context.Context, cmd PlaceBidDTO) (*PlaceBidResult, error) {
	return s.placeBidUC.Execute(ctx, cmd)
}

func (s *auctionService) BuyNow(ctx context.Context, cmd BuyNowDTO) (*PlaceBidResult, error) {
	return s.buyNowUC.Execute(ctx, cmd)
}

func (s *auctionService) CancelAuction(ctx context.Context, cmd CancelAuctionDTO) (*domain.Auction, error) {
	return s.cancelUC.Execute(ctx, cmd)
}

func (s *auctionService) GetAuction(ctx context.Context, auctionID uuid.UUID) (*AuctionDTO, error) {
	return s.getUC.Execute(ctx, auctionID)
}

func (s *auctionService) SweepExpired(ctx context.Context) (*SweepReport, error) {
	return s.sweepUC.SweepExpired(ctx)
}

func (s *auctionService) SendEndingReminders(ctx context.Context) (*ReminderReport, error) {
	return s.reminderUC.SendEndingReminders(ctx)
}
