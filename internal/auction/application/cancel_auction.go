package application

import (
	"context"
	"fmt"
	"time"

	"github.com/cristianortiz/bidmaster/internal/auction/domain"
	notifdomain "github.com/cristianortiz/bidmaster/internal/notification/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CancelAuctionDTO struct {
	AuctionID uuid.UUID
	SellerID  uuid.UUID
}

// CancelAuctionUseCase lets a seller withdraw an ACTIVE auction. Every
// distinct bidder is told about it.
type CancelAuctionUseCase struct {
	tx        domain.Transactor
	auctions  domain.AuctionRepository
	bids      domain.BidRepository
	notifier  Notifier
	publisher UpdatePublisher
	now       func() time.Time
}

func NewCancelAuctionUseCase(tx domain.Transactor, auctions domain.AuctionRepository, bids domain.BidRepository,
	notifier Notifier, publisher UpdatePublisher) *CancelAuctionUseCase {

	return &CancelAuctionUseCase{
		tx:        tx,
		auctions:  auctions,
		bids:      bids,
		notifier:  notifier,
		publisher: publisherOrNoop(publisher),
		now:       utcNow,
	}
}

func (uc *CancelAuctionUseCase) Execute(ctx context.Context, cmd CancelAuctionDTO) (*domain.Auction, error) {
	var (
		auction *domain.Auction
		bidders []uuid.UUID
	)
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if auction, err = uc.auctions.GetForUpdate(ctx, cmd.AuctionID); err != nil {
			return err
		}
		if err := auction.Cancel(cmd.SellerID, uc.now()); err != nil {
			return err
		}
		if err := uc.auctions.UpdateStatus(ctx, auction.ID, domain.StatusUpdate{Status: domain.StatusCancelled}); err != nil {
			return err
		}

		ledger, err := uc.bids.ListByAuction(ctx, auction.ID)
		if err != nil {
			return fmt.Errorf("list bids: %w", err)
		}
		seen := make(map[uuid.UUID]struct{}, len(ledger))
		for _, b := range ledger {
			if _, ok := seen[b.BidderID]; ok {
				continue
			}
			seen[b.BidderID] = struct{}{}
			bidders = append(bidders, b.BidderID)
		}
		return nil
	})
	if err != nil {
		if !domain.IsRejection(err) {
			log.Error("CancelAuctionUseCase: cancellation failed",
				zap.String("auctionID", cmd.AuctionID.String()),
				zap.Error(err),
			)
		}
		return nil, fmt.Errorf("cancel auction %s: %w", cmd.AuctionID, err)
	}

	events := make([]notifdomain.Event, 0, len(bidders))
	for _, id := range bidders {
		events = append(events, notifdomain.AuctionCancelled{
			BidderID:  id,
			AuctionID: auction.ID,
			Title:     auction.Title,
		})
	}
	uc.notifier.DispatchAsync(events...)
	uc.publisher.PublishAuctionUpdate(auction, nil)

	return auction, nil
}
