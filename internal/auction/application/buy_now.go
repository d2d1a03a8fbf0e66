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

type BuyNowDTO struct {
	AuctionID uuid.UUID
	BuyerID   uuid.UUID
}

// BuyNowUseCase ends an auction immediately at its buy-now price.
type BuyNowUseCase struct {
	tx        domain.Transactor
	auctions  domain.AuctionRepository
	bids      domain.BidRepository
	notifier  Notifier
	publisher UpdatePublisher
	now       func() time.Time
}

func NewBuyNowUseCase(tx domain.Transactor, auctions domain.AuctionRepository, bids domain.BidRepository,
	notifier Notifier, publisher UpdatePublisher) *BuyNowUseCase {

	return &BuyNowUseCase{
		tx:        tx,
		auctions:  auctions,
		bids:      bids,
		notifier:  notifier,
		publisher: publisherOrNoop(publisher),
		now:       utcNow,
	}
}

func (uc *BuyNowUseCase) Execute(ctx context.Context, cmd BuyNowDTO) (*PlaceBidResult, error) {
	var (
		auction    *domain.Auction
		bid        *domain.Bid
		prevLeader *domain.Bid
	)
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if auction, err = uc.auctions.GetForUpdate(ctx, cmd.AuctionID); err != nil {
			return err
		}
		now := uc.now()
		if prevLeader, err = uc.bids.HighestBid(ctx, cmd.AuctionID); err != nil {
			return fmt.Errorf("load highest bid: %w", err)
		}
		if bid, err = auction.BuyNow(cmd.BuyerID, now); err != nil {
			return err
		}
		if err := uc.bids.Insert(ctx, bid); err != nil {
			return fmt.Errorf("insert bid: %w", err)
		}
		return uc.auctions.UpdateStatus(ctx, auction.ID, domain.StatusUpdate{
			Status:       domain.StatusEnded,
			WinnerID:     &cmd.BuyerID,
			CurrentPrice: &bid.Amount,
		})
	})
	if err != nil {
		if !domain.IsRejection(err) {
			log.Error("BuyNowUseCase: purchase failed",
				zap.String("auctionID", cmd.AuctionID.String()),
				zap.String("buyerID", cmd.BuyerID.String()),
				zap.Error(err),
			)
		}
		return nil, fmt.Errorf("buy now on auction %s: %w", cmd.AuctionID, err)
	}

	log.Info("Auction bought now",
		zap.String("auctionID", auction.ID.String()),
		zap.String("buyerID", cmd.BuyerID.String()),
		zap.String("price", bid.Amount.String()),
	)

	buyer := cmd.BuyerID
	events := []notifdomain.Event{
		notifdomain.AuctionWon{
			WinnerID:   buyer,
			AuctionID:  auction.ID,
			Title:      auction.Title,
			FinalPrice: bid.Amount,
			BoughtNow:  true,
		},
		notifdomain.AuctionEnded{
			SellerID:   auction.SellerID,
			AuctionID:  auction.ID,
			Title:      auction.Title,
			WinnerID:   &buyer,
			FinalPrice: bid.Amount,
		},
	}
	if prevLeader != nil && prevLeader.BidderID != buyer {
		events = append(events, notifdomain.Outbid{
			UserID:    prevLeader.BidderID,
			AuctionID: auction.ID,
			Title:     auction.Title,
			NewAmount: bid.Amount,
			BoughtNow: true,
		})
	}
	uc.notifier.DispatchAsync(events...)
	uc.publisher.PublishAuctionUpdate(auction, bid)

	return &PlaceBidResult{Bid: bid, Auction: auction}, nil
}
