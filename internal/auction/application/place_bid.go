package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cristianortiz/bidmaster/internal/auction/domain"
	notifdomain "github.com/cristianortiz/bidmaster/internal/notification/domain"
	"github.com/cristianortiz/bidmaster/internal/shared/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// PlaceBidDTO is the input of PlaceBidUseCase. SeenPrice is the current price
// the bidder was looking at when bidding, when the client sends it.
type PlaceBidDTO struct {
	AuctionID uuid.UUID
	BidderID  uuid.UUID
	Amount    decimal.Decimal
	SeenPrice *decimal.Decimal
}

type PlaceBidResult struct {
	Bid     *domain.Bid
	Auction *domain.Auction
}

// PlaceBidUseCase admits a bid on an auction. The auction row is locked for
// the whole admission, so admissions on one auction are serialized.
type PlaceBidUseCase struct {
	tx        domain.Transactor
	auctions  domain.AuctionRepository
	bids      domain.BidRepository
	notifier  Notifier
	publisher UpdatePublisher
	now       func() time.Time
}

func NewPlaceBidUseCase(tx domain.Transactor, auctions domain.AuctionRepository, bids domain.BidRepository,
	notifier Notifier, publisher UpdatePublisher) *PlaceBidUseCase {

	return &PlaceBidUseCase{
		tx:        tx,
		auctions:  auctions,
		bids:      bids,
		notifier:  notifier,
		publisher: publisherOrNoop(publisher),
		now:       utcNow,
	}
}

func (uc *PlaceBidUseCase) Execute(ctx context.Context, cmd PlaceBidDTO) (*PlaceBidResult, error) {
	log.Info("Executing PlaceBidUseCase",
		zap.String("auctionID", cmd.AuctionID.String()),
		zap.String("bidderID", cmd.BidderID.String()),
		zap.String("amount", cmd.Amount.String()),
	)
	if !cmd.Amount.IsPositive() || !domain.IsWholeCents(cmd.Amount) {
		return nil, domain.ErrInvalidAmount
	}

	var (
		auction    *domain.Auction
		bid        *domain.Bid
		prevLeader *domain.Bid
	)
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		auction, err = uc.auctions.GetForUpdate(ctx, cmd.AuctionID)
		if err != nil {
			return err
		}
		// the clock is read after the lock so a bid that waited on it is
		// checked against the time it is actually admitted
		now := uc.now()

		if prevLeader, err = uc.bids.HighestBid(ctx, cmd.AuctionID); err != nil {
			return fmt.Errorf("load highest bid: %w", err)
		}

		bid, err = auction.AdmitBid(cmd.BidderID, cmd.Amount, now)
		if err != nil {
			var tooLow *domain.BidTooLowError
			if errors.As(err, &tooLow) && cmd.SeenPrice != nil && cmd.SeenPrice.LessThan(tooLow.CurrentPrice) {
				tooLow.Outpaced = true
			}
			return err
		}

		if err := uc.bids.Insert(ctx, bid); err != nil {
			return fmt.Errorf("insert bid: %w", err)
		}
		return uc.auctions.UpdateCurrentPrice(ctx, cmd.AuctionID, bid.Amount)
	})
	if err != nil {
		if !domain.IsRejection(err) {
			log.Error("PlaceBidUseCase: bid admission failed",
				zap.String("auctionID", cmd.AuctionID.String()),
				zap.String("bidderID", cmd.BidderID.String()),
				zap.Error(err),
			)
		}
		return nil, fmt.Errorf("place bid on auction %s: %w", cmd.AuctionID, err)
	}

	log.Info("Bid admitted",
		zap.String("auctionID", auction.ID.String()),
		zap.String("bidID", bid.ID.String()),
		zap.String("amount", bid.Amount.String()),
	)

	events := []notifdomain.Event{notifdomain.BidPlaced{
		SellerID:  auction.SellerID,
		AuctionID: auction.ID,
		Title:     auction.Title,
		Amount:    bid.Amount,
	}}
	if prevLeader != nil && prevLeader.BidderID != bid.BidderID {
		events = append(events, notifdomain.Outbid{
			UserID:    prevLeader.BidderID,
			AuctionID: auction.ID,
			Title:     auction.Title,
			NewAmount: bid.Amount,
		})
	}
	uc.notifier.DispatchAsync(events...)
	uc.publisher.PublishAuctionUpdate(auction, bid)

	return &PlaceBidResult{Bid: bid, Auction: auction}, nil
}
