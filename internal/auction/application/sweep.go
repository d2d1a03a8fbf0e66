package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cristianortiz/bidmaster/internal/auction/domain"
	notifdomain "github.com/cristianortiz/bidmaster/internal/notification/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	StageSettle = "settle"
	StageNotify = "notify"
	StageRemind = "remind"
)

// SettlementError is one per-auction failure collected by a sweep or a
// reminder run.
type SettlementError struct {
	AuctionID uuid.UUID
	Stage     string
	Err       error
}

func (e SettlementError) Error() string {
	return fmt.Sprintf("auction %s (%s): %v", e.AuctionID, e.Stage, e.Err)
}

func (e SettlementError) Unwrap() error { return e.Err }

type SweepReport struct {
	EndedCount int
	Errors     []SettlementError
}

// SettlementResult is what settling one auction did. Settled is false when
// the auction was not due (still running, or already terminal).
type SettlementResult struct {
	Auction   *domain.Auction
	Outcome   domain.Outcome
	Settled   bool
	NotifyErr error
}

// SweepUseCase ends every ACTIVE auction whose end time has passed.
type SweepUseCase struct {
	tx        domain.Transactor
	auctions  domain.AuctionRepository
	bids      domain.BidRepository
	notifier  Notifier
	publisher UpdatePublisher
	now       func() time.Time
}

func NewSweepUseCase(tx domain.Transactor, auctions domain.AuctionRepository, bids domain.BidRepository,
	notifier Notifier, publisher UpdatePublisher) *SweepUseCase {

	return &SweepUseCase{
		tx:        tx,
		auctions:  auctions,
		bids:      bids,
		notifier:  notifier,
		publisher: publisherOrNoop(publisher),
		now:       utcNow,
	}
}

// SweepExpired settles each due auction independently. Only a failure to
// select the due auctions is returned as an error; per-auction failures end
// up in the report.
func (uc *SweepUseCase) SweepExpired(ctx context.Context) (*SweepReport, error) {
	due, err := uc.auctions.FindActivePastEndTime(ctx, uc.now())
	if err != nil {
		log.Error("SweepUseCase: failed to select expired auctions", zap.Error(err))
		return nil, fmt.Errorf("sweep: select expired auctions: %w", err)
	}

	report := &SweepReport{}
	for _, a := range due {
		res, err := uc.SettleOne(ctx, a.ID)
		if err != nil {
			report.Errors = append(report.Errors, SettlementError{AuctionID: a.ID, Stage: StageSettle, Err: err})
			continue
		}
		if !res.Settled {
			continue
		}
		report.EndedCount++
		if res.NotifyErr != nil {
			report.Errors = append(report.Errors, SettlementError{AuctionID: a.ID, Stage: StageNotify, Err: res.NotifyErr})
		}
	}

	log.Info("Sweep finished",
		zap.Int("due", len(due)),
		zap.Int("ended", report.EndedCount),
		zap.Int("errors", len(report.Errors)),
	)
	return report, nil
}

// SettleOne settles a single auction if it is ACTIVE and expired, and is a
// no-op otherwise. The status is re-checked under the row lock, so of two
// concurrent settlements only one does anything.
func (uc *SweepUseCase) SettleOne(ctx context.Context, auctionID uuid.UUID) (*SettlementResult, error) {
	res := &SettlementResult{}
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		auction, err := uc.auctions.GetForUpdate(ctx, auctionID)
		if err != nil {
			return err
		}
		res.Auction = auction

		now := uc.now()
		if auction.Status != domain.StatusActive || !auction.IsExpired(now) {
			return nil
		}

		ledger, err := uc.bids.ListByAuction(ctx, auctionID)
		if err != nil {
			return fmt.Errorf("list bids: %w", err)
		}
		outcome := domain.Resolve(auction, ledger)
		if err := auction.Settle(outcome, now); err != nil {
			return err
		}

		update := domain.StatusUpdate{Status: domain.StatusEnded}
		if won, ok := outcome.(domain.Won); ok {
			update.WinnerID = &won.WinnerID
			update.CurrentPrice = &won.FinalPrice
		}
		if err := uc.auctions.UpdateStatus(ctx, auctionID, update); err != nil {
			if errors.Is(err, domain.ErrAlreadySettled) {
				return nil
			}
			return err
		}
		res.Outcome = outcome
		res.Settled = true
		return nil
	})
	if err != nil {
		if !domain.IsRejection(err) {
			log.Error("SweepUseCase: settlement failed",
				zap.String("auctionID", auctionID.String()),
				zap.Error(err),
			)
		}
		return nil, fmt.Errorf("settle auction %s: %w", auctionID, err)
	}
	if !res.Settled {
		return res, nil
	}

	log.Info("Auction settled",
		zap.String("auctionID", auctionID.String()),
		zap.String("outcome", fmt.Sprintf("%T", res.Outcome)),
		zap.String("finalPrice", res.Auction.CurrentPrice.String()),
	)

	res.NotifyErr = uc.notifier.DispatchWithin(ctx, settlementEvents(res.Auction, res.Outcome)...)
	uc.publisher.PublishAuctionUpdate(res.Auction, nil)
	return res, nil
}

// RunPeriodic sweeps every interval until ctx is done.
func (uc *SweepUseCase) RunPeriodic(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info("Periodic sweeper started", zap.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			log.Info("Periodic sweeper stopped")
			return
		case <-ticker.C:
			if _, err := uc.SweepExpired(ctx); err != nil {
				log.Error("Periodic sweep failed", zap.Error(err))
			}
		}
	}
}

func settlementEvents(a *domain.Auction, outcome domain.Outcome) []notifdomain.Event {
	switch o := outcome.(type) {
	case domain.Won:
		winner := o.WinnerID
		return []notifdomain.Event{
			notifdomain.AuctionWon{
				WinnerID:   winner,
				AuctionID:  a.ID,
				Title:      a.Title,
				FinalPrice: o.FinalPrice,
			},
			notifdomain.AuctionEnded{
				SellerID:   a.SellerID,
				AuctionID:  a.ID,
				Title:      a.Title,
				WinnerID:   &winner,
				FinalPrice: o.FinalPrice,
			},
		}
	case domain.Unsold:
		return []notifdomain.Event{notifdomain.AuctionEnded{
			SellerID:  a.SellerID,
			AuctionID: a.ID,
			Title:     a.Title,
		}}
	}
	return nil
}
