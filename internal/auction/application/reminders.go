package application

import (
	"context"
	"fmt"
	"time"

	"github.com/cristianortiz/bidmaster/internal/auction/domain"
	notifdomain "github.com/cristianortiz/bidmaster/internal/notification/domain"
	"go.uber.org/zap"
)

type ReminderReport struct {
	Sent   map[time.Duration]int
	Errors []SettlementError
}

// Total is the number of reminders sent across every horizon.
func (r *ReminderReport) Total() int {
	n := 0
	for _, c := range r.Sent {
		n += c
	}
	return n
}

// ReminderUseCase tells the current highest bidder of an auction that it ends
// in about one of the configured horizons. Auctions are picked when their end
// time falls within window of now+horizon; the ledger keeps a trigger that
// fires more often than 2*window from sending the same reminder twice.
type ReminderUseCase struct {
	auctions domain.AuctionRepository
	bids     domain.BidRepository
	ledger   domain.ReminderLedger
	notifier Notifier
	horizons []time.Duration
	window   time.Duration
	now      func() time.Time
}

func NewReminderUseCase(auctions domain.AuctionRepository, bids domain.BidRepository, ledger domain.ReminderLedger,
	notifier Notifier, horizons []time.Duration, window time.Duration) *ReminderUseCase {

	return &ReminderUseCase{
		auctions: auctions,
		bids:     bids,
		ledger:   ledger,
		notifier: notifier,
		horizons: horizons,
		window:   window,
		now:      utcNow,
	}
}

func (uc *ReminderUseCase) SendEndingReminders(ctx context.Context) (*ReminderReport, error) {
	now := uc.now()
	report := &ReminderReport{Sent: make(map[time.Duration]int, len(uc.horizons))}

	for _, h := range uc.horizons {
		target := now.Add(h)
		ending, err := uc.auctions.FindActiveEndingBetween(ctx, target.Add(-uc.window), target.Add(uc.window))
		if err != nil {
			log.Error("ReminderUseCase: failed to select ending auctions",
				zap.Duration("horizon", h), zap.Error(err))
			return nil, fmt.Errorf("reminders: select auctions ending in %s: %w", h, err)
		}
		report.Sent[h] = 0

		for _, a := range ending {
			sent, err := uc.remind(ctx, a, h, now)
			if err != nil {
				report.Errors = append(report.Errors, SettlementError{AuctionID: a.ID, Stage: StageRemind, Err: err})
				continue
			}
			if sent {
				report.Sent[h]++
			}
		}
	}

	log.Info("Ending reminders sent",
		zap.Int("total", report.Total()),
		zap.Int("errors", len(report.Errors)),
	)
	return report, nil
}

func (uc *ReminderUseCase) remind(ctx context.Context, a *domain.Auction, horizon time.Duration, now time.Time) (bool, error) {
	top, err := uc.bids.HighestBid(ctx, a.ID)
	if err != nil {
		return false, fmt.Errorf("load highest bid: %w", err)
	}
	if top == nil {
		return false, nil
	}

	marked := false
	if uc.ledger != nil {
		ttl := a.EndTime.Sub(now) + uc.window
		first, err := uc.ledger.MarkSent(ctx, a.ID, horizon, ttl)
		switch {
		case err != nil:
			// a duplicate reminder is better than a missing one
			log.Warn("Reminder ledger unavailable, sending anyway",
				zap.String("auctionID", a.ID.String()), zap.Error(err))
		case !first:
			return false, nil
		default:
			marked = true
		}
	}

	err = uc.notifier.Dispatch(ctx, notifdomain.EndingSoon{
		BidderID:     top.BidderID,
		AuctionID:    a.ID,
		Title:        a.Title,
		CurrentPrice: a.CurrentPrice,
		Horizon:      horizon,
		EndTime:      a.EndTime,
	})
	if err != nil {
		if marked {
			if relErr := uc.ledger.Release(ctx, a.ID, horizon); relErr != nil {
				log.Warn("Failed to release reminder after dispatch failure",
					zap.String("auctionID", a.ID.String()),
					zap.Duration("horizon", horizon),
					zap.Error(relErr))
			}
		}
		return false, err
	}
	return true, nil
}
