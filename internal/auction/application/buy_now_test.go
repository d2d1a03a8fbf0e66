package application

import (
	"context"
	"testing"
	"time"

	"github.com/cristianortiz/bidmaster/internal/auction/domain"
	notifdomain "github.com/cristianortiz/bidmaster/internal/notification/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuyNow_EndsAuction(t *testing.T) {
	e := newTestEnv(t)
	price := usd(100)
	a := e.seed(t, 10, &price, time.Hour)
	leader, buyer := uuid.New(), uuid.New()
	e.bid(t, a.ID, leader, 40)

	res, err := e.buyNow.Execute(context.Background(), BuyNowDTO{AuctionID: a.ID, BuyerID: buyer})
	require.NoError(t, err)
	assert.True(t, res.Bid.Amount.Equal(price))

	got := e.load(t, a.ID)
	assert.Equal(t, domain.StatusEnded, got.Status)
	require.NotNil(t, got.WinnerID)
	assert.Equal(t, buyer, *got.WinnerID)
	assert.True(t, got.CurrentPrice.Equal(price))

	bids, err := e.store.ListByAuction(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Len(t, bids, 2)

	events := e.notifier.Events()
	won := eventsOf[notifdomain.AuctionWon](events)
	require.Len(t, won, 1)
	assert.True(t, won[0].BoughtNow)
	outbid := eventsOf[notifdomain.Outbid](events)
	require.Len(t, outbid, 1)
	assert.Equal(t, leader, outbid[0].UserID)
	assert.True(t, outbid[0].BoughtNow)
	assert.Len(t, eventsOf[notifdomain.AuctionEnded](events), 1)

	// a later sweep must not settle it again
	e.clock.Advance(2 * time.Hour)
	report, err := e.sweep.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.EndedCount)
}

func TestBuyNow_Rejections(t *testing.T) {
	e := newTestEnv(t)
	price := usd(30)
	noBuyNow := e.seed(t, 10, nil, time.Hour)
	overtaken := e.seed(t, 10, &price, time.Hour)
	e.bid(t, overtaken.ID, uuid.New(), 35)

	_, err := e.buyNow.Execute(context.Background(), BuyNowDTO{AuctionID: noBuyNow.ID, BuyerID: uuid.New()})
	require.ErrorIs(t, err, domain.ErrBuyNowUnavailable)

	_, err = e.buyNow.Execute(context.Background(), BuyNowDTO{AuctionID: overtaken.ID, BuyerID: uuid.New()})
	require.ErrorIs(t, err, domain.ErrBuyNowUnavailable)

	_, err = e.buyNow.Execute(context.Background(), BuyNowDTO{AuctionID: overtaken.ID, BuyerID: overtaken.SellerID})
	require.ErrorIs(t, err, domain.ErrSelfBid)

	assert.Equal(t, domain.StatusActive, e.load(t, overtaken.ID).Status)
}
