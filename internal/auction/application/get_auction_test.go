package application

import (
	"context"
	"testing"
	"time"

	"github.com/cristianortiz/bidmaster/internal/auction/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAuction_RankedHistory(t *testing.T) {
	e := newTestEnv(t)
	a := e.seed(t, 10, nil, time.Hour)
	e.bid(t, a.ID, uuid.New(), 15)
	e.bid(t, a.ID, uuid.New(), 25)

	dto, err := e.get.Execute(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusActive), dto.Status)
	assert.Equal(t, 2, dto.BidCount)
	require.Len(t, dto.Bids, 2)
	assert.True(t, dto.Bids[0].Amount.Equal(usd(25)))
	assert.True(t, dto.CurrentPrice.Equal(usd(25)))
}

func TestGetAuction_SettlesLazily(t *testing.T) {
	e := newTestEnv(t)
	a := e.seed(t, 10, nil, time.Hour)
	winner := uuid.New()
	e.bid(t, a.ID, winner, 15)
	e.clock.Advance(2 * time.Hour)

	dto, err := e.get.Execute(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusEnded), dto.Status)
	require.NotNil(t, dto.WinnerID)
	assert.Equal(t, winner, *dto.WinnerID)

	report, err := e.sweep.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.EndedCount)
}

func TestGetAuction_NotFound(t *testing.T) {
	e := newTestEnv(t)
	_, err := e.get.Execute(context.Background(), uuid.New())
	require.ErrorIs(t, err, domain.ErrAuctionNotFound)
}

func TestCreateAuction(t *testing.T) {
	e := newTestEnv(t)
	uc := NewCreateAuctionUseCase(e.store)
	uc.now = e.clock.Now

	a, err := uc.Execute(context.Background(), CreateAuctionDTO{
		SellerID:      uuid.New(),
		Title:         "Calculus textbook",
		StartingPrice: usd(12),
		EndTime:       e.clock.Now().Add(48 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, e.clock.Now(), a.StartTime)
	assert.Equal(t, domain.StatusActive, e.load(t, a.ID).Status)

	_, err = uc.Execute(context.Background(), CreateAuctionDTO{
		SellerID:      uuid.New(),
		Title:         "Already over",
		StartingPrice: usd(12),
		StartTime:     e.clock.Now().Add(-48 * time.Hour),
		EndTime:       e.clock.Now().Add(-time.Hour),
	})
	require.ErrorIs(t, err, domain.ErrInvalidAuction)
}
