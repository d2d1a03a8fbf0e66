package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cristianortiz/bidmaster/internal/auction/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedAuction(t *testing.T, s *Store, end time.Time) *domain.Auction {
	t.Helper()
	a, err := domain.NewAuction(uuid.New(), "Desk lamp", "home", "good",
		decimal.NewFromInt(10), nil, end.Add(-24*time.Hour), end)
	require.NoError(t, err)
	require.NoError(t, s.Create(context.Background(), a))
	return a
}

func TestStore_GetByID_NotFound(t *testing.T) {
	_, err := NewStore().GetByID(context.Background(), uuid.New())
	require.ErrorIs(t, err, domain.ErrAuctionNotFound)
}

func TestStore_ReturnsCopies(t *testing.T) {
	s := NewStore()
	a := seedAuction(t, s, time.Now().Add(time.Hour))

	got, err := s.GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	got.Status = domain.StatusCancelled

	again, err := s.GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, again.Status)
}

func TestStore_GetForUpdateRequiresTx(t *testing.T) {
	s := NewStore()
	a := seedAuction(t, s, time.Now().Add(time.Hour))

	_, err := s.GetForUpdate(context.Background(), a.ID)
	require.Error(t, err)

	err = s.WithinTx(context.Background(), func(ctx context.Context) error {
		_, err := s.GetForUpdate(ctx, a.ID)
		return err
	})
	require.NoError(t, err)
}

func TestStore_RollbackOnError(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	a := seedAuction(t, s, time.Now().Add(time.Hour))
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(ctx context.Context) error {
		bid := domain.NewBid(uuid.New(), a.ID, uuid.New(), decimal.NewFromInt(20), time.Now())
		require.NoError(t, s.Insert(ctx, bid))
		require.NoError(t, s.UpdateCurrentPrice(ctx, a.ID, bid.Amount))
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, got.CurrentPrice.Equal(decimal.NewFromInt(10)))

	bids, err := s.ListByAuction(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, bids)
}

func TestStore_UpdateStatusIsCompareAndSet(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	a := seedAuction(t, s, time.Now().Add(-time.Minute))
	winner := uuid.New()
	price := decimal.NewFromInt(30)

	require.NoError(t, s.UpdateStatus(ctx, a.ID, domain.StatusUpdate{Status: domain.StatusEnded, WinnerID: &winner, CurrentPrice: &price}))
	err := s.UpdateStatus(ctx, a.ID, domain.StatusUpdate{Status: domain.StatusEnded})
	require.ErrorIs(t, err, domain.ErrAlreadySettled)

	got, _ := s.GetByID(ctx, a.ID)
	assert.Equal(t, domain.StatusEnded, got.Status)
	assert.Equal(t, winner, *got.WinnerID)
	assert.True(t, got.CurrentPrice.Equal(price))
}

func TestStore_UpdateCurrentPriceOnlyRaises(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	a := seedAuction(t, s, time.Now().Add(time.Hour))

	require.ErrorIs(t, s.UpdateCurrentPrice(ctx, a.ID, decimal.NewFromInt(10)), domain.ErrBidTooLow)
	require.NoError(t, s.UpdateCurrentPrice(ctx, a.ID, decimal.NewFromInt(11)))
	require.ErrorIs(t, s.UpdateCurrentPrice(ctx, a.ID, decimal.NewFromInt(11)), domain.ErrBidTooLow)
}

func TestStore_FindQueries(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	now := time.Now()

	expired := seedAuction(t, s, now.Add(-time.Minute))
	atNow := seedAuction(t, s, now)
	soon := seedAuction(t, s, now.Add(time.Hour))
	seedAuction(t, s, now.Add(48*time.Hour))

	ended := seedAuction(t, s, now.Add(-time.Hour))
	require.NoError(t, s.UpdateStatus(ctx, ended.ID, domain.StatusUpdate{Status: domain.StatusEnded}))

	past, err := s.FindActivePastEndTime(ctx, now)
	require.NoError(t, err)
	require.Len(t, past, 2)
	assert.Equal(t, expired.ID, past[0].ID)
	assert.Equal(t, atNow.ID, past[1].ID)

	window, err := s.FindActiveEndingBetween(ctx, now.Add(55*time.Minute), now.Add(65*time.Minute))
	require.NoError(t, err)
	require.Len(t, window, 1)
	assert.Equal(t, soon.ID, window[0].ID)
}

func TestStore_ListByAuctionIsRanked(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	a := seedAuction(t, s, time.Now().Add(time.Hour))
	t0 := time.Now()

	for i, amount := range []int64{12, 30, 30, 20} {
		bid := domain.NewBid(uuid.New(), a.ID, uuid.New(), decimal.NewFromInt(amount), t0.Add(time.Duration(i)*time.Second))
		require.NoError(t, s.Insert(ctx, bid))
	}

	bids, err := s.ListByAuction(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, bids, 4)
	assert.True(t, bids[0].Amount.Equal(decimal.NewFromInt(30)))
	assert.True(t, bids[0].CreatedAt.Before(bids[1].CreatedAt))
	assert.True(t, bids[3].Amount.Equal(decimal.NewFromInt(12)))

	top, err := s.HighestBid(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, bids[0].ID, top.ID)

	none, err := s.HighestBid(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestStore_ReadsOutsideTxSeeOnlyCommittedState(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	a := seedAuction(t, s, time.Now().Add(time.Hour))

	inserted := make(chan struct{})
	resume := make(chan struct{})
	txDone := make(chan error, 1)
	go func() {
		txDone <- s.WithinTx(ctx, func(ctx context.Context) error {
			bid := domain.NewBid(uuid.New(), a.ID, uuid.New(), decimal.NewFromInt(55), time.Now())
			if err := s.Insert(ctx, bid); err != nil {
				return err
			}
			close(inserted)
			<-resume
			return s.UpdateCurrentPrice(ctx, a.ID, bid.Amount)
		})
	}()
	<-inserted

	type view struct {
		price decimal.Decimal
		bids  int
		err   error
	}
	read := make(chan view, 1)
	go func() {
		got, err := s.GetByID(ctx, a.ID)
		if err != nil {
			read <- view{err: err}
			return
		}
		bids, err := s.ListByAuction(ctx, a.ID)
		read <- view{price: got.CurrentPrice, bids: len(bids), err: err}
	}()

	select {
	case v := <-read:
		t.Fatalf("read returned mid-transaction: price=%s bids=%d", v.price, v.bids)
	case <-time.After(50 * time.Millisecond):
	}

	close(resume)
	require.NoError(t, <-txDone)

	select {
	case v := <-read:
		require.NoError(t, v.err)
		assert.True(t, v.price.Equal(decimal.NewFromInt(55)), v.price.String())
		assert.Equal(t, 1, v.bids)
	case <-time.After(time.Second):
		t.Fatal("read did not complete after commit")
	}
}
