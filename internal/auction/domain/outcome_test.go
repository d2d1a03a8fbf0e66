package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_NoBids(t *testing.T) {
	a := newTestAuction(t, "10", time.Now().Add(-time.Minute))
	assert.Equal(t, Unsold{}, Resolve(a, nil))
}

func TestResolve_HighestWins(t *testing.T) {
	a := newTestAuction(t, "10", time.Now())
	t0 := time.Now().Add(-time.Hour)
	bidderA, bidderB := uuid.New(), uuid.New()

	bids := []*Bid{
		NewBid(uuid.New(), a.ID, bidderA, decimal.NewFromInt(30), t0),
		NewBid(uuid.New(), a.ID, bidderB, decimal.NewFromInt(45), t0.Add(time.Minute)),
	}

	won, ok := Resolve(a, bids).(Won)
	require.True(t, ok)
	assert.Equal(t, bidderB, won.WinnerID)
	assert.True(t, won.FinalPrice.Equal(decimal.NewFromInt(45)))
	assert.Equal(t, bids[1].ID, won.BidID)
}

func TestResolve_TieGoesToEarliest(t *testing.T) {
	a := newTestAuction(t, "10", time.Now())
	t0 := time.Now().Add(-time.Hour)
	early, late := uuid.New(), uuid.New()

	bids := []*Bid{
		NewBid(uuid.New(), a.ID, late, decimal.NewFromInt(45), t0.Add(time.Second)),
		NewBid(uuid.New(), a.ID, early, decimal.NewFromInt(45), t0),
	}

	won := Resolve(a, bids).(Won)
	assert.Equal(t, early, won.WinnerID)
}

func TestResolve_IgnoresForeignBids(t *testing.T) {
	a := newTestAuction(t, "10", time.Now())
	other := NewBid(uuid.New(), uuid.New(), uuid.New(), decimal.NewFromInt(99), time.Now())
	assert.Equal(t, Unsold{}, Resolve(a, []*Bid{other}))
}

func TestResolve_Deterministic(t *testing.T) {
	a := newTestAuction(t, "10", time.Now())
	t0 := time.Now()
	var bids []*Bid
	for i := 0; i < 20; i++ {
		bids = append(bids, NewBid(uuid.New(), a.ID, uuid.New(), decimal.NewFromInt(int64(i%7)+11), t0))
	}
	first := Resolve(a, bids)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Resolve(a, bids))
	}
}

func TestRankBids_DoesNotMutateInput(t *testing.T) {
	t0 := time.Now()
	id := uuid.New()
	bids := []*Bid{
		NewBid(uuid.New(), id, uuid.New(), decimal.NewFromInt(1), t0),
		NewBid(uuid.New(), id, uuid.New(), decimal.NewFromInt(3), t0),
		NewBid(uuid.New(), id, uuid.New(), decimal.NewFromInt(2), t0),
	}
	orig := append([]*Bid(nil), bids...)

	ranked := RankBids(bids)
	assert.Equal(t, orig, bids)
	require.Len(t, ranked, 3)
	assert.True(t, ranked[0].Amount.Equal(decimal.NewFromInt(3)))
	assert.True(t, ranked[2].Amount.Equal(decimal.NewFromInt(1)))
}
