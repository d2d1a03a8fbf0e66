package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/cristianortiz/bidmaster/internal/notification/domain"
	"github.com/cristianortiz/bidmaster/internal/shared/db"
	"github.com/cristianortiz/bidmaster/internal/shared/db/dbtest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationRepository_Create(t *testing.T) {
	pool := dbtest.NewPostgres(t)
	repo := NewNotificationRepository(pool)
	ctx := context.Background()
	user := dbtest.SeedUser(t, pool, "bidder")

	tests := []struct {
		name     string
		link     string
		wantLink *string
	}{
		{"with link", "/auctions/42", ptr("/auctions/42")},
		{"empty link stored as null", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &domain.Notification{
				ID:        uuid.New(),
				UserID:    user,
				Type:      domain.TypeBidOutbid,
				Message:   "You have been outbid",
				Link:      tt.link,
				CreatedAt: time.Now().UTC(),
			}
			require.NoError(t, repo.Create(ctx, n))

			var (
				typ  string
				link *string
				read bool
			)
			err := pool.QueryRow(ctx, `SELECT type, link, read FROM notifications WHERE id = $1`, n.ID).Scan(&typ, &link, &read)
			require.NoError(t, err)
			assert.Equal(t, string(domain.TypeBidOutbid), typ)
			assert.Equal(t, tt.wantLink, link)
			assert.False(t, read)
		})
	}
}

func TestNotificationRepository_CreateRollsBackWithTx(t *testing.T) {
	pool := dbtest.NewPostgres(t)
	repo := NewNotificationRepository(pool)
	user := dbtest.SeedUser(t, pool, "bidder")
	n := &domain.Notification{ID: uuid.New(), UserID: user, Type: domain.TypeAuctionWon, Message: "won", CreatedAt: time.Now().UTC()}

	err := db.NewTxManager(pool).WithinTx(context.Background(), func(ctx context.Context) error {
		require.NoError(t, repo.Create(ctx, n))
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	var count int
	require.NoError(t, pool.QueryRow(context.Background(), `SELECT COUNT(*) FROM notifications WHERE id = $1`, n.ID).Scan(&count))
	assert.Zero(t, count)
}

func TestNotificationRepository_UnknownUser(t *testing.T) {
	pool := dbtest.NewPostgres(t)
	repo := NewNotificationRepository(pool)

	err := repo.Create(context.Background(), &domain.Notification{
		ID: uuid.New(), UserID: uuid.New(), Type: domain.TypeBidPlaced, Message: "placed", CreatedAt: time.Now().UTC(),
	})
	require.Error(t, err)
}

func ptr(s string) *string { return &s }
