package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cristianortiz/bidmaster/internal/auction/domain"
	"github.com/cristianortiz/bidmaster/internal/shared/db"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const auctionColumns = `id, seller_id, title, category, condition, starting_price, current_price, buy_now_price,
        start_time, end_time, status, winner_id, created_at, updated_at`

// AuctionRepository implements domain.AuctionRepository interface
type AuctionRepository struct {
	pool *pgxpool.Pool
}

// NewAuctionRepository creates a new instance of AuctionRepository
func NewAuctionRepository(pool *pgxpool.Pool) *AuctionRepository {
	return &AuctionRepository{pool: pool}
}

func (r *AuctionRepository) Create(ctx context.Context, a *domain.Auction) error {
	query := `
        INSERT INTO auctions (` + auctionColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
    `
	_, err := db.Conn(ctx, r.pool).Exec(ctx, query,
		a.ID,
		a.SellerID,
		a.Title,
		a.Category,
		a.Condition,
		a.StartingPrice,
		a.CurrentPrice,
		a.BuyNowPrice,
		a.StartTime,
		a.EndTime,
		a.Status,
		a.WinnerID,
		a.CreatedAt,
		a.UpdatedAt,
	)
	return err
}

func (r *AuctionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Auction, error) {
	query := `SELECT ` + auctionColumns + ` FROM auctions WHERE id = $1`
	return scanAuction(db.Conn(ctx, r.pool).QueryRow(ctx, query, id))
}

// GetForUpdate must run inside a transaction; the row lock is held until it ends.
func (r *AuctionRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Auction, error) {
	if !db.InTx(ctx) {
		return nil, errors.New("auction repository: GetForUpdate called outside a transaction")
	}
	query := `SELECT ` + auctionColumns + ` FROM auctions WHERE id = $1 FOR UPDATE`
	return scanAuction(db.Conn(ctx, r.pool).QueryRow(ctx, query, id))
}

func (r *AuctionRepository) FindActivePastEndTime(ctx context.Context, now time.Time) ([]*domain.Auction, error) {
	query := `
        SELECT ` + auctionColumns + `
        FROM auctions
        WHERE status = $1 AND end_time <= $2
        ORDER BY end_time ASC
    `
	return r.queryAuctions(ctx, query, domain.StatusActive, now)
}

func (r *AuctionRepository) FindActiveEndingBetween(ctx context.Context, from, to time.Time) ([]*domain.Auction, error) {
	query := `
        SELECT ` + auctionColumns + `
        FROM auctions
        WHERE status = $1 AND end_time >= $2 AND end_time <= $3
        ORDER BY end_time ASC
    `
	return r.queryAuctions(ctx, query, domain.StatusActive, from, to)
}

// UpdateStatus is a compare-and-set on status = ACTIVE.
func (r *AuctionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, update domain.StatusUpdate) error {
	query := `
        UPDATE auctions
        SET status = $2,
            winner_id = COALESCE($3, winner_id),
            current_price = COALESCE($4, current_price),
            updated_at = NOW()
        WHERE id = $1 AND status = $5
    `
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, query, id, update.Status, update.WinnerID, update.CurrentPrice, domain.StatusActive)
	if err != nil {
		return fmt.Errorf("update auction %s status: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAlreadySettled
	}
	return nil
}

// UpdateCurrentPrice is a compare-and-set on a strictly lower stored price.
func (r *AuctionRepository) UpdateCurrentPrice(ctx context.Context, id uuid.UUID, price decimal.Decimal) error {
	query := `
        UPDATE auctions
        SET current_price = $2, updated_at = NOW()
        WHERE id = $1 AND status = $3 AND current_price < $2
    `
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, query, id, price, domain.StatusActive)
	if err != nil {
		return fmt.Errorf("update auction %s price: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBidTooLow
	}
	return nil
}

func (r *AuctionRepository) queryAuctions(ctx context.Context, query string, args ...any) ([]*domain.Auction, error) {
	rows, err := db.Conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var auctions []*domain.Auction
	for rows.Next() {
		a, err := scanAuction(rows)
		if err != nil {
			return nil, err
		}
		auctions = append(auctions, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return auctions, nil
}

func scanAuction(row pgx.Row) (*domain.Auction, error) {
	a := &domain.Auction{}
	var buyNow decimal.NullDecimal
	var winnerID *uuid.UUID // pointer to handle NULL

	err := row.Scan(
		&a.ID,
		&a.SellerID,
		&a.Title,
		&a.Category,
		&a.Condition,
		&a.StartingPrice,
		&a.CurrentPrice,
		&buyNow,
		&a.StartTime,
		&a.EndTime,
		&a.Status,
		&winnerID,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAuctionNotFound
		}
		return nil, err
	}

	if buyNow.Valid {
		price := buyNow.Decimal
		a.BuyNowPrice = &price
	}
	a.WinnerID = winnerID
	return a, nil
}
