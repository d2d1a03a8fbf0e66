package postgres

import (
	"context"
	"fmt"

	"github.com/cristianortiz/bidmaster/internal/notification/domain"
	"github.com/cristianortiz/bidmaster/internal/shared/db"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NotificationRepository implements domain.NotificationStore interface
type NotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	query := `
        INSERT INTO notifications (id, user_id, type, message, link, read, created_at)
        VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7)
    `
	_, err := db.Conn(ctx, r.pool).Exec(ctx, query,
		n.ID,
		n.UserID,
		n.Type,
		n.Message,
		n.Link,
		n.Read,
		n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification for user %s: %w", n.UserID, err)
	}
	return nil
}
