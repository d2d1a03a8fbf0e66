package memory

import (
	"context"
	"sync"

	"github.com/cristianortiz/bidmaster/internal/notification/domain"
	"github.com/google/uuid"
)

// NotificationRepository keeps notifications in memory, in creation order.
type NotificationRepository struct {
	mu            sync.RWMutex
	notifications []domain.Notification
}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{}
}

func (r *NotificationRepository) Create(_ context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, *n)
	return nil
}

// ListByUser returns the notifications of one user, oldest first.
func (r *NotificationRepository) ListByUser(userID uuid.UUID) []domain.Notification {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Notification
	for _, n := range r.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

func (r *NotificationRepository) All() []domain.Notification {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.Notification(nil), r.notifications...)
}
