package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/cristianortiz/bidmaster/internal/user/domain"
	"github.com/google/uuid"
)

// UserRepository is a concurrency-safe in-memory domain.UserRepository.
type UserRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]domain.User
}

func NewUserRepository(users ...domain.User) *UserRepository {
	r := &UserRepository{users: make(map[uuid.UUID]domain.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *UserRepository) Add(u domain.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = u
}

func (r *UserRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

// ParseUsers reads a user list of "id:email:name" entries separated by
// commas. The name may itself contain colons.
func ParseUsers(raw string) ([]domain.User, error) {
	var users []domain.User
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, ":", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("user entry %q: want id:email:name", entry)
		}
		id, err := uuid.Parse(strings.TrimSpace(parts[0]))
		if err != nil {
			return nil, fmt.Errorf("user entry %q: %w", entry, err)
		}
		email := strings.TrimSpace(parts[1])
		if !strings.Contains(email, "@") {
			return nil, fmt.Errorf("user entry %q: invalid email", entry)
		}
		users = append(users, domain.User{ID: id, Email: email, Name: strings.TrimSpace(parts[2])})
	}
	return users, nil
}
