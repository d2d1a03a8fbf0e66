package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrUserNotFound = errors.New("user not found")

// User is the part of a marketplace account the auction engine needs to
// address notifications and emails.
type User struct {
	ID    uuid.UUID
	Name  string
	Email string
}

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
}
