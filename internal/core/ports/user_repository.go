package ports

import (
	"context"

	"github.com/abhicism/dailyplanner/internal/core/domain"
)

// UserRepository is the credential store.
type UserRepository interface {
	// Create persists a new user and returns it with its store-assigned ID.
	// Returns domain.ErrUserExists when the username is taken; the check is
	// enforced by the store's unique key, not by a prior lookup.
	Create(ctx context.Context, username, passwordHash string) (*domain.User, error)
	// FindByUsername returns domain.ErrUserNotFound when no user matches.
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
}
