package ports

import (
	"context"

	"github.com/abhicism/dailyplanner/internal/core/domain"
)

// DayEntryRepository persists one opaque payload per (user, date key).
type DayEntryRepository interface {
	// Upsert atomically creates the entry or replaces the payload of the
	// existing one for the same (userID, dateKey).
	Upsert(ctx context.Context, userID int64, dateKey, payload string) error
	// Get returns domain.ErrDayEntryNotFound when nothing was saved for dateKey.
	Get(ctx context.Context, userID int64, dateKey string) (*domain.DayEntry, error)
	// ListByUser returns the user's entries in insertion order.
	ListByUser(ctx context.Context, userID int64) ([]domain.DayEntry, error)
}
