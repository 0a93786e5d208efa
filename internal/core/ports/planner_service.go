package ports

import (
	"context"
	"encoding/json"

	"github.com/abhicism/dailyplanner/internal/core/domain"
)

// PlannerService reads and writes a user's day entries. The user always comes
// from the resolved session, never from the request body.
type PlannerService interface {
	SaveDay(ctx context.Context, user *domain.User, dateKey string, payload json.RawMessage) error
	// GetDay returns nil (and no error) when nothing was saved for dateKey.
	GetDay(ctx context.Context, user *domain.User, dateKey string) (*string, error)
	History(ctx context.Context, user *domain.User) ([]domain.DayEntry, error)
}
