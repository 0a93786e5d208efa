package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/abhicism/dailyplanner/internal/core/domain"
	"github.com/abhicism/dailyplanner/internal/core/ports"
)

// SessionResolver implements ports.SessionResolver on top of a token service
// and the credential store. It never writes.
type SessionResolver struct {
	tokens  ports.TokenService
	users   ports.UserRepository
	metrics ports.Metrics
	log     zerolog.Logger
}

func NewSessionResolver(tokens ports.TokenService, users ports.UserRepository, log zerolog.Logger) *SessionResolver {
	return &SessionResolver{tokens: tokens, users: users, metrics: nopMetrics{}, log: log}
}

func (r *SessionResolver) WithMetrics(m ports.Metrics) *SessionResolver {
	r.metrics = m
	return r
}

func (r *SessionResolver) Resolve(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		r.metrics.SessionResolved("invalid_token")
		return nil, domain.ErrUnauthorized
	}

	subject, err := r.tokens.Verify(token)
	if err != nil {
		r.metrics.SessionResolved("invalid_token")
		r.log.Debug().Err(err).Msg("bearer token rejected")
		return nil, fmt.Errorf("%w: %w", domain.ErrUnauthorized, err)
	}

	// The account may be gone even though the token is still valid.
	user, err := r.users.FindByUsername(ctx, subject)
	if errors.Is(err, domain.ErrUserNotFound) {
		r.metrics.SessionResolved("unknown_user")
		return nil, fmt.Errorf("%w: unknown subject", domain.ErrUnauthorized)
	}
	if err != nil {
		r.metrics.SessionResolved("error")
		return nil, fmt.Errorf("resolve session: %w", err)
	}

	r.metrics.SessionResolved("ok")
	return user, nil
}
