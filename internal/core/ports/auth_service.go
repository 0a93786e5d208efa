package ports

import (
	"context"
	"time"

	"github.com/abhicism/dailyplanner/internal/core/domain"
)

// PasswordHasher produces salted one-way digests and verifies plaintext against them.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
}

// TokenService issues and verifies signed bearer tokens bound to a subject.
type TokenService interface {
	Issue(subject string) (token string, expiresAt time.Time, err error)
	// Verify returns the token subject, or an error wrapping domain.ErrInvalidToken.
	Verify(token string) (string, error)
}

// SessionResolver turns a bearer token into the user it was issued to.
type SessionResolver interface {
	// Resolve returns domain.ErrUnauthorized for bad tokens and unknown subjects.
	Resolve(ctx context.Context, token string) (*domain.User, error)
}

// AccessToken is the result of a successful login.
type AccessToken struct {
	Token     string
	ExpiresAt time.Time
}

// AuthService handles account registration and login.
type AuthService interface {
	Register(ctx context.Context, username, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*AccessToken, error)
}
