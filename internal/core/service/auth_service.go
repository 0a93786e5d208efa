package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/abhicism/dailyplanner/internal/core/domain"
	"github.com/abhicism/dailyplanner/internal/core/ports"
)

const (
	DefaultMinPasswordLength = 5
	MaxUsernameLength        = 64
)

// LoginThrottle abstracts the failed-login counter (Redis).
type LoginThrottle interface {
	Blocked(ctx context.Context, username string) (bool, error)
	RecordFailure(ctx context.Context, username string) error
	Reset(ctx context.Context, username string) error
}

type nopThrottle struct{}

func (nopThrottle) Blocked(context.Context, string) (bool, error) { return false, nil }
func (nopThrottle) RecordFailure(context.Context, string) error   { return nil }
func (nopThrottle) Reset(context.Context, string) error           { return nil }

type nopMetrics struct{}

func (nopMetrics) RegistrationAttempt(string) {}
func (nopMetrics) LoginAttempt(string)        {}
func (nopMetrics) SessionResolved(string)     {}
func (nopMetrics) DayEntrySaved(int)          {}

// AuthService implements registration and login.
type AuthService struct {
	repo        ports.UserRepository
	hasher      ports.PasswordHasher
	tokens      ports.TokenService
	throttle    LoginThrottle
	minPassword int
	metrics     ports.Metrics
	log         zerolog.Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService wires the credential store, hasher and token service.
// A nil throttle disables login throttling.
func NewAuthService(
	repo ports.UserRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenService,
	throttle LoginThrottle,
	minPassword int,
	log zerolog.Logger,
) *AuthService {
	if throttle == nil {
		throttle = nopThrottle{}
	}
	if minPassword <= 0 {
		minPassword = DefaultMinPasswordLength
	}
	return &AuthService{
		repo:        repo,
		hasher:      hasher,
		tokens:      tokens,
		throttle:    throttle,
		minPassword: minPassword,
		metrics:     nopMetrics{},
		log:         log,
	}
}

// WithMetrics sets the recorder for registration and login outcomes.
func (s *AuthService) WithMetrics(m ports.Metrics) *AuthService {
	s.metrics = m
	return s
}

func (s *AuthService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	if err := validateUsername(username); err != nil {
		s.metrics.RegistrationAttempt("invalid")
		return nil, err
	}
	if len(password) < s.minPassword || len(password) > MaxPasswordBytes {
		s.metrics.RegistrationAttempt("invalid")
		return nil, domain.ErrInvalidPassword
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.metrics.RegistrationAttempt("error")
		return nil, err
	}

	user, err := s.repo.Create(ctx, username, hash)
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			s.metrics.RegistrationAttempt("duplicate")
			return nil, domain.ErrUserExists
		}
		s.metrics.RegistrationAttempt("error")
		return nil, fmt.Errorf("register: %w", err)
	}

	s.metrics.RegistrationAttempt("created")
	s.log.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("user registered")
	return user, nil
}

// Login checks the credentials and issues an access token. Unknown usernames
// and wrong passwords both yield domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.AccessToken, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	blocked, err := s.throttle.Blocked(ctx, username)
	if err != nil {
		s.log.Warn().Err(err).Str("username", username).Msg("login throttle check failed, continuing")
	} else if blocked {
		s.metrics.LoginAttempt("throttled")
		return nil, domain.ErrTooManyAttempts
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if errors.Is(err, domain.ErrUserNotFound) {
		// Spend the same bcrypt work as a real comparison.
		s.hasher.Verify(password, s.dummyDigest())
		s.recordFailure(ctx, username, "unknown_user")
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		s.metrics.LoginAttempt("error")
		return nil, fmt.Errorf("login: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.recordFailure(ctx, username, "bad_password")
		return nil, domain.ErrInvalidCredentials
	}

	if err := s.throttle.Reset(ctx, username); err != nil {
		s.log.Warn().Err(err).Str("username", username).Msg("failed to reset login throttle")
	}

	token, expiresAt, err := s.tokens.Issue(user.Username)
	if err != nil {
		s.metrics.LoginAttempt("error")
		return nil, fmt.Errorf("login: %w", err)
	}

	s.metrics.LoginAttempt("success")
	s.log.Info().Int64("user_id", user.ID).Msg("user logged in")
	return &ports.AccessToken{Token: token, ExpiresAt: expiresAt}, nil
}

func (s *AuthService) recordFailure(ctx context.Context, username, reason string) {
	s.metrics.LoginAttempt(reason)
	if err := s.throttle.RecordFailure(ctx, username); err != nil {
		s.log.Warn().Err(err).Str("username", username).Msg("failed to record login failure")
	}
}

func (s *AuthService) dummyDigest() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("dailyplanner-no-such-user")
		if err != nil {
			s.log.Warn().Err(err).Msg("failed to build dummy password hash")
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

func validateUsername(username string) error {
	if username == "" || strings.TrimSpace(username) != username {
		return domain.ErrInvalidUsername
	}
	if utf8.RuneCountInString(username) > MaxUsernameLength {
		return domain.ErrInvalidUsername
	}
	return nil
}
