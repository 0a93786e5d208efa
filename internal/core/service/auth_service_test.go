package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/abhicism/dailyplanner/internal/core/domain"
)

type stubUserRepo struct {
	users     map[string]*domain.User
	nextID    int64
	findErr   error
	createErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, username, passwordHash string) (*domain.User, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	if _, exists := r.users[username]; exists {
		return nil, domain.ErrUserExists
	}
	r.nextID++
	u := &domain.User{ID: r.nextID, Username: username, PasswordHash: passwordHash, CreatedAt: time.Now().UTC()}
	r.users[username] = u
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

type stubThrottle struct {
	blocked    bool
	blockedErr error
	failures   map[string]int
	resets     []string
}

func newStubThrottle() *stubThrottle {
	return &stubThrottle{failures: make(map[string]int)}
}

func (t *stubThrottle) Blocked(_ context.Context, _ string) (bool, error) {
	return t.blocked, t.blockedErr
}

func (t *stubThrottle) RecordFailure(_ context.Context, username string) error {
	t.failures[username]++
	return nil
}

func (t *stubThrottle) Reset(_ context.Context, username string) error {
	t.resets = append(t.resets, username)
	return nil
}

const testSecret = "test-secret"

func newTestAuthService(repo *stubUserRepo, throttle LoginThrottle) *AuthService {
	return NewAuthService(
		repo,
		NewBcryptHasher(bcrypt.MinCost),
		NewJWTService(testSecret, time.Hour),
		throttle,
		0,
		zerolog.Nop(),
	)
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo, nil)

	user, err := svc.Register(context.Background(), "alice", "pass123")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user == nil || user.ID == 0 {
		t.Fatalf("expected user with store-assigned id, got %+v", user)
	}
	if user.PasswordHash == "pass123" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pass123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo(), nil)

	cases := []struct {
		name     string
		username string
		password string
		want     error
	}{
		{"empty username", "", "pass123", domain.ErrInvalidUsername},
		{"padded username", " alice", "pass123", domain.ErrInvalidUsername},
		{"long username", strings.Repeat("u", MaxUsernameLength+1), "pass123", domain.ErrInvalidUsername},
		{"short password", "alice", "pw", domain.ErrInvalidPassword},
		{"long password", "alice", strings.Repeat("p", MaxPasswordBytes+1), domain.ErrInvalidPassword},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Register(context.Background(), tc.username, tc.password); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo(), nil)

	if _, err := svc.Register(context.Background(), "bob", "pw123"); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, err := svc.Register(context.Background(), "bob", "other-pass"); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_Register_StoreError(t *testing.T) {
	repo := newStubUserRepo()
	repo.createErr = errors.New("disk full")
	svc := newTestAuthService(repo, nil)

	_, err := svc.Register(context.Background(), "bob", "pw123")
	if err == nil || errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	throttle := newStubThrottle()
	svc := newTestAuthService(newStubUserRepo(), throttle)

	if _, err := svc.Register(context.Background(), "carol", "s3cret"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	tok, err := svc.Login(context.Background(), "carol", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if tok.Token == "" {
		t.Fatalf("expected token, got empty")
	}
	if until := time.Until(tok.ExpiresAt); until <= 0 || until > time.Hour {
		t.Fatalf("unexpected expiry: %v", tok.ExpiresAt)
	}

	subject, err := NewJWTService(testSecret, time.Hour).Verify(tok.Token)
	if err != nil {
		t.Fatalf("token invalid: %v", err)
	}
	if subject != "carol" {
		t.Fatalf("expected subject carol, got %q", subject)
	}
	if len(throttle.resets) != 1 || throttle.resets[0] != "carol" {
		t.Fatalf("expected throttle reset for carol, got %v", throttle.resets)
	}
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	throttle := newStubThrottle()
	svc := newTestAuthService(newStubUserRepo(), throttle)

	_, _ = svc.Register(context.Background(), "dave", "goodpass")
	if _, err := svc.Login(context.Background(), "dave", "badpass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if throttle.failures["dave"] != 1 {
		t.Fatalf("expected one recorded failure, got %d", throttle.failures["dave"])
	}
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo(), nil)

	if _, err := svc.Login(context.Background(), "ghost", "pass123"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_EmptyCredentials(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo(), nil)

	if _, err := svc.Login(context.Background(), "", ""); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_Throttled(t *testing.T) {
	throttle := newStubThrottle()
	throttle.blocked = true
	svc := newTestAuthService(newStubUserRepo(), throttle)

	_, _ = svc.Register(context.Background(), "erin", "pass123")
	if _, err := svc.Login(context.Background(), "erin", "pass123"); !errors.Is(err, domain.ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
}

func TestAuthService_Login_ThrottleErrorIsNonFatal(t *testing.T) {
	throttle := newStubThrottle()
	throttle.blockedErr = errors.New("redis timeout")
	svc := newTestAuthService(newStubUserRepo(), throttle)

	_, _ = svc.Register(context.Background(), "frank", "pass123")
	if _, err := svc.Login(context.Background(), "frank", "pass123"); err != nil {
		t.Fatalf("expected login to proceed when throttle errors, got %v", err)
	}
}

func TestAuthService_Login_StoreError(t *testing.T) {
	repo := newStubUserRepo()
	repo.findErr = errors.New("connection reset")
	svc := newTestAuthService(repo, nil)

	_, err := svc.Login(context.Background(), "gina", "pass123")
	if err == nil || errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

type recordingMetrics struct {
	registrations []string
	logins        []string
	sessions      []string
	savedBytes    []int
}

func (m *recordingMetrics) RegistrationAttempt(result string) {
	m.registrations = append(m.registrations, result)
}
func (m *recordingMetrics) LoginAttempt(result string)    { m.logins = append(m.logins, result) }
func (m *recordingMetrics) SessionResolved(result string) { m.sessions = append(m.sessions, result) }
func (m *recordingMetrics) DayEntrySaved(n int)           { m.savedBytes = append(m.savedBytes, n) }

func TestAuthService_RecordsOutcomes(t *testing.T) {
	rec := &recordingMetrics{}
	svc := newTestAuthService(newStubUserRepo(), nil).WithMetrics(rec)
	ctx := context.Background()

	_, _ = svc.Register(ctx, "alice", "pass123")
	_, _ = svc.Register(ctx, "alice", "pass123")
	_, _ = svc.Register(ctx, "bob", "pw")
	_, _ = svc.Login(ctx, "alice", "pass123")
	_, _ = svc.Login(ctx, "alice", "wrong")
	_, _ = svc.Login(ctx, "nobody", "pass123")

	if got := strings.Join(rec.registrations, ","); got != "created,duplicate,invalid" {
		t.Fatalf("unexpected registration results: %s", got)
	}
	if got := strings.Join(rec.logins, ","); got != "success,bad_password,unknown_user" {
		t.Fatalf("unexpected login results: %s", got)
	}
}
