package domain

import "errors"

// Auth errors.
var (
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrTooManyAttempts    = errors.New("too many failed login attempts")
	ErrInvalidUsername    = errors.New("invalid username")
	ErrInvalidPassword    = errors.New("invalid password")
)

// Planner errors.
var (
	ErrDayEntryNotFound = errors.New("day entry not found")
	ErrInvalidDateKey   = errors.New("invalid date key")
	ErrInvalidPayload   = errors.New("payload must be a JSON object")
)
