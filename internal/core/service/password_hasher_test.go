package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/abhicism/dailyplanner/internal/core/domain"
)

func TestBcryptHasher_SaltedDigests(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	first, err := h.Hash("pw123")
	require.NoError(t, err)
	second, err := h.Hash("pw123")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "same input must hash differently")
	assert.NotContains(t, first, "pw123")
	assert.True(t, h.Verify("pw123", first))
	assert.True(t, h.Verify("pw123", second))
}

func TestBcryptHasher_VerifyRejects(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	digest, err := h.Hash("correct horse")
	require.NoError(t, err)

	assert.False(t, h.Verify("wrong horse", digest))
	assert.False(t, h.Verify("correct horse", ""))
	assert.False(t, h.Verify("correct horse", "not-a-bcrypt-digest"))
}

func TestBcryptHasher_TooLong(t *testing.T) {
	_, err := NewBcryptHasher(bcrypt.MinCost).Hash(strings.Repeat("x", MaxPasswordBytes+1))
	assert.ErrorIs(t, err, domain.ErrInvalidPassword)
}

func TestNewBcryptHasher_CostFallback(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(bcrypt.MaxCost+1).cost)
	assert.Equal(t, 12, NewBcryptHasher(12).cost)
}
