package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateTokenPair(t *testing.T) {
	m := NewJWTManager("test-secret", 15*time.Minute, 7*24*time.Hour)
	userID := uuid.New()

	pair, err := m.GenerateTokenPair(userID, "user@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	claims, err := m.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, AccessToken, claims.TokenType)

	refreshClaims, err := m.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, userID, refreshClaims.UserID)
}

func TestTokenTypeMismatch(t *testing.T) {
	m := NewJWTManager("test-secret", 15*time.Minute, 7*24*time.Hour)

	pair, err := m.GenerateTokenPair(uuid.New(), "")
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.ValidateRefreshToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredToken(t *testing.T) {
	m := NewJWTManager("test-secret", -time.Minute, 7*24*time.Hour)

	pair, err := m.GenerateTokenPair(uuid.New(), "")
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestWrongSecret(t *testing.T) {
	m := NewJWTManager("secret-one", 15*time.Minute, 7*24*time.Hour)
	other := NewJWTManager("secret-two", 15*time.Minute, 7*24*time.Hour)

	pair, err := m.GenerateTokenPair(uuid.New(), "")
	require.NoError(t, err)

	_, err = other.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestHashToken(t *testing.T) {
	hash := HashToken("some-refresh-token")
	assert.Len(t, hash, 64)
	assert.Equal(t, hash, HashToken("some-refresh-token"))
	assert.NotEqual(t, hash, HashToken("another-token"))
	assert.True(t, CompareTokenHash("some-refresh-token", hash))
	assert.False(t, CompareTokenHash("another-token", hash))
}
