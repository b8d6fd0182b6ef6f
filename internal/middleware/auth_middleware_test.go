package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markpoint/backend/internal/auth"
)

func captureIdentity(gotID *uuid.UUID, gotOK *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*gotID, *gotOK = GetUserID(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware(t *testing.T) {
	m := auth.NewJWTManager("test-secret", 15*time.Minute, time.Hour)
	userID := uuid.New()
	pair, err := m.GenerateTokenPair(userID, "user@example.com")
	require.NoError(t, err)

	var gotID uuid.UUID
	var gotOK bool
	handler := AuthMiddleware(m)(captureIdentity(&gotID, &gotOK))

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	handler.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, gotOK)
	assert.Equal(t, userID, gotID)

	// No header at all.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Wrong scheme is rejected, not sliced blindly.
	rec = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Basic "+pair.AccessToken)
	handler.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOptionalAuthMiddleware(t *testing.T) {
	m := auth.NewJWTManager("test-secret", 15*time.Minute, time.Hour)
	userID := uuid.New()
	pair, err := m.GenerateTokenPair(userID, "")
	require.NoError(t, err)

	var gotID uuid.UUID
	var gotOK bool
	handler := OptionalAuthMiddleware(m)(captureIdentity(&gotID, &gotOK))

	// Anonymous requests pass through without identity.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, gotOK)

	// A valid token adds identity.
	rec = httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	handler.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, gotOK)
	assert.Equal(t, userID, gotID)

	// A garbage token still passes through anonymously.
	gotOK = true
	rec = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer not-a-token")
	handler.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, gotOK)
}
