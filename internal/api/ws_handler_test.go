package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/markpoint/backend/internal/auth"
	"github.com/markpoint/backend/pkg/validator"
)

func TestWSAuthenticateBearerHeader(t *testing.T) {
	m := auth.NewJWTManager("test-secret", 15*time.Minute, time.Hour)
	pair, err := m.GenerateTokenPair(uuid.New(), "user@example.com")
	require.NoError(t, err)

	h := NewWSHandler(nil, nil, nil, m, zap.NewNop())

	r := httptest.NewRequest(http.MethodGet, "/ws/marks", nil)
	r.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	claims, ok := h.authenticate(r)
	require.True(t, ok)
	assert.Equal(t, "user@example.com", claims.Email)
}

func TestWSAuthenticateRejectsNonBearerScheme(t *testing.T) {
	m := auth.NewJWTManager("test-secret", 15*time.Minute, time.Hour)
	pair, err := m.GenerateTokenPair(uuid.New(), "")
	require.NoError(t, err)

	h := NewWSHandler(nil, nil, nil, m, zap.NewNop())

	// A valid token behind the wrong scheme must not authenticate.
	r := httptest.NewRequest(http.MethodGet, "/ws/marks", nil)
	r.Header.Set("Authorization", "Basic "+pair.AccessToken)
	_, ok := h.authenticate(r)
	assert.False(t, ok)

	r = httptest.NewRequest(http.MethodGet, "/ws/marks", nil)
	r.Header.Set("Authorization", pair.AccessToken)
	_, ok = h.authenticate(r)
	assert.False(t, ok)
}

func TestWSAuthenticateQueryToken(t *testing.T) {
	m := auth.NewJWTManager("test-secret", 15*time.Minute, time.Hour)
	userID := uuid.New()
	pair, err := m.GenerateTokenPair(userID, "")
	require.NoError(t, err)

	h := NewWSHandler(nil, nil, nil, m, zap.NewNop())

	r := httptest.NewRequest(http.MethodGet, "/ws/marks?token="+pair.AccessToken, nil)
	claims, ok := h.authenticate(r)
	require.True(t, ok)
	assert.Equal(t, userID, claims.UserID)

	r = httptest.NewRequest(http.MethodGet, "/ws/marks", nil)
	_, ok = h.authenticate(r)
	assert.False(t, ok)
}

func TestViewportRequestValidation(t *testing.T) {
	valid := ViewportRequest{Latitude: 55.75, Longitude: 37.61, Radius: 1000}
	assert.False(t, validator.Struct(&valid).HasErrors())

	badLat := ViewportRequest{Latitude: 91, Longitude: 37.61}
	errs := validator.Struct(&badLat)
	require.True(t, errs.HasErrors())
	assert.Equal(t, "latitude", errs[0].Field)

	badLon := ViewportRequest{Latitude: 55.75, Longitude: 181}
	errs = validator.Struct(&badLon)
	require.True(t, errs.HasErrors())
	assert.Equal(t, "longitude", errs[0].Field)
}
