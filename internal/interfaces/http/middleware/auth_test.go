package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bartab/backend/internal/infrastructure/auth"
	"github.com/bartab/backend/internal/infrastructure/config"
)

const testSecret = "middleware-test-secret"

func newVerifier(t *testing.T) *auth.TokenVerifier {
	t.Helper()
	return auth.NewTokenVerifier(config.JWTConfig{
		Secret: testSecret,
		Issuer: "bartab",
	})
}

func signTestToken(t *testing.T, userID uuid.UUID, jti string) string {
	t.Helper()
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    "bartab",
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func newAuthEngine(t *testing.T, blacklist auth.TokenBlacklist, cfg AuthConfig) *gin.Engine {
	t.Helper()
	engine := gin.New()
	engine.Use(Authentication(newVerifier(t), blacklist, zap.NewNop(), cfg))
	engine.GET("/protected", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(UserIDKey))
	})
	engine.GET("/system/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return engine
}

func TestAuthentication(t *testing.T) {
	userID := uuid.New()

	t.Run("valid token passes and sets the principal", func(t *testing.T) {
		engine := newAuthEngine(t, nil, AuthConfig{})

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+signTestToken(t, userID, "jti-1"))
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, userID.String(), w.Body.String())
	})

	t.Run("missing header is rejected", func(t *testing.T) {
		engine := newAuthEngine(t, nil, AuthConfig{})

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
	})

	t.Run("non-bearer scheme is rejected", func(t *testing.T) {
		engine := newAuthEngine(t, nil, AuthConfig{})

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		engine := newAuthEngine(t, nil, AuthConfig{})

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer not.a.token")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("skip path passes without a token", func(t *testing.T) {
		engine := newAuthEngine(t, nil, AuthConfig{SkipPaths: []string{"/system/health"}})

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/system/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("revoked token is rejected", func(t *testing.T) {
		blacklist := auth.NewInMemoryTokenBlacklist()
		require.NoError(t, blacklist.Revoke(context.Background(), "jti-revoked", time.Hour))
		engine := newAuthEngine(t, blacklist, AuthConfig{})

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+signTestToken(t, userID, "jti-revoked"))
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "revoked")
	})

	t.Run("blacklist outage does not block authenticated requests", func(t *testing.T) {
		engine := newAuthEngine(t, failingBlacklist{}, AuthConfig{})

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+signTestToken(t, userID, "jti-2"))
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

type failingBlacklist struct{}

func (failingBlacklist) Revoke(context.Context, string, time.Duration) error {
	return assert.AnError
}

func (failingBlacklist) IsRevoked(context.Context, string) (bool, error) {
	return false, assert.AnError
}
