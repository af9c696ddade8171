package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fitcoach/backend/internal/infrastructure/auth"
	"github.com/fitcoach/backend/internal/infrastructure/config"
	"github.com/fitcoach/backend/internal/infrastructure/logger"
	"github.com/fitcoach/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type tokenAuthenticator struct {
	tokens  *auth.JWTService
	revoked auth.RevocationList
	err     error
}

func (a *tokenAuthenticator) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	if a.err != nil {
		return nil, a.err
	}
	claims, err := a.tokens.Validate(token)
	if err != nil {
		return nil, err
	}
	revoked, err := a.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, auth.ErrTokenRevoked
	}
	return claims, nil
}

func newAuthFixture(t *testing.T) (*tokenAuthenticator, *gin.Engine) {
	t.Helper()
	a := &tokenAuthenticator{
		tokens: auth.NewJWTService(config.JWTConfig{
			Secret:     "test-secret-that-is-long-enough-123",
			Expiration: time.Hour,
			Issuer:     "fitcoach",
		}),
		revoked: auth.NewMemoryRevocationList(),
	}
	router := gin.New()
	router.Use(RequestID(), AdminAuth(a, zap.NewNop()))
	router.GET("/admin/prospects", func(c *gin.Context) {
		claims, ok := GetAdminClaims(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{
			"subject": claims.Subject,
			"admin":   logger.GetAdmin(c.Request.Context()),
		})
	})
	return a, router
}

func getWithToken(router http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/admin/prospects", nil)
	if header != "" {
		req.Header.Set(AuthHeaderKey, header)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Code
}

func TestAdminAuth_ValidToken(t *testing.T) {
	a, router := newAuthFixture(t)
	token, err := a.tokens.Issue("coach")
	require.NoError(t, err)

	w := getWithToken(router, BearerPrefix+token.Value)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"subject":"coach","admin":"coach"}`, w.Body.String())
}

func TestAdminAuth_Rejections(t *testing.T) {
	a, router := newAuthFixture(t)

	t.Run("missing header", func(t *testing.T) {
		w := getWithToken(router, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrCodeUnauthorized, errorCode(t, w))
	})

	t.Run("wrong scheme", func(t *testing.T) {
		w := getWithToken(router, "Basic Zm9vOmJhcg==")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		w := getWithToken(router, BearerPrefix+"not-a-jwt")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrCodeTokenInvalid, errorCode(t, w))
	})

	t.Run("revoked token", func(t *testing.T) {
		token, err := a.tokens.Issue("coach")
		require.NoError(t, err)
		require.NoError(t, a.revoked.Revoke(t.Context(), token.ID, time.Hour))

		w := getWithToken(router, BearerPrefix+token.Value)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrCodeTokenInvalid, errorCode(t, w))
	})
}

func TestAdminAuth_BackendFailure(t *testing.T) {
	a, router := newAuthFixture(t)
	a.err = errors.New("redis down")

	w := getWithToken(router, BearerPrefix+"whatever")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, dto.ErrCodeServiceUnavailable, errorCode(t, w))
}

func TestClassifyAuthError(t *testing.T) {
	code, _, known := classifyAuthError(auth.ErrExpiredToken)
	assert.True(t, known)
	assert.Equal(t, dto.ErrCodeTokenExpired, code)

	code, _, known = classifyAuthError(auth.ErrTokenNotYetValid)
	assert.True(t, known)
	assert.Equal(t, dto.ErrCodeTokenInvalid, code)
}
