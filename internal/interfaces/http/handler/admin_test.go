package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fitcoach/backend/internal/application/admin"
	"github.com/fitcoach/backend/internal/infrastructure/auth"
	"github.com/fitcoach/backend/internal/infrastructure/config"
	"github.com/fitcoach/backend/internal/interfaces/http/dto"
	"github.com/fitcoach/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupAdminRouter(t *testing.T) *gin.Engine {
	t.Helper()
	hash, err := auth.HashPassword("correct-horse-battery")
	require.NoError(t, err)

	svc := admin.NewService(
		config.AdminConfig{Username: "coach", PasswordHash: hash},
		auth.NewJWTService(config.JWTConfig{Secret: "test-secret-that-is-long-enough-123", Expiration: time.Hour, Issuer: "fitcoach"}),
		auth.NewMemoryRevocationList(),
		zap.NewNop(),
	)
	h := NewAdminHandler(svc)

	r := gin.New()
	r.Use(middleware.RequestID())
	r.POST("/admin/login", h.Login)
	protected := r.Group("/admin", middleware.AdminAuth(svc, zap.NewNop()))
	protected.POST("/logout", h.Logout)
	protected.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func withBearer(method, path, token string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestAdminHandler_LoginLogout(t *testing.T) {
	r := setupAdminRouter(t)

	w := postJSON(r, "/admin/login", `{"username":"coach","password":"correct-horse-battery"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var login admin.LoginResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	require.NotEmpty(t, login.Token)
	assert.True(t, login.ExpiresAt.After(time.Now()))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, withBearer(http.MethodGet, "/admin/ping", login.Token))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, withBearer(http.MethodPost, "/admin/logout", login.Token))
	assert.Equal(t, http.StatusNoContent, w.Code)

	// the revoked token no longer opens admin routes
	w = httptest.NewRecorder()
	r.ServeHTTP(w, withBearer(http.MethodGet, "/admin/ping", login.Token))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrCodeTokenInvalid, decodeError(t, w).Code)
}

func TestAdminHandler_LoginWrongPassword(t *testing.T) {
	r := setupAdminRouter(t)

	w := postJSON(r, "/admin/login", `{"username":"coach","password":"nope"}`)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, dto.ErrCodeUnauthorized, resp.Code)
	assert.Equal(t, "Invalid username or password", resp.Error)
	assert.NotEmpty(t, resp.RequestID)
}

func TestAdminHandler_LoginMissingFields(t *testing.T) {
	r := setupAdminRouter(t)

	w := postJSON(r, "/admin/login", `{"username":"coach"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeValidation, decodeError(t, w).Code)
}

func TestAdminHandler_LogoutWithoutClaims(t *testing.T) {
	h := NewAdminHandler(nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/admin/logout", nil)

	h.Logout(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
