package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/fitcoach/backend/internal/infrastructure/auth"
	"github.com/fitcoach/backend/internal/infrastructure/logger"
	"github.com/fitcoach/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Admin auth context keys
const (
	AdminClaimsKey = "admin_claims"
	AuthHeaderKey  = "Authorization"
	BearerPrefix   = "Bearer "
)

// Authenticator validates admin bearer tokens
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)
}

// AdminAuth requires a valid, unrevoked admin bearer token. The claims are
// stored under AdminClaimsKey and the subject is added to the request logger.
func AdminAuth(authenticator Authenticator, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(AuthHeaderKey)
		if !strings.HasPrefix(header, BearerPrefix) {
			abortWithError(c, dto.ErrCodeUnauthorized, "Missing bearer token")
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
		if token == "" {
			abortWithError(c, dto.ErrCodeUnauthorized, "Missing bearer token")
			return
		}

		ctx := c.Request.Context()
		claims, err := authenticator.Authenticate(ctx, token)
		if err != nil {
			code, message, known := classifyAuthError(err)
			if !known {
				logger.Or(ctx, log).Error("Admin token check failed", zap.Error(err))
			}
			abortWithError(c, code, message)
			return
		}

		c.Set(AdminClaimsKey, claims)
		c.Request = c.Request.WithContext(logger.WithAdmin(ctx, claims.Subject))
		if _, ok := c.Get(logger.GinLoggerKey); ok {
			c.Set(logger.GinLoggerKey, logger.FromContext(c.Request.Context()))
		}
		c.Next()
	}
}

// GetAdminClaims returns the claims stored by AdminAuth
func GetAdminClaims(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(AdminClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok && claims != nil
}

func classifyAuthError(err error) (code, message string, known bool) {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return dto.ErrCodeTokenExpired, "Token has expired", true
	case errors.Is(err, auth.ErrTokenRevoked):
		return dto.ErrCodeTokenInvalid, "Token has been revoked", true
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrInvalidClaims),
		errors.Is(err, auth.ErrTokenNotYetValid):
		return dto.ErrCodeTokenInvalid, "Invalid token", true
	default:
		return dto.ErrCodeServiceUnavailable, "Authentication is temporarily unavailable", false
	}
}
