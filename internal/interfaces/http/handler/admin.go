package handler

import (
	"context"

	"github.com/fitcoach/backend/internal/application/admin"
	"github.com/fitcoach/backend/internal/infrastructure/auth"
	"github.com/fitcoach/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// AdminService logs admins in and out
type AdminService interface {
	Login(ctx context.Context, req admin.LoginRequest) (*admin.LoginResult, error)
	Logout(ctx context.Context, claims *auth.Claims) error
}

// AdminHandler serves admin session endpoints
type AdminHandler struct {
	BaseHandler
	service AdminService
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(service AdminService) *AdminHandler {
	return &AdminHandler{service: service}
}

// Login godoc
//
//	@ID				adminLogin
//	@Summary		Admin login
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Param			request	body		admin.LoginRequest	true	"Credentials"
//	@Success		200		{object}	admin.LoginResult
//	@Failure		400		{object}	dto.ErrorResponse
//	@Failure		401		{object}	dto.ErrorResponse
//	@Failure		429		{object}	dto.ErrorResponse
//	@Router			/admin/login [post]
func (h *AdminHandler) Login(c *gin.Context) {
	var req admin.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Logout godoc
//
//	@ID				adminLogout
//	@Summary		Revoke the current admin token
//	@Tags			admin
//	@Security		BearerAuth
//	@Success		204
//	@Failure		401	{object}	dto.ErrorResponse
//	@Router			/admin/logout [post]
func (h *AdminHandler) Logout(c *gin.Context) {
	claims, ok := middleware.GetAdminClaims(c)
	if !ok {
		h.Unauthorized(c, "Missing bearer token")
		return
	}
	if err := h.service.Logout(c.Request.Context(), claims); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
