package handler

import (
	"context"

	"github.com/fitcoach/backend/internal/application/prospect"
	"github.com/fitcoach/backend/internal/domain/shared"
	"github.com/fitcoach/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// ProspectService records and lists prospects
type ProspectService interface {
	Submit(ctx context.Context, req prospect.SubmitRequest) (*prospect.Response, error)
	List(ctx context.Context, filter shared.Filter) (shared.Paginated[prospect.Response], error)
}

// ProspectHandler serves the lead form and its admin listing
type ProspectHandler struct {
	BaseHandler
	service ProspectService
}

// NewProspectHandler creates a new ProspectHandler
func NewProspectHandler(service ProspectService) *ProspectHandler {
	return &ProspectHandler{service: service}
}

// SubmitResponse acknowledges a lead form submission without echoing
// stored contact details
type SubmitResponse struct {
	Received bool `json:"received" example:"true"`
}

// Submit godoc
//
//	@ID				submitProspect
//	@Summary		Submit the lead form
//	@Description	Records the prospect by email and sends a welcome email
//	@Tags			prospects
//	@Accept			json
//	@Produce		json
//	@Param			request	body		prospect.SubmitRequest	true	"Prospect"
//	@Success		201		{object}	SubmitResponse
//	@Failure		400		{object}	dto.ErrorResponse
//	@Failure		429		{object}	dto.ErrorResponse
//	@Router			/prospects [post]
func (h *ProspectHandler) Submit(c *gin.Context) {
	var req prospect.SubmitRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if _, err := h.service.Submit(c.Request.Context(), req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, SubmitResponse{Received: true})
}

// List godoc
//
//	@ID				listProspects
//	@Summary		List prospects
//	@Tags			admin
//	@Produce		json
//	@Security		BearerAuth
//	@Param			page		query		int	false	"Page (default 1)"
//	@Param			pageSize	query		int	false	"Page size (max 100, default 20)"
//	@Success		200			{object}	dto.Page[prospect.Response]
//	@Failure		401			{object}	dto.ErrorResponse
//	@Router			/admin/prospects [get]
func (h *ProspectHandler) List(c *gin.Context) {
	var q dto.PageQuery
	if !h.BindQuery(c, &q) {
		return
	}
	page, err := h.service.List(c.Request.Context(), q.Filter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewPage(page))
}
