package handler

import (
	"context"
	"time"

	"github.com/fitcoach/backend/internal/application/coupon"
	"github.com/fitcoach/backend/internal/infrastructure/billing"
	"github.com/gin-gonic/gin"
)

// CouponService manages provider coupons
type CouponService interface {
	Create(ctx context.Context, req coupon.CreateRequest) (*billing.Coupon, error)
	List(ctx context.Context, limit int) ([]billing.Coupon, error)
	Delete(ctx context.Context, couponID string) error
}

// CouponHandler serves the admin coupon endpoints
type CouponHandler struct {
	BaseHandler
	service CouponService
}

// NewCouponHandler creates a new CouponHandler
func NewCouponHandler(service CouponService) *CouponHandler {
	return &CouponHandler{service: service}
}

// CouponResponse is a coupon as returned to admins
type CouponResponse struct {
	ID               string    `json:"id"`
	Name             string    `json:"name,omitempty"`
	PercentOff       float64   `json:"percentOff,omitempty"`
	AmountOff        int64     `json:"amountOff,omitempty"`
	Currency         string    `json:"currency,omitempty"`
	Duration         string    `json:"duration"`
	DurationInMonths int64     `json:"durationInMonths,omitempty"`
	MaxRedemptions   int64     `json:"maxRedemptions,omitempty"`
	TimesRedeemed    int64     `json:"timesRedeemed"`
	Valid            bool      `json:"valid"`
	CreatedAt        time.Time `json:"createdAt"`
}

// CouponListQuery binds the list query
type CouponListQuery struct {
	Limit int `form:"limit"`
}

func toCouponResponse(c billing.Coupon) CouponResponse {
	return CouponResponse{
		ID:               c.ID,
		Name:             c.Name,
		PercentOff:       c.PercentOff,
		AmountOff:        c.AmountOff,
		Currency:         c.Currency,
		Duration:         c.Duration,
		DurationInMonths: c.DurationInMonths,
		MaxRedemptions:   c.MaxRedemptions,
		TimesRedeemed:    c.TimesRedeemed,
		Valid:            c.Valid,
		CreatedAt:        c.CreatedAt,
	}
}

// Create godoc
//
//	@ID				createCoupon
//	@Summary		Create a coupon
//	@Tags			coupons
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		coupon.CreateRequest	true	"Coupon"
//	@Success		201		{object}	CouponResponse
//	@Failure		400		{object}	dto.ErrorResponse
//	@Failure		401		{object}	dto.ErrorResponse
//	@Router			/coupons [post]
func (h *CouponHandler) Create(c *gin.Context) {
	var req coupon.CreateRequest
	if !h.BindJSON(c, &req) {
		return
	}
	created, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toCouponResponse(*created))
}

// List godoc
//
//	@ID				listCoupons
//	@Summary		List coupons
//	@Tags			coupons
//	@Produce		json
//	@Security		BearerAuth
//	@Param			limit	query		int	false	"Maximum coupons (1-100, default 20)"
//	@Success		200		{array}		CouponResponse
//	@Failure		400		{object}	dto.ErrorResponse
//	@Failure		401		{object}	dto.ErrorResponse
//	@Router			/coupons [get]
func (h *CouponHandler) List(c *gin.Context) {
	var q CouponListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	coupons, err := h.service.List(c.Request.Context(), q.Limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	out := make([]CouponResponse, 0, len(coupons))
	for _, cp := range coupons {
		out = append(out, toCouponResponse(cp))
	}
	h.Success(c, out)
}

// Delete godoc
//
//	@ID				deleteCoupon
//	@Summary		Delete a coupon
//	@Tags			coupons
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Coupon ID"
//	@Success		204
//	@Failure		401	{object}	dto.ErrorResponse
//	@Failure		400	{object}	dto.ErrorResponse
//	@Router			/coupons/{id} [delete]
func (h *CouponHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
