package handler

import (
	"context"

	"github.com/fitcoach/backend/internal/application/catalog"
	"github.com/gin-gonic/gin"
)

// ProductLister lists the active catalog
type ProductLister interface {
	GetProducts(ctx context.Context) ([]catalog.Product, error)
}

// CatalogHandler serves the product catalog
type CatalogHandler struct {
	BaseHandler
	products ProductLister
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(products ProductLister) *CatalogHandler {
	return &CatalogHandler{products: products}
}

// GetProducts godoc
//
//	@ID				getProducts
//	@Summary		List active products
//	@Description	Active Stripe products with their active prices
//	@Tags			catalog
//	@Produce		json
//	@Success		200	{array}		catalog.Product
//	@Failure		502	{object}	dto.ErrorResponse
//	@Router			/get-products [get]
func (h *CatalogHandler) GetProducts(c *gin.Context) {
	products, err := h.products.GetProducts(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=60")
	h.Success(c, products)
}
