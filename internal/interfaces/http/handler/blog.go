package handler

import (
	"context"

	"github.com/fitcoach/backend/internal/application/blog"
	"github.com/fitcoach/backend/internal/domain/shared"
	"github.com/fitcoach/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// BlogService reads and writes posts
type BlogService interface {
	ListPublished(ctx context.Context, filter shared.Filter) (shared.Paginated[blog.Summary], error)
	GetBySlug(ctx context.Context, slug string) (*blog.Response, error)
	Create(ctx context.Context, req blog.CreateRequest) (*blog.Response, error)
}

// BlogHandler serves the public blog and the admin post editor
type BlogHandler struct {
	BaseHandler
	service BlogService
}

// NewBlogHandler creates a new BlogHandler
func NewBlogHandler(service BlogService) *BlogHandler {
	return &BlogHandler{service: service}
}

// List godoc
//
//	@ID				listBlogPosts
//	@Summary		List published posts
//	@Tags			blog
//	@Produce		json
//	@Param			page		query		int	false	"Page (default 1)"
//	@Param			pageSize	query		int	false	"Page size (default 20)"
//	@Success		200			{object}	dto.Page[blog.Summary]
//	@Router			/blog-posts [get]
func (h *BlogHandler) List(c *gin.Context) {
	var q dto.PageQuery
	if !h.BindQuery(c, &q) {
		return
	}
	page, err := h.service.ListPublished(c.Request.Context(), q.Filter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewPage(page))
}

// Get godoc
//
//	@ID				getBlogPost
//	@Summary		Get a published post
//	@Tags			blog
//	@Produce		json
//	@Param			slug	path		string	true	"Post slug"
//	@Success		200		{object}	blog.Response
//	@Failure		404		{object}	dto.ErrorResponse
//	@Router			/blog-posts/{slug} [get]
func (h *BlogHandler) Get(c *gin.Context) {
	post, err := h.service.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, post)
}

// Create godoc
//
//	@ID				createBlogPost
//	@Summary		Create a post
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		blog.CreateRequest	true	"Post"
//	@Success		201		{object}	blog.Response
//	@Failure		400		{object}	dto.ErrorResponse
//	@Failure		401		{object}	dto.ErrorResponse
//	@Router			/admin/blog-posts [post]
func (h *BlogHandler) Create(c *gin.Context) {
	var req blog.CreateRequest
	if !h.BindJSON(c, &req) {
		return
	}
	post, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, post)
}
