// Package blog serves published posts and lets admins write new ones.
package blog

import (
	"context"
	"fmt"
	"time"

	"github.com/fitcoach/backend/internal/domain/blog"
	"github.com/fitcoach/backend/internal/domain/shared"
	"github.com/fitcoach/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

const maxPageSize = 50

// CreateRequest is the admin input for a post
type CreateRequest struct {
	Title     string `json:"title" binding:"required,max=200"`
	Slug      string `json:"slug" binding:"max=120"`
	Excerpt   string `json:"excerpt" binding:"max=500"`
	Body      string `json:"body" binding:"required"`
	Published bool   `json:"published"`
}

// Summary is a post in listings
type Summary struct {
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Excerpt     string     `json:"excerpt,omitempty"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
}

// Response is a full post
type Response struct {
	ID          string     `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Excerpt     string     `json:"excerpt,omitempty"`
	Body        string     `json:"body"`
	Published   bool       `json:"published"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Service reads and writes blog posts
type Service struct {
	repo   blog.Repository
	now    func() time.Time
	logger *zap.Logger
}

// NewService creates a blog service
func NewService(repo blog.Repository, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, now: time.Now, logger: log}
}

// ListPublished returns a page of published posts, newest first
func (s *Service) ListPublished(ctx context.Context, filter shared.Filter) (shared.Paginated[Summary], error) {
	filter = filter.Normalize(maxPageSize)
	filter.OrderBy = "published_at"
	filter.OrderDir = "desc"

	posts, total, err := s.repo.ListPublished(ctx, filter)
	if err != nil {
		return shared.Paginated[Summary]{}, fmt.Errorf("failed to list posts: %w", err)
	}
	items := make([]Summary, 0, len(posts))
	for _, p := range posts {
		items = append(items, Summary{Slug: p.Slug, Title: p.Title, Excerpt: p.Excerpt, PublishedAt: p.PublishedAt})
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// GetBySlug returns a published post
func (s *Service) GetBySlug(ctx context.Context, slug string) (*Response, error) {
	p, err := s.repo.FindBySlug(ctx, slug, true)
	if err != nil {
		return nil, err
	}
	return toResponse(p), nil
}

// Create stores a new post. A slug already in use is a validation error.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Response, error) {
	p, err := blog.NewPost(req.Title, req.Slug, req.Excerpt, req.Body)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsBySlug(ctx, p.Slug)
	if err != nil {
		return nil, fmt.Errorf("failed to check slug: %w", err)
	}
	if exists {
		return nil, shared.NewValidationError("slug", "%q is already in use", p.Slug)
	}

	if req.Published {
		p.Publish(s.now())
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save post: %w", err)
	}

	logger.Or(ctx, s.logger).Info("Blog post created",
		zap.String("slug", p.Slug),
		zap.Bool("published", p.Published),
		zap.String("admin", logger.GetAdmin(ctx)))
	return toResponse(p), nil
}

func toResponse(p *blog.Post) *Response {
	return &Response{
		ID:          p.ID.String(),
		Slug:        p.Slug,
		Title:       p.Title,
		Excerpt:     p.Excerpt,
		Body:        p.Body,
		Published:   p.Published,
		PublishedAt: p.PublishedAt,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
