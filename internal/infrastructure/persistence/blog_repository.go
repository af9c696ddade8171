package persistence

import (
	"context"
	"errors"

	"github.com/fitcoach/backend/internal/domain/blog"
	"github.com/fitcoach/backend/internal/domain/shared"
	"github.com/fitcoach/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormBlogRepository implements blog.Repository using GORM
type GormBlogRepository struct {
	db *gorm.DB
}

// NewGormBlogRepository creates a new GormBlogRepository
func NewGormBlogRepository(db *gorm.DB) *GormBlogRepository {
	return &GormBlogRepository{db: db}
}

// FindBySlug finds a post by slug. With publishedOnly, drafts are not found.
func (r *GormBlogRepository) FindBySlug(ctx context.Context, slug string, publishedOnly bool) (*blog.Post, error) {
	query := r.db.WithContext(ctx).Where("slug = ?", slug)
	if publishedOnly {
		query = query.Where("published = ?", true)
	}

	var model models.BlogPostModel
	if err := query.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ExistsBySlug checks if a post already uses slug
func (r *GormBlogRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.BlogPostModel{}).
		Where("slug = ?", slug).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a post by id
func (r *GormBlogRepository) Save(ctx context.Context, p *blog.Post) error {
	return r.db.WithContext(ctx).Save(models.BlogPostModelFromDomain(p)).Error
}

// ListPublished returns published posts, newest first by default
func (r *GormBlogRepository) ListPublished(ctx context.Context, filter shared.Filter) ([]blog.Post, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.BlogPostModel{}).Where("published = ?", true).Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.BlogPostModel
	if err := paginate(base, filter, BlogPostSortFields, "published_at").Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	out := make([]blog.Post, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].ToDomain())
	}
	return out, total, nil
}

var _ blog.Repository = (*GormBlogRepository)(nil)
