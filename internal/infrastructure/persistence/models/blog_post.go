package models

import (
	"time"

	"github.com/fitcoach/backend/internal/domain/blog"
)

// BlogPostModel is the persistence model for a blog post
type BlogPostModel struct {
	BaseModel
	Title       string `gorm:"type:varchar(300);not null"`
	Slug        string `gorm:"type:varchar(120);not null;uniqueIndex"`
	Excerpt     string `gorm:"type:text"`
	Body        string `gorm:"type:text;not null"`
	Published   bool   `gorm:"not null;default:false;index"`
	PublishedAt *time.Time
}

// TableName returns the table name for GORM
func (BlogPostModel) TableName() string {
	return "blog_posts"
}

// BlogPostModelFromDomain creates a persistence model from a domain post
func BlogPostModelFromDomain(p *blog.Post) *BlogPostModel {
	m := &BlogPostModel{
		Title:       p.Title,
		Slug:        p.Slug,
		Excerpt:     p.Excerpt,
		Body:        p.Body,
		Published:   p.Published,
		PublishedAt: p.PublishedAt,
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}

// ToDomain converts the model to a domain post
func (m *BlogPostModel) ToDomain() *blog.Post {
	return &blog.Post{
		BaseEntity:  m.BaseModel.ToDomain(),
		Title:       m.Title,
		Slug:        m.Slug,
		Excerpt:     m.Excerpt,
		Body:        m.Body,
		Published:   m.Published,
		PublishedAt: m.PublishedAt,
	}
}

// AllModels lists every model, in migration order
func AllModels() []any {
	return []any{
		&PurchaseModel{},
		&SubscriptionModel{},
		&ProspectModel{},
		&BlogPostModel{},
	}
}
