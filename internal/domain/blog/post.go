// Package blog models the coaching blog's posts.
package blog

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/fitcoach/backend/internal/domain/shared"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxSlugLength = 120

// Post is a blog article addressed by slug
type Post struct {
	shared.BaseEntity
	Title       string
	Slug        string
	Excerpt     string
	Body        string
	Published   bool
	PublishedAt *time.Time
}

// NewPost creates a draft post. An empty slug is derived from the title.
func NewPost(title, slug, excerpt, body string) (*Post, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, shared.NewValidationError("title", "is required")
	}
	if strings.TrimSpace(body) == "" {
		return nil, shared.NewValidationError("body", "is required")
	}
	if slug == "" {
		slug = Slugify(title)
	} else if Slugify(slug) != slug {
		return nil, shared.NewValidationError("slug", "must contain only lower-case letters, digits and hyphens")
	}
	if slug == "" {
		return nil, shared.NewValidationError("slug", "cannot be derived from title")
	}
	return &Post{
		BaseEntity: shared.NewBaseEntity(),
		Title:      title,
		Slug:       slug,
		Excerpt:    strings.TrimSpace(excerpt),
		Body:       body,
	}, nil
}

// Publish makes the post visible from now
func (p *Post) Publish(now time.Time) {
	if p.Published {
		return
	}
	now = now.UTC()
	p.Published = true
	p.PublishedAt = &now
	p.Touch()
}

// Unpublish hides the post
func (p *Post) Unpublish() {
	p.Published = false
	p.PublishedAt = nil
	p.Touch()
}

var stripMarks = runes.Remove(runes.In(unicode.Mn))

// Slugify produces a URL slug: accents folded, lower case, runs of other
// characters collapsed to single hyphens.
func Slugify(s string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, stripMarks, norm.NFC), s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	hyphen := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			hyphen = false
		case b.Len() > 0 && !hyphen:
			b.WriteByte('-')
			hyphen = true
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if len(out) > maxSlugLength {
		out = strings.TrimSuffix(out[:maxSlugLength], "-")
	}
	return out
}

// Repository defines the interface for post persistence
type Repository interface {
	// FindBySlug finds a post. With publishedOnly, drafts are reported as not found.
	FindBySlug(ctx context.Context, slug string, publishedOnly bool) (*Post, error)
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	Save(ctx context.Context, p *Post) error
	ListPublished(ctx context.Context, filter shared.Filter) ([]Post, int64, error)
}
