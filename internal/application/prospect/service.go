// Package prospect captures leads from the contact form.
package prospect

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fitcoach/backend/internal/domain/prospect"
	"github.com/fitcoach/backend/internal/domain/shared"
	"github.com/fitcoach/backend/internal/infrastructure/logger"
	"github.com/fitcoach/backend/internal/infrastructure/mailer"
	"go.uber.org/zap"
)

const maxPageSize = 100

// SubmitRequest is a contact form submission
type SubmitRequest struct {
	Name   string `json:"name" binding:"required,max=200"`
	Email  string `json:"email" binding:"required,email"`
	Phone  string `json:"phone" binding:"max=40"`
	Goal   string `json:"goal" binding:"max=2000"`
	Source string `json:"source" binding:"max=100"`
}

// Response is a prospect as returned to admins
type Response struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Goal      string    `json:"goal,omitempty"`
	Source    string    `json:"source,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Service records prospects and welcomes them
type Service struct {
	repo   prospect.Repository
	mailer mailer.Sender
	logger *zap.Logger
}

// NewService creates a prospect service
func NewService(repo prospect.Repository, sender mailer.Sender, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if sender == nil {
		sender = mailer.NewDisabled(log)
	}
	return &Service{repo: repo, mailer: sender, logger: log}
}

// Submit upserts the prospect by email. A new prospect gets a welcome
// email; sending failures are logged only.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*Response, error) {
	log := logger.Or(ctx, s.logger)

	p, err := s.repo.FindByEmail(ctx, prospect.NormalizeEmail(req.Email))
	isNew := false
	switch {
	case err == nil:
		p.Merge(req.Name, req.Phone, req.Goal, req.Source)
	case errors.Is(err, shared.ErrNotFound):
		p, err = prospect.NewProspect(req.Name, req.Email)
		if err != nil {
			return nil, err
		}
		p.Merge("", req.Phone, req.Goal, req.Source)
		isNew = true
	default:
		return nil, fmt.Errorf("failed to find prospect: %w", err)
	}

	if err := s.repo.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save prospect: %w", err)
	}
	log.Info("Prospect recorded",
		logger.Email("email", p.Email),
		zap.Bool("new", isNew),
		zap.String("source", p.Source))

	if isNew {
		s.welcome(ctx, p)
	}
	return toResponse(p), nil
}

// List returns a page of prospects, newest first
func (s *Service) List(ctx context.Context, filter shared.Filter) (shared.Paginated[Response], error) {
	filter = filter.Normalize(maxPageSize)
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return shared.Paginated[Response]{}, fmt.Errorf("failed to list prospects: %w", err)
	}
	items := make([]Response, 0, len(rows))
	for i := range rows {
		items = append(items, *toResponse(&rows[i]))
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

func (s *Service) welcome(ctx context.Context, p *prospect.Prospect) {
	msg, err := mailer.ProspectWelcome(p.Email, p.Name)
	if err == nil {
		err = s.mailer.Send(ctx, msg)
	}
	if err != nil {
		logger.Or(ctx, s.logger).Warn("Failed to send welcome email",
			logger.Email("email", p.Email), zap.Error(err))
	}
}

func toResponse(p *prospect.Prospect) *Response {
	return &Response{
		ID:        p.ID.String(),
		Name:      p.Name,
		Email:     p.Email,
		Phone:     p.Phone,
		Goal:      p.Goal,
		Source:    p.Source,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
