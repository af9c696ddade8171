// Package prospect models leads captured from the site's contact and
// consultation forms.
package prospect

import (
	"context"
	"net/mail"
	"strings"

	"github.com/fitcoach/backend/internal/domain/shared"
)

// Prospect is a lead identified by email
type Prospect struct {
	shared.BaseEntity
	Name   string
	Email  string
	Phone  string
	Goal   string
	Source string
}

// NewProspect creates a prospect, normalizing the email to lower case
func NewProspect(name, email string) (*Prospect, error) {
	p := &Prospect{BaseEntity: shared.NewBaseEntity()}
	if err := p.setIdentity(name, email); err != nil {
		return nil, err
	}
	return p, nil
}

// NormalizeEmail lower-cases and trims an address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Merge updates contact details from a newer submission. Empty fields keep
// the stored values.
func (p *Prospect) Merge(name, phone, goal, source string) {
	if name = strings.TrimSpace(name); name != "" {
		p.Name = name
	}
	if phone != "" {
		p.Phone = phone
	}
	if goal != "" {
		p.Goal = goal
	}
	if source != "" {
		p.Source = source
	}
	p.Touch()
}

func (p *Prospect) setIdentity(name, email string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewValidationError("name", "is required")
	}
	if len(name) > 200 {
		return shared.NewValidationError("name", "must be at most 200 characters")
	}
	email = NormalizeEmail(email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return shared.NewValidationError("email", "must be a valid email address")
	}
	p.Name = name
	p.Email = email
	return nil
}

// Repository defines the interface for prospect persistence
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*Prospect, error)
	Save(ctx context.Context, p *Prospect) error
	List(ctx context.Context, filter shared.Filter) ([]Prospect, int64, error)
}
