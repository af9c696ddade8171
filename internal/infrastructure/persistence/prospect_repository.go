package persistence

import (
	"context"
	"errors"

	"github.com/fitcoach/backend/internal/domain/prospect"
	"github.com/fitcoach/backend/internal/domain/shared"
	"github.com/fitcoach/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProspectRepository implements prospect.Repository using GORM
type GormProspectRepository struct {
	db *gorm.DB
}

// NewGormProspectRepository creates a new GormProspectRepository
func NewGormProspectRepository(db *gorm.DB) *GormProspectRepository {
	return &GormProspectRepository{db: db}
}

// FindByEmail finds a prospect by normalized email
func (r *GormProspectRepository) FindByEmail(ctx context.Context, email string) (*prospect.Prospect, error) {
	var model models.ProspectModel
	if err := r.db.WithContext(ctx).
		Where("email = ?", prospect.NormalizeEmail(email)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save upserts by email
func (r *GormProspectRepository) Save(ctx context.Context, p *prospect.Prospect) error {
	model := models.ProspectModelFromDomain(p)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "phone", "goal", "source", "updated_at"}),
		}).
		Create(model).Error
}

// List returns a page of prospects and the total count
func (r *GormProspectRepository) List(ctx context.Context, filter shared.Filter) ([]prospect.Prospect, int64, error) {
	var total int64
	base := r.db.WithContext(ctx).Model(&models.ProspectModel{}).Session(&gorm.Session{})
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ProspectModel
	if err := paginate(base, filter, ProspectSortFields, "created_at").Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	out := make([]prospect.Prospect, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].ToDomain())
	}
	return out, total, nil
}

var _ prospect.Repository = (*GormProspectRepository)(nil)
