package models

import (
	"github.com/fitcoach/backend/internal/domain/prospect"
)

// ProspectModel is the persistence model for a lead
type ProspectModel struct {
	BaseModel
	Name   string `gorm:"type:varchar(200);not null"`
	Email  string `gorm:"type:varchar(320);not null;uniqueIndex"`
	Phone  string `gorm:"type:varchar(50)"`
	Goal   string `gorm:"type:text"`
	Source string `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (ProspectModel) TableName() string {
	return "prospects"
}

// ProspectModelFromDomain creates a persistence model from a domain prospect
func ProspectModelFromDomain(p *prospect.Prospect) *ProspectModel {
	m := &ProspectModel{
		Name:   p.Name,
		Email:  p.Email,
		Phone:  p.Phone,
		Goal:   p.Goal,
		Source: p.Source,
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}

// ToDomain converts the model to a domain prospect
func (m *ProspectModel) ToDomain() *prospect.Prospect {
	return &prospect.Prospect{
		BaseEntity: m.BaseModel.ToDomain(),
		Name:       m.Name,
		Email:      m.Email,
		Phone:      m.Phone,
		Goal:       m.Goal,
		Source:     m.Source,
	}
}
