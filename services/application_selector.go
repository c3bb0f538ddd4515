package services

import (
	"fmt"

	"gp-intake-api/config"
	"gp-intake-api/models"

	"gorm.io/gorm"
)

// ApplicationSelector computes the pool of applications that may receive
// new reviewer assignments.
type ApplicationSelector struct {
	db *gorm.DB
}

func NewApplicationSelector(db *gorm.DB) *ApplicationSelector {
	if db == nil {
		db = config.DB
	}
	return &ApplicationSelector{db: db}
}

// Eligible returns submitted, non-disqualified, non-deleted applications.
// The ordering by application_id keeps allocation deterministic for a given
// pool under the balanced policy.
func (s *ApplicationSelector) Eligible() ([]models.Application, error) {
	var apps []models.Application
	if err := s.db.
		Where("status = ? AND qualification_status <> ? AND deleted_at IS NULL",
			models.ApplicationStatusSubmitted, models.QualificationDisqualified).
		Order("application_id ASC").
		Find(&apps).Error; err != nil {
		return nil, fmt.Errorf("failed to load eligible applications: %w", err)
	}
	return apps, nil
}
