package services

import (
	"fmt"

	"gp-intake-api/config"
	"gp-intake-api/models"

	"gorm.io/gorm"
)

// PairKey identifies one (application, reviewer) pairing.
type PairKey struct {
	ApplicationID int
	ReviewerID    int
}

// AssignmentIndex loads the exclusion set of pairs that already hold a live
// assignment. Read-only.
type AssignmentIndex struct {
	db *gorm.DB
}

func NewAssignmentIndex(db *gorm.DB) *AssignmentIndex {
	if db == nil {
		db = config.DB
	}
	return &AssignmentIndex{db: db}
}

// ExistingPairs returns the live (non-deleted) pairings restricted to the
// given applications and reviewers.
func (i *AssignmentIndex) ExistingPairs(applicationIDs, reviewerIDs []int) (map[PairKey]struct{}, error) {
	pairs := make(map[PairKey]struct{})
	if len(applicationIDs) == 0 || len(reviewerIDs) == 0 {
		return pairs, nil
	}

	var existing []models.ReviewerAssignment
	if err := i.db.
		Select("application_id", "reviewer_id").
		Where("application_id IN ? AND reviewer_id IN ? AND deleted_at IS NULL",
			applicationIDs, reviewerIDs).
		Find(&existing).Error; err != nil {
		return nil, fmt.Errorf("failed to load existing assignments: %w", err)
	}

	for _, a := range existing {
		pairs[PairKey{ApplicationID: a.ApplicationID, ReviewerID: a.ReviewerID}] = struct{}{}
	}
	return pairs, nil
}
