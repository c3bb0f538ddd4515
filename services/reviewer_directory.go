package services

import (
	"errors"
	"fmt"
	"time"

	"gp-intake-api/config"
	"gp-intake-api/models"
	"gp-intake-api/utils"

	"gorm.io/gorm"
)

// ReviewerResolution tags how a reviewer identity was obtained.
type ReviewerResolution string

const (
	ReviewerCreated  ReviewerResolution = "created"
	ReviewerPromoted ReviewerResolution = "promoted"
	ReviewerReused   ReviewerResolution = "reused"
)

// ResolvedReviewer is one reviewer identity ready for assignment, plus the
// outcome of resolving it.
type ResolvedReviewer struct {
	User    models.User        `json:"user"`
	Outcome ReviewerResolution `json:"outcome"`
}

// ReviewerDirectory translates email addresses into reviewer identities,
// creating or promoting accounts as needed.
type ReviewerDirectory struct {
	db *gorm.DB
}

func NewReviewerDirectory(db *gorm.DB) *ReviewerDirectory {
	if db == nil {
		db = config.DB
	}
	return &ReviewerDirectory{db: db}
}

// NormalizeReviewerEmails trims, lower-cases and de-duplicates the input,
// keeping the position of each email's first occurrence.
func NormalizeReviewerEmails(emails []string) []string {
	seen := make(map[string]bool, len(emails))
	normalized := make([]string, 0, len(emails))
	for _, email := range emails {
		e := utils.NormalizeEmail(email)
		if e == "" || seen[e] {
			continue
		}
		seen[e] = true
		normalized = append(normalized, e)
	}
	return normalized
}

// Resolve maps each input email to exactly one reviewer identity, in input
// order. Any storage failure aborts the whole resolution.
func (d *ReviewerDirectory) Resolve(emails []string) ([]ResolvedReviewer, error) {
	normalized := NormalizeReviewerEmails(emails)
	if len(normalized) == 0 {
		return nil, errors.New("no reviewer emails provided")
	}

	resolved := make([]ResolvedReviewer, 0, len(normalized))
	for _, email := range normalized {
		reviewer, err := d.resolveOne(email)
		if err != nil {
			return nil, fmt.Errorf("resolve reviewer %s: %w", email, err)
		}
		resolved = append(resolved, reviewer)
	}
	return resolved, nil
}

func (d *ReviewerDirectory) resolveOne(email string) (ResolvedReviewer, error) {
	var user models.User
	err := d.db.Where("email = ? AND delete_at IS NULL", email).First(&user).Error
	if err == nil {
		return d.promoteIfNeeded(user)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return ResolvedReviewer{}, err
	}

	now := time.Now()
	user = models.User{
		Email:    email,
		RoleID:   models.RoleReviewer,
		CreateAt: &now,
		UpdateAt: &now,
	}
	if createErr := d.db.Create(&user).Error; createErr != nil {
		if isDuplicateKeyError(createErr) {
			// Lost a race with a concurrent resolution of the same email;
			// the unique index on users.email is the actual guard.
			var existing models.User
			if err := d.db.Where("email = ? AND delete_at IS NULL", email).First(&existing).Error; err != nil {
				return ResolvedReviewer{}, err
			}
			return d.promoteIfNeeded(existing)
		}
		return ResolvedReviewer{}, createErr
	}
	return ResolvedReviewer{User: user, Outcome: ReviewerCreated}, nil
}

// promoteIfNeeded forces the reviewer role onto an existing identity. The
// promotion never demotes and is idempotent.
func (d *ReviewerDirectory) promoteIfNeeded(user models.User) (ResolvedReviewer, error) {
	if user.RoleID == models.RoleReviewer {
		return ResolvedReviewer{User: user, Outcome: ReviewerReused}, nil
	}

	now := time.Now()
	if err := d.db.Model(&models.User{}).
		Where("user_id = ?", user.UserID).
		Updates(map[string]interface{}{
			"role_id":   models.RoleReviewer,
			"update_at": now,
		}).Error; err != nil {
		return ResolvedReviewer{}, err
	}
	user.RoleID = models.RoleReviewer
	user.UpdateAt = &now
	return ResolvedReviewer{User: user, Outcome: ReviewerPromoted}, nil
}
