package models

import "time"

// Application statuses (status column).
const (
	ApplicationStatusDraft     = "draft"
	ApplicationStatusSubmitted = "submitted"
)

// Qualification statuses (qualification_status column).
const (
	QualificationPending      = "pending"
	QualificationQualified    = "qualified"
	QualificationDisqualified = "disqualified"
)

// Number of steps in the applicant-facing form.
const ApplicationFormSteps = 4

// Application represents a GP fund application submitted through the
// multi-step intake form.
type Application struct {
	ApplicationID       int    `gorm:"primaryKey;column:application_id" json:"application_id"`
	ApplicationNumber   string `gorm:"column:application_number;unique" json:"application_number"`
	UserID              int    `gorm:"column:user_id" json:"user_id"`
	Status              string `gorm:"column:status" json:"status"`
	QualificationStatus string `gorm:"column:qualification_status" json:"qualification_status"`
	CurrentStep         int    `gorm:"column:current_step" json:"current_step"`

	// Step 1 — firm
	FirmName    string  `gorm:"column:firm_name" json:"firm_name"`
	FirmWebsite *string `gorm:"column:firm_website" json:"firm_website,omitempty"`
	FirmHQ      *string `gorm:"column:firm_hq" json:"firm_hq,omitempty"`

	// Step 2 — fund
	FundName     string   `gorm:"column:fund_name" json:"fund_name"`
	FundNumber   *int     `gorm:"column:fund_number" json:"fund_number,omitempty"`
	FundSizeMUSD *float64 `gorm:"column:fund_size_musd" json:"fund_size_musd,omitempty"`
	Strategy     *string  `gorm:"column:strategy" json:"strategy,omitempty"`

	// Step 3 — team and track record
	TeamSummary *string `gorm:"column:team_summary" json:"team_summary,omitempty"`
	TrackRecord *string `gorm:"column:track_record" json:"track_record,omitempty"`

	// Step 4 — pitch
	PitchSummary *string `gorm:"column:pitch_summary" json:"pitch_summary,omitempty"`

	DisqualifyReason *string    `gorm:"column:disqualify_reason" json:"disqualify_reason,omitempty"`
	SubmittedAt      *time.Time `gorm:"column:submitted_at" json:"submitted_at,omitempty"`
	CreatedAt        time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"column:updated_at" json:"updated_at"`
	DeletedAt        *time.Time `gorm:"column:deleted_at" json:"deleted_at,omitempty"`

	// Relations
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName specifies the table name for Application.
func (Application) TableName() string {
	return "applications"
}

// IsEligibleForAssignment reports whether the application may receive new
// reviewer assignments.
func (a *Application) IsEligibleForAssignment() bool {
	return a.Status == ApplicationStatusSubmitted &&
		a.QualificationStatus != QualificationDisqualified &&
		a.DeletedAt == nil
}
