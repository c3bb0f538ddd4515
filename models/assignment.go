package models

import "time"

// Assignment statuses. The allocator only ever writes "pending"; the
// reviewer workflow moves assignments through the rest.
const (
	AssignmentStatusPending   = "pending"
	AssignmentStatusInReview  = "in_review"
	AssignmentStatusCompleted = "completed"
	AssignmentStatusDeclined  = "declined"
)

// Allocation policies recorded on each assignment.
const (
	PolicyBalanced = "balanced"
	PolicyRandom   = "random"
)

// ReviewerAssignment pairs one reviewer with one application. The unique
// index on (application_id, reviewer_id) is the cross-run guard against
// duplicate pairings; concurrent allocation runs racing on the same pair
// resolve at the database, not in process.
type ReviewerAssignment struct {
	AssignmentID  int        `gorm:"primaryKey;column:assignment_id" json:"assignment_id"`
	ApplicationID int        `gorm:"column:application_id;uniqueIndex:uniq_application_reviewer" json:"application_id"`
	ReviewerID    int        `gorm:"column:reviewer_id;uniqueIndex:uniq_application_reviewer" json:"reviewer_id"`
	AssignedBy    int        `gorm:"column:assigned_by" json:"assigned_by"`
	BatchID       string     `gorm:"column:batch_id;size:36;index" json:"batch_id"`
	Policy        string     `gorm:"column:policy" json:"policy"`
	Status        string     `gorm:"column:status" json:"status"`
	AssignedAt    time.Time  `gorm:"column:assigned_at" json:"assigned_at"`
	CreatedAt     time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at" json:"updated_at"`
	DeletedAt     *time.Time `gorm:"column:deleted_at" json:"deleted_at,omitempty"`

	// Relations
	Application *Application `gorm:"foreignKey:ApplicationID" json:"application,omitempty"`
	Reviewer    *User        `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`
}

// TableName specifies the table name for ReviewerAssignment.
func (ReviewerAssignment) TableName() string {
	return "reviewer_assignments"
}

// CanTransitionTo reports whether the reviewer workflow allows moving the
// assignment to the given status.
func (a *ReviewerAssignment) CanTransitionTo(status string) bool {
	switch a.Status {
	case AssignmentStatusPending:
		return status == AssignmentStatusInReview || status == AssignmentStatusDeclined
	case AssignmentStatusInReview:
		return status == AssignmentStatusCompleted || status == AssignmentStatusDeclined
	default:
		return false
	}
}
