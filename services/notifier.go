package services

import (
	"fmt"
	"html/template"
	"log"

	"gp-intake-api/config"
)

// EmailResult is the outcome of one notification email.
type EmailResult struct {
	Email string `json:"email"`
	Sent  bool   `json:"sent"`
	Error string `json:"error,omitempty"`
}

// AssignmentNotifier emails each reviewer that received new work in an
// allocation run. Delivery failures are captured per recipient; they are
// never escalated into a failure of the allocation itself, and no retry
// happens here.
type AssignmentNotifier struct {
	send func(to []string, subject, html string) error
}

func NewAssignmentNotifier() *AssignmentNotifier {
	return &AssignmentNotifier{send: config.SendMail}
}

// NotifyReviewers sends one email per reviewer with a non-zero new count.
func (n *AssignmentNotifier) NotifyReviewers(result *AllocationResult) []EmailResult {
	results := make([]EmailResult, 0, len(result.Workload))
	for _, w := range result.Workload {
		if w.AssignedCount == 0 {
			continue
		}

		subject := fmt.Sprintf("You have %d new fund application(s) to review", w.AssignedCount)
		html := buildAssignmentEmail(w, result)

		if err := n.send([]string{w.Email}, subject, html); err != nil {
			log.Printf("allocation %s: failed to notify %s: %v", result.BatchID, w.Email, err)
			results = append(results, EmailResult{Email: w.Email, Sent: false, Error: err.Error()})
			continue
		}
		results = append(results, EmailResult{Email: w.Email, Sent: true})
	}
	return results
}

func buildAssignmentEmail(w ReviewerWorkload, result *AllocationResult) string {
	escapedName := template.HTMLEscapeString(w.Name)
	return fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px;">
			<h2>New review assignments</h2>
			<p>Dear %s,</p>
			<p>You have been assigned <strong>%d</strong> fund application(s) to review.</p>
			<p>Please sign in to the review portal to see your queue.</p>
			<p style="color:#888; font-size:12px;">Batch %s</p>
		</div>`,
		escapedName, w.AssignedCount, template.HTMLEscapeString(result.BatchID))
}
