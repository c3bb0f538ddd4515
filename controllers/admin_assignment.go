package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"gp-intake-api/config"
	"gp-intake-api/models"
	"gp-intake-api/services"
	"gp-intake-api/utils"

	"github.com/gin-gonic/gin"
)

type assignReviewersRequest struct {
	ReviewerEmails []string `json:"reviewer_emails" binding:"required"`
	RatingsPerApp  int      `json:"ratings_per_app" binding:"required"`
	Logic          string   `json:"logic" binding:"required"`
}

// AssignReviewers runs one allocation: it distributes every eligible
// application across the given reviewers under the requested policy and
// notifies each reviewer that received work.
func AssignReviewers(c *gin.Context) {
	var req assignReviewersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	for _, email := range req.ReviewerEmails {
		if !utils.ValidateEmail(strings.TrimSpace(email)) {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid reviewer email: %s", email)})
			return
		}
	}

	adminID := c.GetInt("userID")

	allocator := services.NewAllocatorService(nil)
	result, err := allocator.Allocate(&services.AllocationRequest{
		ReviewerEmails: req.ReviewerEmails,
		RatingsPerApp:  req.RatingsPerApp,
		Policy:         strings.ToLower(strings.TrimSpace(req.Logic)),
		AssignedBy:     adminID,
	})
	if err != nil {
		var validationErr *services.ValidationError
		switch {
		case errors.As(err, &validationErr):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": validationErr.Message,
				"field": validationErr.Field,
			})
		case errors.Is(err, services.ErrNoEligibleApplications):
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   "No eligible applications found",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assign reviewers"})
		}
		return
	}

	notifier := services.NewAssignmentNotifier()
	emailResults := notifier.NotifyReviewers(result)

	writeAuditLog(c, "allocate", "assignment_batch", nil,
		fmt.Sprintf("Created %d assignments in batch %s", result.TotalAssignments, result.BatchID),
		map[string]interface{}{
			"batch_id":          result.BatchID,
			"logic":             result.Policy,
			"ratings_per_app":   result.RatingsPerApp,
			"total_assignments": result.TotalAssignments,
		})

	c.JSON(http.StatusOK, gin.H{
		"success":            true,
		"batch_id":           result.BatchID,
		"total_applications": result.TotalApplications,
		"total_assignments":  result.TotalAssignments,
		"reviewer_count":     result.ReviewerCount,
		"ratings_per_app":    result.RatingsPerApp,
		"logic":              result.Policy,
		"workload":           result.Workload,
		"reviewers":          result.Reviewers,
		"failures":           result.Failures,
		"email_results":      emailResults,
	})
}

// GetAssignments lists assignments for admins, filterable by batch and
// reviewer.
func GetAssignments(c *gin.Context) {
	query := config.DB.Preload("Application").Preload("Reviewer").
		Where("deleted_at IS NULL")

	if batchID := strings.TrimSpace(c.Query("batch_id")); batchID != "" {
		query = query.Where("batch_id = ?", batchID)
	}
	if reviewerParam := strings.TrimSpace(c.Query("reviewer_id")); reviewerParam != "" {
		reviewerID, err := strconv.Atoi(reviewerParam)
		if err != nil || reviewerID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reviewer ID"})
			return
		}
		query = query.Where("reviewer_id = ?", reviewerID)
	}

	var assignments []models.ReviewerAssignment
	if err := query.Order("assigned_at DESC, assignment_id DESC").Find(&assignments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch assignments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"assignments": assignments,
		"total":       len(assignments),
	})
}
