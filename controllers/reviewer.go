package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"gp-intake-api/config"
	"gp-intake-api/models"

	"github.com/gin-gonic/gin"
)

// GetMyAssignments lists the current reviewer's live assignments.
func GetMyAssignments(c *gin.Context) {
	reviewerID := c.GetInt("userID")

	query := config.DB.Preload("Application").
		Where("reviewer_id = ? AND deleted_at IS NULL", reviewerID)

	if status := strings.TrimSpace(c.Query("status")); status != "" {
		query = query.Where("status = ?", status)
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

// UpdateAssignmentStatus moves one of the reviewer's own assignments
// through the review workflow (pending -> in_review -> completed, or
// declined from either).
func UpdateAssignmentStatus(c *gin.Context) {
	assignmentID, err := strconv.Atoi(c.Param("id"))
	if err != nil || assignmentID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignment ID"})
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	target := strings.ToLower(strings.TrimSpace(req.Status))
	switch target {
	case models.AssignmentStatusInReview, models.AssignmentStatusCompleted, models.AssignmentStatusDeclined:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status must be 'in_review', 'completed' or 'declined'"})
		return
	}

	reviewerID := c.GetInt("userID")

	var assignment models.ReviewerAssignment
	if err := config.DB.
		Where("assignment_id = ? AND reviewer_id = ? AND deleted_at IS NULL", assignmentID, reviewerID).
		First(&assignment).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Assignment not found"})
		return
	}

	if !assignment.CanTransitionTo(target) {
		c.JSON(http.StatusConflict, gin.H{"error": "Invalid status transition from " + assignment.Status})
		return
	}

	if err := config.DB.Model(&models.ReviewerAssignment{}).
		Where("assignment_id = ?", assignment.AssignmentID).
		Updates(map[string]interface{}{
			"status":     target,
			"updated_at": time.Now(),
		}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update assignment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Assignment updated",
	})
}
