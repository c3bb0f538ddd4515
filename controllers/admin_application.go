package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gp-intake-api/config"
	"gp-intake-api/models"

	"github.com/gin-gonic/gin"
)

// GetAdminApplications lists applications for triage, filterable by status
// and qualification.
func GetAdminApplications(c *gin.Context) {
	query := config.DB.Preload("User").Where("deleted_at IS NULL")

	if status := strings.TrimSpace(c.Query("status")); status != "" {
		if status != models.ApplicationStatusDraft && status != models.ApplicationStatusSubmitted {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
			return
		}
		query = query.Where("status = ?", status)
	}
	if qualification := strings.TrimSpace(c.Query("qualification")); qualification != "" {
		switch qualification {
		case models.QualificationPending, models.QualificationQualified, models.QualificationDisqualified:
			query = query.Where("qualification_status = ?", qualification)
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid qualification filter"})
			return
		}
	}

	var apps []models.Application
	if err := query.Order("submitted_at DESC, updated_at DESC").Find(&apps).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch applications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"applications": apps,
		"total":        len(apps),
	})
}

// QualifyApplication marks a submitted application as qualified for review.
func QualifyApplication(c *gin.Context) {
	setQualification(c, models.QualificationQualified)
}

// DisqualifyApplication excludes an application from reviewer assignment.
func DisqualifyApplication(c *gin.Context) {
	setQualification(c, models.QualificationDisqualified)
}

func setQualification(c *gin.Context, target string) {
	applicationID, err := strconv.Atoi(c.Param("id"))
	if err != nil || applicationID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid application ID"})
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	// Body is optional for qualify; disqualification wants a reason.
	_ = c.ShouldBindJSON(&req)
	reason := strings.TrimSpace(req.Reason)
	if target == models.QualificationDisqualified && reason == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A reason is required to disqualify"})
		return
	}

	var app models.Application
	if err := config.DB.
		Where("application_id = ? AND deleted_at IS NULL", applicationID).
		First(&app).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return
	}

	if app.Status != models.ApplicationStatusSubmitted {
		c.JSON(http.StatusConflict, gin.H{"error": "Only submitted applications can be triaged"})
		return
	}

	now := time.Now()
	updates := map[string]interface{}{
		"qualification_status": target,
		"updated_at":           now,
	}
	if target == models.QualificationDisqualified {
		updates["disqualify_reason"] = reason
	} else {
		updates["disqualify_reason"] = nil
	}

	if err := config.DB.Model(&models.Application{}).
		Where("application_id = ?", app.ApplicationID).
		Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update qualification"})
		return
	}

	writeAuditLog(c, "qualification", "application", &app.ApplicationID,
		"Qualification set to "+target,
		map[string]interface{}{"qualification_status": target, "reason": reason})

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Qualification updated",
	})
}

// writeAuditLog records an admin action. Audit failures are logged to the
// response only implicitly; they never fail the action itself.
func writeAuditLog(c *gin.Context, action, entityType string, entityID *int, description string, values map[string]interface{}) {
	userID := c.GetInt("userID")

	audit := models.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		IPAddress:  c.ClientIP(),
		CreatedAt:  time.Now(),
	}
	if description != "" {
		audit.Description = &description
	}
	if values != nil {
		if serialized, err := json.Marshal(values); err == nil {
			s := string(serialized)
			audit.NewValues = &s
		}
	}
	if ua := strings.TrimSpace(c.GetHeader("User-Agent")); ua != "" {
		audit.UserAgent = &ua
	}

	_ = config.DB.Create(&audit).Error
}
