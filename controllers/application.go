package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gp-intake-api/config"
	"gp-intake-api/models"
	"gp-intake-api/utils"

	"github.com/gin-gonic/gin"
)

// CreateApplication starts a new draft application for the current user.
func CreateApplication(c *gin.Context) {
	userID := c.GetInt("userID")

	var req struct {
		FirmName string `json:"firm_name" binding:"required"`
		FundName string `json:"fund_name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	app := models.Application{
		ApplicationNumber:   generateApplicationNumber(now),
		UserID:              userID,
		Status:              models.ApplicationStatusDraft,
		QualificationStatus: models.QualificationPending,
		CurrentStep:         1,
		FirmName:            utils.SanitizeInput(req.FirmName),
		FundName:            utils.SanitizeInput(req.FundName),
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := config.DB.Create(&app).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create application"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":     true,
		"application": app,
	})
}

// GetApplications lists the current user's applications.
func GetApplications(c *gin.Context) {
	userID := c.GetInt("userID")

	var apps []models.Application
	if err := config.DB.
		Where("user_id = ? AND deleted_at IS NULL", userID).
		Order("created_at DESC").
		Find(&apps).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch applications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"applications": apps,
		"total":        len(apps),
	})
}

// GetApplication returns one application owned by the current user. Admins
// may read any application.
func GetApplication(c *gin.Context) {
	app, ok := loadOwnedApplication(c, true)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"application": app,
	})
}

// applicationStepRequest carries the editable fields for each form step.
// Pointers distinguish "not sent" from "cleared".
type applicationStepRequest struct {
	// Step 1
	FirmName    *string `json:"firm_name"`
	FirmWebsite *string `json:"firm_website"`
	FirmHQ      *string `json:"firm_hq"`
	// Step 2
	FundName     *string  `json:"fund_name"`
	FundNumber   *int     `json:"fund_number"`
	FundSizeMUSD *float64 `json:"fund_size_musd"`
	Strategy     *string  `json:"strategy"`
	// Step 3
	TeamSummary *string `json:"team_summary"`
	TrackRecord *string `json:"track_record"`
	// Step 4
	PitchSummary *string `json:"pitch_summary"`
}

// UpdateApplicationStep saves one step of the intake form on a draft.
func UpdateApplicationStep(c *gin.Context) {
	app, ok := loadOwnedApplication(c, false)
	if !ok {
		return
	}

	if app.Status != models.ApplicationStatusDraft {
		c.JSON(http.StatusConflict, gin.H{"error": "Application is no longer editable"})
		return
	}

	step, err := strconv.Atoi(c.Param("step"))
	if err != nil || step < 1 || step > models.ApplicationFormSteps {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Step must be between 1 and %d", models.ApplicationFormSteps)})
		return
	}

	var req applicationStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if req.FirmName != nil {
		updates["firm_name"] = utils.SanitizeInput(*req.FirmName)
	}
	if req.FirmWebsite != nil {
		updates["firm_website"] = utils.SanitizeInput(*req.FirmWebsite)
	}
	if req.FirmHQ != nil {
		updates["firm_hq"] = utils.SanitizeInput(*req.FirmHQ)
	}
	if req.FundName != nil {
		updates["fund_name"] = utils.SanitizeInput(*req.FundName)
	}
	if req.FundNumber != nil {
		updates["fund_number"] = *req.FundNumber
	}
	if req.FundSizeMUSD != nil {
		updates["fund_size_musd"] = *req.FundSizeMUSD
	}
	if req.Strategy != nil {
		updates["strategy"] = utils.SanitizeInput(*req.Strategy)
	}
	if req.TeamSummary != nil {
		updates["team_summary"] = utils.SanitizeInput(*req.TeamSummary)
	}
	if req.TrackRecord != nil {
		updates["track_record"] = utils.SanitizeInput(*req.TrackRecord)
	}
	if req.PitchSummary != nil {
		updates["pitch_summary"] = utils.SanitizeInput(*req.PitchSummary)
	}
	if step > app.CurrentStep {
		updates["current_step"] = step
	}

	if err := config.DB.Model(&models.Application{}).
		Where("application_id = ?", app.ApplicationID).
		Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save step"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Step saved"})
}

// SubmitApplication finalizes a draft. Required fields across all steps
// must be present.
func SubmitApplication(c *gin.Context) {
	app, ok := loadOwnedApplication(c, false)
	if !ok {
		return
	}

	if app.Status != models.ApplicationStatusDraft {
		c.JSON(http.StatusConflict, gin.H{"error": "Application has already been submitted"})
		return
	}

	var missing []string
	if strings.TrimSpace(app.FirmName) == "" {
		missing = append(missing, "firm_name")
	}
	if strings.TrimSpace(app.FundName) == "" {
		missing = append(missing, "fund_name")
	}
	if app.Strategy == nil || strings.TrimSpace(*app.Strategy) == "" {
		missing = append(missing, "strategy")
	}
	if app.PitchSummary == nil || strings.TrimSpace(*app.PitchSummary) == "" {
		missing = append(missing, "pitch_summary")
	}
	if len(missing) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":          "Application is incomplete",
			"missing_fields": missing,
		})
		return
	}

	now := time.Now()
	if err := config.DB.Model(&models.Application{}).
		Where("application_id = ?", app.ApplicationID).
		Updates(map[string]interface{}{
			"status":       models.ApplicationStatusSubmitted,
			"submitted_at": now,
			"updated_at":   now,
		}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit application"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Application submitted",
	})
}

// DeleteApplication soft-deletes a draft application.
func DeleteApplication(c *gin.Context) {
	app, ok := loadOwnedApplication(c, false)
	if !ok {
		return
	}

	if app.Status != models.ApplicationStatusDraft {
		c.JSON(http.StatusConflict, gin.H{"error": "Submitted applications cannot be deleted"})
		return
	}

	now := time.Now()
	if err := config.DB.Model(&models.Application{}).
		Where("application_id = ?", app.ApplicationID).
		Updates(map[string]interface{}{
			"deleted_at": now,
			"updated_at": now,
		}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete application"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Application deleted"})
}

// loadOwnedApplication loads the :id application and checks ownership.
// With allowAdmin, admins bypass the ownership check.
func loadOwnedApplication(c *gin.Context, allowAdmin bool) (*models.Application, bool) {
	applicationID, err := strconv.Atoi(c.Param("id"))
	if err != nil || applicationID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid application ID"})
		return nil, false
	}

	var app models.Application
	if err := config.DB.
		Where("application_id = ? AND deleted_at IS NULL", applicationID).
		First(&app).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return nil, false
	}

	userID := c.GetInt("userID")
	roleID := c.GetInt("roleID")
	if app.UserID != userID && !(allowAdmin && roleID == models.RoleAdmin) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return nil, false
	}

	return &app, true
}

func generateApplicationNumber(now time.Time) string {
	var count int64
	config.DB.Model(&models.Application{}).
		Where("created_at >= ?", time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())).
		Count(&count)
	return fmt.Sprintf("GP-%d-%04d", now.Year(), count+1)
}
