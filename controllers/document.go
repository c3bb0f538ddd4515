package controllers

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gp-intake-api/config"
	"gp-intake-api/models"

	"github.com/gin-gonic/gin"
)

const maxUploadBytes = 20 << 20 // 20 MB

// UploadDocument attaches a file to one of the current user's applications.
func UploadDocument(c *gin.Context) {
	app, ok := loadOwnedApplication(c, false)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File exceeds the 20MB limit"})
		return
	}

	upload := models.FileUpload{
		ApplicationID: app.ApplicationID,
		OriginalName:  fileHeader.Filename,
		FileSize:      fileHeader.Size,
		MimeType:      fileHeader.Header.Get("Content-Type"),
		UploadedBy:    c.GetInt("userID"),
		UploadedAt:    time.Now(),
	}
	if !upload.IsValidDocumentType() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported file type"})
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read upload"})
		return
	}
	defer src.Close()

	hasher := sha1.New()
	if _, err := io.Copy(hasher, src); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read upload"})
		return
	}
	upload.FileHash = hex.EncodeToString(hasher.Sum(nil))

	uploadPath := os.Getenv("UPLOAD_PATH")
	if uploadPath == "" {
		uploadPath = "./uploads"
	}
	relDir := fmt.Sprintf("application_%d", app.ApplicationID)
	if err := os.MkdirAll(filepath.Join(uploadPath, relDir), os.ModePerm); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}

	storedName := fmt.Sprintf("%d_%s", time.Now().UnixNano(), filepath.Base(fileHeader.Filename))
	upload.StoredPath = filepath.Join(relDir, storedName)
	if err := c.SaveUploadedFile(fileHeader, filepath.Join(uploadPath, upload.StoredPath)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}

	if err := config.DB.Create(&upload).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record upload"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"file":    upload,
	})
}

// GetDocuments lists the files attached to an application. Owners, admins
// and assigned reviewers may read the list.
func GetDocuments(c *gin.Context) {
	applicationID, err := strconv.Atoi(c.Param("id"))
	if err != nil || applicationID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid application ID"})
		return
	}

	var app models.Application
	if err := config.DB.
		Where("application_id = ? AND deleted_at IS NULL", applicationID).
		First(&app).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return
	}

	probe := models.FileUpload{ApplicationID: app.ApplicationID, UploadedBy: app.UserID}
	if !canAccessDocument(c, &probe) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	var files []models.FileUpload
	if err := config.DB.
		Where("application_id = ? AND delete_at IS NULL", app.ApplicationID).
		Order("uploaded_at DESC").
		Find(&files).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch documents"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"files":   files,
		"total":   len(files),
	})
}

// DownloadDocument streams a stored file back to its owner, to an admin, or
// to a reviewer assigned to the application.
func DownloadDocument(c *gin.Context) {
	fileID, err := strconv.Atoi(c.Param("file_id"))
	if err != nil || fileID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file ID"})
		return
	}

	var file models.FileUpload
	if err := config.DB.
		Where("file_id = ? AND delete_at IS NULL", fileID).
		First(&file).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}

	if !canAccessDocument(c, &file) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	uploadPath := os.Getenv("UPLOAD_PATH")
	if uploadPath == "" {
		uploadPath = "./uploads"
	}

	fullPath := filepath.Join(uploadPath, file.StoredPath)
	if _, err := os.Stat(fullPath); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File missing from storage"})
		return
	}

	c.FileAttachment(fullPath, file.OriginalName)
}

// DeleteDocument soft-deletes an attachment. Only the uploader or an admin
// may remove it.
func DeleteDocument(c *gin.Context) {
	fileID, err := strconv.Atoi(c.Param("file_id"))
	if err != nil || fileID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file ID"})
		return
	}

	var file models.FileUpload
	if err := config.DB.
		Where("file_id = ? AND delete_at IS NULL", fileID).
		First(&file).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}

	userID := c.GetInt("userID")
	roleID := c.GetInt("roleID")
	if file.UploadedBy != userID && roleID != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	if err := config.DB.Model(&models.FileUpload{}).
		Where("file_id = ?", file.FileID).
		Update("delete_at", time.Now()).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete file"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "File deleted"})
}

func canAccessDocument(c *gin.Context, file *models.FileUpload) bool {
	userID := c.GetInt("userID")
	roleID := c.GetInt("roleID")

	if roleID == models.RoleAdmin || file.UploadedBy == userID {
		return true
	}

	// Reviewers may read documents for applications assigned to them.
	if roleID == models.RoleReviewer {
		var count int64
		config.DB.Model(&models.ReviewerAssignment{}).
			Where("application_id = ? AND reviewer_id = ? AND deleted_at IS NULL",
				file.ApplicationID, userID).
			Count(&count)
		return count > 0
	}

	return false
}
