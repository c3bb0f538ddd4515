package models

import "time"

// FileUpload represents a document attached to an application. Files land
// on local disk under UPLOAD_PATH; stored_path is relative to it.
type FileUpload struct {
	FileID        int        `gorm:"primaryKey;column:file_id" json:"file_id"`
	ApplicationID int        `gorm:"column:application_id" json:"application_id"`
	OriginalName  string     `gorm:"column:original_name" json:"original_name"`
	StoredPath    string     `gorm:"column:stored_path" json:"stored_path"`
	FileSize      int64      `gorm:"column:file_size" json:"file_size"`
	MimeType      string     `gorm:"column:mime_type" json:"mime_type"`
	FileHash      string     `gorm:"column:file_hash" json:"file_hash"`
	UploadedBy    int        `gorm:"column:uploaded_by" json:"uploaded_by"`
	UploadedAt    time.Time  `gorm:"column:uploaded_at" json:"uploaded_at"`
	DeleteAt      *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Uploader *User `gorm:"foreignKey:UploadedBy" json:"uploader,omitempty"`
}

// TableName overrides
func (FileUpload) TableName() string {
	return "file_uploads"
}

// IsValidDocumentType reports whether the mime type is acceptable for an
// application attachment.
func (f *FileUpload) IsValidDocumentType() bool {
	validTypes := []string{
		"application/pdf",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/vnd.ms-excel",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	}
	for _, validType := range validTypes {
		if f.MimeType == validType {
			return true
		}
	}
	return false
}

func (f *FileUpload) GetFileSizeInMB() float64 {
	return float64(f.FileSize) / (1024 * 1024)
}
