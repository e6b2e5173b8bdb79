package models

import (
	"time"

	"gorm.io/gorm"
)

// MediaLibrary - an uploaded file served from the uploads directory.
type MediaLibrary struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	TenantID     uint           `gorm:"index;not null" json:"tenant_id"`
	FileName     string         `gorm:"size:191;not null" json:"file_name"`
	OriginalName string         `gorm:"size:191" json:"original_name"`
	MimeType     string         `gorm:"size:100;index" json:"mime_type"`
	Size         int64          `json:"size"`
	Path         string         `gorm:"size:255" json:"-"`
	URL          string         `gorm:"size:255" json:"url"`
	AltText      string         `gorm:"size:255" json:"alt_text"`
	UploadedBy   uint           `json:"uploaded_by"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}
