package models

import "time"

// Navigation - one entry of the sidebar tree. ParentID nil marks a root.
type Navigation struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	ParentID  *uint        `gorm:"index" json:"parent_id"`
	Name      string       `gorm:"size:100;not null" json:"name"`
	Slug      string       `gorm:"uniqueIndex;size:100;not null" json:"slug"`
	Path      string       `gorm:"size:191" json:"path"`
	Icon      string       `gorm:"size:50" json:"icon"`
	SortOrder int          `gorm:"default:0" json:"sort_order"`
	Children  []Navigation `gorm:"-" json:"children,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}
