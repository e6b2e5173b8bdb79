package models

import (
	"time"

	"gorm.io/gorm"
)

// DateLayout is the format of business and schedule dates.
const DateLayout = "2006-01-02"

// Promoter - a person credited with the sales of the days they are scheduled.
type Promoter struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	TenantID      uint           `gorm:"index;not null" json:"tenant_id"`
	Name          string         `gorm:"size:100;not null" json:"name"`
	ContactNumber string         `gorm:"size:30" json:"contact_number"`
	Email         string         `gorm:"size:100" json:"email"`
	Status        string         `gorm:"size:20;default:active" json:"status"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// PromoterSchedule - the promoter "of the day". One row per tenant and date.
type PromoterSchedule struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	TenantID     uint      `gorm:"uniqueIndex:idx_schedule_tenant_date;not null" json:"tenant_id"`
	ScheduleDate string    `gorm:"uniqueIndex:idx_schedule_tenant_date;size:10;not null" json:"schedule_date"`
	PromoterID   uint      `gorm:"index;not null" json:"promoter_id"`
	Promoter     *Promoter `json:"promoter,omitempty"`
	Notes        string    `gorm:"size:255" json:"notes"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
