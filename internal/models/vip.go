package models

import (
	"time"

	"gorm.io/gorm"
)

// VIP card status values
const (
	VIPActive   = "active"
	VIPInactive = "inactive"
	VIPRevoked  = "revoked"
)

// VIP - a membership card that unlocks VIP-only discounts.
type VIP struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	TenantID      uint           `gorm:"uniqueIndex:idx_vip_tenant_card;not null" json:"tenant_id"`
	CardNumber    string         `gorm:"uniqueIndex:idx_vip_tenant_card;size:50;not null" json:"card_number"`
	Name          string         `gorm:"size:100;not null" json:"name"`
	Email         string         `gorm:"size:100" json:"email"`
	ContactNumber string         `gorm:"size:30" json:"contact_number"`
	ValidFrom     time.Time      `json:"valid_from"`
	ValidUntil    time.Time      `json:"valid_until"`
	Status        string         `gorm:"size:20;default:active" json:"status"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (VIP) TableName() string {
	return "vips"
}

// CheckValidity returns an empty string when the card can be used at the given time,
// otherwise the reason it cannot.
func (v *VIP) CheckValidity(at time.Time) string {
	switch {
	case v.Status == VIPRevoked:
		return "card has been revoked"
	case v.Status != VIPActive:
		return "card is inactive"
	case at.Before(v.ValidFrom):
		return "card is not yet valid"
	case !v.ValidUntil.IsZero() && at.After(v.ValidUntil):
		return "card has expired"
	}
	return ""
}
