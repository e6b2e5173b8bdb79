package models

import (
	"time"

	"gorm.io/datatypes"
)

// Audit actions
const (
	AuditCreate   = "create"
	AuditUpdate   = "update"
	AuditDelete   = "delete"
	AuditRestore  = "restore"
	AuditLogin    = "login"
	AuditLogout   = "logout"
	AuditOpen     = "open"
	AuditClose    = "close"
	AuditVoid     = "void"
	AuditRedeem   = "redeem"
	AuditExport   = "export"
	AuditActivate = "activate"
)

// AuditTrail - who changed what, with before and after snapshots.
type AuditTrail struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	TenantID  uint           `gorm:"index;not null" json:"tenant_id"`
	UserID    *uint          `gorm:"index" json:"user_id"`
	User      *User          `json:"user,omitempty"`
	Module    string         `gorm:"size:50;index" json:"module"`
	Action    string         `gorm:"size:50;index" json:"action"`
	Entity    string         `gorm:"size:50" json:"entity"`
	EntityID  *uint          `json:"entity_id"`
	OldValues datatypes.JSON `json:"old_values"`
	NewValues datatypes.JSON `json:"new_values"`
	IPAddress string         `gorm:"size:45" json:"ip_address"`
	UserAgent string         `gorm:"size:255" json:"user_agent"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
}
