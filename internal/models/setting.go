package models

import "time"

// SystemSetting - one key/value pair of a tenant's configuration.
type SystemSetting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TenantID  uint      `gorm:"uniqueIndex:idx_setting_tenant_key;not null" json:"tenant_id"`
	Key       string    `gorm:"column:setting_key;uniqueIndex:idx_setting_tenant_key;size:100;not null" json:"key"`
	Value     string    `gorm:"column:setting_value;type:text" json:"value"`
	UpdatedBy uint      `json:"updated_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SystemLicense - activation state of this installation, bound to the machine's device ID.
type SystemLicense struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	LicenseKey     string    `gorm:"size:100" json:"license_key"`
	DeviceID       string    `gorm:"size:50" json:"device_id"`
	ExpirationDate time.Time `json:"expiration_date"`
	IsActive       bool      `json:"is_active"`
	ActivatedAt    time.Time `json:"activated_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Valid reports whether the license is active and not yet expired at the given time.
func (l *SystemLicense) Valid(at time.Time) bool {
	return l.ID != 0 && l.IsActive && at.Before(l.ExpirationDate)
}
