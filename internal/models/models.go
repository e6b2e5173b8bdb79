package models

import (
	"time"

	"gorm.io/gorm"
)

// Built-in role IDs. They are seeded with fixed primary keys so the panel can rely on them.
const (
	RoleSuperAdmin uint = 1
	RoleAdmin      uint = 2
	RoleSupervisor uint = 3
	RoleCashier    uint = 4
)

// Record status values shared by users and the catalog tables.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Tenant - one business using the back office. Every tenant-owned row carries its ID.
type Tenant struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Code      string         `gorm:"uniqueIndex;size:20;not null" json:"code"`
	Name      string         `gorm:"size:100;not null" json:"name"`
	Active    bool           `gorm:"default:true" json:"active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// User - a back-office or cashier account, unique by username inside a tenant.
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	TenantID     uint           `gorm:"uniqueIndex:idx_users_tenant_username;not null" json:"tenant_id"`
	Username     string         `gorm:"uniqueIndex:idx_users_tenant_username;size:50;not null" json:"username"`
	Name         string         `gorm:"size:100" json:"name"`
	Email        string         `gorm:"size:100" json:"email"`
	PasswordHash string         `json:"-"` // Never return this in JSON
	RoleID       uint           `gorm:"index;not null" json:"role_id"`
	Role         *Role          `json:"role,omitempty"`
	Status       string         `gorm:"size:20;default:active" json:"status"`
	LastLoginAt  *time.Time     `json:"last_login_at"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// IsActive reports whether the account may log in.
func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

// Role - a global set of permissions. The first four rows are the built-in roles.
type Role struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	Name        string           `gorm:"uniqueIndex;size:50;not null" json:"name"`
	Description string           `gorm:"size:255" json:"description"`
	Permissions []RolePermission `gorm:"foreignKey:RoleID" json:"permissions,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	DeletedAt   gorm.DeletedAt   `gorm:"index" json:"deleted_at,omitempty"`
}

// IsBuiltIn reports whether the role is one of the seeded system roles.
func (r *Role) IsBuiltIn() bool {
	return r.ID >= RoleSuperAdmin && r.ID <= RoleCashier
}

// RolePermission - junction between a role and a navigation entry with CRUD flags.
type RolePermission struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	RoleID       uint        `gorm:"uniqueIndex:idx_role_navigation;not null" json:"role_id"`
	NavigationID uint        `gorm:"uniqueIndex:idx_role_navigation;not null" json:"navigation_id"`
	Navigation   *Navigation `json:"navigation,omitempty"`
	CanView      bool        `json:"can_view"`
	CanCreate    bool        `json:"can_create"`
	CanUpdate    bool        `json:"can_update"`
	CanDelete    bool        `json:"can_delete"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// Allows reports whether the flag for the given action is set.
func (p *RolePermission) Allows(action string) bool {
	switch action {
	case ActionView:
		return p.CanView
	case ActionCreate:
		return p.CanCreate
	case ActionUpdate:
		return p.CanUpdate
	case ActionDelete:
		return p.CanDelete
	}
	return false
}

// Permission actions
const (
	ActionView   = "view"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// RevokedToken - a logged-out JWT, kept until it would have expired anyway.
type RevokedToken struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	ExpiresAt time.Time `gorm:"index" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
