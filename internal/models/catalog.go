package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Discount types
const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
)

// Rate - a ticket price the cashier can sell (e.g. "Adult", "Child").
type Rate struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	TenantID    uint            `gorm:"index;not null" json:"tenant_id"`
	Name        string          `gorm:"size:100;not null" json:"name"`
	Description string          `gorm:"size:255" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Status      string          `gorm:"size:20;default:active" json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"deleted_at,omitempty"`
}

// Discount - a percentage or fixed-per-unit reduction applied to a sale line.
type Discount struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	TenantID    uint            `gorm:"index;not null" json:"tenant_id"`
	Name        string          `gorm:"size:100;not null" json:"name"`
	Type        string          `gorm:"size:20;not null" json:"type"`
	Value       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"value"`
	RequiresVIP bool            `gorm:"column:requires_vip;default:false" json:"requires_vip"`
	Status      string          `gorm:"size:20;default:active" json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"deleted_at,omitempty"`
}
