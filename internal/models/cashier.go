package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cashier session status values
const (
	SessionOpen   = "open"
	SessionClosed = "closed"
)

// Transaction status values
const (
	TransactionCompleted = "completed"
	TransactionVoided    = "voided"
)

// Payment methods
const (
	PaymentCash = "cash"
	PaymentCard = "card"
)

// Ticket status values
const (
	TicketValid = "valid"
	TicketUsed  = "used"
	TicketVoid  = "void"
)

// CashierSession - one cash-drawer shift. Totals are filled in when the session closes.
type CashierSession struct {
	ID               uint                 `gorm:"primaryKey" json:"id"`
	TenantID         uint                 `gorm:"index;not null" json:"tenant_id"`
	UserID           uint                 `gorm:"index;not null" json:"user_id"`
	User             *User                `json:"user,omitempty"`
	DeviceID         string               `gorm:"size:50" json:"device_id"`
	Status           string               `gorm:"size:20;index;not null" json:"status"`
	BusinessDate     string               `gorm:"size:10;index;not null" json:"business_date"`
	CashOnHand       decimal.Decimal      `gorm:"type:decimal(12,2);not null" json:"cash_on_hand"`
	ClosingCash      decimal.Decimal      `gorm:"type:decimal(12,2)" json:"closing_cash"`
	CashSales        decimal.Decimal      `gorm:"type:decimal(12,2)" json:"cash_sales"`
	CardSales        decimal.Decimal      `gorm:"type:decimal(12,2)" json:"card_sales"`
	TotalSales       decimal.Decimal      `gorm:"type:decimal(12,2)" json:"total_sales"`
	TotalDiscount    decimal.Decimal      `gorm:"type:decimal(12,2)" json:"total_discount"`
	ExpectedCash     decimal.Decimal      `gorm:"type:decimal(12,2)" json:"expected_cash"`
	Variance         decimal.Decimal      `gorm:"type:decimal(12,2)" json:"variance"`
	TransactionCount int                  `json:"transaction_count"`
	TicketCount      int                  `json:"ticket_count"`
	Remarks          string               `gorm:"size:255" json:"remarks"`
	OpenedAt         time.Time            `json:"opened_at"`
	ClosedAt         *time.Time           `json:"closed_at"`
	Transactions     []CashierTransaction `gorm:"foreignKey:SessionID" json:"transactions,omitempty"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
}

// IsOpen reports whether transactions may still be recorded against the session.
func (s *CashierSession) IsOpen() bool {
	return s.Status == SessionOpen
}

// CashierTransaction - one sale. Amounts are snapshots taken at the time of sale.
type CashierTransaction struct {
	ID             uint                       `gorm:"primaryKey" json:"id"`
	TenantID       uint                       `gorm:"index;not null" json:"tenant_id"`
	SessionID      uint                       `gorm:"index;not null" json:"session_id"`
	UserID         uint                       `gorm:"index;not null" json:"user_id"`
	User           *User                      `json:"user,omitempty"`
	ReferenceNo    string                     `gorm:"uniqueIndex;size:40;not null" json:"reference_no"`
	BusinessDate   string                     `gorm:"size:10;index;not null" json:"business_date"`
	PromoterID     *uint                      `gorm:"index" json:"promoter_id"`
	Promoter       *Promoter                  `json:"promoter,omitempty"`
	VIPID          *uint                      `gorm:"column:vip_id;index" json:"vip_id"`
	VIP            *VIP                       `gorm:"foreignKey:VIPID" json:"vip,omitempty"`
	PaymentMethod  string                     `gorm:"size:20;not null" json:"payment_method"`
	GrossAmount    decimal.Decimal            `gorm:"type:decimal(12,2);not null" json:"gross_amount"`
	DiscountAmount decimal.Decimal            `gorm:"type:decimal(12,2);not null" json:"discount_amount"`
	NetAmount      decimal.Decimal            `gorm:"type:decimal(12,2);not null" json:"net_amount"`
	AmountPaid     decimal.Decimal            `gorm:"type:decimal(12,2);not null" json:"amount_paid"`
	ChangeDue      decimal.Decimal            `gorm:"type:decimal(12,2);not null" json:"change_due"`
	Status         string                     `gorm:"size:20;index;not null" json:"status"`
	VoidReason     string                     `gorm:"size:255" json:"void_reason,omitempty"`
	VoidedAt       *time.Time                 `json:"voided_at,omitempty"`
	VoidedBy       *uint                      `json:"voided_by,omitempty"`
	Details        []CashierTransactionDetail `gorm:"foreignKey:TransactionID" json:"details,omitempty"`
	Tickets        []CashierTicket            `gorm:"foreignKey:TransactionID" json:"tickets,omitempty"`
	CreatedAt      time.Time                  `json:"created_at"`
	UpdatedAt      time.Time                  `json:"updated_at"`
}

// CashierTransactionDetail - one sale line: a rate, a quantity and an optional discount.
type CashierTransactionDetail struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	TransactionID  uint            `gorm:"index;not null" json:"transaction_id"`
	RateID         uint            `gorm:"index;not null" json:"rate_id"`
	RateName       string          `gorm:"size:100" json:"rate_name"`
	Quantity       int             `gorm:"not null" json:"quantity"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	GrossAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"gross_amount"`
	DiscountID     *uint           `json:"discount_id"`
	DiscountName   string          `gorm:"size:100" json:"discount_name,omitempty"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"discount_amount"`
	NetAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"net_amount"`
	CreatedAt      time.Time       `json:"created_at"`
}

// CashierTicket - one admission, identified by the code printed as a QR.
type CashierTicket struct {
	ID                  uint       `gorm:"primaryKey" json:"id"`
	TenantID            uint       `gorm:"index;not null" json:"tenant_id"`
	TransactionID       uint       `gorm:"index;not null" json:"transaction_id"`
	TransactionDetailID uint       `gorm:"index" json:"transaction_detail_id"`
	RateID              uint       `json:"rate_id"`
	RateName            string     `gorm:"size:100" json:"rate_name"`
	Code                string     `gorm:"uniqueIndex;size:40;not null" json:"code"`
	Status              string     `gorm:"size:20;index;not null" json:"status"`
	UsedAt              *time.Time `json:"used_at"`
	UsedBy              *uint      `json:"used_by"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// ReferenceSequence - per tenant and business date counter for transaction reference numbers.
type ReferenceSequence struct {
	TenantID     uint   `gorm:"primaryKey;autoIncrement:false"`
	BusinessDate string `gorm:"primaryKey;size:10"`
	LastValue    int    `gorm:"not null"`
}
