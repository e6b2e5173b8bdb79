// Package pos implements the cashier workflow: session open/close with cash reconciliation,
// sale recording with discount lines and ticket codes, voids and ticket redemption.
package pos

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go-ticket-pos/internal/database"
	"go-ticket-pos/internal/models"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Actor is the authenticated user performing a cashier operation.
type Actor struct {
	UserID   uint
	TenantID uint
	RoleID   uint
}

// IsSupervisor reports whether the actor may act on other cashiers' transactions.
func (a Actor) IsSupervisor() bool {
	return a.RoleID == models.RoleSuperAdmin || a.RoleID == models.RoleAdmin || a.RoleID == models.RoleSupervisor
}

// SaleItem is one cart line as sent by the POS screen.
type SaleItem struct {
	RateID     uint
	Quantity   int
	DiscountID *uint
}

// SaleRequest is a whole cart.
type SaleRequest struct {
	Items         []SaleItem
	VIPCardNumber string
	PromoterID    *uint
	PaymentMethod string
	AmountPaid    decimal.Decimal
}

// Catalog is what the POS screen needs to build a cart.
type Catalog struct {
	Rates            []models.Rate     `json:"rates"`
	Discounts        []models.Discount `json:"discounts"`
	PromoterOfTheDay *models.Promoter  `json:"promoter_of_the_day"`
	BusinessDate     string            `json:"business_date"`
}

// Cashier runs the POS workflow against a database.
type Cashier struct {
	db      *gorm.DB
	now     func() time.Time
	newCode func() string
}

// NewCashier creates a Cashier bound to db.
func NewCashier(db *gorm.DB) *Cashier {
	return &Cashier{db: db, now: time.Now, newCode: newTicketCode}
}

func newTicketCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
}

func (c *Cashier) today() string {
	return c.now().Format(models.DateLayout)
}

func locked(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// OpenSession starts a shift for the actor with the counted opening float.
func (c *Cashier) OpenSession(ctx context.Context, actor Actor, cashOnHand decimal.Decimal, deviceID string) (*models.CashierSession, error) {
	if cashOnHand.IsNegative() {
		return nil, ErrNegativeAmount
	}

	var session models.CashierSession
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Serialize opens per user on the user row.
		var user models.User
		if err := locked(tx).Scopes(database.ForTenant(actor.TenantID)).First(&user, actor.UserID).Error; err != nil {
			return errors.Wrap(err, "load cashier")
		}

		var open int64
		if err := tx.Model(&models.CashierSession{}).
			Scopes(database.ForTenant(actor.TenantID)).
			Where("user_id = ? AND status = ?", actor.UserID, models.SessionOpen).
			Count(&open).Error; err != nil {
			return errors.Wrap(err, "count open sessions")
		}
		if open > 0 {
			return ErrSessionAlreadyOpen
		}

		now := c.now()
		session = models.CashierSession{
			TenantID:     actor.TenantID,
			UserID:       actor.UserID,
			DeviceID:     deviceID,
			Status:       models.SessionOpen,
			BusinessDate: now.Format(models.DateLayout),
			CashOnHand:   Money(cashOnHand),
			OpenedAt:     now,
		}
		return errors.Wrap(tx.Create(&session).Error, "create session")
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// CurrentSession returns the actor's open session.
func (c *Cashier) CurrentSession(ctx context.Context, actor Actor) (*models.CashierSession, error) {
	return c.openSession(c.db.WithContext(ctx), actor, false)
}

func (c *Cashier) openSession(tx *gorm.DB, actor Actor, lock bool) (*models.CashierSession, error) {
	q := tx
	if lock {
		q = locked(tx)
	}
	var session models.CashierSession
	err := q.Scopes(database.ForTenant(actor.TenantID)).
		Where("user_id = ? AND status = ?", actor.UserID, models.SessionOpen).
		Order("id DESC").
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoOpenSession
	}
	if err != nil {
		return nil, errors.Wrap(err, "load open session")
	}
	return &session, nil
}

// CloseSession ends the actor's shift, recording the counted drawer and the reconciliation.
func (c *Cashier) CloseSession(ctx context.Context, actor Actor, closingCash decimal.Decimal, remarks string) (*models.CashierSession, error) {
	if closingCash.IsNegative() {
		return nil, ErrNegativeAmount
	}

	var session *models.CashierSession
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		session, err = c.openSession(tx, actor, true)
		if err != nil {
			return err
		}

		var completed []models.CashierTransaction
		if err := tx.Preload("Details").
			Where("session_id = ? AND status = ?", session.ID, models.TransactionCompleted).
			Find(&completed).Error; err != nil {
			return errors.Wrap(err, "load session transactions")
		}

		closing := Money(closingCash)
		r := Reconcile(session.CashOnHand, closing, completed)
		now := c.now()

		session.Status = models.SessionClosed
		session.ClosingCash = closing
		session.CashSales = r.CashSales
		session.CardSales = r.CardSales
		session.TotalSales = r.TotalSales
		session.TotalDiscount = r.TotalDiscount
		session.ExpectedCash = r.ExpectedCash
		session.Variance = r.Variance
		session.TransactionCount = r.Transactions
		session.TicketCount = r.Tickets
		session.Remarks = remarks
		session.ClosedAt = &now

		return errors.Wrap(tx.Save(session).Error, "close session")
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// Catalog lists the active rates and discounts and today's promoter.
func (c *Cashier) Catalog(ctx context.Context, tenantID uint) (*Catalog, error) {
	db := c.db.WithContext(ctx)
	cat := &Catalog{BusinessDate: c.today()}

	if err := db.Scopes(database.ForTenant(tenantID)).
		Where("status = ?", models.StatusActive).
		Order("name ASC").
		Find(&cat.Rates).Error; err != nil {
		return nil, errors.Wrap(err, "load rates")
	}
	if err := db.Scopes(database.ForTenant(tenantID)).
		Where("status = ?", models.StatusActive).
		Order("name ASC").
		Find(&cat.Discounts).Error; err != nil {
		return nil, errors.Wrap(err, "load discounts")
	}

	promoter, err := database.PromoterOfTheDay(db, tenantID, cat.BusinessDate)
	if err != nil {
		return nil, errors.Wrap(err, "load promoter of the day")
	}
	cat.PromoterOfTheDay = promoter
	return cat, nil
}

// CheckVIPCard looks up a card and returns it with the reason it cannot be used, if any.
// A missing card yields a nil VIP and a reason.
func CheckVIPCard(db *gorm.DB, tenantID uint, cardNumber string, at time.Time) (*models.VIP, string, error) {
	var vip models.VIP
	err := db.Scopes(database.ForTenant(tenantID)).
		Where("card_number = ?", strings.TrimSpace(cardNumber)).
		First(&vip).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "card not found", nil
	}
	if err != nil {
		return nil, "", errors.Wrap(err, "load VIP card")
	}
	return &vip, vip.CheckValidity(at), nil
}

// RecordSale prices the cart, takes the payment and issues one ticket per unit, all in one
// database transaction against the actor's locked open session.
func (c *Cashier) RecordSale(ctx context.Context, actor Actor, req SaleRequest) (*models.CashierTransaction, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}

	var sale models.CashierTransaction
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session, err := c.openSession(tx, actor, true)
		if err != nil {
			return err
		}

		var vip *models.VIP
		if req.VIPCardNumber != "" {
			card, reason, err := CheckVIPCard(tx, actor.TenantID, req.VIPCardNumber, c.now())
			if err != nil {
				return err
			}
			if reason != "" {
				return errors.Wrap(ErrInvalidVIP, reason)
			}
			vip = card
		}

		promoter, err := c.resolvePromoter(tx, actor.TenantID, req.PromoterID, session.BusinessDate)
		if err != nil {
			return err
		}

		details := make([]models.CashierTransactionDetail, 0, len(req.Items))
		lines := make([]Line, 0, len(req.Items))
		for i, item := range req.Items {
			var rate models.Rate
			err := tx.Scopes(database.ForTenant(actor.TenantID)).
				Where("status = ?", models.StatusActive).
				First(&rate, item.RateID).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.Wrapf(ErrRateUnavailable, "item %d: rate %d", i+1, item.RateID)
			}
			if err != nil {
				return errors.Wrap(err, "load rate")
			}

			var discount *models.Discount
			if item.DiscountID != nil {
				var d models.Discount
				err := tx.Scopes(database.ForTenant(actor.TenantID)).
					Where("status = ?", models.StatusActive).
					First(&d, *item.DiscountID).Error
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return errors.Wrapf(ErrDiscountUnavailable, "item %d: discount %d", i+1, *item.DiscountID)
				}
				if err != nil {
					return errors.Wrap(err, "load discount")
				}
				if d.RequiresVIP && vip == nil {
					return errors.Wrapf(ErrVIPRequired, "item %d: %s", i+1, d.Name)
				}
				discount = &d
			}

			line, err := PriceLine(rate.Price, item.Quantity, discount)
			if err != nil {
				return errors.Wrapf(err, "item %d", i+1)
			}
			lines = append(lines, line)

			detail := models.CashierTransactionDetail{
				RateID:         rate.ID,
				RateName:       rate.Name,
				Quantity:       line.Quantity,
				UnitPrice:      line.UnitPrice,
				GrossAmount:    line.Gross,
				DiscountAmount: line.Discount,
				NetAmount:      line.Net,
			}
			if discount != nil {
				detail.DiscountID = &discount.ID
				detail.DiscountName = discount.Name
			}
			details = append(details, detail)
		}

		totals := SumLines(lines)
		paid, change, err := Settle(req.PaymentMethod, totals.Net, req.AmountPaid)
		if err != nil {
			return err
		}

		reference, err := nextReference(tx, actor.TenantID, session.BusinessDate)
		if err != nil {
			return err
		}

		sale = models.CashierTransaction{
			TenantID:       actor.TenantID,
			SessionID:      session.ID,
			UserID:         actor.UserID,
			ReferenceNo:    reference,
			BusinessDate:   session.BusinessDate,
			PaymentMethod:  req.PaymentMethod,
			GrossAmount:    totals.Gross,
			DiscountAmount: totals.Discount,
			NetAmount:      totals.Net,
			AmountPaid:     paid,
			ChangeDue:      change,
			Status:         models.TransactionCompleted,
			Details:        details,
		}
		if promoter != nil {
			sale.PromoterID = &promoter.ID
		}
		if vip != nil {
			sale.VIPID = &vip.ID
		}
		if err := tx.Omit("Promoter", "VIP", "User").Create(&sale).Error; err != nil {
			return errors.Wrap(err, "create transaction")
		}

		tickets := make([]models.CashierTicket, 0, totals.Units)
		for _, d := range sale.Details {
			for n := 0; n < d.Quantity; n++ {
				tickets = append(tickets, models.CashierTicket{
					TenantID:            actor.TenantID,
					TransactionID:       sale.ID,
					TransactionDetailID: d.ID,
					RateID:              d.RateID,
					RateName:            d.RateName,
					Code:                c.newCode(),
					Status:              models.TicketValid,
				})
			}
		}
		if err := tx.Create(&tickets).Error; err != nil {
			return errors.Wrap(err, "issue tickets")
		}
		sale.Tickets = tickets
		sale.Promoter = promoter
		sale.VIP = vip
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (c *Cashier) resolvePromoter(tx *gorm.DB, tenantID uint, promoterID *uint, businessDate string) (*models.Promoter, error) {
	if promoterID == nil {
		p, err := database.PromoterOfTheDay(tx, tenantID, businessDate)
		return p, errors.Wrap(err, "load promoter of the day")
	}

	var p models.Promoter
	err := tx.Scopes(database.ForTenant(tenantID)).
		Where("status = ?", models.StatusActive).
		First(&p, *promoterID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrapf(ErrPromoterUnavailable, "promoter %d", *promoterID)
	}
	if err != nil {
		return nil, errors.Wrap(err, "load promoter")
	}
	return &p, nil
}

// nextReference hands out <TENANT>-<YYYYMMDD>-<seq> numbers from a locked per-day counter.
func nextReference(tx *gorm.DB, tenantID uint, businessDate string) (string, error) {
	var tenant models.Tenant
	if err := tx.First(&tenant, tenantID).Error; err != nil {
		return "", errors.Wrap(err, "load tenant")
	}

	seq := models.ReferenceSequence{TenantID: tenantID, BusinessDate: businessDate}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seq).Error; err != nil {
		return "", errors.Wrap(err, "init reference sequence")
	}
	if err := locked(tx).
		Where("tenant_id = ? AND business_date = ?", tenantID, businessDate).
		First(&seq).Error; err != nil {
		return "", errors.Wrap(err, "lock reference sequence")
	}

	seq.LastValue++
	if err := tx.Model(&models.ReferenceSequence{}).
		Where("tenant_id = ? AND business_date = ?", tenantID, businessDate).
		Update("last_value", seq.LastValue).Error; err != nil {
		return "", errors.Wrap(err, "bump reference sequence")
	}

	return fmt.Sprintf("%s-%s-%06d", tenant.Code, strings.ReplaceAll(businessDate, "-", ""), seq.LastValue), nil
}

// GetTransaction loads one transaction with its lines, tickets, promoter and VIP.
func (c *Cashier) GetTransaction(ctx context.Context, tenantID, id uint) (*models.CashierTransaction, error) {
	var t models.CashierTransaction
	err := c.db.WithContext(ctx).
		Scopes(database.ForTenant(tenantID)).
		Preload("Details").Preload("Tickets").Preload("Promoter").Preload("VIP").Preload("User").
		First(&t, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "load transaction")
	}
	return &t, nil
}

// SessionTransactions lists the transactions of the actor's open session, newest first.
func (c *Cashier) SessionTransactions(ctx context.Context, actor Actor) ([]models.CashierTransaction, error) {
	db := c.db.WithContext(ctx)
	session, err := c.openSession(db, actor, false)
	if err != nil {
		return nil, err
	}

	out := []models.CashierTransaction{}
	if err := db.Preload("Details").
		Where("session_id = ?", session.ID).
		Order("id DESC").
		Find(&out).Error; err != nil {
		return nil, errors.Wrap(err, "load session transactions")
	}
	return out, nil
}

// Void cancels a completed transaction of a still open session and voids its tickets.
// Cashiers may only void their own session's sales; a sale with a redeemed ticket cannot be voided.
func (c *Cashier) Void(ctx context.Context, actor Actor, id uint, reason string) (*models.CashierTransaction, error) {
	var sale models.CashierTransaction
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := locked(tx).Scopes(database.ForTenant(actor.TenantID)).First(&sale, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTransactionNotFound
		}
		if err != nil {
			return errors.Wrap(err, "load transaction")
		}
		if sale.Status == models.TransactionVoided {
			return ErrTransactionVoided
		}

		var session models.CashierSession
		if err := locked(tx).First(&session, sale.SessionID).Error; err != nil {
			return errors.Wrap(err, "load session")
		}
		if !session.IsOpen() {
			return ErrSessionClosed
		}
		if session.UserID != actor.UserID && !actor.IsSupervisor() {
			return ErrNotSessionOwner
		}

		var used int64
		if err := tx.Model(&models.CashierTicket{}).
			Where("transaction_id = ? AND status = ?", sale.ID, models.TicketUsed).
			Count(&used).Error; err != nil {
			return errors.Wrap(err, "count used tickets")
		}
		if used > 0 {
			return errors.Wrapf(ErrTicketUsed, "%d ticket(s) already admitted", used)
		}

		now := c.now()
		sale.Status = models.TransactionVoided
		sale.VoidReason = reason
		sale.VoidedAt = &now
		sale.VoidedBy = &actor.UserID
		if err := tx.Model(&sale).Select("Status", "VoidReason", "VoidedAt", "VoidedBy").Updates(&sale).Error; err != nil {
			return errors.Wrap(err, "void transaction")
		}

		return errors.Wrap(tx.Model(&models.CashierTicket{}).
			Where("transaction_id = ?", sale.ID).
			Update("status", models.TicketVoid).Error, "void tickets")
	})
	if err != nil {
		return nil, err
	}
	return c.GetTransaction(ctx, actor.TenantID, sale.ID)
}

// FindTicket looks a ticket up by its printed code.
func (c *Cashier) FindTicket(ctx context.Context, tenantID uint, code string) (*models.CashierTicket, error) {
	var ticket models.CashierTicket
	err := c.db.WithContext(ctx).Scopes(database.ForTenant(tenantID)).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&ticket).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "load ticket")
	}
	return &ticket, nil
}

// RedeemTicket admits a valid ticket once.
func (c *Cashier) RedeemTicket(ctx context.Context, actor Actor, code string) (*models.CashierTicket, error) {
	var ticket models.CashierTicket
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := locked(tx).Scopes(database.ForTenant(actor.TenantID)).
			Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
			First(&ticket).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTicketNotFound
		}
		if err != nil {
			return errors.Wrap(err, "load ticket")
		}

		switch ticket.Status {
		case models.TicketUsed:
			return ErrTicketUsed
		case models.TicketVoid:
			return ErrTicketVoid
		}

		now := c.now()
		ticket.Status = models.TicketUsed
		ticket.UsedAt = &now
		ticket.UsedBy = &actor.UserID
		return errors.Wrap(tx.Model(&ticket).Select("Status", "UsedAt", "UsedBy").Updates(&ticket).Error, "redeem ticket")
	})
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}
