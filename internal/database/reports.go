package database

import (
	"go-ticket-pos/internal/models"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReportFilter selects completed sales of one tenant between two business dates (inclusive).
type ReportFilter struct {
	TenantID  uint   `json:"-"`
	From      string `json:"from"`
	To        string `json:"to"`
	CashierID uint   `json:"cashier_id,omitempty"`
}

// SalesTotals is the headline of the sales report.
type SalesTotals struct {
	Transactions int64           `json:"transactions"`
	Tickets      int64           `json:"tickets"`
	Gross        decimal.Decimal `json:"gross"`
	Discount     decimal.Decimal `json:"discount"`
	Net          decimal.Decimal `json:"net"`
}

// RateSales is one row of the by-rate breakdown.
type RateSales struct {
	RateID   uint            `json:"rate_id"`
	RateName string          `json:"rate_name"`
	Quantity int64           `json:"quantity"`
	Gross    decimal.Decimal `json:"gross"`
	Discount decimal.Decimal `json:"discount"`
	Net      decimal.Decimal `json:"net"`
}

// DailySales is one row of the by-day breakdown.
type DailySales struct {
	BusinessDate string          `json:"business_date"`
	Transactions int64           `json:"transactions"`
	Net          decimal.Decimal `json:"net"`
}

// CashierSales is one row of the by-cashier breakdown.
type CashierSales struct {
	UserID       uint            `json:"user_id"`
	Username     string          `json:"username"`
	Transactions int64           `json:"transactions"`
	Net          decimal.Decimal `json:"net"`
}

// SalesReport holds what the sales report page and the assistant need.
type SalesReport struct {
	Filter    ReportFilter   `json:"filter"`
	Totals    SalesTotals    `json:"totals"`
	ByRate    []RateSales    `json:"by_rate"`
	ByDay     []DailySales   `json:"by_day"`
	ByCashier []CashierSales `json:"by_cashier"`
}

func completedSales(f ReportFilter) *gorm.DB {
	q := DB.Table("cashier_transactions AS t").
		Where("t.tenant_id = ? AND t.status = ?", f.TenantID, models.TransactionCompleted).
		Where("t.business_date BETWEEN ? AND ?", f.From, f.To)
	if f.CashierID != 0 {
		q = q.Where("t.user_id = ?", f.CashierID)
	}
	return q
}

// GetSalesReport calculates sales within a business date range. Voided sales are excluded.
func GetSalesReport(f ReportFilter) (*SalesReport, error) {
	report := &SalesReport{
		Filter:    f,
		ByRate:    []RateSales{},
		ByDay:     []DailySales{},
		ByCashier: []CashierSales{},
	}

	// COALESCE ensures we get 0 instead of NULL if no sales exist
	err := completedSales(f).
		Select("COUNT(*) AS transactions, " +
			"COALESCE(SUM(t.gross_amount), 0) AS gross, " +
			"COALESCE(SUM(t.discount_amount), 0) AS discount, " +
			"COALESCE(SUM(t.net_amount), 0) AS net").
		Scan(&report.Totals).Error
	if err != nil {
		return nil, errors.Wrap(err, "sales totals")
	}

	err = completedSales(f).
		Joins("JOIN cashier_transaction_details AS d ON d.transaction_id = t.id").
		Select("d.rate_id AS rate_id, d.rate_name AS rate_name, " +
			"COALESCE(SUM(d.quantity), 0) AS quantity, " +
			"COALESCE(SUM(d.gross_amount), 0) AS gross, " +
			"COALESCE(SUM(d.discount_amount), 0) AS discount, " +
			"COALESCE(SUM(d.net_amount), 0) AS net").
		Group("d.rate_id, d.rate_name").
		Order("net DESC").
		Scan(&report.ByRate).Error
	if err != nil {
		return nil, errors.Wrap(err, "sales by rate")
	}
	for i := range report.ByRate {
		r := &report.ByRate[i]
		r.Gross, r.Discount, r.Net = r.Gross.Round(2), r.Discount.Round(2), r.Net.Round(2)
		report.Totals.Tickets += r.Quantity
	}
	t := &report.Totals
	t.Gross, t.Discount, t.Net = t.Gross.Round(2), t.Discount.Round(2), t.Net.Round(2)

	err = completedSales(f).
		Select("t.business_date AS business_date, COUNT(*) AS transactions, COALESCE(SUM(t.net_amount), 0) AS net").
		Group("t.business_date").
		Order("t.business_date ASC").
		Scan(&report.ByDay).Error
	if err != nil {
		return nil, errors.Wrap(err, "sales by day")
	}
	for i := range report.ByDay {
		report.ByDay[i].Net = report.ByDay[i].Net.Round(2)
	}

	err = completedSales(f).
		Joins("JOIN users AS u ON u.id = t.user_id").
		Select("t.user_id AS user_id, u.username AS username, COUNT(*) AS transactions, COALESCE(SUM(t.net_amount), 0) AS net").
		Group("t.user_id, u.username").
		Order("net DESC").
		Scan(&report.ByCashier).Error
	if err != nil {
		return nil, errors.Wrap(err, "sales by cashier")
	}
	for i := range report.ByCashier {
		report.ByCashier[i].Net = report.ByCashier[i].Net.Round(2)
	}

	return report, nil
}

// ClosingTotals sums the reconciliation columns of the listed sessions.
type ClosingTotals struct {
	Sessions      int             `json:"sessions"`
	CashOnHand    decimal.Decimal `json:"cash_on_hand"`
	TotalSales    decimal.Decimal `json:"total_sales"`
	TotalDiscount decimal.Decimal `json:"total_discount"`
	ExpectedCash  decimal.Decimal `json:"expected_cash"`
	ClosingCash   decimal.Decimal `json:"closing_cash"`
	Variance      decimal.Decimal `json:"variance"`
}

// ClosingReport lists closed cashier sessions with their reconciliation.
type ClosingReport struct {
	Filter   ReportFilter            `json:"filter"`
	Sessions []models.CashierSession `json:"sessions"`
	Totals   ClosingTotals           `json:"totals"`
}

// GetClosingReport loads closed sessions opened between the filter dates.
func GetClosingReport(f ReportFilter) (*ClosingReport, error) {
	q := DB.Scopes(ForTenant(f.TenantID)).
		Preload("User").
		Where("status = ?", models.SessionClosed).
		Where("business_date BETWEEN ? AND ?", f.From, f.To)
	if f.CashierID != 0 {
		q = q.Where("user_id = ?", f.CashierID)
	}

	report := &ClosingReport{Filter: f, Sessions: []models.CashierSession{}}
	if err := q.Order("opened_at ASC").Find(&report.Sessions).Error; err != nil {
		return nil, errors.Wrap(err, "closing sessions")
	}

	t := &report.Totals
	for _, s := range report.Sessions {
		t.Sessions++
		t.CashOnHand = t.CashOnHand.Add(s.CashOnHand)
		t.TotalSales = t.TotalSales.Add(s.TotalSales)
		t.TotalDiscount = t.TotalDiscount.Add(s.TotalDiscount)
		t.ExpectedCash = t.ExpectedCash.Add(s.ExpectedCash)
		t.ClosingCash = t.ClosingCash.Add(s.ClosingCash)
		t.Variance = t.Variance.Add(s.Variance)
	}
	return report, nil
}

// Dashboard is the landing page summary for one business date.
type Dashboard struct {
	BusinessDate     string           `json:"business_date"`
	Sales            SalesTotals      `json:"sales"`
	OpenSessions     int64            `json:"open_sessions"`
	PromoterOfTheDay *models.Promoter `json:"promoter_of_the_day"`
	ActiveVIPs       int64            `json:"active_vips"`
	TicketsRedeemed  int64            `json:"tickets_redeemed"`
}

// GetDashboard summarises one tenant's business date.
func GetDashboard(tenantID uint, businessDate string) (*Dashboard, error) {
	sales, err := GetSalesReport(ReportFilter{TenantID: tenantID, From: businessDate, To: businessDate})
	if err != nil {
		return nil, errors.Wrap(err, "dashboard sales")
	}

	d := &Dashboard{BusinessDate: businessDate, Sales: sales.Totals}

	if err := DB.Model(&models.CashierSession{}).Scopes(ForTenant(tenantID)).
		Where("status = ?", models.SessionOpen).Count(&d.OpenSessions).Error; err != nil {
		return nil, errors.Wrap(err, "count open sessions")
	}
	if err := DB.Model(&models.VIP{}).Scopes(ForTenant(tenantID)).
		Where("status = ?", models.VIPActive).Count(&d.ActiveVIPs).Error; err != nil {
		return nil, errors.Wrap(err, "count active vips")
	}
	if err := DB.Model(&models.CashierTicket{}).Scopes(ForTenant(tenantID)).
		Where("status = ?", models.TicketUsed).
		Where("transaction_id IN (?)", DB.Model(&models.CashierTransaction{}).Select("id").
			Where("tenant_id = ? AND business_date = ?", tenantID, businessDate)).
		Count(&d.TicketsRedeemed).Error; err != nil {
		return nil, errors.Wrap(err, "count redeemed tickets")
	}

	promoter, err := PromoterOfTheDay(DB, tenantID, businessDate)
	if err != nil {
		return nil, err
	}
	d.PromoterOfTheDay = promoter
	return d, nil
}

// PromoterOfTheDay returns the active promoter scheduled on the date, or nil when nobody is.
func PromoterOfTheDay(db *gorm.DB, tenantID uint, date string) (*models.Promoter, error) {
	var schedule models.PromoterSchedule
	err := db.Scopes(ForTenant(tenantID)).
		Preload("Promoter", "status = ?", models.StatusActive).
		Where("schedule_date = ?", date).
		Limit(1).
		Find(&schedule).Error
	if err != nil {
		return nil, errors.Wrap(err, "promoter of the day")
	}
	if schedule.ID == 0 || schedule.Promoter == nil {
		return nil, nil
	}
	return schedule.Promoter, nil
}
