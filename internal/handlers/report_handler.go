package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"go-ticket-pos/internal/database"
	"go-ticket-pos/internal/middleware"
	"go-ticket-pos/internal/models"
	"go-ticket-pos/internal/reports"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var reportResource = resource{module: "reports", entity: "report"}

// ReportParams are the query parameters shared by the sales and closing reports.
type ReportParams struct {
	From      string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To        string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	CashierID uint   `form:"cashier_id"`
}

// reportFilter binds the query into a tenant filter. Both dates default to today.
func reportFilter(c *gin.Context) (database.ReportFilter, bool) {
	var p ReportParams
	if !bindQuery(c, &p) {
		return database.ReportFilter{}, false
	}
	today := time.Now().Format(models.DateLayout)
	if p.From == "" {
		p.From = today
	}
	if p.To == "" {
		p.To = p.From
	}
	if p.To < p.From {
		fieldError(c, "to", "to must be on or after from")
		return database.ReportFilter{}, false
	}
	return database.ReportFilter{
		TenantID:  middleware.TenantID(c),
		From:      p.From,
		To:        p.To,
		CashierID: p.CashierID,
	}, true
}

func sendWorkbook(c *gin.Context, name string, f database.ReportFilter, data []byte) {
	filename := fmt.Sprintf("%s-%s-to-%s.xlsx", name, f.From, f.To)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, reports.ContentType, data)
}

// --- GET: /api/reports/sales ---
func GetSalesReport(c *gin.Context) {
	f, ok := reportFilter(c)
	if !ok {
		return
	}
	report, err := database.GetSalesReport(f)
	if err != nil {
		requestLogger(c).Error("Sales report failed: ", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to calculate sales report"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// --- GET: /api/reports/sales/export ---
func ExportSalesReport(c *gin.Context) {
	f, ok := reportFilter(c)
	if !ok {
		return
	}
	report, err := database.GetSalesReport(f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to calculate sales report"})
		return
	}
	data, err := reports.SalesWorkbook(report)
	if err != nil {
		requestLogger(c).Error("Sales export failed: ", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export sales report"})
		return
	}

	recordAudit(c, reportResource, models.AuditExport, 0, nil, gin.H{"report": "sales", "filter": f})
	sendWorkbook(c, "sales", f, data)
}

// --- GET: /api/reports/closing ---
func GetClosingReport(c *gin.Context) {
	f, ok := reportFilter(c)
	if !ok {
		return
	}
	report, err := database.GetClosingReport(f)
	if err != nil {
		requestLogger(c).Error("Closing report failed: ", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load closing report"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetClosingSession shows one session with all of its transactions, voided ones included.
func GetClosingSession(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var session models.CashierSession
	err := database.DB.Scopes(database.ForTenant(middleware.TenantID(c))).
		Preload("User").
		Preload("Transactions", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Transactions.Details").
		First(&session, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch session"})
		return
	}
	c.JSON(http.StatusOK, session)
}

// --- GET: /api/reports/closing/export ---
func ExportClosingReport(c *gin.Context) {
	f, ok := reportFilter(c)
	if !ok {
		return
	}
	report, err := database.GetClosingReport(f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load closing report"})
		return
	}
	data, err := reports.ClosingWorkbook(report)
	if err != nil {
		requestLogger(c).Error("Closing export failed: ", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export closing report"})
		return
	}

	recordAudit(c, reportResource, models.AuditExport, 0, nil, gin.H{"report": "closing", "filter": f})
	sendWorkbook(c, "closing", f, data)
}

type DashboardParams struct {
	Date string `form:"date" binding:"omitempty,datetime=2006-01-02"`
}

// --- GET: /api/reports/dashboard ---
func GetDashboard(c *gin.Context) {
	var p DashboardParams
	if !bindQuery(c, &p) {
		return
	}
	if p.Date == "" {
		p.Date = time.Now().Format(models.DateLayout)
	}

	d, err := database.GetDashboard(middleware.TenantID(c), p.Date)
	if err != nil {
		requestLogger(c).Error("Dashboard failed: ", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
		return
	}
	c.JSON(http.StatusOK, d)
}
