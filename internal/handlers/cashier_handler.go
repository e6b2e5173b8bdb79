package handlers

import (
	"net/http"
	"strconv"

	"go-ticket-pos/internal/database"
	"go-ticket-pos/internal/middleware"
	"go-ticket-pos/internal/models"
	"go-ticket-pos/internal/pos"
	"go-ticket-pos/internal/printing"
	"go-ticket-pos/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var (
	sessionResource     = resource{module: "cashier", entity: "session"}
	transactionResource = resource{module: "cashier", entity: "transaction"}
	ticketResource      = resource{module: "cashier", entity: "ticket"}
)

type OpenSessionRequest struct {
	CashOnHand *decimal.Decimal `json:"cash_on_hand" binding:"required,gte=0"`
	DeviceID   string           `json:"device_id" binding:"max=50"`
}

type CloseSessionRequest struct {
	ClosingCash *decimal.Decimal `json:"closing_cash" binding:"required,gte=0"`
	Remarks     string           `json:"remarks" binding:"max=255"`
}

type SaleItemRequest struct {
	RateID     uint  `json:"rate_id" binding:"required"`
	Quantity   int   `json:"quantity" binding:"required,gte=1,lte=100"`
	DiscountID *uint `json:"discount_id"`
}

type SaleRequest struct {
	Items         []SaleItemRequest `json:"items" binding:"required,min=1,dive"`
	VIPCardNumber string            `json:"vip_card_number" binding:"max=50"`
	PromoterID    *uint             `json:"promoter_id"`
	PaymentMethod string            `json:"payment_method" binding:"required,oneof=cash card"`
	AmountPaid    decimal.Decimal   `json:"amount_paid" binding:"gte=0"`
}

type VoidRequest struct {
	Reason string `json:"reason" binding:"required,notblank,max=255"`
}

type DisplayRequest struct {
	Line1 string `json:"line1" binding:"max=20"`
	Line2 string `json:"line2" binding:"max=20"`
}

func cashierService() *pos.Cashier {
	return pos.NewCashier(database.DB)
}

func actorOf(c *gin.Context) pos.Actor {
	return pos.Actor{
		UserID:   middleware.UserID(c),
		TenantID: middleware.TenantID(c),
		RoleID:   middleware.RoleID(c),
	}
}

// posError maps cashier workflow errors onto HTTP answers.
func posError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, pos.ErrTransactionNotFound), errors.Is(err, pos.ErrTicketNotFound):
		status = http.StatusNotFound
	case errors.Is(err, pos.ErrNotSessionOwner):
		status = http.StatusForbidden
	case errors.Is(err, pos.ErrSessionAlreadyOpen), errors.Is(err, pos.ErrNoOpenSession),
		errors.Is(err, pos.ErrSessionClosed), errors.Is(err, pos.ErrTransactionVoided),
		errors.Is(err, pos.ErrTicketUsed), errors.Is(err, pos.ErrTicketVoid):
		status = http.StatusConflict
	case errors.Is(err, pos.ErrEmptyCart), errors.Is(err, pos.ErrInvalidQuantity),
		errors.Is(err, pos.ErrRateUnavailable), errors.Is(err, pos.ErrDiscountUnavailable),
		errors.Is(err, pos.ErrVIPRequired), errors.Is(err, pos.ErrInvalidVIP),
		errors.Is(err, pos.ErrPromoterUnavailable), errors.Is(err, pos.ErrInvalidPaymentMethod),
		errors.Is(err, pos.ErrInsufficientPayment), errors.Is(err, pos.ErrNegativeAmount):
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError {
		requestLogger(c).Error("Cashier operation failed: ", err)
		c.JSON(status, gin.H{"error": "Cashier operation failed"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// --- Sessions ---

func OpenSession(c *gin.Context) {
	var input OpenSessionRequest
	if !bindJSON(c, &input) {
		return
	}
	if input.DeviceID == "" {
		input.DeviceID = utils.DeviceID()
	}

	session, err := cashierService().OpenSession(c.Request.Context(), actorOf(c), *input.CashOnHand, input.DeviceID)
	if err != nil {
		posError(c, err)
		return
	}

	recordAudit(c, sessionResource, models.AuditOpen, session.ID, nil, session)
	c.JSON(http.StatusCreated, session)
}

func CurrentSession(c *gin.Context) {
	session, err := cashierService().CurrentSession(c.Request.Context(), actorOf(c))
	if errors.Is(err, pos.ErrNoOpenSession) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		posError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func CloseSession(c *gin.Context) {
	var input CloseSessionRequest
	if !bindJSON(c, &input) {
		return
	}

	session, err := cashierService().CloseSession(c.Request.Context(), actorOf(c), *input.ClosingCash, input.Remarks)
	if err != nil {
		posError(c, err)
		return
	}

	recordAudit(c, sessionResource, models.AuditClose, session.ID, nil, session)
	c.JSON(http.StatusOK, session)
}

// GetCatalog returns what the POS screen sells today.
func GetCatalog(c *gin.Context) {
	cat, err := cashierService().Catalog(c.Request.Context(), middleware.TenantID(c))
	if err != nil {
		posError(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

// --- Transactions ---

func CreateTransaction(c *gin.Context) {
	var input SaleRequest
	if !bindJSON(c, &input) {
		return
	}

	req := pos.SaleRequest{
		VIPCardNumber: input.VIPCardNumber,
		PromoterID:    input.PromoterID,
		PaymentMethod: input.PaymentMethod,
		AmountPaid:    input.AmountPaid,
	}
	for _, item := range input.Items {
		req.Items = append(req.Items, pos.SaleItem{RateID: item.RateID, Quantity: item.Quantity, DiscountID: item.DiscountID})
	}

	sale, err := cashierService().RecordSale(c.Request.Context(), actorOf(c), req)
	if err != nil {
		posError(c, err)
		return
	}

	recordAudit(c, transactionResource, models.AuditCreate, sale.ID, nil, sale)
	c.JSON(http.StatusCreated, sale)
}

// GetTransactions lists the current session's sales.
func GetTransactions(c *gin.Context) {
	list, err := cashierService().SessionTransactions(c.Request.Context(), actorOf(c))
	if err != nil {
		posError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func GetTransaction(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	sale, err := cashierService().GetTransaction(c.Request.Context(), middleware.TenantID(c), id)
	if err != nil {
		posError(c, err)
		return
	}
	c.JSON(http.StatusOK, sale)
}

func VoidTransaction(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var input VoidRequest
	if !bindJSON(c, &input) {
		return
	}

	sale, err := cashierService().Void(c.Request.Context(), actorOf(c), id, input.Reason)
	if err != nil {
		posError(c, err)
		return
	}

	recordAudit(c, transactionResource, models.AuditVoid, sale.ID, nil, gin.H{"reason": input.Reason, "reference_no": sale.ReferenceNo})
	c.JSON(http.StatusOK, sale)
}

// receiptFor loads the transaction and lays out its receipt.
func receiptFor(c *gin.Context) (*models.CashierTransaction, printing.Job, map[string]string, bool) {
	id, ok := paramID(c)
	if !ok {
		return nil, printing.Job{}, nil, false
	}
	sale, err := cashierService().GetTransaction(c.Request.Context(), middleware.TenantID(c), id)
	if err != nil {
		posError(c, err)
		return nil, printing.Job{}, nil, false
	}
	settings, err := database.LoadSettings(database.DB, middleware.TenantID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load settings"})
		return nil, printing.Job{}, nil, false
	}

	width := utils.ParseInt(c.Query("width"), printing.DefaultWidth)
	job := printing.Job{
		Lines:   printing.RenderReceipt(settings, sale, width),
		Tickets: printing.TicketsOf(sale),
	}
	return sale, job, settings, true
}

// GetReceipt returns the receipt lines, for on-screen preview or browser printing.
func GetReceipt(c *gin.Context) {
	sale, job, _, ok := receiptFor(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"reference_no": sale.ReferenceNo, "lines": job.Lines, "tickets": job.Tickets})
}

// agentClient prefers the tenant's printer agent URL over the server-wide one.
func agentClient(settings map[string]string) *printing.Client {
	url := settings[database.SettingPrinterAgentURL]
	if url == "" {
		url = appConfig.PrinterAgentURL
	}
	return printing.NewClient(url)
}

// PrintReceipt sends the receipt and its tickets to the printer agent.
func PrintReceipt(c *gin.Context) {
	sale, job, settings, ok := receiptFor(c)
	if !ok {
		return
	}
	if err := agentClient(settings).Print(c.Request.Context(), job); err != nil {
		requestLogger(c).Warn("Printing ", sale.ReferenceNo, " failed: ", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Sent to printer", "tickets": len(job.Tickets)})
}

// ShowOnDisplay forwards two lines to the pole display when the tenant has one.
func ShowOnDisplay(c *gin.Context) {
	var input DisplayRequest
	if !bindJSON(c, &input) {
		return
	}
	settings, err := database.LoadSettings(database.DB, middleware.TenantID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load settings"})
		return
	}
	if enabled, _ := strconv.ParseBool(settings[database.SettingDisplayEnabled]); !enabled {
		c.JSON(http.StatusConflict, gin.H{"error": "Customer display is disabled"})
		return
	}
	if err := agentClient(settings).Display(c.Request.Context(), input.Line1, input.Line2); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Displayed"})
}
