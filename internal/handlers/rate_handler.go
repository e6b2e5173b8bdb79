package handlers

import (
	"net/http"

	"go-ticket-pos/internal/database"
	"go-ticket-pos/internal/middleware"
	"go-ticket-pos/internal/models"
	"go-ticket-pos/internal/pos"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

var (
	rateResource     = resource{module: "rate-management", entity: "rate"}
	discountResource = resource{module: "rate-management", entity: "discount"}
)

type RateRequest struct {
	Name        string           `json:"name" binding:"required,notblank,max=100"`
	Description string           `json:"description" binding:"max=255"`
	Price       *decimal.Decimal `json:"price" binding:"required,gte=0"`
	Status      string           `json:"status" binding:"omitempty,oneof=active inactive"`
}

type DiscountRequest struct {
	Name        string           `json:"name" binding:"required,notblank,max=100"`
	Type        string           `json:"type" binding:"required,oneof=percentage fixed"`
	Value       *decimal.Decimal `json:"value" binding:"required,gte=0"`
	RequiresVIP bool             `json:"requires_vip"`
	Status      string           `json:"status" binding:"omitempty,oneof=active inactive"`
}

// statusOr returns s, or current when the request left status out.
func statusOr(s, current string) string {
	if s == "" {
		return current
	}
	return s
}

// --- Rates ---

func GetRates(c *gin.Context) {
	var p ListParams
	if !bindQuery(c, &p) {
		return
	}
	q := p.Query()

	db := scoped(c, rateResource).Model(&models.Rate{}).
		Scopes(database.Trashed(q.Trashed), database.Search(q.Search, "name", "description"))
	if p.Status != "" {
		db = db.Where("status = ?", p.Status)
	}

	page, err := database.FindPage[models.Rate](db, q,
		database.Sort(q, []string{"id", "name", "price", "status", "created_at"}, "id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch rates"})
		return
	}
	c.JSON(http.StatusOK, page)
}

func GetRate(c *gin.Context) {
	showRecord[models.Rate](c, rateResource)
}

func CreateRate(c *gin.Context) {
	var input RateRequest
	if !bindJSON(c, &input) {
		return
	}

	rate := models.Rate{
		TenantID:    middleware.TenantID(c),
		Name:        input.Name,
		Description: input.Description,
		Price:       pos.Money(*input.Price),
		Status:      statusOr(input.Status, models.StatusActive),
	}
	if err := database.DB.Create(&rate).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create rate"})
		return
	}

	recordAudit(c, rateResource, models.AuditCreate, rate.ID, nil, rate)
	c.JSON(http.StatusCreated, rate)
}

func UpdateRate(c *gin.Context) {
	rate, ok := loadRecord[models.Rate](c, scoped(c, rateResource), rateResource)
	if !ok {
		return
	}
	var input RateRequest
	if !bindJSON(c, &input) {
		return
	}

	before := *rate
	rate.Name = input.Name
	rate.Description = input.Description
	rate.Price = pos.Money(*input.Price)
	rate.Status = statusOr(input.Status, rate.Status)
	if err := database.DB.Save(rate).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update rate"})
		return
	}

	recordAudit(c, rateResource, models.AuditUpdate, rate.ID, before, rate)
	c.JSON(http.StatusOK, rate)
}

func DeleteRate(c *gin.Context) {
	deleteRecord[models.Rate](c, rateResource)
}

func RestoreRate(c *gin.Context) {
	restoreRecord[models.Rate](c, rateResource)
}

// --- Discounts ---

func GetDiscounts(c *gin.Context) {
	var p ListParams
	if !bindQuery(c, &p) {
		return
	}
	q := p.Query()

	db := scoped(c, discountResource).Model(&models.Discount{}).
		Scopes(database.Trashed(q.Trashed), database.Search(q.Search, "name"))
	if p.Status != "" {
		db = db.Where("status = ?", p.Status)
	}

	page, err := database.FindPage[models.Discount](db, q,
		database.Sort(q, []string{"id", "name", "type", "value", "status", "created_at"}, "id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch discounts"})
		return
	}
	c.JSON(http.StatusOK, page)
}

func GetDiscount(c *gin.Context) {
	showRecord[models.Discount](c, discountResource)
}

func validDiscount(c *gin.Context, input DiscountRequest) bool {
	if input.Type == models.DiscountPercentage && input.Value.GreaterThan(decimal.NewFromInt(100)) {
		fieldError(c, "value", "a percentage discount may not exceed 100")
		return false
	}
	return true
}

func CreateDiscount(c *gin.Context) {
	var input DiscountRequest
	if !bindJSON(c, &input) || !validDiscount(c, input) {
		return
	}

	discount := models.Discount{
		TenantID:    middleware.TenantID(c),
		Name:        input.Name,
		Type:        input.Type,
		Value:       pos.Money(*input.Value),
		RequiresVIP: input.RequiresVIP,
		Status:      statusOr(input.Status, models.StatusActive),
	}
	if err := database.DB.Create(&discount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create discount"})
		return
	}

	recordAudit(c, discountResource, models.AuditCreate, discount.ID, nil, discount)
	c.JSON(http.StatusCreated, discount)
}

func UpdateDiscount(c *gin.Context) {
	discount, ok := loadRecord[models.Discount](c, scoped(c, discountResource), discountResource)
	if !ok {
		return
	}
	var input DiscountRequest
	if !bindJSON(c, &input) || !validDiscount(c, input) {
		return
	}

	before := *discount
	discount.Name = input.Name
	discount.Type = input.Type
	discount.Value = pos.Money(*input.Value)
	discount.RequiresVIP = input.RequiresVIP
	discount.Status = statusOr(input.Status, discount.Status)
	if err := database.DB.Save(discount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update discount"})
		return
	}

	recordAudit(c, discountResource, models.AuditUpdate, discount.ID, before, discount)
	c.JSON(http.StatusOK, discount)
}

func DeleteDiscount(c *gin.Context) {
	deleteRecord[models.Discount](c, discountResource)
}

func RestoreDiscount(c *gin.Context) {
	restoreRecord[models.Discount](c, discountResource)
}
