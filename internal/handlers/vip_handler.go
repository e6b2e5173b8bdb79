package handlers

import (
	"net/http"
	"strings"
	"time"

	"go-ticket-pos/internal/database"
	"go-ticket-pos/internal/middleware"
	"go-ticket-pos/internal/models"
	"go-ticket-pos/internal/pos"

	"github.com/gin-gonic/gin"
)

var vipResource = resource{module: "vip-management", entity: "vip"}

type VIPRequest struct {
	CardNumber    string    `json:"card_number" binding:"required,notblank,max=50"`
	Name          string    `json:"name" binding:"required,notblank,max=100"`
	Email         string    `json:"email" binding:"omitempty,email,max=100"`
	ContactNumber string    `json:"contact_number" binding:"max=30"`
	ValidFrom     time.Time `json:"valid_from" binding:"required"`
	ValidUntil    time.Time `json:"valid_until" binding:"required,gtfield=ValidFrom"`
	Status        string    `json:"status" binding:"omitempty,oneof=active inactive revoked"`
}

func GetVIPs(c *gin.Context) {
	var p ListParams
	if !bindQuery(c, &p) {
		return
	}
	q := p.Query()

	db := scoped(c, vipResource).Model(&models.VIP{}).
		Scopes(database.Trashed(q.Trashed), database.Search(q.Search, "card_number", "name", "email"))
	if p.Status != "" {
		db = db.Where("status = ?", p.Status)
	}

	page, err := database.FindPage[models.VIP](db, q,
		database.Sort(q, []string{"id", "card_number", "name", "valid_until", "status", "created_at"}, "id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch VIP cards"})
		return
	}
	c.JSON(http.StatusOK, page)
}

func GetVIP(c *gin.Context) {
	showRecord[models.VIP](c, vipResource)
}

func cardNumberTaken(c *gin.Context, card string, exceptID uint) bool {
	var n int64
	q := database.DB.Unscoped().Model(&models.VIP{}).
		Where("tenant_id = ? AND card_number = ?", middleware.TenantID(c), card)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	q.Count(&n)
	return n > 0
}

func CreateVIP(c *gin.Context) {
	var input VIPRequest
	if !bindJSON(c, &input) {
		return
	}
	input.CardNumber = strings.TrimSpace(input.CardNumber)
	if cardNumberTaken(c, input.CardNumber, 0) {
		fieldError(c, "card_number", "card number has already been taken")
		return
	}

	vip := models.VIP{
		TenantID:      middleware.TenantID(c),
		CardNumber:    input.CardNumber,
		Name:          input.Name,
		Email:         input.Email,
		ContactNumber: input.ContactNumber,
		ValidFrom:     input.ValidFrom,
		ValidUntil:    input.ValidUntil,
		Status:        statusOr(input.Status, models.StatusActive),
	}
	if err := database.DB.Create(&vip).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create VIP card"})
		return
	}

	recordAudit(c, vipResource, models.AuditCreate, vip.ID, nil, vip)
	c.JSON(http.StatusCreated, vip)
}

func UpdateVIP(c *gin.Context) {
	vip, ok := loadRecord[models.VIP](c, scoped(c, vipResource), vipResource)
	if !ok {
		return
	}
	var input VIPRequest
	if !bindJSON(c, &input) {
		return
	}
	input.CardNumber = strings.TrimSpace(input.CardNumber)
	if cardNumberTaken(c, input.CardNumber, vip.ID) {
		fieldError(c, "card_number", "card number has already been taken")
		return
	}

	before := *vip
	vip.CardNumber = input.CardNumber
	vip.Name = input.Name
	vip.Email = input.Email
	vip.ContactNumber = input.ContactNumber
	vip.ValidFrom = input.ValidFrom
	vip.ValidUntil = input.ValidUntil
	vip.Status = statusOr(input.Status, vip.Status)
	if err := database.DB.Save(vip).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update VIP card"})
		return
	}

	recordAudit(c, vipResource, models.AuditUpdate, vip.ID, before, vip)
	c.JSON(http.StatusOK, vip)
}

func DeleteVIP(c *gin.Context) {
	deleteRecord[models.VIP](c, vipResource)
}

func RestoreVIP(c *gin.Context) {
	restoreRecord[models.VIP](c, vipResource)
}

// CheckVIPCard tells the POS whether a swiped card can be used right now.
func CheckVIPCard(c *gin.Context) {
	vip, reason, err := pos.CheckVIPCard(database.DB.WithContext(c.Request.Context()), middleware.TenantID(c), c.Param("card_number"), time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check VIP card"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": reason == "", "reason": reason, "vip": vip})
}
