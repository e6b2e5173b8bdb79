package handlers

import (
	"net/http"

	"go-ticket-pos/internal/database"
	"go-ticket-pos/internal/models"

	"github.com/gin-gonic/gin"
)

var auditResource = resource{module: "reports", entity: "audit trail"}

type AuditListParams struct {
	ListParams
	Module string `form:"module"`
	Action string `form:"action"`
	UserID uint   `form:"user_id"`
	From   string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To     string `form:"to" binding:"omitempty,datetime=2006-01-02"`
}

// GetAuditTrails pages through the tenant's audit trail, newest first by default.
func GetAuditTrails(c *gin.Context) {
	var p AuditListParams
	if !bindQuery(c, &p) {
		return
	}
	q := p.Query()

	db := scoped(c, auditResource).Model(&models.AuditTrail{}).
		Scopes(database.Search(q.Search, "entity", "ip_address"))
	if p.Module != "" {
		db = db.Where("module = ?", p.Module)
	}
	if p.Action != "" {
		db = db.Where("action = ?", p.Action)
	}
	if p.UserID != 0 {
		db = db.Where("user_id = ?", p.UserID)
	}
	if p.From != "" {
		db = db.Where("created_at >= ?", p.From+" 00:00:00")
	}
	if p.To != "" {
		db = db.Where("created_at <= ?", p.To+" 23:59:59")
	}

	page, err := database.FindPage[models.AuditTrail](db, q,
		database.Sort(q, []string{"id", "module", "action", "created_at"}, "id"),
		preload("User"),
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch audit trail"})
		return
	}
	c.JSON(http.StatusOK, page)
}
