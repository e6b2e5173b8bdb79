package handlers

import (
	"encoding/json"

	"go-ticket-pos/internal/database"
	"go-ticket-pos/internal/middleware"
	"go-ticket-pos/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

// recordAudit appends an audit trail row for the current request. A failure is logged
// and never fails the request.
func recordAudit(c *gin.Context, r resource, action string, entityID uint, oldValues, newValues interface{}) {
	auditAs(c, middleware.TenantID(c), middleware.UserID(c), r, action, entityID, oldValues, newValues)
}

// auditAs records on behalf of a user that is not yet in the request context, e.g. at login.
func auditAs(c *gin.Context, tenantID, userID uint, r resource, action string, entityID uint, oldValues, newValues interface{}) {
	entry := models.AuditTrail{
		TenantID:  tenantID,
		Module:    r.module,
		Action:    action,
		Entity:    r.entity,
		OldValues: snapshot(oldValues),
		NewValues: snapshot(newValues),
		IPAddress: c.ClientIP(),
		UserAgent: truncate(c.Request.UserAgent(), 255),
	}
	if userID != 0 {
		entry.UserID = &userID
	}
	if entityID != 0 {
		entry.EntityID = &entityID
	}
	writeAudit(c, entry)
}

func writeAudit(c *gin.Context, entry models.AuditTrail) {
	if err := database.DB.Create(&entry).Error; err != nil {
		requestLogger(c).Error("Failed to write audit trail: ", err)
	}
}

func snapshot(v interface{}) datatypes.JSON {
	if v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
