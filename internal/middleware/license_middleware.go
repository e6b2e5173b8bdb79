package middleware

import (
	"net/http"
	"time"

	"go-ticket-pos/internal/database"
	"go-ticket-pos/internal/models"

	"github.com/gin-gonic/gin"
)

// CheckLicense locks the API with 402 once the stored license is missing, inactive or expired.
// When enforced is false it is a no-op.
func CheckLicense(enforced bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enforced {
			c.Next()
			return
		}

		var license models.SystemLicense
		if err := database.DB.Order("id DESC").Limit(1).Find(&license).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to read license"})
			return
		}
		if !license.Valid(time.Now()) {
			c.AbortWithStatusJSON(http.StatusPaymentRequired, gin.H{
				"error":   "System license is missing or expired",
				"expired": license.ID != 0,
			})
			return
		}
		c.Next()
	}
}
