package middleware

import (
	"net/http"
	"strings"
	"time"

	"go-ticket-pos/internal/auth"
	"go-ticket-pos/internal/database"
	"go-ticket-pos/internal/models"

	"github.com/gin-gonic/gin"
)

// Context keys set by AuthMiddleware
const (
	KeyUserID      = "userID"
	KeyRoleID      = "roleID"
	KeyTenantID    = "tenantID"
	KeyUsername    = "username"
	KeyTokenID     = "tokenID"
	KeyTokenExpiry = "tokenExpiry"
)

// AuthMiddleware checks if the user has a valid, non-revoked JWT token
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Format: "Bearer <token>"
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header must start with Bearer"})
			return
		}

		claims, err := auth.ValidateToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		var revoked int64
		if err := database.DB.Model(&models.RevokedToken{}).Where("id = ?", claims.ID).Count(&revoked).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify token"})
			return
		}
		if revoked > 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token has been revoked"})
			return
		}

		// Deleted or deactivated accounts lose access immediately; the role comes from the row.
		var user models.User
		err = database.DB.Where("id = ? AND tenant_id = ?", claims.UserID, claims.TenantID).Limit(1).Find(&user).Error
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify token"})
			return
		}
		if user.ID == 0 || !user.IsActive() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Account is no longer active"})
			return
		}

		c.Set(KeyUserID, user.ID)
		c.Set(KeyRoleID, user.RoleID)
		c.Set(KeyTenantID, user.TenantID)
		c.Set(KeyUsername, user.Username)
		c.Set(KeyTokenID, claims.ID)
		if claims.ExpiresAt != nil {
			c.Set(KeyTokenExpiry, claims.ExpiresAt.Time)
		}

		c.Next()
	}
}

// RequireRole lets only the listed roles through. The super admin is always allowed.
func RequireRole(allowed ...uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := RoleID(c)
		if role == models.RoleSuperAdmin {
			c.Next()
			return
		}
		for _, id := range allowed {
			if role == id {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You do not have permission to access this resource"})
	}
}

// RequirePermission checks the role's permission row for the navigation entry with the given
// slug. The super admin bypasses the check.
func RequirePermission(slug, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := RoleID(c)
		if role == models.RoleSuperAdmin {
			c.Next()
			return
		}

		var perm models.RolePermission
		err := database.DB.
			Joins("JOIN navigations ON navigations.id = role_permissions.navigation_id").
			Where("role_permissions.role_id = ? AND navigations.slug = ?", role, slug).
			Limit(1).
			Find(&perm).Error
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to check permissions"})
			return
		}
		if perm.ID == 0 || !perm.Allows(action) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You do not have permission to " + action + " " + slug})
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated user's ID.
func UserID(c *gin.Context) uint {
	return c.GetUint(KeyUserID)
}

// RoleID returns the authenticated user's role ID.
func RoleID(c *gin.Context) uint {
	return c.GetUint(KeyRoleID)
}

// TenantID returns the tenant the authenticated user belongs to.
func TenantID(c *gin.Context) uint {
	return c.GetUint(KeyTenantID)
}

// TokenExpiry returns when the presented token expires.
func TokenExpiry(c *gin.Context) time.Time {
	return c.GetTime(KeyTokenExpiry)
}
