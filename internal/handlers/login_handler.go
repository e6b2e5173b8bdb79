package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"go-ticket-pos/internal/auth"
	"go-ticket-pos/internal/database"
	"go-ticket-pos/internal/middleware"
	"go-ticket-pos/internal/models"
	"go-ticket-pos/internal/permissions"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var authResource = resource{module: "auth", entity: "user"}

type LoginRequest struct {
	TenantCode string `json:"tenant_code" binding:"required"`
	Username   string `json:"username" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	TenantCode string `json:"tenant_code" binding:"required"`
	Username   string `json:"username" binding:"required,notblank,max=50"`
	Name       string `json:"name" binding:"max=100"`
	Email      string `json:"email" binding:"omitempty,email"`
	Password   string `json:"password" binding:"required,min=8"`
}

// routesFor builds the sidebar routes a role may reach.
func routesFor(db *gorm.DB, roleID uint) ([]permissions.Route, error) {
	var navs []models.Navigation
	if err := db.Find(&navs).Error; err != nil {
		return nil, err
	}

	var perms []models.RolePermission
	if roleID != models.RoleSuperAdmin {
		if err := db.Where("role_id = ?", roleID).Find(&perms).Error; err != nil {
			return nil, err
		}
	}

	return permissions.GenerateRoutes(permissions.BuildTree(navs), perms, roleID == models.RoleSuperAdmin), nil
}

func findTenant(db *gorm.DB, code string) (*models.Tenant, error) {
	var tenant models.Tenant
	err := db.Where("code = ? AND active = ?", strings.ToUpper(strings.TrimSpace(code)), true).First(&tenant).Error
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

func Login(c *gin.Context) {
	var input LoginRequest
	if !bindJSON(c, &input) {
		return
	}
	db := database.DB.WithContext(c.Request.Context())

	tenant, err := findTenant(db, input.TenantCode)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	var user models.User
	if err := db.Preload("Role").
		Where("tenant_id = ? AND username = ?", tenant.ID, input.Username).
		First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if !auth.CheckPassword(user.PasswordHash, input.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if !user.IsActive() {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Account is inactive"})
		return
	}

	token, _, err := auth.GenerateToken(user.ID, user.RoleID, user.TenantID, user.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := db.Model(&user).Update("last_login_at", now).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}

	routes, err := routesFor(db, user.RoleID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build routes"})
		return
	}

	auditAs(c, user.TenantID, user.ID, authResource, models.AuditLogin, user.ID, nil, nil)

	c.JSON(http.StatusOK, gin.H{
		"token":  token,
		"user":   user,
		"tenant": tenant,
		"routes": routes,
	})
}

// Logout revokes the presented token until it would have expired.
func Logout(c *gin.Context) {
	db := database.DB.WithContext(c.Request.Context())
	revoked := models.RevokedToken{
		ID:        c.GetString(middleware.KeyTokenID),
		ExpiresAt: middleware.TokenExpiry(c),
	}
	if err := db.Create(&revoked).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to revoke token"})
		return
	}
	db.Where("expires_at < ?", time.Now()).Delete(&models.RevokedToken{})

	recordAudit(c, authResource, models.AuditLogout, middleware.UserID(c), nil, nil)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me returns the authenticated user with their role and routes.
func Me(c *gin.Context) {
	db := database.DB.WithContext(c.Request.Context())

	var user models.User
	err := db.Preload("Role").Scopes(database.ForTenant(middleware.TenantID(c))).First(&user, middleware.UserID(c)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User no longer exists"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		return
	}

	routes, err := routesFor(db, user.RoleID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build routes"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "routes": routes})
}

// Register bootstraps an admin account for a tenant. Only mounted when registration is allowed.
func Register(c *gin.Context) {
	var input RegisterRequest
	if !bindJSON(c, &input) {
		return
	}
	db := database.DB.WithContext(c.Request.Context())

	tenant, err := findTenant(db, input.TenantCode)
	if err != nil {
		fieldError(c, "tenant_code", "unknown tenant")
		return
	}

	var taken int64
	db.Model(&models.User{}).Unscoped().Where("tenant_id = ? AND username = ?", tenant.ID, input.Username).Count(&taken)
	if taken > 0 {
		fieldError(c, "username", "username has already been taken")
		return
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := models.User{
		TenantID:     tenant.ID,
		Username:     input.Username,
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		RoleID:       models.RoleAdmin,
		Status:       models.StatusActive,
	}
	if err := db.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	auditAs(c, tenant.ID, user.ID, authResource, models.AuditCreate, user.ID, nil, user)
	c.JSON(http.StatusCreated, gin.H{"message": "User created successfully!", "user": user})
}
