// Package testutil sets up an in-memory database and authenticated requests for tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"go-ticket-pos/internal/auth"
	"go-ticket-pos/internal/config"
	"go-ticket-pos/internal/database"
	"go-ticket-pos/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Seeded credentials
const (
	TenantCode    = "MAIN"
	AdminUsername = "superadmin"
	AdminPassword = "secret123"
	UserPassword  = "password123"
	JWTSecret     = "test-secret-0123456789"
)

// SetupDB opens a private in-memory SQLite database, migrates and seeds it, and installs it
// as database.DB until the test ends.
func SetupDB(t *testing.T) (*gorm.DB, *models.Tenant) {
	t.Helper()

	db, err := database.Open(config.DatabaseSettings{
		Driver:     config.DriverSQLite,
		DSN:        fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		MaxRetries: 1,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	tenant, err := database.Seed(db, database.SeedOptions{
		TenantCode:    TenantCode,
		TenantName:    "Main Branch",
		AdminUsername: AdminUsername,
		AdminPassword: AdminPassword,
	})
	require.NoError(t, err)

	prev := database.DB
	database.DB = db
	auth.Configure(config.AuthSettings{JWTSecret: JWTSecret, TokenTTL: time.Hour})

	t.Cleanup(func() {
		database.DB = prev
		_ = database.Close(db)
	})
	return db, tenant
}

// CreateTenant adds a second tenant.
func CreateTenant(t *testing.T, db *gorm.DB, code string) *models.Tenant {
	t.Helper()
	tenant := &models.Tenant{Code: code, Name: code + " Branch", Active: true}
	require.NoError(t, db.Create(tenant).Error)
	return tenant
}

// CreateUser adds an active user with UserPassword.
func CreateUser(t *testing.T, db *gorm.DB, tenantID uint, username string, roleID uint) *models.User {
	t.Helper()
	hash, err := auth.HashPassword(UserPassword)
	require.NoError(t, err)

	user := &models.User{
		TenantID:     tenantID,
		Username:     username,
		Name:         username,
		PasswordHash: hash,
		RoleID:       roleID,
		Status:       models.StatusActive,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// Admin returns the seeded super admin.
func Admin(t *testing.T, db *gorm.DB, tenantID uint) *models.User {
	t.Helper()
	var user models.User
	require.NoError(t, db.Where("tenant_id = ? AND username = ?", tenantID, AdminUsername).First(&user).Error)
	return &user
}

// CreateRate adds an active rate.
func CreateRate(t *testing.T, db *gorm.DB, tenantID uint, name, price string) *models.Rate {
	t.Helper()
	rate := &models.Rate{TenantID: tenantID, Name: name, Price: decimal.RequireFromString(price), Status: models.StatusActive}
	require.NoError(t, db.Create(rate).Error)
	return rate
}

// CreateDiscount adds an active discount.
func CreateDiscount(t *testing.T, db *gorm.DB, tenantID uint, name, kind, value string, requiresVIP bool) *models.Discount {
	t.Helper()
	discount := &models.Discount{
		TenantID:    tenantID,
		Name:        name,
		Type:        kind,
		Value:       decimal.RequireFromString(value),
		RequiresVIP: requiresVIP,
		Status:      models.StatusActive,
	}
	require.NoError(t, db.Create(discount).Error)
	return discount
}

// CreatePromoter adds an active promoter.
func CreatePromoter(t *testing.T, db *gorm.DB, tenantID uint, name string) *models.Promoter {
	t.Helper()
	promoter := &models.Promoter{TenantID: tenantID, Name: name, Status: models.StatusActive}
	require.NoError(t, db.Create(promoter).Error)
	return promoter
}

// CreateVIP adds an active card valid for a year around now.
func CreateVIP(t *testing.T, db *gorm.DB, tenantID uint, cardNumber string) *models.VIP {
	t.Helper()
	now := time.Now()
	vip := &models.VIP{
		TenantID:   tenantID,
		CardNumber: cardNumber,
		Name:       "VIP " + cardNumber,
		ValidFrom:  now.AddDate(0, -6, 0),
		ValidUntil: now.AddDate(0, 6, 0),
		Status:     models.VIPActive,
	}
	require.NoError(t, db.Create(vip).Error)
	return vip
}

// Token issues a bearer token for the user.
func Token(t *testing.T, user *models.User) string {
	t.Helper()
	token, _, err := auth.GenerateToken(user.ID, user.RoleID, user.TenantID, user.Username)
	require.NoError(t, err)
	return token
}
