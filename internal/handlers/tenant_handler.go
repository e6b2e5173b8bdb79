package handlers

import (
	"net/http"
	"strings"

	"go-ticket-pos/internal/database"
	"go-ticket-pos/internal/models"

	"github.com/gin-gonic/gin"
)

var tenantResource = resource{module: "system-settings", entity: "tenant", global: true}

type TenantRequest struct {
	Code   string `json:"code" binding:"required,alphanum,max=20"`
	Name   string `json:"name" binding:"required,notblank,max=100"`
	Active *bool  `json:"active"`
}

func GetTenants(c *gin.Context) {
	var p ListParams
	if !bindQuery(c, &p) {
		return
	}
	q := p.Query()

	db := scoped(c, tenantResource).Model(&models.Tenant{}).
		Scopes(database.Trashed(q.Trashed), database.Search(q.Search, "code", "name"))

	page, err := database.FindPage[models.Tenant](db, q,
		database.Sort(q, []string{"id", "code", "name", "created_at"}, "id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tenants"})
		return
	}
	c.JSON(http.StatusOK, page)
}

func tenantCodeTaken(code string, exceptID uint) bool {
	var n int64
	q := database.DB.Unscoped().Model(&models.Tenant{}).Where("code = ?", code)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	q.Count(&n)
	return n > 0
}

// CreateTenant registers a business and stores its default settings.
func CreateTenant(c *gin.Context) {
	var input TenantRequest
	if !bindJSON(c, &input) {
		return
	}
	input.Code = strings.ToUpper(input.Code)
	if tenantCodeTaken(input.Code, 0) {
		fieldError(c, "code", "code has already been taken")
		return
	}

	tenant := models.Tenant{Code: input.Code, Name: input.Name, Active: input.Active == nil || *input.Active}
	if err := database.DB.Create(&tenant).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create tenant"})
		return
	}
	// gorm skips a false bool in favour of the column default on insert.
	if !tenant.Active {
		database.DB.Model(&tenant).Update("active", false)
	}
	if err := database.SeedSettings(database.DB, tenant.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create tenant settings"})
		return
	}

	recordAudit(c, tenantResource, models.AuditCreate, tenant.ID, nil, tenant)
	c.JSON(http.StatusCreated, tenant)
}

func UpdateTenant(c *gin.Context) {
	tenant, ok := loadRecord[models.Tenant](c, scoped(c, tenantResource), tenantResource)
	if !ok {
		return
	}
	var input TenantRequest
	if !bindJSON(c, &input) {
		return
	}
	input.Code = strings.ToUpper(input.Code)
	if tenantCodeTaken(input.Code, tenant.ID) {
		fieldError(c, "code", "code has already been taken")
		return
	}

	before := *tenant
	tenant.Code = input.Code
	tenant.Name = input.Name
	if input.Active != nil {
		tenant.Active = *input.Active
	}
	if err := database.DB.Save(tenant).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update tenant"})
		return
	}

	recordAudit(c, tenantResource, models.AuditUpdate, tenant.ID, before, tenant)
	c.JSON(http.StatusOK, tenant)
}
