package handlers

import (
	"net/http"
	"sort"
	"strings"

	"go-ticket-pos/internal/database"
	"go-ticket-pos/internal/middleware"
	"go-ticket-pos/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var settingResource = resource{module: "system-settings", entity: "setting"}

// settingRules constrain the values of some keys.
var settingRules = map[string]struct{ tag, msg string }{
	database.SettingPrinterAgentURL: {"omitempty,http_url", "must be an http or https URL"},
	database.SettingDisplayEnabled:  {"oneof=true false", "must be true or false"},
}

// superAdminSettings may only be changed by the super admin; the server POSTs to the agent URL.
var superAdminSettings = map[string]bool{
	database.SettingPrinterAgentURL: true,
}

type UpdateSettingsRequest struct {
	Settings map[string]string `json:"settings" binding:"required,min=1,dive,max=1000"`
}

func GetSettings(c *gin.Context) {
	settings, err := database.LoadSettings(database.DB.WithContext(c.Request.Context()), middleware.TenantID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load settings"})
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateSettings upserts the given keys. Unknown keys reject the whole request.
func UpdateSettings(c *gin.Context) {
	var input UpdateSettingsRequest
	if !bindJSON(c, &input) {
		return
	}

	var unknown []string
	for key := range input.Settings {
		if _, ok := database.DefaultSettings[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		errs := gin.H{}
		for _, key := range unknown {
			errs["settings."+key] = "unknown setting"
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "errors": errs})
		return
	}

	for key := range input.Settings {
		if superAdminSettings[key] && middleware.RoleID(c) != models.RoleSuperAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only the super admin can change " + key})
			return
		}
	}
	if errs := checkSettingValues(input.Settings); len(errs) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "errors": errs})
		return
	}

	tenantID := middleware.TenantID(c)
	before, err := database.LoadSettings(database.DB, tenantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load settings"})
		return
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		for key, value := range input.Settings {
			row := models.SystemSetting{TenantID: tenantID, Key: key, Value: value, UpdatedBy: middleware.UserID(c)}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "setting_key"}},
				DoUpdates: clause.AssignmentColumns([]string{"setting_value", "updated_by", "updated_at"}),
			}).Create(&row).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save settings"})
		return
	}

	after, err := database.LoadSettings(database.DB, tenantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load settings"})
		return
	}

	recordAudit(c, settingResource, models.AuditUpdate, 0, before, after)
	c.JSON(http.StatusOK, after)
}

func checkSettingValues(settings map[string]string) gin.H {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	errs := gin.H{}
	for key, value := range settings {
		rule, ok := settingRules[key]
		if !ok {
			continue
		}
		if err := v.Var(strings.TrimSpace(value), rule.tag); err != nil {
			errs["settings."+key] = rule.msg
		}
	}
	return errs
}
