package handlers

import (
	"net/http"
	"time"

	"go-ticket-pos/internal/database"
	"go-ticket-pos/internal/models"
	"go-ticket-pos/internal/utils"

	"github.com/gin-gonic/gin"
)

var licenseResource = resource{module: "system-settings", entity: "license", global: true}

type LicenseRequest struct {
	LicenseKey string `json:"license_key" binding:"required,notblank,max=100"`
}

func currentLicense() (*models.SystemLicense, error) {
	var license models.SystemLicense
	if err := database.DB.Order("id DESC").Limit(1).Find(&license).Error; err != nil {
		return nil, err
	}
	return &license, nil
}

// GetSystemStatus feeds the lockdown screen the device ID the vendor binds keys to.
func GetSystemStatus(c *gin.Context) {
	license, err := currentLicense()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read license"})
		return
	}

	status := gin.H{
		"device_id":        utils.DeviceID(),
		"license_enforced": appConfig.LicenseEnforced,
		"licensed":         license.Valid(time.Now()),
	}
	if license.ID != 0 {
		status["expires"] = license.ExpirationDate
	}
	c.JSON(http.StatusOK, status)
}

// ActivateLicense checks the key against this machine's device ID and stores it.
func ActivateLicense(c *gin.Context) {
	var input LicenseRequest
	if !bindJSON(c, &input) {
		return
	}

	deviceID := utils.DeviceID()
	expires, err := utils.VerifyLicenseKey(input.LicenseKey, deviceID, appConfig.LicenseSecret)
	if err == nil && !expires.After(time.Now()) {
		err = utils.ErrInvalidLicense
	}
	if err != nil {
		requestLogger(c).Warn("License activation rejected: ", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired key for this device"})
		return
	}

	license, err := currentLicense()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read license"})
		return
	}
	license.LicenseKey = input.LicenseKey
	license.DeviceID = deviceID
	license.ExpirationDate = expires
	license.IsActive = true
	license.ActivatedAt = time.Now()

	if err := database.DB.Save(license).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store license"})
		return
	}

	writeAudit(c, models.AuditTrail{
		Module:    licenseResource.module,
		Action:    models.AuditActivate,
		Entity:    licenseResource.entity,
		EntityID:  &license.ID,
		NewValues: snapshot(gin.H{"device_id": deviceID, "expires": expires}),
		IPAddress: c.ClientIP(),
		UserAgent: truncate(c.Request.UserAgent(), 255),
	})
	c.JSON(http.StatusOK, gin.H{
		"message": "System activated",
		"expires": license.ExpirationDate,
	})
}
