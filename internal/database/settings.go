package database

import (
	"go-ticket-pos/internal/models"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Setting keys
const (
	SettingCompanyName     = "company_name"
	SettingCompanyAddress  = "company_address"
	SettingTIN             = "tin"
	SettingReceiptHeader   = "receipt_header"
	SettingReceiptFooter   = "receipt_footer"
	SettingPrinterAgentURL = "printer_agent_url"
	SettingDisplayEnabled  = "display_enabled"
)

// DefaultSettings are the known keys and the value used when a tenant has not set one.
var DefaultSettings = map[string]string{
	SettingCompanyName:     "",
	SettingCompanyAddress:  "",
	SettingTIN:             "",
	SettingReceiptHeader:   "OFFICIAL RECEIPT",
	SettingReceiptFooter:   "Thank you! Please come again.",
	SettingPrinterAgentURL: "",
	SettingDisplayEnabled:  "false",
}

// LoadSettings returns the defaults overlaid with the tenant's stored values.
func LoadSettings(db *gorm.DB, tenantID uint) (map[string]string, error) {
	out := make(map[string]string, len(DefaultSettings))
	for k, v := range DefaultSettings {
		out[k] = v
	}

	var rows []models.SystemSetting
	if err := db.Scopes(ForTenant(tenantID)).Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "load settings")
	}
	for _, row := range rows {
		if _, known := DefaultSettings[row.Key]; known {
			out[row.Key] = row.Value
		}
	}
	return out, nil
}
