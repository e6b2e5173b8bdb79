package database

import (
	"go-ticket-pos/internal/models"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Models lists every table the application owns, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.Tenant{},
		&models.Role{},
		&models.Navigation{},
		&models.RolePermission{},
		&models.User{},
		&models.RevokedToken{},
		&models.MediaLibrary{},
		&models.Rate{},
		&models.Discount{},
		&models.Promoter{},
		&models.PromoterSchedule{},
		&models.VIP{},
		&models.CashierSession{},
		&models.CashierTransaction{},
		&models.CashierTransactionDetail{},
		&models.CashierTicket{},
		&models.ReferenceSequence{},
		&models.AuditTrail{},
		&models.SystemSetting{},
		&models.SystemLicense{},
	}
}

// Migrate syncs the schema.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return errors.Wrap(err, "failed to migrate schema")
	}
	return nil
}
