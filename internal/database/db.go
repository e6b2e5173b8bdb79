package database

import (
	"fmt"
	"time"

	"go-ticket-pos/internal/config"
	"go-ticket-pos/internal/logger"

	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB is the process-wide connection used by the handlers.
var DB *gorm.DB

// Connect opens the configured database, retrying while it comes up, and stores it in DB.
func Connect(settings config.DatabaseSettings, log logger.Logger) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	var db *gorm.DB
	var err error

	// Wait for DB to be ready
	for i := 0; i < settings.MaxRetries; i++ {
		db, err = Open(settings)
		if err == nil {
			break
		}
		log.Warn(fmt.Sprintf("Failed to connect to database. Retrying in 2 seconds... (%d/%d)", i+1, settings.MaxRetries))
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return errors.Wrapf(err, "failed to connect to database after %d attempts", settings.MaxRetries)
	}

	DB = db
	log.Info("Connected to ", settings.Driver, " database")
	return nil
}

// Open creates a gorm connection for the given driver without touching DB.
func Open(settings config.DatabaseSettings) (*gorm.DB, error) {
	level := gormlogger.Warn
	if settings.Debug {
		level = gormlogger.Info
	}
	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
	}

	switch settings.Driver {
	case config.DriverMySQL:
		db, err := gorm.Open(mysql.Open(settings.DSN), gormConfig)
		if err != nil {
			return nil, errors.Wrap(err, "failed to connect to MySQL")
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, errors.Wrap(err, "failed to get raw DB connection")
		}
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(time.Hour)
		return db, nil
	case config.DriverSQLite:
		db, err := gorm.Open(sqlite.Open(settings.DSN), gormConfig)
		if err != nil {
			return nil, errors.Wrap(err, "failed to connect to SQLite")
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, errors.Wrap(err, "failed to get raw DB connection")
		}
		// SQLite allows a single writer.
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	default:
		return nil, errors.Errorf("unsupported database driver: %s", settings.Driver)
	}
}

// Close closes the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get database instance")
	}
	if err := sqlDB.Close(); err != nil {
		return errors.Wrap(err, "failed to close database connection")
	}
	return nil
}
