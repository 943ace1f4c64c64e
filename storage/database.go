package storage

import (
	"fmt"
	"log"
	"os"
	"time"

	"tour-booking-server/config"
	"tour-booking-server/models"

	"github.com/kataras/golog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func newGormLogger() gormLogger.Interface {
	return gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)
}

func connectToDB(cfg config.Database) (*gorm.DB, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("DB_CONNECTION_STRING environment variable is required")
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres", "":
		dialector = postgres.Open(cfg.URL)
	case "sqlite", "sqlite3":
		dialector = sqlite.Open(cfg.URL)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:  newGormLogger(),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	if cfg.Driver == "sqlite" || cfg.Driver == "sqlite3" {
		// sqlite allows a single writer; a second pooled connection would
		// deadlock against an open transaction.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

func performMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.UserProfile{},
		&models.Tour{},
		&models.Image{},
		&models.Booking{},
		&models.Rating{},
		&models.AuditLog{},
	)
}

// InitializeDB opens the configured database and migrates the schema.
func InitializeDB(cfg config.Database) (*gorm.DB, error) {
	db, err := connectToDB(cfg)
	if err != nil {
		return nil, err
	}
	if err := performMigrations(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	golog.Infof("database ready (driver=%s)", cfg.Driver)
	return db, nil
}
