package config

import (
	"fmt"
	"time"

	"m77ag-backend/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// ConnectDB opens the postgres connection and stores it in DB. Driver errors
// are translated so unique violations surface as gorm.ErrDuplicatedKey.
func ConnectDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	DB = db
	return db, nil
}

// Migrate creates or updates every table, including the lease/period unique index.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Lease{},
		&models.RentInvoice{},
		&models.Payment{},
		&models.ReminderTemplate{},
		&models.ReminderLog{},
		&models.ChemicalProduct{},
		&models.ContainerVariant{},
		&models.SprayProgram{},
		&models.SprayPass{},
		&models.PassProduct{},
		&models.DiscountTier{},
	)
}
