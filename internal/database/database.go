package database

import (
	"fmt"

	"github.com/gdg-garage/training-calculator/internal/config"
	"github.com/gdg-garage/training-calculator/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func Connect(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	db, err := Open(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	seeded, err := SeedActivities(db)
	if err != nil {
		return nil, err
	}
	if seeded > 0 {
		logger.Info("Seeded company activities", zap.Int("count", seeded))
	}

	return db, nil
}

// Open opens the sqlite database at path and migrates the schema.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if path == ":memory:" {
		// Every new connection would see its own empty in-memory database.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	// Auto Migrate
	err = db.AutoMigrate(&models.Activity{}, &models.Registration{}, &models.Admin{}, &models.APIKey{})
	if err != nil {
		return nil, fmt.Errorf("failed to auto migrate: %w", err)
	}

	return db, nil
}

// SeedActivities fills company_activities with the defaults when it is empty.
func SeedActivities(db *gorm.DB) (int, error) {
	var count int64
	if err := db.Model(&models.Activity{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count activities: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	activities := make([]models.Activity, len(models.DefaultActivities))
	copy(activities, models.DefaultActivities)
	if err := db.Create(&activities).Error; err != nil {
		return 0, fmt.Errorf("failed to seed activities: %w", err)
	}
	return len(activities), nil
}
