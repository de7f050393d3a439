package database

import (
	"fmt"

	"gigwork-service/internal/models"

	"gorm.io/gorm"
)

// RunMigrations creates or updates the schema for every entity.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Gig{},
		&models.Contract{},
		&models.Message{},
		&models.Portfolio{},
	); err != nil {
		return fmt.Errorf("auto migration failed: %w", err)
	}
	return nil
}
