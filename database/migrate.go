// database/migrate.go - Database Migration Runner
package database

import (
	"fmt"

	"mathking/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RunMigrations creates or updates every table the game uses
func RunMigrations(conn *gorm.DB) error {
	zap.L().Info("running database migrations")

	if err := conn.AutoMigrate(
		&models.Student{},
		&models.Question{},
		&models.User{},
		&models.Broadcast{},
	); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	zap.L().Info("migrations completed")
	return nil
}
