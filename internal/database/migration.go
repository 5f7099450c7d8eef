package database

import (
	"fmt"

	"github.com/martapiotrowska257/projekt-psw/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate runs database schema migrations for all models.
// The session_members join table is created by the many2many relation.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Task{},
		&models.LoginSession{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
