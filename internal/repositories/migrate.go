package repositories

import (
	"github.com/anonto42/nano-comments/backend/internal/models"
	"gorm.io/gorm"
)

// AutoMigrate creates or updates the relational schema. Posts are migrated even when they are
// served from MongoDB so that switching POST_STORE needs no manual step.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Notification{},
	)
}
