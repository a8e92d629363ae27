package database

import (
	"fmt"

	"github.com/JoaoZanelato/galeria-web/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return db, nil
}

// Migrate creates or updates the gallery schema. Also used by tests against
// an in-memory database.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Album{},
		&models.Image{},
		&models.AlbumImage{},
		&models.Tag{},
		&models.ImageTag{},
		&models.Friendship{},
		&models.Share{},
	)
}
