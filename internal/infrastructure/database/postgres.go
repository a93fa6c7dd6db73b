package database

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/caltha/wanderlust/internal/infrastructure/database/models"
)

func NewPostgres(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
	})
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Snapshot{},
	)
}
