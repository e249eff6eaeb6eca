package persistence

import (
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// AutoMigrate creates or updates the schema from the GORM models. It serves
// SQLite development databases and tests; PostgreSQL deployments use the SQL
// migrations run by cmd/migrate.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(models.All()...)
}
