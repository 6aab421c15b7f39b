package postgres

import (
	"dispatch/internal/adapters/out/postgres/activityrepo"
	"dispatch/internal/adapters/out/postgres/driverrepo"
	"dispatch/internal/adapters/out/postgres/routerepo"

	"gorm.io/gorm"
)

// Models lists every table owned by the dispatch service.
func Models() []any {
	return []any{
		&routerepo.RouteDTO{},
		&driverrepo.DriverDTO{},
		&driverrepo.PastAssignmentDTO{},
		&activityrepo.EntryDTO{},
	}
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
