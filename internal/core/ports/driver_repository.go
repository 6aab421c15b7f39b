package ports

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/route"
)

// DriverRepository defines the persistence contract for driver aggregates.
type DriverRepository interface {
	// Add persists a new driver.
	Add(ctx context.Context, aggregate *driver.Driver) error

	// Get retrieves a driver with its assignment history.
	// Returns errs.ErrObjectNotFound when the driver does not exist.
	Get(ctx context.Context, id kernel.DriverID) (*driver.Driver, error)

	// Save writes the driver if its stored version still equals aggregate.Version()
	// and appends history entries added since it was loaded.
	// Returns errs.ErrVersionConflict when the driver changed in between.
	Save(ctx context.Context, aggregate *driver.Driver) error

	// ReleaseByAssignedRoute frees every driver referencing r, archiving the
	// assignment with r's locations, and returns how many were changed.
	// Each driver is saved with its version check.
	ReleaseByAssignedRoute(ctx context.Context, r *route.Route, now time.Time) (int64, error)

	// GetAllAssigned retrieves drivers that reference a route or are on_route.
	GetAllAssigned(ctx context.Context) ([]*driver.Driver, error)
}
