// Package ports defines the contracts between the dispatch core and its
// infrastructure: aggregate repositories, the unit of work and the activity log.
package ports

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/route"
)

// RouteRepository defines the persistence contract for route aggregates.
type RouteRepository interface {
	// Add persists a new route. Returns errs.ErrObjectAlreadyExists when a route
	// with the same normalized id exists.
	Add(ctx context.Context, aggregate *route.Route) error

	// Get retrieves a route by id, ignoring case.
	// Returns errs.ErrObjectNotFound when no route matches.
	Get(ctx context.Context, id kernel.RouteID) (*route.Route, error)

	// Save writes the route if its stored version still equals aggregate.Version()
	// and advances the version. Returns errs.ErrVersionConflict otherwise.
	Save(ctx context.Context, aggregate *route.Route) error

	// GetAllAssigned retrieves every route that references a driver or has status assigned.
	GetAllAssigned(ctx context.Context) ([]*route.Route, error)
}
