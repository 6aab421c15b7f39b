// Package queries contains read operations for retrieving system state.
// Implements the Query pattern for read operations in the CQRS architecture.
// Queries return optimized read models for specific use cases.
package queries

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrGetRouteQueryIsNotConstructed = errors.New(
	"GetRouteQuery must be created via NewGetRouteQuery constructor",
)

// GetRouteQuery retrieves the current state of one route, looked up ignoring case.
//
// Example:
//
//	query, err := NewGetRouteQuery("r1")
//	if err != nil {
//	    return err
//	}
//	view, err := handler.Handle(ctx, query)
type GetRouteQuery struct {
	routeID kernel.RouteID
	guard   guard.ConstructorGuard
}

func NewGetRouteQuery(routeID string) (GetRouteQuery, error) {
	id, err := kernel.NewRouteID(routeID)
	if err != nil {
		return GetRouteQuery{}, err
	}
	return GetRouteQuery{routeID: id, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetRouteQuery) Validate() error {
	return q.guard.Validate(ErrGetRouteQueryIsNotConstructed)
}

func (q GetRouteQuery) RouteID() kernel.RouteID {
	return q.routeID
}

// GetRouteQueryResponse is the route read model.
type GetRouteQueryResponse struct {
	RouteID          string
	AssignedDriverID *string
	LastDriverID     *string
	Status           string
	AssignedAt       *time.Time
	UpdatedAt        time.Time
	StartLocation    string
	EndLocation      string
	Distance         float64
	DistanceUnit     string
	Duration         float64
	TimeUnit         string
	Cost             float64
	Currency         string
	MaxSpeed         float64
	SpeedUnit        string
	Notes            string
	Version          int64
}
