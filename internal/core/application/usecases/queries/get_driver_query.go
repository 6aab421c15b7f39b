package queries

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrGetDriverQueryIsNotConstructed = errors.New(
	"GetDriverQuery must be created via NewGetDriverQuery constructor",
)

// GetDriverQuery retrieves a driver with its assignment history.
type GetDriverQuery struct {
	driverID kernel.DriverID
	guard    guard.ConstructorGuard
}

func NewGetDriverQuery(driverID string) (GetDriverQuery, error) {
	id, err := kernel.NewDriverID(driverID)
	if err != nil {
		return GetDriverQuery{}, err
	}
	return GetDriverQuery{driverID: id, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetDriverQuery) Validate() error {
	return q.guard.Validate(ErrGetDriverQueryIsNotConstructed)
}

func (q GetDriverQuery) DriverID() kernel.DriverID {
	return q.driverID
}

// GetDriverQueryResponse is the driver read model.
type GetDriverQueryResponse struct {
	DriverID           string
	Name               string
	Status             string
	AssignedRouteID    *string
	AssignedAt         *time.Time
	UpdatedAt          time.Time
	PastAssignedRoutes []PastAssignmentResponse
}

// PastAssignmentResponse is one entry of a driver's history, oldest first.
type PastAssignmentResponse struct {
	RouteID       string
	StartLocation string
	EndLocation   string
	AssignedAt    time.Time
	UnassignedAt  time.Time
}
