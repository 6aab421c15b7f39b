package driver

import (
	"time"

	"dispatch/internal/core/domain/model/kernel"
)

// UnknownLocation is recorded when the locations of an archived route cannot be resolved.
const UnknownLocation = "Unknown"

// PastAssignment is a finished assignment kept in the driver history.
// It is a value: once appended it is never modified.
type PastAssignment struct {
	routeID       kernel.RouteID
	startLocation string
	endLocation   string
	assignedAt    time.Time
	unassignedAt  time.Time
}

// NewPastAssignment builds a history record. Empty locations become UnknownLocation.
func NewPastAssignment(
	routeID kernel.RouteID,
	startLocation, endLocation string,
	assignedAt, unassignedAt time.Time,
) (PastAssignment, error) {
	if err := routeID.Validate(); err != nil {
		return PastAssignment{}, err
	}
	if startLocation == "" {
		startLocation = UnknownLocation
	}
	if endLocation == "" {
		endLocation = UnknownLocation
	}
	return PastAssignment{
		routeID:       routeID,
		startLocation: startLocation,
		endLocation:   endLocation,
		assignedAt:    assignedAt,
		unassignedAt:  unassignedAt,
	}, nil
}

func (p PastAssignment) RouteID() kernel.RouteID { return p.routeID }
func (p PastAssignment) StartLocation() string   { return p.startLocation }
func (p PastAssignment) EndLocation() string     { return p.endLocation }
func (p PastAssignment) AssignedAt() time.Time   { return p.assignedAt }
func (p PastAssignment) UnassignedAt() time.Time { return p.unassignedAt }

// IsEqual compares all fields of two records.
func (p PastAssignment) IsEqual(other PastAssignment) bool {
	return p.routeID.String() == other.routeID.String() &&
		p.startLocation == other.startLocation &&
		p.endLocation == other.endLocation &&
		p.assignedAt.Equal(other.assignedAt) &&
		p.unassignedAt.Equal(other.unassignedAt)
}
