package services

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/route"
)

// ErrDriverMismatch is returned when the driver passed in is not the one the
// operation is about.
var ErrDriverMismatch = errors.New("driver does not match the route assignment")

// AssignmentCoordinator moves both aggregates of the assignment relation
// together so the following hold once a command completes:
//   - route.assignedDriver == d if and only if d.assignedRoute == route
//   - a driver is on_route if and only if it references a route
//   - lastDriver is only written when an assignment is superseded or removed
//   - driver history only grows
//
// It performs no I/O; the caller loads the aggregates with fresh reads and
// persists them with version checks.
//
// Example usage:
//
//	coordinator := services.NewAssignmentCoordinator()
//	switch coordinator.Decide(r, change) {
//	case services.CaseAssign:
//	    superseded, err := coordinator.Assign(r, d, now)
//	case services.CaseUnassign:
//	    outgoing, err := coordinator.Unassign(r, current, now)
//	}
type AssignmentCoordinator struct{}

func NewAssignmentCoordinator() AssignmentCoordinator {
	return AssignmentCoordinator{}
}

// Decide selects the protocol for change against the route's current driver.
func (AssignmentCoordinator) Decide(r *route.Route, change AssignmentChange) Case {
	current := r.AssignedDriver()
	if requested, ok := change.DriverID(); ok {
		if current != nil && current.IsEqual(requested) {
			return CaseNoChange
		}
		return CaseAssign
	}
	if change.IsUnassign() && current != nil {
		return CaseUnassign
	}
	return CaseNoChange
}

// Assign binds d to r.
//
// Rules, checked in order against freshly read state:
//   - d must be available, unless d already references r (DriverNotAvailableError)
//   - d must not reference another route (DriverAlreadyAssignedError)
//
// A driver previously bound to r becomes r's last driver; its id is returned so
// the caller can release it.
func (c AssignmentCoordinator) Assign(r *route.Route, d *driver.Driver, now time.Time) (*kernel.DriverID, error) {
	if err := errors.Join(r.Validate(), d.Validate()); err != nil {
		return nil, err
	}
	if r.IsAssignedTo(d.ID()) {
		return nil, nil
	}

	pointsHere := d.IsAssignedTo(r.ID())
	if d.Status() != driver.Available && !pointsHere {
		return nil, NewDriverNotAvailableError(d.ID(), d.Status())
	}
	if current := d.AssignedRoute(); current != nil && !pointsHere {
		return nil, NewDriverAlreadyAssignedError(d.ID(), *current)
	}

	previous := r.AssignedDriver()
	if !pointsHere || d.Status() != driver.OnRoute {
		// a driver pointing here without being on_route is drift; rebind it cleanly
		d.Release(now)
		if err := d.AssignRoute(r.ID(), now); err != nil {
			return nil, err
		}
	}
	if err := r.AssignDriver(d.ID(), now); err != nil {
		return nil, err
	}
	return previous, nil
}

// Unassign removes the driver bound to r. d is the loaded outgoing driver or
// nil when it could not be found; the route is released either way.
// The outgoing driver is released only if it still references r.
func (c AssignmentCoordinator) Unassign(r *route.Route, d *driver.Driver, now time.Time) (kernel.DriverID, error) {
	if err := r.Validate(); err != nil {
		return kernel.DriverID{}, err
	}
	current := r.AssignedDriver()
	if d != nil && (current == nil || !current.IsEqual(d.ID())) {
		return kernel.DriverID{}, ErrDriverMismatch
	}

	outgoing, err := r.UnassignDriver(now)
	if err != nil {
		return kernel.DriverID{}, err
	}
	if d != nil {
		if _, err = c.Release(r, d, now); err != nil {
			return kernel.DriverID{}, err
		}
	}
	return outgoing, nil
}

// Release frees d from r, archiving the assignment with r's locations.
// A driver bound elsewhere is left alone and false is returned.
func (AssignmentCoordinator) Release(r *route.Route, d *driver.Driver, now time.Time) (bool, error) {
	if err := errors.Join(r.Validate(), d.Validate()); err != nil {
		return false, err
	}
	if !d.IsAssignedTo(r.ID()) {
		return false, nil
	}

	details := r.Details()
	if _, err := d.ArchiveCurrentAssignment(details.StartLocation, details.EndLocation, now); err != nil {
		return false, err
	}
	return d.Release(now), nil
}

// ConfirmAssigned makes the driver bound to r reference r back. It runs when a
// caller asks for status assigned without naming a driver.
//
// Rules:
//   - d already references r and is on_route: nothing to do
//   - d on_route elsewhere: ErrDriverBusy
//   - d unavailable: ErrDriverUnavailable
//   - d available: archive any drifted assignment (with previous's locations,
//     or UnknownLocation when previous is nil) and bind d to r
func (AssignmentCoordinator) ConfirmAssigned(r *route.Route, d *driver.Driver, previous *route.Route, now time.Time) error {
	if err := errors.Join(r.Validate(), d.Validate()); err != nil {
		return err
	}
	if !r.IsAssignedTo(d.ID()) {
		return ErrDriverMismatch
	}
	pointsHere := d.IsAssignedTo(r.ID())
	if pointsHere && d.Status() == driver.OnRoute {
		return nil
	}

	switch d.Status() {
	case driver.OnRoute:
		return ErrDriverBusy
	case driver.Unavailable:
		return ErrDriverUnavailable
	}

	if !pointsHere {
		start, end := driver.UnknownLocation, driver.UnknownLocation
		if previous != nil {
			start, end = previous.Details().StartLocation, previous.Details().EndLocation
		}
		if _, err := d.ArchiveCurrentAssignment(start, end, now); err != nil {
			return err
		}
	}
	d.Release(now)
	if err := d.AssignRoute(r.ID(), now); err != nil {
		return err
	}
	return r.AssignDriver(d.ID(), now)
}
