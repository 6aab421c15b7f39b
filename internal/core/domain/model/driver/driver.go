package driver

import (
	"errors"
	"slices"
	"strings"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// Domain errors for driver operations.
var (
	// ErrNameIsRequired is returned when creating a driver without a name.
	ErrNameIsRequired = errs.NewValueIsRequiredError("name")
	// ErrDriverIsNotConstructed is returned when using an improperly initialized Driver.
	ErrDriverIsNotConstructed = errors.New("Driver must be created via NewDriver or Restore")
)

// Driver is the aggregate root for a mobile worker and the driver side of the
// assignment relation.
//
// Business rules:
//   - Status OnRoute if and only if assignedRouteID is set (kept by AssignRoute and Release)
//   - assignedRouteID references at most one route
//   - history is append-only
//
// Example usage:
//
//	d, err := driver.NewDriver(kernel.MustNewDriverID("D1"), "Dana", clock.Now())
//	if err != nil {
//	    return err
//	}
//	err = d.AssignRoute(kernel.MustNewRouteID("R1"), clock.Now())
type Driver struct {
	id              kernel.DriverID
	name            string
	status          Status
	assignedRouteID *kernel.RouteID
	assignedAt      *time.Time
	updatedAt       time.Time
	// history holds past assignments, oldest first
	history []PastAssignment
	// storedHistory is the number of history entries loaded from storage
	storedHistory int
	version       int64

	guard guard.ConstructorGuard
}

// State is the persisted form of a Driver, used by Restore and State.
type State struct {
	ID              kernel.DriverID
	Name            string
	Status          Status
	AssignedRouteID *kernel.RouteID
	AssignedAt      *time.Time
	UpdatedAt       time.Time
	History         []PastAssignment
	Version         int64
}

// NewDriver creates an available driver with no route and no history.
func NewDriver(id kernel.DriverID, name string, now time.Time) (*Driver, error) {
	name = strings.TrimSpace(name)
	var nameErr error
	if name == "" {
		nameErr = ErrNameIsRequired
	}
	if err := errors.Join(id.Validate(), nameErr); err != nil {
		return nil, err
	}

	return &Driver{
		id:        id,
		name:      name,
		status:    Available,
		updatedAt: now,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// Restore rebuilds a driver from storage. A status that disagrees with the
// route reference is accepted so reconciliation can repair it.
func Restore(s State) (*Driver, error) {
	if err := errors.Join(s.ID.Validate(), s.Status.Validate()); err != nil {
		return nil, err
	}

	return &Driver{
		id:              s.ID,
		name:            s.Name,
		status:          s.Status,
		assignedRouteID: copyRouteID(s.AssignedRouteID),
		assignedAt:      copyTime(s.AssignedAt),
		updatedAt:       s.UpdatedAt,
		history:         slices.Clone(s.History),
		storedHistory:   len(s.History),
		version:         s.Version,
		guard:           guard.NewConstructorGuard(),
	}, nil
}

// State returns a copy of the driver's persisted fields.
func (d *Driver) State() State {
	return State{
		ID:              d.id,
		Name:            d.name,
		Status:          d.status,
		AssignedRouteID: copyRouteID(d.assignedRouteID),
		AssignedAt:      copyTime(d.assignedAt),
		UpdatedAt:       d.updatedAt,
		History:         slices.Clone(d.history),
		Version:         d.version,
	}
}

// Validate ensures the driver was built by NewDriver or Restore.
func (d *Driver) Validate() error {
	if d == nil {
		return ErrDriverIsNotConstructed
	}
	return d.guard.Validate(ErrDriverIsNotConstructed)
}

func (d *Driver) ID() kernel.DriverID {
	return d.id
}

func (d *Driver) Name() string {
	return d.name
}

func (d *Driver) Status() Status {
	return d.status
}

// AssignedRoute returns the bound route, or nil.
func (d *Driver) AssignedRoute() *kernel.RouteID {
	return copyRouteID(d.assignedRouteID)
}

func (d *Driver) AssignedAt() *time.Time {
	return copyTime(d.assignedAt)
}

func (d *Driver) UpdatedAt() time.Time {
	return d.updatedAt
}

// PastAssignedRoutes returns a copy of the assignment history, oldest first.
func (d *Driver) PastAssignedRoutes() []PastAssignment {
	return slices.Clone(d.history)
}

// NewPastAssignments returns the history entries appended since the driver was loaded.
func (d *Driver) NewPastAssignments() []PastAssignment {
	return slices.Clone(d.history[d.storedHistory:])
}

func (d *Driver) Version() int64 {
	return d.version
}

// SetVersion is called by repositories after a successful save. It also marks
// the whole history as stored.
func (d *Driver) SetVersion(v int64) {
	d.version = v
	d.storedHistory = len(d.history)
}

// IsAssignedTo reports whether routeID is the bound route.
func (d *Driver) IsAssignedTo(routeID kernel.RouteID) bool {
	return d.assignedRouteID != nil && d.assignedRouteID.IsEqual(routeID)
}

// AssignRoute binds the driver to routeID and moves it to OnRoute.
// Only an available driver can be assigned.
func (d *Driver) AssignRoute(routeID kernel.RouteID, now time.Time) error {
	if err := routeID.Validate(); err != nil {
		return err
	}
	newStatus, err := d.status.Assign()
	if err != nil {
		return err
	}

	d.status = newStatus
	d.assignedRouteID = &routeID
	at := now
	d.assignedAt = &at
	d.updatedAt = now
	return nil
}

// Release clears the route reference and returns the driver to Available.
// Returns false when the driver was already available without a route.
func (d *Driver) Release(now time.Time) bool {
	if d.assignedRouteID == nil && d.status == Available {
		return false
	}
	d.status = d.status.Release()
	d.assignedRouteID = nil
	d.assignedAt = nil
	d.updatedAt = now
	return true
}

// ArchiveCurrentAssignment appends the current assignment to the history using
// the given route locations. It does not clear the assignment itself.
// Returns false when no route is bound.
func (d *Driver) ArchiveCurrentAssignment(startLocation, endLocation string, now time.Time) (bool, error) {
	if d.assignedRouteID == nil {
		return false, nil
	}

	assignedAt := now
	if d.assignedAt != nil {
		assignedAt = *d.assignedAt
	}
	entry, err := NewPastAssignment(*d.assignedRouteID, startLocation, endLocation, assignedAt, now)
	if err != nil {
		return false, err
	}
	d.history = append(d.history, entry)
	d.updatedAt = now
	return true, nil
}

// SetAvailability toggles between Available and Unavailable.
func (d *Driver) SetAvailability(available bool, now time.Time) error {
	var (
		next Status
		err  error
	)
	if available {
		next, err = d.status.MarkAvailable()
	} else {
		next, err = d.status.MarkUnavailable()
	}
	if err != nil {
		return err
	}
	if next != d.status {
		d.status = next
		d.updatedAt = now
	}
	return nil
}

func copyRouteID(id *kernel.RouteID) *kernel.RouteID {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
