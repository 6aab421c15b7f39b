package route

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var (
	// ErrRouteIsNotConstructed is returned when a Route was not created through NewRoute or Restore.
	ErrRouteIsNotConstructed = errors.New("Route must be created via NewRoute or Restore")
	// ErrRouteHasNoDriver is returned when unassigning a route that has no driver.
	ErrRouteHasNoDriver = errors.New("route has no assigned driver")
)

// Route is the aggregate root for a delivery job and the route side of the
// assignment relation.
//
// Route follows these invariants:
//   - Must have a valid identifier
//   - Has at most one assigned driver
//   - Status Assigned implies a driver is bound (see Status.ValidateCanHaveDriver)
//   - lastDriverID is only written when an assignment is superseded or removed
//
// Every mutation is recorded in Changes so callers can report the field-level
// diff of a command without comparing snapshots.
type Route struct {
	id               kernel.RouteID
	assignedDriverID *kernel.DriverID
	lastDriverID     *kernel.DriverID
	status           Status
	assignedAt       *time.Time
	updatedAt        time.Time
	details          Details
	version          int64

	changes Changes
	guard   guard.ConstructorGuard
}

// State is the persisted form of a Route, used by Restore and State.
type State struct {
	ID               kernel.RouteID
	AssignedDriverID *kernel.DriverID
	LastDriverID     *kernel.DriverID
	Status           Status
	AssignedAt       *time.Time
	UpdatedAt        time.Time
	Details          Details
	Version          int64
}

// NewRoute creates an unassigned route with the given details.
//
// Example:
//
//	r, err := route.NewRoute(kernel.MustNewRouteID("R1"), route.Details{
//	    StartLocation: "Depot A",
//	    EndLocation:   "Warehouse 3",
//	}, clock.Now())
func NewRoute(id kernel.RouteID, details Details, now time.Time) (*Route, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	return &Route{
		id:        id,
		status:    Unassigned,
		updatedAt: now,
		details:   details,
		changes:   Changes{},
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// Restore rebuilds a route from storage. It does not reject a status that
// disagrees with the driver reference: such drift is left for reconciliation
// to repair rather than making the route unreadable.
func Restore(s State) (*Route, error) {
	if err := errors.Join(s.ID.Validate(), s.Status.Validate()); err != nil {
		return nil, err
	}
	return &Route{
		id:               s.ID,
		assignedDriverID: copyDriverID(s.AssignedDriverID),
		lastDriverID:     copyDriverID(s.LastDriverID),
		status:           s.Status,
		assignedAt:       copyTime(s.AssignedAt),
		updatedAt:        s.UpdatedAt,
		details:          s.Details,
		version:          s.Version,
		changes:          Changes{},
		guard:            guard.NewConstructorGuard(),
	}, nil
}

// State returns a copy of the route's persisted fields.
func (r *Route) State() State {
	return State{
		ID:               r.id,
		AssignedDriverID: copyDriverID(r.assignedDriverID),
		LastDriverID:     copyDriverID(r.lastDriverID),
		Status:           r.status,
		AssignedAt:       copyTime(r.assignedAt),
		UpdatedAt:        r.updatedAt,
		Details:          r.details,
		Version:          r.version,
	}
}

// Validate ensures the route was built by NewRoute or Restore.
func (r *Route) Validate() error {
	if r == nil {
		return ErrRouteIsNotConstructed
	}
	return r.guard.Validate(ErrRouteIsNotConstructed)
}

func (r *Route) ID() kernel.RouteID {
	return r.id
}

// AssignedDriver returns the bound driver, or nil.
func (r *Route) AssignedDriver() *kernel.DriverID {
	return copyDriverID(r.assignedDriverID)
}

// LastDriver returns the driver of the most recent superseded assignment, or nil.
func (r *Route) LastDriver() *kernel.DriverID {
	return copyDriverID(r.lastDriverID)
}

func (r *Route) Status() Status {
	return r.status
}

func (r *Route) AssignedAt() *time.Time {
	return copyTime(r.assignedAt)
}

func (r *Route) UpdatedAt() time.Time {
	return r.updatedAt
}

func (r *Route) Details() Details {
	return r.details
}

// Version is the revision read from storage; repositories use it as the
// expected version of the next save.
func (r *Route) Version() int64 {
	return r.version
}

// SetVersion is called by repositories after a successful save.
func (r *Route) SetVersion(v int64) {
	r.version = v
}

// Changes returns the fields changed since the route was loaded or created.
func (r *Route) Changes() Changes {
	return r.changes.Clone()
}

// IsAssignedTo reports whether driverID is the bound driver.
func (r *Route) IsAssignedTo(driverID kernel.DriverID) bool {
	return r.assignedDriverID != nil && r.assignedDriverID.IsEqual(driverID)
}

// AssignDriver binds the route to driverID and moves it to Assigned.
// A different driver already bound becomes the last driver.
// Rebinding the same driver only refreshes assigned_at.
func (r *Route) AssignDriver(driverID kernel.DriverID, now time.Time) error {
	if err := driverID.Validate(); err != nil {
		return err
	}
	newStatus, err := r.status.Transition(Assigned, true)
	if err != nil {
		return err
	}

	if r.assignedDriverID != nil && !r.assignedDriverID.IsEqual(driverID) {
		r.setLastDriver(*r.assignedDriverID)
	}
	if !r.IsAssignedTo(driverID) {
		r.assignedDriverID = &driverID
		r.changes[FieldAssignedDriverID] = driverID.String()
	}
	r.setStatus(newStatus)
	at := now
	r.assignedAt = &at
	r.changes[FieldAssignedAt] = at
	r.touch(now)
	return nil
}

// UnassignDriver removes the bound driver, records it as the last driver and
// moves the route to Unassigned. Returns the removed driver.
func (r *Route) UnassignDriver(now time.Time) (kernel.DriverID, error) {
	if r.assignedDriverID == nil {
		return kernel.DriverID{}, ErrRouteHasNoDriver
	}
	outgoing := *r.assignedDriverID

	r.setLastDriver(outgoing)
	r.assignedDriverID = nil
	r.changes[FieldAssignedDriverID] = nil
	r.setStatus(Unassigned)
	r.touch(now)
	return outgoing, nil
}

// ChangeStatus applies a caller-requested status that does not alter the
// assignment relation. Requesting the current status is a no-op.
func (r *Route) ChangeStatus(to Status, now time.Time) error {
	newStatus, err := r.status.Transition(to, r.assignedDriverID != nil)
	if err != nil {
		return err
	}
	if newStatus == r.status {
		return nil
	}
	r.setStatus(newStatus)
	r.touch(now)
	return nil
}

func (r *Route) setLastDriver(id kernel.DriverID) {
	if kernel.SameDriver(r.lastDriverID, &id) {
		return
	}
	r.lastDriverID = &id
	r.changes[FieldLastDriverID] = id.String()
}

func (r *Route) setStatus(s Status) {
	if r.status == s {
		return
	}
	r.status = s
	r.changes[FieldStatus] = s.String()
}

func (r *Route) touch(now time.Time) {
	r.updatedAt = now
	r.changes[FieldUpdatedAt] = now
}

func copyDriverID(id *kernel.DriverID) *kernel.DriverID {
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
