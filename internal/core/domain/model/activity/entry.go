package activity

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/route"
)

// Snapshot is the identity of a driver as it was when the entry was written.
type Snapshot struct {
	ID   kernel.DriverID
	Name string
}

// Entry is a single activity feed record.
type Entry struct {
	id         kernel.UUID
	routeID    kernel.RouteID
	driver     *Snapshot
	lastDriver *Snapshot
	status     route.Status
	actionTime time.Time
}

// NewEntry creates an entry with a fresh identifier.
func NewEntry(routeID kernel.RouteID, status route.Status, driver, lastDriver *Snapshot, actionTime time.Time) (Entry, error) {
	return RestoreEntry(kernel.NewUUID(), routeID, status, driver, lastDriver, actionTime)
}

// NewAssignedEntry records an assignment of driver to routeID.
func NewAssignedEntry(routeID kernel.RouteID, driver Snapshot, actionTime time.Time) (Entry, error) {
	return NewEntry(routeID, route.Assigned, &driver, nil, actionTime)
}

// NewUnassignedEntry records the release of lastDriver from routeID.
func NewUnassignedEntry(routeID kernel.RouteID, lastDriver *Snapshot, actionTime time.Time) (Entry, error) {
	return NewEntry(routeID, route.Unassigned, nil, lastDriver, actionTime)
}

// RestoreEntry rebuilds an entry read from storage.
func RestoreEntry(
	id kernel.UUID,
	routeID kernel.RouteID,
	status route.Status,
	driver, lastDriver *Snapshot,
	actionTime time.Time,
) (Entry, error) {
	if err := errors.Join(id.Validate(), routeID.Validate(), status.Validate()); err != nil {
		return Entry{}, err
	}
	return Entry{
		id:         id,
		routeID:    routeID,
		driver:     copySnapshot(driver),
		lastDriver: copySnapshot(lastDriver),
		status:     status,
		actionTime: actionTime,
	}, nil
}

func (e Entry) ID() kernel.UUID         { return e.id }
func (e Entry) RouteID() kernel.RouteID { return e.routeID }
func (e Entry) Status() route.Status    { return e.status }
func (e Entry) ActionTime() time.Time   { return e.actionTime }
func (e Entry) Driver() *Snapshot       { return copySnapshot(e.driver) }
func (e Entry) LastDriver() *Snapshot   { return copySnapshot(e.lastDriver) }

func copySnapshot(s *Snapshot) *Snapshot {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
