package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/activity"
	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/route"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// maxUpdateAttempts bounds the retries after a version conflict: one fresh retry.
const maxUpdateAttempts = 2

// UpdateRouteResult is the field-level diff of a successful update.
type UpdateRouteResult struct {
	RouteID kernel.RouteID
	Changes route.Changes
}

// UpdateRouteCommandHandler applies an UpdateRouteCommand: it runs the
// assignment protocol selected by the coordinator, patches scalar fields,
// enforces the requested status and appends activity feed entries.
//
// The whole update is one unit of work. A version conflict on commit is
// retried once with fresh reads; activity entries are appended only after a
// successful commit and their failures are logged, never returned.
//
// Example:
//
//	handler := NewUpdateRouteCommandHandler(uowFactory, activityLog, kernel.SystemClock(), logger)
//	result, err := handler.Handle(ctx, cmd)
//	var already *services.DriverAlreadyAssignedError
//	switch {
//	case errors.As(err, &already):
//	    // already.CurrentRouteID holds the conflicting route
//	case errors.Is(err, errs.ErrObjectNotFound):
//	    // route or driver missing
//	}
type UpdateRouteCommandHandler struct {
	uowFactory  UoWFactory
	activityLog ports.ActivityLog
	clock       kernel.Clock
	coordinator services.AssignmentCoordinator
	logger      *slog.Logger
}

func NewUpdateRouteCommandHandler(
	uowFactory UoWFactory,
	activityLog ports.ActivityLog,
	clock kernel.Clock,
	logger *slog.Logger,
) UpdateRouteCommandHandler {
	return UpdateRouteCommandHandler{
		uowFactory:  uowFactory,
		activityLog: activityLog,
		clock:       clock,
		coordinator: services.NewAssignmentCoordinator(),
		logger:      logger.With("component", "update_route_handler"),
	}
}

// Handle processes the update. See UpdateRouteCommandHandler for the guarantees.
func (h UpdateRouteCommandHandler) Handle(ctx context.Context, command UpdateRouteCommand) (UpdateRouteResult, error) {
	if err := command.Validate(); err != nil {
		return UpdateRouteResult{}, err
	}

	var (
		outcome updateOutcome
		err     error
	)
	for attempt := 1; attempt <= maxUpdateAttempts; attempt++ {
		outcome, err = h.attempt(ctx, command, attempt > 1)
		if !errors.Is(err, errs.ErrVersionConflict) {
			break
		}
		h.logger.WarnContext(ctx, "Version conflict while updating route",
			"route_id", command.RouteID().String(), "attempt", attempt, "error", err)
	}
	if err != nil {
		return UpdateRouteResult{}, err
	}

	for _, entry := range outcome.entries {
		if appendErr := h.activityLog.Append(ctx, entry); appendErr != nil {
			h.logger.ErrorContext(ctx, "Failed to append activity entry",
				"route_id", entry.RouteID().String(), "status", entry.Status().String(), "error", appendErr)
		}
	}

	return UpdateRouteResult{RouteID: outcome.routeID, Changes: outcome.changes}, nil
}

type updateOutcome struct {
	routeID kernel.RouteID
	changes route.Changes
	entries []activity.Entry
}

// routeUpdate holds the state of one attempt.
type routeUpdate struct {
	h       UpdateRouteCommandHandler
	command UpdateRouteCommand
	routes  ports.RouteRepository
	drivers ports.DriverRepository
	now     time.Time
	retry   bool

	route *route.Route
	// staged drivers are saved before the route, in staging order
	staged      []*driver.Driver
	entries     []activity.Entry
	loggedState route.Status
	bulkRelease bool
}

func (h UpdateRouteCommandHandler) attempt(ctx context.Context, command UpdateRouteCommand, retry bool) (updateOutcome, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return updateOutcome{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	u := &routeUpdate{
		h:       h,
		command: command,
		routes:  uow.RouteRepository(),
		drivers: uow.DriverRepository(),
		now:     h.clock.Now(),
		retry:   retry,
	}

	if err := u.run(ctx); err != nil {
		return updateOutcome{}, err
	}
	if err := u.persist(ctx); err != nil {
		return updateOutcome{}, err
	}
	if err := uow.Commit(ctx); err != nil {
		return updateOutcome{}, err
	}

	return updateOutcome{
		routeID: u.route.ID(),
		changes: u.route.Changes(),
		entries: u.entries,
	}, nil
}

func (u *routeUpdate) run(ctx context.Context) error {
	r, err := u.routes.Get(ctx, u.command.RouteID())
	if err != nil {
		return err
	}
	u.route = r
	statusBefore := r.Status()
	requested := u.command.Status()

	selected := u.h.coordinator.Decide(r, u.command.Change())
	if selected == services.CaseNoChange && u.command.Change().IsKeep() &&
		requested != nil && *requested == route.Unassigned && r.AssignedDriver() != nil {
		// status unassigned on an assigned route removes the driver
		selected = services.CaseUnassign
	}

	switch selected {
	case services.CaseAssign:
		err = u.assign(ctx)
	case services.CaseUnassign:
		err = u.unassign(ctx)
	case services.CaseNoChange:
	}
	if err != nil {
		return err
	}

	r.ApplyPatch(u.command.Patch(), u.now)

	if requested != nil {
		if err = u.applyStatus(ctx, *requested); err != nil {
			return err
		}
		if r.Status() != statusBefore && r.Status() != u.loggedState {
			if err = u.recordStatusChange(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

// assign runs the new-assignment protocol.
func (u *routeUpdate) assign(ctx context.Context) error {
	requestedID, _ := u.command.Change().DriverID()
	d, err := u.drivers.Get(ctx, requestedID)
	if err != nil {
		return err
	}

	superseded, err := u.h.coordinator.Assign(u.route, d, u.now)
	if err != nil {
		return u.raced(d, err)
	}
	u.stage(d)

	if superseded != nil {
		if err = u.releaseSuperseded(ctx, *superseded); err != nil {
			return err
		}
	}

	entry, err := activity.NewAssignedEntry(u.route.ID(), snapshotOf(d), u.now)
	if err != nil {
		return err
	}
	u.record(entry)
	return nil
}

// raced reports a driver lost to a concurrent assignment as already assigned.
// On the first attempt the plain availability error is kept.
func (u *routeUpdate) raced(d *driver.Driver, err error) error {
	if !u.retry || !errors.Is(err, services.ErrDriverNotAvailable) {
		return err
	}
	current := d.AssignedRoute()
	if current == nil || current.IsEqual(u.route.ID()) {
		return err
	}
	return services.NewDriverAlreadyAssignedError(d.ID(), *current)
}

func (u *routeUpdate) releaseSuperseded(ctx context.Context, id kernel.DriverID) error {
	previous, err := u.drivers.Get(ctx, id)
	if errors.Is(err, errs.ErrObjectNotFound) {
		u.h.logger.WarnContext(ctx, "Superseded driver not found",
			"route_id", u.route.ID().String(), "driver_id", id.String())
		return nil
	}
	if err != nil {
		return err
	}

	released, err := u.h.coordinator.Release(u.route, previous, u.now)
	if err != nil {
		return err
	}
	if !released {
		u.h.logger.WarnContext(ctx, "Superseded driver was not bound to route",
			"route_id", u.route.ID().String(), "driver_id", id.String())
		return nil
	}
	u.stage(previous)
	return nil
}

// unassign runs the unassignment protocol. A missing outgoing driver is a
// recoverable inconsistency: the route is released regardless.
func (u *routeUpdate) unassign(ctx context.Context) error {
	outgoingID := u.route.AssignedDriver()
	d, err := u.drivers.Get(ctx, *outgoingID)
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		u.h.logger.WarnContext(ctx, "Assigned driver not found while unassigning",
			"route_id", u.route.ID().String(), "driver_id", outgoingID.String())
		d = nil
	case err != nil:
		return err
	}

	if _, err = u.h.coordinator.Unassign(u.route, d, u.now); err != nil {
		return err
	}

	lastDriver := &activity.Snapshot{ID: *outgoingID}
	if d != nil {
		if d.AssignedRoute() != nil {
			u.h.logger.WarnContext(ctx, "Outgoing driver is bound to another route",
				"route_id", u.route.ID().String(), "driver_id", d.ID().String(),
				"driver_route_id", d.AssignedRoute().String())
		} else {
			u.stage(d)
		}
		snap := snapshotOf(d)
		lastDriver = &snap
	}

	entry, err := activity.NewUnassignedEntry(u.route.ID(), lastDriver, u.now)
	if err != nil {
		return err
	}
	u.record(entry)
	return nil
}

// applyStatus enforces the requested status after the assignment protocol.
func (u *routeUpdate) applyStatus(ctx context.Context, requested route.Status) error {
	r := u.route

	switch requested {
	case route.Assigned:
		if r.AssignedDriver() == nil {
			return invalidRequest("status %s requires an assigned driver", route.Assigned)
		}
		if err := r.ChangeStatus(route.Assigned, u.now); err != nil {
			return err
		}
		if u.command.Change().IsKeep() {
			return u.confirmAssigned(ctx)
		}
		return nil

	case route.Unassigned:
		if r.AssignedDriver() != nil {
			return invalidRequest("status %s requires the driver to be removed", route.Unassigned)
		}
		if err := r.ChangeStatus(route.Unassigned, u.now); err != nil {
			return err
		}
		u.bulkRelease = true
		return nil

	default:
		return r.ChangeStatus(requested, u.now)
	}
}

// confirmAssigned makes the bound driver reference this route back.
func (u *routeUpdate) confirmAssigned(ctx context.Context) error {
	d, err := u.driver(ctx, *u.route.AssignedDriver())
	if err != nil {
		return err
	}
	if d.IsAssignedTo(u.route.ID()) && d.Status() == driver.OnRoute {
		return nil
	}

	var previous *route.Route
	if current := d.AssignedRoute(); current != nil && !current.IsEqual(u.route.ID()) {
		previous, err = u.routes.Get(ctx, *current)
		if errors.Is(err, errs.ErrObjectNotFound) {
			previous, err = nil, nil
		}
		if err != nil {
			return err
		}
	}

	if err = u.h.coordinator.ConfirmAssigned(u.route, d, previous, u.now); err != nil {
		return err
	}
	u.stage(d)
	return nil
}

// recordStatusChange appends a feed entry for a status reached through the
// status field, with snapshots of the drivers associated now.
func (u *routeUpdate) recordStatusChange(ctx context.Context) error {
	current, err := u.snapshot(ctx, u.route.AssignedDriver())
	if err != nil {
		return err
	}
	last, err := u.snapshot(ctx, u.route.LastDriver())
	if err != nil {
		return err
	}

	entry, err := activity.NewEntry(u.route.ID(), u.route.Status(), current, last, u.now)
	if err != nil {
		return err
	}
	u.entries = append(u.entries, entry)
	return nil
}

func (u *routeUpdate) snapshot(ctx context.Context, id *kernel.DriverID) (*activity.Snapshot, error) {
	if id == nil {
		return nil, nil
	}
	d, err := u.driver(ctx, *id)
	if errors.Is(err, errs.ErrObjectNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	snap := snapshotOf(d)
	return &snap, nil
}

// driver returns a staged driver or loads it.
func (u *routeUpdate) driver(ctx context.Context, id kernel.DriverID) (*driver.Driver, error) {
	for _, d := range u.staged {
		if d.ID().IsEqual(id) {
			return d, nil
		}
	}
	return u.drivers.Get(ctx, id)
}

func (u *routeUpdate) stage(d *driver.Driver) {
	for _, s := range u.staged {
		if s == d {
			return
		}
	}
	u.staged = append(u.staged, d)
}

func (u *routeUpdate) record(entry activity.Entry) {
	u.entries = append(u.entries, entry)
	u.loggedState = entry.Status()
}

// persist writes drivers, then releases drifted drivers, then the route.
func (u *routeUpdate) persist(ctx context.Context) error {
	for _, d := range u.staged {
		if err := u.drivers.Save(ctx, d); err != nil {
			return err
		}
	}

	if u.bulkRelease {
		released, err := u.drivers.ReleaseByAssignedRoute(ctx, u.route, u.now)
		if err != nil {
			return err
		}
		if released > 0 {
			u.h.logger.WarnContext(ctx, "Released drivers still referencing unassigned route",
				"route_id", u.route.ID().String(), "count", released)
		}
	}

	// a bulk release acts on the route as read, so its version is checked even
	// when nothing on the route changed
	if len(u.route.Changes()) == 0 && !u.bulkRelease {
		return nil
	}
	return u.routes.Save(ctx, u.route)
}

func snapshotOf(d *driver.Driver) activity.Snapshot {
	return activity.Snapshot{ID: d.ID(), Name: d.Name()}
}
