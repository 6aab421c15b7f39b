package commands

import (
	"context"
	"errors"
	"log/slog"

	"dispatch/internal/core/domain/model/activity"
	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/route"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// ReconcileReport counts the repairs of one reconciliation pass.
type ReconcileReport struct {
	DriversReleased int
	RoutesReleased  int
	// Skipped items changed concurrently; the next pass looks at them again.
	Skipped int
}

// ReconcileAssignmentsCommandHandler repairs drift between the two sides of
// the assignment relation left behind by interrupted or non-transactional writers.
//
// Repairs:
//   - driver references a route that does not reference it back (or is gone): release the driver
//   - driver on_route without a route: release the driver
//   - route references a driver that does not reference it back (or is gone): unassign the route
//
// Every repair runs in its own unit of work with version checks, so a
// concurrent assignment wins over the repair instead of being undone by it.
type ReconcileAssignmentsCommandHandler struct {
	uowFactory  UoWFactory
	activityLog ports.ActivityLog
	clock       kernel.Clock
	logger      *slog.Logger
}

func NewReconcileAssignmentsCommandHandler(
	uowFactory UoWFactory,
	activityLog ports.ActivityLog,
	clock kernel.Clock,
	logger *slog.Logger,
) ReconcileAssignmentsCommandHandler {
	return ReconcileAssignmentsCommandHandler{
		uowFactory:  uowFactory,
		activityLog: activityLog,
		clock:       clock,
		logger:      logger.With("component", "reconcile_assignments_handler"),
	}
}

// Handle runs one reconciliation pass.
func (h ReconcileAssignmentsCommandHandler) Handle(ctx context.Context, command ReconcileAssignmentsCommand) (ReconcileReport, error) {
	if err := command.Validate(); err != nil {
		return ReconcileReport{}, err
	}

	driverIDs, routeIDs, err := h.candidates(ctx)
	if err != nil {
		return ReconcileReport{}, err
	}

	var report ReconcileReport
	for _, id := range driverIDs {
		repaired, repairErr := h.repairDriver(ctx, id)
		switch {
		case errors.Is(repairErr, errs.ErrVersionConflict):
			report.Skipped++
		case repairErr != nil:
			return report, repairErr
		case repaired:
			report.DriversReleased++
		}
	}

	for _, id := range routeIDs {
		entry, repaired, repairErr := h.repairRoute(ctx, id)
		switch {
		case errors.Is(repairErr, errs.ErrVersionConflict):
			report.Skipped++
		case repairErr != nil:
			return report, repairErr
		case repaired:
			report.RoutesReleased++
			if appendErr := h.activityLog.Append(ctx, entry); appendErr != nil {
				h.logger.ErrorContext(ctx, "Failed to append activity entry",
					"route_id", id.String(), "error", appendErr)
			}
		}
	}

	return report, nil
}

func (h ReconcileAssignmentsCommandHandler) candidates(ctx context.Context) ([]kernel.DriverID, []kernel.RouteID, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	drivers, err := uow.DriverRepository().GetAllAssigned(ctx)
	if err != nil {
		return nil, nil, err
	}
	routes, err := uow.RouteRepository().GetAllAssigned(ctx)
	if err != nil {
		return nil, nil, err
	}

	driverIDs := make([]kernel.DriverID, 0, len(drivers))
	for _, d := range drivers {
		driverIDs = append(driverIDs, d.ID())
	}
	routeIDs := make([]kernel.RouteID, 0, len(routes))
	for _, r := range routes {
		routeIDs = append(routeIDs, r.ID())
	}
	return driverIDs, routeIDs, nil
}

func (h ReconcileAssignmentsCommandHandler) repairDriver(ctx context.Context, id kernel.DriverID) (bool, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	drivers := uow.DriverRepository()
	d, err := drivers.Get(ctx, id)
	if errors.Is(err, errs.ErrObjectNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	consistent, err := h.driverIsConsistent(ctx, uow.RouteRepository(), d)
	if err != nil || consistent {
		return false, err
	}

	h.logger.WarnContext(ctx, "Releasing drifted driver", "driver_id", id.String(), "status", d.Status().String())
	d.Release(h.clock.Now())
	if err = drivers.Save(ctx, d); err != nil {
		return false, err
	}
	if err = uow.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (h ReconcileAssignmentsCommandHandler) driverIsConsistent(
	ctx context.Context,
	routes ports.RouteRepository,
	d *driver.Driver,
) (bool, error) {
	routeID := d.AssignedRoute()
	if routeID == nil {
		return d.Status() != driver.OnRoute, nil
	}
	if d.Status() != driver.OnRoute {
		return false, nil
	}

	r, err := routes.Get(ctx, *routeID)
	if errors.Is(err, errs.ErrObjectNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return r.IsAssignedTo(d.ID()), nil
}

func (h ReconcileAssignmentsCommandHandler) repairRoute(ctx context.Context, id kernel.RouteID) (activity.Entry, bool, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return activity.Entry{}, false, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	routes := uow.RouteRepository()
	r, err := routes.Get(ctx, id)
	if errors.Is(err, errs.ErrObjectNotFound) {
		return activity.Entry{}, false, nil
	}
	if err != nil {
		return activity.Entry{}, false, err
	}
	driverID := r.AssignedDriver()
	if driverID == nil {
		return activity.Entry{}, false, h.repairStatus(ctx, uow, r)
	}

	lastDriver := &activity.Snapshot{ID: *driverID}
	d, err := uow.DriverRepository().Get(ctx, *driverID)
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
	case err != nil:
		return activity.Entry{}, false, err
	case d.IsAssignedTo(r.ID()) && d.Status() == driver.OnRoute:
		return activity.Entry{}, false, nil
	default:
		lastDriver.Name = d.Name()
	}

	now := h.clock.Now()
	h.logger.WarnContext(ctx, "Unassigning route with drifted driver", "route_id", id.String(), "driver_id", driverID.String())
	if _, err = r.UnassignDriver(now); err != nil {
		return activity.Entry{}, false, err
	}
	if err = routes.Save(ctx, r); err != nil {
		return activity.Entry{}, false, err
	}
	if err = uow.Commit(ctx); err != nil {
		return activity.Entry{}, false, err
	}

	entry, err := activity.NewUnassignedEntry(r.ID(), lastDriver, now)
	if err != nil {
		return activity.Entry{}, false, err
	}
	return entry, true, nil
}

// repairStatus moves an assigned route without a driver back to unassigned.
func (h ReconcileAssignmentsCommandHandler) repairStatus(ctx context.Context, uow UoW, r *route.Route) error {
	if r.Status() != route.Assigned {
		return nil
	}
	if err := r.ChangeStatus(route.Unassigned, h.clock.Now()); err != nil {
		return err
	}
	if err := uow.RouteRepository().Save(ctx, r); err != nil {
		return err
	}
	return uow.Commit(ctx)
}
