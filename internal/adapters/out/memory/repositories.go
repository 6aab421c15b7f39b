package memory

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/route"
	"dispatch/internal/pkg/errs"
)

type routeRepository struct {
	uow *UnitOfWork
}

func (r *routeRepository) visible(key string) (route.State, bool) {
	if staged, ok := r.uow.routes[key]; ok {
		return staged.state, true
	}
	return r.uow.store.route(key)
}

func (r *routeRepository) Add(ctx context.Context, aggregate *route.Route) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	return r.uow.stage(ctx, func() error {
		key := aggregate.ID().Key()
		if _, exists := r.visible(key); exists {
			return errs.NewObjectAlreadyExistsError("route", aggregate.ID().String())
		}
		aggregate.SetVersion(0)
		r.uow.routes[key] = stagedRoute{state: aggregate.State(), base: notStored}
		return nil
	})
}

func (r *routeRepository) Get(_ context.Context, id kernel.RouteID) (*route.Route, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	st, ok := r.visible(id.Key())
	if !ok {
		return nil, errs.NewObjectNotFoundError("route", id.String())
	}
	return route.Restore(st)
}

func (r *routeRepository) Save(ctx context.Context, aggregate *route.Route) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	return r.uow.stage(ctx, func() error {
		key := aggregate.ID().Key()
		current, ok := r.visible(key)
		if !ok || current.Version != aggregate.Version() {
			return errs.NewVersionConflictError("route", aggregate.ID().String(), aggregate.Version())
		}

		base := current.Version
		if staged, isStaged := r.uow.routes[key]; isStaged {
			base = staged.base
		}
		aggregate.SetVersion(current.Version + 1)
		r.uow.routes[key] = stagedRoute{state: aggregate.State(), base: base}
		return nil
	})
}

func (r *routeRepository) GetAllAssigned(_ context.Context) ([]*route.Route, error) {
	states := mergeStaged(r.uow.store.allRoutes(), r.uow.routes,
		func(s route.State) string { return s.ID.Key() },
		func(s stagedRoute) route.State { return s.state },
	)

	routes := make([]*route.Route, 0)
	for _, st := range states {
		if st.AssignedDriverID == nil && st.Status != route.Assigned {
			continue
		}
		aggregate, err := route.Restore(st)
		if err != nil {
			return nil, err
		}
		routes = append(routes, aggregate)
	}
	return routes, nil
}

type driverRepository struct {
	uow *UnitOfWork
}

func (r *driverRepository) visible(id string) (driver.State, bool) {
	if staged, ok := r.uow.drivers[id]; ok {
		return staged.state, true
	}
	return r.uow.store.driver(id)
}

func (r *driverRepository) Add(ctx context.Context, aggregate *driver.Driver) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	return r.uow.stage(ctx, func() error {
		id := aggregate.ID().String()
		if _, exists := r.visible(id); exists {
			return errs.NewObjectAlreadyExistsError("driver", id)
		}
		aggregate.SetVersion(0)
		r.uow.drivers[id] = stagedDriver{state: aggregate.State(), base: notStored}
		return nil
	})
}

func (r *driverRepository) Get(_ context.Context, id kernel.DriverID) (*driver.Driver, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	st, ok := r.visible(id.String())
	if !ok {
		return nil, errs.NewObjectNotFoundError("driver", id.String())
	}
	return driver.Restore(st)
}

func (r *driverRepository) Save(ctx context.Context, aggregate *driver.Driver) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	return r.uow.stage(ctx, func() error {
		return r.stageSave(aggregate.ID().String(), aggregate.Version(), aggregate)
	})
}

func (r *driverRepository) stageSave(id string, expected int64, aggregate *driver.Driver) error {
	current, ok := r.visible(id)
	if !ok || current.Version != expected {
		return errs.NewVersionConflictError("driver", id, expected)
	}

	base := current.Version
	if staged, isStaged := r.uow.drivers[id]; isStaged {
		base = staged.base
	}
	aggregate.SetVersion(current.Version + 1)
	r.uow.drivers[id] = stagedDriver{state: aggregate.State(), base: base}
	return nil
}

func (r *driverRepository) ReleaseByAssignedRoute(ctx context.Context, rt *route.Route, now time.Time) (int64, error) {
	if err := rt.Validate(); err != nil {
		return 0, err
	}
	routeID, details := rt.ID(), rt.Details()

	var released int64
	err := r.uow.stage(ctx, func() error {
		states := mergeStaged(r.uow.store.allDrivers(), r.uow.drivers,
			func(s driver.State) string { return s.ID.String() },
			func(s stagedDriver) driver.State { return s.state },
		)
		for _, st := range states {
			if st.AssignedRouteID == nil || !st.AssignedRouteID.IsEqual(routeID) {
				continue
			}
			d, err := driver.Restore(st)
			if err != nil {
				return err
			}
			if _, err = d.ArchiveCurrentAssignment(details.StartLocation, details.EndLocation, now); err != nil {
				return err
			}
			d.Release(now)
			if err = r.stageSave(st.ID.String(), st.Version, d); err != nil {
				return err
			}
			released++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return released, nil
}

func (r *driverRepository) GetAllAssigned(_ context.Context) ([]*driver.Driver, error) {
	states := mergeStaged(r.uow.store.allDrivers(), r.uow.drivers,
		func(s driver.State) string { return s.ID.String() },
		func(s stagedDriver) driver.State { return s.state },
	)

	drivers := make([]*driver.Driver, 0)
	for _, st := range states {
		if st.AssignedRouteID == nil && st.Status != driver.OnRoute {
			continue
		}
		d, err := driver.Restore(st)
		if err != nil {
			return nil, err
		}
		drivers = append(drivers, d)
	}
	return drivers, nil
}

// mergeStaged overlays staged states on stored ones, keeping the stored order
// and appending aggregates added in this unit.
func mergeStaged[S, T any](stored []S, staged map[string]T, key func(S) string, state func(T) S) []S {
	out := make([]S, 0, len(stored)+len(staged))
	seen := make(map[string]bool, len(stored))
	for _, st := range stored {
		k := key(st)
		seen[k] = true
		if s, ok := staged[k]; ok {
			out = append(out, state(s))
			continue
		}
		out = append(out, st)
	}
	for _, k := range sortedKeys(staged) {
		if !seen[k] {
			out = append(out, state(staged[k]))
		}
	}
	return out
}
