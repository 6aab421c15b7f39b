package commands_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"dispatch/internal/adapters/out/memory"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/activity"
	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/route"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/require"
)

var (
	t0 = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	t1 = t0.Add(time.Hour)
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedClock(at time.Time) kernel.Clock {
	return kernel.ClockFunc(func() time.Time { return at })
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}

type FuncRouteUoWFactory func() commands.RouteUoW

func (f FuncRouteUoWFactory) Create() commands.RouteUoW {
	return f()
}

type FuncDriverUoWFactory func() commands.DriverUoW

func (f FuncDriverUoWFactory) Create() commands.DriverUoW {
	return f()
}

// recordingLog is an ActivityLog that keeps entries in memory.
type recordingLog struct {
	mu      sync.Mutex
	entries []activity.Entry
	err     error
}

func (l *recordingLog) Append(_ context.Context, entry activity.Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return l.err
	}
	l.entries = append(l.entries, entry)
	return nil
}

func (l *recordingLog) statuses() []route.Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]route.Status, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, e.Status())
	}
	return out
}

// fixture wires an update handler over an in-memory store.
type fixture struct {
	t       *testing.T
	store   *memory.Store
	factory *memory.UnitOfWorkFactory
	feed    *recordingLog
	handler commands.UpdateRouteCommandHandler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	f := &fixture{
		t:       t,
		store:   store,
		factory: memory.NewUnitOfWorkFactory(store),
		feed:    &recordingLog{},
	}
	f.handler = commands.NewUpdateRouteCommandHandler(f.uowFactory(), f.feed, fixedClock(t1), discardLogger())
	return f
}

func (f *fixture) uowFactory() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW { return f.factory.Create() })
}

func (f *fixture) addRoute(id, start, end string) {
	f.t.Helper()
	r, err := route.NewRoute(kernel.MustNewRouteID(id), route.Details{StartLocation: start, EndLocation: end}, t0)
	require.NoError(f.t, err)
	require.NoError(f.t, f.factory.Create().RouteRepository().Add(f.t.Context(), r))
}

func (f *fixture) addDriver(id, name string) {
	f.t.Helper()
	d, err := driver.NewDriver(kernel.MustNewDriverID(id), name, t0)
	require.NoError(f.t, err)
	require.NoError(f.t, f.factory.Create().DriverRepository().Add(f.t.Context(), d))
}

// putDriver stores a driver in an arbitrary, possibly inconsistent, state.
func (f *fixture) putDriver(s driver.State) {
	f.t.Helper()
	d, err := driver.Restore(s)
	require.NoError(f.t, err)
	require.NoError(f.t, f.factory.Create().DriverRepository().Add(f.t.Context(), d))
}

// putRoute stores a route in an arbitrary, possibly inconsistent, state.
func (f *fixture) putRoute(s route.State) {
	f.t.Helper()
	r, err := route.Restore(s)
	require.NoError(f.t, err)
	require.NoError(f.t, f.factory.Create().RouteRepository().Add(f.t.Context(), r))
}

func (f *fixture) route(id string) *route.Route {
	f.t.Helper()
	r, err := f.factory.Create().RouteRepository().Get(f.t.Context(), kernel.MustNewRouteID(id))
	require.NoError(f.t, err)
	return r
}

func (f *fixture) driver(id string) *driver.Driver {
	f.t.Helper()
	d, err := f.factory.Create().DriverRepository().Get(f.t.Context(), kernel.MustNewDriverID(id))
	require.NoError(f.t, err)
	return d
}

func (f *fixture) update(
	routeID string,
	change services.AssignmentChange,
	status *string,
	patch route.Patch,
) (commands.UpdateRouteResult, error) {
	f.t.Helper()
	cmd, err := commands.NewUpdateRouteCommand(routeID, change, status, patch)
	require.NoError(f.t, err)
	return f.handler.Handle(f.t.Context(), cmd)
}

func ptr[T any](v T) *T {
	return &v
}

func assignTo(id string) services.AssignmentChange {
	return services.AssignTo(kernel.MustNewDriverID(id))
}

// assertConsistent checks that both sides of every assignment agree.
func (f *fixture) assertConsistent() {
	f.t.Helper()
	ctx := f.t.Context()
	uow := f.factory.Create()

	drivers, err := uow.DriverRepository().GetAllAssigned(ctx)
	require.NoError(f.t, err)
	for _, d := range drivers {
		require.NotNil(f.t, d.AssignedRoute(), "driver %s is on_route without a route", d.ID())
		require.Equal(f.t, driver.OnRoute, d.Status(), "driver %s has a route but is %s", d.ID(), d.Status())
		r, getErr := uow.RouteRepository().Get(ctx, *d.AssignedRoute())
		require.NoError(f.t, getErr)
		require.True(f.t, r.IsAssignedTo(d.ID()), "route %s does not point back to %s", r.ID(), d.ID())
	}

	routes, err := uow.RouteRepository().GetAllAssigned(ctx)
	require.NoError(f.t, err)
	for _, r := range routes {
		require.NotNil(f.t, r.AssignedDriver(), "route %s is assigned without a driver", r.ID())
		d, getErr := uow.DriverRepository().Get(ctx, *r.AssignedDriver())
		require.NoError(f.t, getErr)
		require.True(f.t, d.IsAssignedTo(r.ID()), "driver %s does not point back to %s", d.ID(), r.ID())
	}
}

// commitBarrier holds every wrapped unit at Commit until parties of them
// arrived, so their reads are guaranteed to overlap.
type commitBarrier struct {
	mu      sync.Mutex
	parties int
	arrived int
	release chan struct{}
}

func newCommitBarrier(parties int) *commitBarrier {
	return &commitBarrier{parties: parties, release: make(chan struct{})}
}

func (b *commitBarrier) wrap(uow commands.UoW) commands.UoW {
	return &barrierUoW{UoW: uow, barrier: b}
}

func (b *commitBarrier) await(ctx context.Context) {
	b.mu.Lock()
	b.arrived++
	if b.arrived == b.parties {
		close(b.release)
	}
	b.mu.Unlock()

	select {
	case <-b.release:
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
	}
}

type barrierUoW struct {
	commands.UoW
	barrier *commitBarrier
}

func (u *barrierUoW) Commit(ctx context.Context) error {
	u.barrier.await(ctx)
	return u.UoW.Commit(ctx)
}

// conflictingUoW never commits and always reports a stale write.
type conflictingUoW struct {
	commands.UoW
}

func (u *conflictingUoW) Commit(context.Context) error {
	return errs.NewVersionConflictError("route", "R1", 0)
}

// releaseHookUoW runs before ahead of every bulk release in the unit.
type releaseHookUoW struct {
	commands.UoW
	before func(ctx context.Context)
}

func (u releaseHookUoW) DriverRepository() ports.DriverRepository {
	return releaseHookRepository{DriverRepository: u.UoW.DriverRepository(), before: u.before}
}

type releaseHookRepository struct {
	ports.DriverRepository
	before func(ctx context.Context)
}

func (r releaseHookRepository) ReleaseByAssignedRoute(ctx context.Context, rt *route.Route, now time.Time) (int64, error) {
	r.before(ctx)
	return r.DriverRepository.ReleaseByAssignedRoute(ctx, rt, now)
}
