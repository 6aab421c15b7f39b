package memory

import (
	"context"
	"errors"
	"sort"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/route"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// ErrNoTransaction is returned by Commit and Rollback without a prior Begin.
var ErrNoTransaction = errors.New("memory: no active transaction")

// notStored marks a staged aggregate that did not exist when it was staged.
const notStored = -1

type stagedRoute struct {
	state route.State
	base  int64
}

type stagedDriver struct {
	state driver.State
	base  int64
}

// UnitOfWorkFactory creates units bound to one Store.
type UnitOfWorkFactory struct {
	store *Store
}

func NewUnitOfWorkFactory(store *Store) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{store: store}
}

func (f *UnitOfWorkFactory) Create() ports.UnitOfWork {
	return &UnitOfWork{store: f.store}
}

// UnitOfWork stages writes until Commit. Reads see staged writes first.
// A unit must not be shared between goroutines.
type UnitOfWork struct {
	store   *Store
	active  bool
	routes  map[string]stagedRoute
	drivers map[string]stagedDriver
}

func (u *UnitOfWork) Begin(_ context.Context) error {
	if u.active {
		return nil
	}
	u.active = true
	u.routes = make(map[string]stagedRoute)
	u.drivers = make(map[string]stagedDriver)
	return nil
}

// Commit applies every staged write, or none when any aggregate changed since it was read.
func (u *UnitOfWork) Commit(_ context.Context) error {
	if !u.active {
		return ErrNoTransaction
	}
	defer u.reset()

	s := u.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range sortedKeys(u.routes) {
		staged := u.routes[key]
		if err := checkBase("route", staged.state.ID.String(), staged.base, routeVersion(s.routes, key)); err != nil {
			return err
		}
	}
	for _, id := range sortedKeys(u.drivers) {
		staged := u.drivers[id]
		if err := checkBase("driver", id, staged.base, driverVersion(s.drivers, id)); err != nil {
			return err
		}
	}

	for key, staged := range u.routes {
		s.routes[key] = staged.state
	}
	for id, staged := range u.drivers {
		s.drivers[id] = staged.state
	}
	return nil
}

func (u *UnitOfWork) Rollback(_ context.Context) error {
	if !u.active {
		return ErrNoTransaction
	}
	u.reset()
	return nil
}

func (u *UnitOfWork) RouteRepository() ports.RouteRepository {
	return &routeRepository{uow: u}
}

func (u *UnitOfWork) DriverRepository() ports.DriverRepository {
	return &driverRepository{uow: u}
}

func (u *UnitOfWork) reset() {
	u.active = false
	u.routes = nil
	u.drivers = nil
}

// stage lazily opens an implicit transaction for repositories used without Begin,
// mirroring the postgres adapter's autocommit behaviour.
func (u *UnitOfWork) stage(ctx context.Context, apply func() error) error {
	if u.active {
		return apply()
	}
	_ = u.Begin(ctx)
	if err := apply(); err != nil {
		u.reset()
		return err
	}
	return u.Commit(ctx)
}

func checkBase(kind, id string, base int64, stored int64) error {
	if base == notStored {
		if stored != notStored {
			return errs.NewObjectAlreadyExistsError(kind, id)
		}
		return nil
	}
	if stored != base {
		return errs.NewVersionConflictError(kind, id, base)
	}
	return nil
}

func routeVersion(m map[string]route.State, key string) int64 {
	st, ok := m[key]
	if !ok {
		return notStored
	}
	return st.Version
}

func driverVersion(m map[string]driver.State, id string) int64 {
	st, ok := m[id]
	if !ok {
		return notStored
	}
	return st.Version
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
