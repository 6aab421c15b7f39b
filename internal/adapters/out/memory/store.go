// Package memory keeps routes, drivers and the activity feed in process memory.
// It honours the same unit of work contract as the postgres adapter: writes are
// staged per unit and applied at Commit under a version check, so concurrent
// units that touch the same aggregate cannot both commit.
package memory

import (
	"sort"
	"sync"

	"dispatch/internal/core/domain/model/activity"
	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/route"
)

// Store is the shared state behind every unit of work created by a factory.
type Store struct {
	mu      sync.RWMutex
	routes  map[string]route.State
	drivers map[string]driver.State
	feed    []activity.Entry
}

func NewStore() *Store {
	return &Store{
		routes:  make(map[string]route.State),
		drivers: make(map[string]driver.State),
	}
}

func (s *Store) route(key string) (route.State, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.routes[key]
	return st, ok
}

func (s *Store) driver(id string) (driver.State, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.drivers[id]
	return st, ok
}

func (s *Store) allRoutes() []route.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]route.State, 0, len(s.routes))
	for _, st := range s.routes {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Key() < out[j].ID.Key() })
	return out
}

func (s *Store) allDrivers() []driver.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]driver.State, 0, len(s.drivers))
	for _, st := range s.drivers {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out
}
