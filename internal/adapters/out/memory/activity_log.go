package memory

import (
	"context"

	"dispatch/internal/core/domain/model/activity"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

// ActivityLog appends feed entries to the store.
type ActivityLog struct {
	store *Store
}

func NewActivityLog(store *Store) *ActivityLog {
	return &ActivityLog{store: store}
}

func (l *ActivityLog) Append(ctx context.Context, entry activity.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s := l.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.feed {
		if e.ID().IsEqual(entry.ID()) {
			return errs.NewObjectAlreadyExistsError("activity entry", entry.ID().String())
		}
	}
	s.feed = append(s.feed, entry)
	return nil
}

// Entries returns up to limit entries of routeID in action time order.
// Entries with equal action times keep their append order.
func (l *ActivityLog) Entries(routeID kernel.RouteID, limit int) []activity.Entry {
	s := l.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]activity.Entry, 0)
	for _, e := range s.feed {
		if e.RouteID().IsEqual(routeID) {
			out = append(out, e)
		}
	}
	sortByActionTime(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
