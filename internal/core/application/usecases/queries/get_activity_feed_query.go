package queries

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

const (
	DefaultFeedLimit = 50
	MaxFeedLimit     = 500
)

var ErrGetActivityFeedQueryIsNotConstructed = errors.New(
	"GetActivityFeedQuery must be created via NewGetActivityFeedQuery constructor",
)

// GetActivityFeedQuery lists the activity entries of a route ordered by action time.
type GetActivityFeedQuery struct {
	routeID kernel.RouteID
	limit   int
	guard   guard.ConstructorGuard
}

// NewGetActivityFeedQuery uses DefaultFeedLimit when limit is 0.
func NewGetActivityFeedQuery(routeID string, limit int) (GetActivityFeedQuery, error) {
	id, err := kernel.NewRouteID(routeID)
	if err != nil {
		return GetActivityFeedQuery{}, err
	}
	if limit == 0 {
		limit = DefaultFeedLimit
	}
	if limit < 0 || limit > MaxFeedLimit {
		return GetActivityFeedQuery{}, errs.NewValueIsInvalidError("limit")
	}
	return GetActivityFeedQuery{routeID: id, limit: limit, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetActivityFeedQuery) Validate() error {
	return q.guard.Validate(ErrGetActivityFeedQueryIsNotConstructed)
}

func (q GetActivityFeedQuery) RouteID() kernel.RouteID {
	return q.routeID
}

func (q GetActivityFeedQuery) Limit() int {
	return q.limit
}

// DriverSnapshotResponse identifies a driver as recorded in the feed.
type DriverSnapshotResponse struct {
	ID   string
	Name string
}

// ActivityEntryResponse is one feed entry.
type ActivityEntryResponse struct {
	ID         string
	RouteID    string
	Driver     *DriverSnapshotResponse
	LastDriver *DriverSnapshotResponse
	Status     string
	ActionTime time.Time
}
