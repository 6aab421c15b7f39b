package memory

import (
	"context"
	"sort"

	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/activity"
	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/route"
	"dispatch/internal/pkg/errs"
)

// GetRouteQueryHandler serves route lookups from the store.
type GetRouteQueryHandler struct {
	store *Store
}

func NewGetRouteQueryHandler(store *Store) GetRouteQueryHandler {
	return GetRouteQueryHandler{store: store}
}

func (h GetRouteQueryHandler) Handle(_ context.Context, query queries.GetRouteQuery) (queries.GetRouteQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return queries.GetRouteQueryResponse{}, err
	}
	st, ok := h.store.route(query.RouteID().Key())
	if !ok {
		return queries.GetRouteQueryResponse{}, errs.NewObjectNotFoundError("route", query.RouteID().String())
	}
	return routeResponse(st), nil
}

func routeResponse(st route.State) queries.GetRouteQueryResponse {
	view := queries.GetRouteQueryResponse{
		RouteID:       st.ID.String(),
		Status:        st.Status.String(),
		UpdatedAt:     st.UpdatedAt,
		StartLocation: st.Details.StartLocation,
		EndLocation:   st.Details.EndLocation,
		Distance:      st.Details.Distance,
		DistanceUnit:  st.Details.DistanceUnit,
		Duration:      st.Details.Duration,
		TimeUnit:      st.Details.TimeUnit,
		Cost:          st.Details.Cost,
		Currency:      st.Details.Currency,
		MaxSpeed:      st.Details.MaxSpeed,
		SpeedUnit:     st.Details.SpeedUnit,
		Notes:         st.Details.Notes,
		Version:       st.Version,
		AssignedAt:    st.AssignedAt,
	}
	if st.AssignedDriverID != nil {
		id := st.AssignedDriverID.String()
		view.AssignedDriverID = &id
	}
	if st.LastDriverID != nil {
		id := st.LastDriverID.String()
		view.LastDriverID = &id
	}
	return view
}

// GetDriverQueryHandler serves driver lookups from the store.
type GetDriverQueryHandler struct {
	store *Store
}

func NewGetDriverQueryHandler(store *Store) GetDriverQueryHandler {
	return GetDriverQueryHandler{store: store}
}

func (h GetDriverQueryHandler) Handle(_ context.Context, query queries.GetDriverQuery) (queries.GetDriverQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return queries.GetDriverQueryResponse{}, err
	}
	st, ok := h.store.driver(query.DriverID().String())
	if !ok {
		return queries.GetDriverQueryResponse{}, errs.NewObjectNotFoundError("driver", query.DriverID().String())
	}
	return driverResponse(st), nil
}

func driverResponse(st driver.State) queries.GetDriverQueryResponse {
	view := queries.GetDriverQueryResponse{
		DriverID:           st.ID.String(),
		Name:               st.Name,
		Status:             st.Status.String(),
		AssignedAt:         st.AssignedAt,
		UpdatedAt:          st.UpdatedAt,
		PastAssignedRoutes: make([]queries.PastAssignmentResponse, 0, len(st.History)),
	}
	if st.AssignedRouteID != nil {
		id := st.AssignedRouteID.String()
		view.AssignedRouteID = &id
	}
	for _, rec := range st.History {
		view.PastAssignedRoutes = append(view.PastAssignedRoutes, queries.PastAssignmentResponse{
			RouteID:       rec.RouteID().String(),
			StartLocation: rec.StartLocation(),
			EndLocation:   rec.EndLocation(),
			AssignedAt:    rec.AssignedAt(),
			UnassignedAt:  rec.UnassignedAt(),
		})
	}
	return view
}

// GetActivityFeedQueryHandler serves the feed from an ActivityLog.
type GetActivityFeedQueryHandler struct {
	log *ActivityLog
}

func NewGetActivityFeedQueryHandler(log *ActivityLog) GetActivityFeedQueryHandler {
	return GetActivityFeedQueryHandler{log: log}
}

func (h GetActivityFeedQueryHandler) Handle(
	ctx context.Context,
	query queries.GetActivityFeedQuery,
) ([]queries.ActivityEntryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries := h.log.Entries(query.RouteID(), query.Limit())
	out := make([]queries.ActivityEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, queries.ActivityEntryResponse{
			ID:         e.ID().String(),
			RouteID:    e.RouteID().String(),
			Driver:     snapshotResponse(e.Driver()),
			LastDriver: snapshotResponse(e.LastDriver()),
			Status:     e.Status().String(),
			ActionTime: e.ActionTime(),
		})
	}
	return out, nil
}

func snapshotResponse(s *activity.Snapshot) *queries.DriverSnapshotResponse {
	if s == nil {
		return nil
	}
	return &queries.DriverSnapshotResponse{ID: s.ID.String(), Name: s.Name}
}

func sortByActionTime(entries []activity.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].ActionTime().Before(entries[j].ActionTime())
	})
}
