package queries

import (
	"context"
	"database/sql"
	"errors"

	"dispatch/internal/pkg/errs"

	"gorm.io/gorm"
)

// GetDriverQueryHandler reads a driver and its history with direct SQL queries.
type GetDriverQueryHandler struct {
	db *gorm.DB
}

func NewGetDriverQueryHandler(db *gorm.DB) GetDriverQueryHandler {
	return GetDriverQueryHandler{db: db}
}

// Handle returns errs.ErrObjectNotFound when the driver does not exist.
func (h GetDriverQueryHandler) Handle(ctx context.Context, query GetDriverQuery) (GetDriverQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetDriverQueryResponse{}, err
	}

	var (
		view       GetDriverQueryResponse
		routeID    sql.NullString
		assignedAt sql.NullTime
	)

	db := h.db.WithContext(ctx)
	err := db.Raw(`
		SELECT driver_id, name, status, assigned_route_id, assigned_at, updated_at
		FROM drivers
		WHERE driver_id = ?
	`, query.DriverID().String()).Row().Scan(
		&view.DriverID,
		&view.Name,
		&view.Status,
		&routeID,
		&assignedAt,
		&view.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return GetDriverQueryResponse{}, errs.NewObjectNotFoundError("driver", query.DriverID().String())
	}
	if err != nil {
		return GetDriverQueryResponse{}, err
	}
	view.AssignedRouteID = nullString(routeID)
	if assignedAt.Valid {
		t := assignedAt.Time
		view.AssignedAt = &t
	}

	rows, err := db.Raw(`
		SELECT route_id, start_location, end_location, assigned_at, unassigned_at
		FROM driver_past_assignments
		WHERE driver_id = ?
		ORDER BY seq
	`, view.DriverID).Rows()
	if err != nil {
		return GetDriverQueryResponse{}, err
	}
	defer rows.Close()

	view.PastAssignedRoutes = make([]PastAssignmentResponse, 0)
	for rows.Next() {
		var past PastAssignmentResponse
		if err = rows.Scan(
			&past.RouteID,
			&past.StartLocation,
			&past.EndLocation,
			&past.AssignedAt,
			&past.UnassignedAt,
		); err != nil {
			return GetDriverQueryResponse{}, err
		}
		view.PastAssignedRoutes = append(view.PastAssignedRoutes, past)
	}
	if err = rows.Err(); err != nil {
		return GetDriverQueryResponse{}, err
	}

	return view, nil
}
