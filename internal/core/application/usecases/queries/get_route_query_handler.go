package queries

import (
	"context"
	"database/sql"
	"errors"

	"dispatch/internal/pkg/errs"

	"gorm.io/gorm"
)

// GetRouteQueryHandler reads a route with a direct SQL query.
type GetRouteQueryHandler struct {
	db *gorm.DB
}

// NewGetRouteQueryHandler creates a handler for route lookups.
// Requires a GORM database connection for query execution.
func NewGetRouteQueryHandler(db *gorm.DB) GetRouteQueryHandler {
	return GetRouteQueryHandler{db: db}
}

// Handle returns errs.ErrObjectNotFound when no route matches.
func (h GetRouteQueryHandler) Handle(ctx context.Context, query GetRouteQuery) (GetRouteQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetRouteQueryResponse{}, err
	}

	var (
		view                   GetRouteQueryResponse
		assignedDriver, lastID sql.NullString
		assignedAt             sql.NullTime
	)

	row := h.db.WithContext(ctx).Raw(`
		SELECT
			route_id,
			assigned_driver_id,
			last_driver_id,
			status,
			assigned_at,
			updated_at,
			start_location,
			end_location,
			distance,
			distance_unit,
			duration,
			time_unit,
			cost,
			currency,
			max_speed,
			speed_unit,
			notes,
			version
		FROM routes
		WHERE route_key = ?
	`, query.RouteID().Key()).Row()

	err := row.Scan(
		&view.RouteID,
		&assignedDriver,
		&lastID,
		&view.Status,
		&assignedAt,
		&view.UpdatedAt,
		&view.StartLocation,
		&view.EndLocation,
		&view.Distance,
		&view.DistanceUnit,
		&view.Duration,
		&view.TimeUnit,
		&view.Cost,
		&view.Currency,
		&view.MaxSpeed,
		&view.SpeedUnit,
		&view.Notes,
		&view.Version,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return GetRouteQueryResponse{}, errs.NewObjectNotFoundError("route", query.RouteID().String())
	}
	if err != nil {
		return GetRouteQueryResponse{}, err
	}

	view.AssignedDriverID = nullString(assignedDriver)
	view.LastDriverID = nullString(lastID)
	if assignedAt.Valid {
		t := assignedAt.Time
		view.AssignedAt = &t
	}
	return view, nil
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
