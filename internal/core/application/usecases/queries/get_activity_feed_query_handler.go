package queries

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

// GetActivityFeedQueryHandler reads feed entries with a direct SQL query.
type GetActivityFeedQueryHandler struct {
	db *gorm.DB
}

func NewGetActivityFeedQueryHandler(db *gorm.DB) GetActivityFeedQueryHandler {
	return GetActivityFeedQueryHandler{db: db}
}

// Handle returns an empty slice for a route without entries.
func (h GetActivityFeedQueryHandler) Handle(
	ctx context.Context,
	query GetActivityFeedQuery,
) ([]ActivityEntryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			route_id,
			driver_id,
			driver_name,
			last_driver_id,
			last_driver_name,
			status,
			action_time
		FROM activity_feed
		WHERE route_key = ?
		ORDER BY action_time, seq
		LIMIT ?
	`, query.RouteID().Key(), query.Limit()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]ActivityEntryResponse, 0)
	for rows.Next() {
		var (
			entry                      ActivityEntryResponse
			driverID, driverName       sql.NullString
			lastDriverID, lastDriverNm sql.NullString
		)
		if err = rows.Scan(
			&entry.ID,
			&entry.RouteID,
			&driverID,
			&driverName,
			&lastDriverID,
			&lastDriverNm,
			&entry.Status,
			&entry.ActionTime,
		); err != nil {
			return nil, err
		}
		entry.Driver = snapshotResponse(driverID, driverName)
		entry.LastDriver = snapshotResponse(lastDriverID, lastDriverNm)
		entries = append(entries, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

func snapshotResponse(id, name sql.NullString) *DriverSnapshotResponse {
	if !id.Valid {
		return nil
	}
	return &DriverSnapshotResponse{ID: id.String, Name: name.String}
}
