// Package driverrepo provides data transfer objects and mapping functions for driver persistence.
// A driver row owns its assignment history, stored as an ordered child table.
package driverrepo

import (
	"time"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
)

// DriverDTO represents the database structure for persisting driver aggregates.
type DriverDTO struct {
	DriverID         string              `gorm:"type:varchar(255);primaryKey"`
	Name             string              `gorm:"type:varchar(255);not null"`
	Status           string              `gorm:"type:varchar(32);not null;index"`
	AssignedRouteID  *string             `gorm:"type:varchar(255)"`
	AssignedRouteKey *string             `gorm:"type:varchar(255);index"`
	AssignedAt       *time.Time          `gorm:"type:timestamptz"`
	UpdatedAt        time.Time           `gorm:"type:timestamptz;not null;autoUpdateTime:false"`
	Version          int64               `gorm:"not null;default:0"`
	PastAssignments  []PastAssignmentDTO `gorm:"foreignKey:DriverID;references:DriverID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the database table name for driver entities.
func (DriverDTO) TableName() string {
	return "drivers"
}

// PastAssignmentDTO is one row of a driver's history. Seq starts at 1 and
// records the append order.
type PastAssignmentDTO struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement"`
	DriverID      string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_driver_past_assignments_seq,priority:1"`
	Seq           int       `gorm:"not null;uniqueIndex:idx_driver_past_assignments_seq,priority:2"`
	RouteID       string    `gorm:"type:varchar(255);not null"`
	StartLocation string    `gorm:"type:text;not null"`
	EndLocation   string    `gorm:"type:text;not null"`
	AssignedAt    time.Time `gorm:"type:timestamptz;not null"`
	UnassignedAt  time.Time `gorm:"type:timestamptz;not null"`
}

// TableName specifies the database table name for history rows.
func (PastAssignmentDTO) TableName() string {
	return "driver_past_assignments"
}

func (dto DriverDTO) columns() map[string]any {
	return map[string]any{
		"name":               dto.Name,
		"status":             dto.Status,
		"assigned_route_id":  dto.AssignedRouteID,
		"assigned_route_key": dto.AssignedRouteKey,
		"assigned_at":        dto.AssignedAt,
		"updated_at":         dto.UpdatedAt,
	}
}

// fromDomain maps the driver row without its history.
func fromDomain(aggregate *driver.Driver) DriverDTO {
	s := aggregate.State()
	dto := DriverDTO{
		DriverID:   s.ID.String(),
		Name:       s.Name,
		Status:     s.Status.String(),
		AssignedAt: s.AssignedAt,
		UpdatedAt:  s.UpdatedAt,
		Version:    s.Version,
	}
	if s.AssignedRouteID != nil {
		id, key := s.AssignedRouteID.String(), s.AssignedRouteID.Key()
		dto.AssignedRouteID = &id
		dto.AssignedRouteKey = &key
	}
	return dto
}

// historyFromDomain maps records appended after firstSeq-1 stored ones.
func historyFromDomain(driverID string, records []driver.PastAssignment, firstSeq int) []PastAssignmentDTO {
	dtos := make([]PastAssignmentDTO, 0, len(records))
	for i, rec := range records {
		dtos = append(dtos, PastAssignmentDTO{
			DriverID:      driverID,
			Seq:           firstSeq + i,
			RouteID:       rec.RouteID().String(),
			StartLocation: rec.StartLocation(),
			EndLocation:   rec.EndLocation(),
			AssignedAt:    rec.AssignedAt(),
			UnassignedAt:  rec.UnassignedAt(),
		})
	}
	return dtos
}

func toDomain(dto DriverDTO) (*driver.Driver, error) {
	id, err := kernel.NewDriverID(dto.DriverID)
	if err != nil {
		return nil, err
	}

	var routeID *kernel.RouteID
	if dto.AssignedRouteID != nil && *dto.AssignedRouteID != "" {
		rid, ridErr := kernel.NewRouteID(*dto.AssignedRouteID)
		if ridErr != nil {
			return nil, ridErr
		}
		routeID = &rid
	}

	history := make([]driver.PastAssignment, 0, len(dto.PastAssignments))
	for _, row := range dto.PastAssignments {
		rec, recErr := pastAssignmentToDomain(row)
		if recErr != nil {
			return nil, recErr
		}
		history = append(history, rec)
	}

	return driver.Restore(driver.State{
		ID:              id,
		Name:            dto.Name,
		Status:          driver.Status(dto.Status),
		AssignedRouteID: routeID,
		AssignedAt:      dto.AssignedAt,
		UpdatedAt:       dto.UpdatedAt,
		History:         history,
		Version:         dto.Version,
	})
}

func pastAssignmentToDomain(dto PastAssignmentDTO) (driver.PastAssignment, error) {
	routeID, err := kernel.NewRouteID(dto.RouteID)
	if err != nil {
		return driver.PastAssignment{}, err
	}
	return driver.NewPastAssignment(routeID, dto.StartLocation, dto.EndLocation, dto.AssignedAt, dto.UnassignedAt)
}
