// Package routerepo provides the GORM persistence of route aggregates and the
// mapping between the Route aggregate and its table row.
package routerepo

import (
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/route"
)

// RouteDTO represents the database structure for persisting route aggregates.
// RouteKey is the normalized identifier; RouteID keeps the original spelling.
type RouteDTO struct {
	RouteKey         string     `gorm:"type:varchar(255);primaryKey"`
	RouteID          string     `gorm:"type:varchar(255);not null"`
	AssignedDriverID *string    `gorm:"type:varchar(255);index"`
	LastDriverID     *string    `gorm:"type:varchar(255)"`
	Status           string     `gorm:"type:varchar(64);not null;index"`
	AssignedAt       *time.Time `gorm:"type:timestamptz"`
	UpdatedAt        time.Time  `gorm:"type:timestamptz;not null;autoUpdateTime:false"`
	StartLocation    string     `gorm:"type:text;not null;default:''"`
	EndLocation      string     `gorm:"type:text;not null;default:''"`
	Distance         float64    `gorm:"not null;default:0"`
	DistanceUnit     string     `gorm:"type:varchar(32);not null;default:''"`
	Duration         float64    `gorm:"not null;default:0"`
	TimeUnit         string     `gorm:"type:varchar(32);not null;default:''"`
	Cost             float64    `gorm:"not null;default:0"`
	Currency         string     `gorm:"type:varchar(16);not null;default:''"`
	MaxSpeed         float64    `gorm:"not null;default:0"`
	SpeedUnit        string     `gorm:"type:varchar(32);not null;default:''"`
	Notes            string     `gorm:"type:text;not null;default:''"`
	Version          int64      `gorm:"not null;default:0"`
}

// TableName overrides GORM's default naming convention to use "routes".
func (RouteDTO) TableName() string {
	return "routes"
}

// columns returns every mutable column, nil references included, for version-checked updates.
func (dto RouteDTO) columns() map[string]any {
	return map[string]any{
		"route_id":           dto.RouteID,
		"assigned_driver_id": dto.AssignedDriverID,
		"last_driver_id":     dto.LastDriverID,
		"status":             dto.Status,
		"assigned_at":        dto.AssignedAt,
		"updated_at":         dto.UpdatedAt,
		"start_location":     dto.StartLocation,
		"end_location":       dto.EndLocation,
		"distance":           dto.Distance,
		"distance_unit":      dto.DistanceUnit,
		"duration":           dto.Duration,
		"time_unit":          dto.TimeUnit,
		"cost":               dto.Cost,
		"currency":           dto.Currency,
		"max_speed":          dto.MaxSpeed,
		"speed_unit":         dto.SpeedUnit,
		"notes":              dto.Notes,
	}
}

func fromDomain(aggregate *route.Route) RouteDTO {
	s := aggregate.State()
	return RouteDTO{
		RouteKey:         s.ID.Key(),
		RouteID:          s.ID.String(),
		AssignedDriverID: driverIDString(s.AssignedDriverID),
		LastDriverID:     driverIDString(s.LastDriverID),
		Status:           s.Status.String(),
		AssignedAt:       s.AssignedAt,
		UpdatedAt:        s.UpdatedAt,
		StartLocation:    s.Details.StartLocation,
		EndLocation:      s.Details.EndLocation,
		Distance:         s.Details.Distance,
		DistanceUnit:     s.Details.DistanceUnit,
		Duration:         s.Details.Duration,
		TimeUnit:         s.Details.TimeUnit,
		Cost:             s.Details.Cost,
		Currency:         s.Details.Currency,
		MaxSpeed:         s.Details.MaxSpeed,
		SpeedUnit:        s.Details.SpeedUnit,
		Notes:            s.Details.Notes,
		Version:          s.Version,
	}
}

func toDomain(dto RouteDTO) (*route.Route, error) {
	id, err := kernel.NewRouteID(dto.RouteID)
	if err != nil {
		return nil, err
	}
	assigned, err := driverIDFromString(dto.AssignedDriverID)
	if err != nil {
		return nil, err
	}
	last, err := driverIDFromString(dto.LastDriverID)
	if err != nil {
		return nil, err
	}

	return route.Restore(route.State{
		ID:               id,
		AssignedDriverID: assigned,
		LastDriverID:     last,
		Status:           route.Status(dto.Status),
		AssignedAt:       dto.AssignedAt,
		UpdatedAt:        dto.UpdatedAt,
		Details: route.Details{
			StartLocation: dto.StartLocation,
			EndLocation:   dto.EndLocation,
			Distance:      dto.Distance,
			DistanceUnit:  dto.DistanceUnit,
			Duration:      dto.Duration,
			TimeUnit:      dto.TimeUnit,
			Cost:          dto.Cost,
			Currency:      dto.Currency,
			MaxSpeed:      dto.MaxSpeed,
			SpeedUnit:     dto.SpeedUnit,
			Notes:         dto.Notes,
		},
		Version: dto.Version,
	})
}

func driverIDString(id *kernel.DriverID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func driverIDFromString(s *string) (*kernel.DriverID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := kernel.NewDriverID(*s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
