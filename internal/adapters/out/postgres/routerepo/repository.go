package routerepo

import (
	"context"
	"errors"

	"dispatch/internal/adapters/out/postgres/pgerrs"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/route"
	"dispatch/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormRouteRepository implements RouteRepository using GORM.
type GormRouteRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id string, aggregate any)
}

// NewGormRouteRepository creates a new GORM route repository.
func NewGormRouteRepository(db *gorm.DB, tracker aggregateTracker) *GormRouteRepository {
	return &GormRouteRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new route to the database.
func (r *GormRouteRepository) Add(ctx context.Context, aggregate *route.Route) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	dto.Version = 0
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return pgerrs.Translate(err, "route", aggregate.ID().String())
	}

	aggregate.SetVersion(0)
	r.tracker.TrackAggregate(dto.RouteKey, aggregate)
	return nil
}

// Save updates the route row only if its version is unchanged since it was read.
func (r *GormRouteRepository) Save(ctx context.Context, aggregate *route.Route) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	columns := dto.columns()
	columns["version"] = gorm.Expr("version + 1")

	result := r.db.WithContext(ctx).
		Model(&RouteDTO{}).
		Where("route_key = ? AND version = ?", dto.RouteKey, dto.Version).
		Updates(columns)
	if result.Error != nil {
		return pgerrs.Translate(result.Error, "route", dto.RouteID)
	}

	if result.RowsAffected == 0 {
		return errs.NewVersionConflictError("route", dto.RouteID, dto.Version)
	}

	aggregate.SetVersion(dto.Version + 1)
	r.tracker.TrackAggregate(dto.RouteKey, aggregate)
	return nil
}

// Get retrieves a route by its normalized id.
func (r *GormRouteRepository) Get(ctx context.Context, id kernel.RouteID) (*route.Route, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto RouteDTO
	if err := r.db.WithContext(ctx).First(&dto, "route_key = ?", id.Key()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("route", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetAllAssigned retrieves routes that reference a driver or carry status assigned.
func (r *GormRouteRepository) GetAllAssigned(ctx context.Context) ([]*route.Route, error) {
	var dtos []RouteDTO
	if err := r.db.WithContext(ctx).
		Where("assigned_driver_id IS NOT NULL OR status = ?", route.Assigned.String()).
		Order("route_key").
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	routes := make([]*route.Route, 0, len(dtos))
	for _, dto := range dtos {
		aggregate, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		routes = append(routes, aggregate)
	}

	return routes, nil
}
