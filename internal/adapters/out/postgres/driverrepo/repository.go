package driverrepo

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/adapters/out/postgres/pgerrs"
	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/route"
	"dispatch/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormDriverRepository implements DriverRepository using GORM.
type GormDriverRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id string, aggregate any)
}

// NewGormDriverRepository creates a new GORM driver repository.
func NewGormDriverRepository(db *gorm.DB, tracker aggregateTracker) *GormDriverRepository {
	return &GormDriverRepository{
		db:      db,
		tracker: tracker,
	}
}

func historyOrder(db *gorm.DB) *gorm.DB {
	return db.Order("seq")
}

// Add saves a new driver and any history it already carries.
func (r *GormDriverRepository) Add(ctx context.Context, aggregate *driver.Driver) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	dto.Version = 0
	dto.PastAssignments = historyFromDomain(dto.DriverID, aggregate.PastAssignedRoutes(), 1)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return pgerrs.Translate(err, "driver", dto.DriverID)
	}

	aggregate.SetVersion(0)
	r.tracker.TrackAggregate(dto.DriverID, aggregate)
	return nil
}

// Save updates the driver row under a version check and appends new history rows.
func (r *GormDriverRepository) Save(ctx context.Context, aggregate *driver.Driver) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	columns := dto.columns()
	columns["version"] = gorm.Expr("version + 1")

	db := r.db.WithContext(ctx)
	result := db.Model(&DriverDTO{}).
		Where("driver_id = ? AND version = ?", dto.DriverID, dto.Version).
		Updates(columns)
	if result.Error != nil {
		return pgerrs.Translate(result.Error, "driver", dto.DriverID)
	}

	if result.RowsAffected == 0 {
		return errs.NewVersionConflictError("driver", dto.DriverID, dto.Version)
	}

	added := aggregate.NewPastAssignments()
	if len(added) > 0 {
		stored := len(aggregate.PastAssignedRoutes()) - len(added)
		rows := historyFromDomain(dto.DriverID, added, stored+1)
		if err := db.Create(&rows).Error; err != nil {
			return pgerrs.Translate(err, "driver", dto.DriverID)
		}
	}

	aggregate.SetVersion(dto.Version + 1)
	r.tracker.TrackAggregate(dto.DriverID, aggregate)
	return nil
}

// Get retrieves a driver by ID together with its ordered history.
func (r *GormDriverRepository) Get(ctx context.Context, id kernel.DriverID) (*driver.Driver, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto DriverDTO
	if err := r.db.WithContext(ctx).
		Preload("PastAssignments", historyOrder).
		First(&dto, "driver_id = ?", id.String()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("driver", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// ReleaseByAssignedRoute frees every driver whose route reference matches r, ignoring case.
// Drivers go through Save, so history rows are appended and a driver changed
// concurrently yields errs.ErrVersionConflict.
func (r *GormDriverRepository) ReleaseByAssignedRoute(
	ctx context.Context,
	rt *route.Route,
	now time.Time,
) (int64, error) {
	if err := rt.Validate(); err != nil {
		return 0, err
	}

	var dtos []DriverDTO
	if err := r.db.WithContext(ctx).
		Preload("PastAssignments", historyOrder).
		Where("assigned_route_key = ?", rt.ID().Key()).
		Order("driver_id").
		Find(&dtos).Error; err != nil {
		return 0, pgerrs.Translate(err, "route", rt.ID().String())
	}

	details := rt.Details()
	var released int64
	for _, dto := range dtos {
		d, err := toDomain(dto)
		if err != nil {
			return released, err
		}
		if _, err = d.ArchiveCurrentAssignment(details.StartLocation, details.EndLocation, now); err != nil {
			return released, err
		}
		d.Release(now)
		if err = r.Save(ctx, d); err != nil {
			return released, err
		}
		released++
	}

	return released, nil
}

// GetAllAssigned retrieves drivers that reference a route or are on_route.
func (r *GormDriverRepository) GetAllAssigned(ctx context.Context) ([]*driver.Driver, error) {
	var dtos []DriverDTO
	if err := r.db.WithContext(ctx).
		Preload("PastAssignments", historyOrder).
		Where("assigned_route_key IS NOT NULL OR status = ?", driver.OnRoute.String()).
		Order("driver_id").
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	drivers := make([]*driver.Driver, 0, len(dtos))
	for _, dto := range dtos {
		d, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		drivers = append(drivers, d)
	}

	return drivers, nil
}
