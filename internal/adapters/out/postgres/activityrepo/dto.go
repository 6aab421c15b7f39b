// Package activityrepo persists the activity feed in PostgreSQL.
package activityrepo

import (
	"time"

	"dispatch/internal/core/domain/model/activity"

	"github.com/google/uuid"
)

// EntryDTO is one row of the append-only activity_feed table. Seq breaks ties
// between entries written with the same action time.
type EntryDTO struct {
	Seq            int64     `gorm:"primaryKey;autoIncrement"`
	ID             uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	RouteID        string    `gorm:"type:varchar(255);not null"`
	RouteKey       string    `gorm:"type:varchar(255);not null;index:idx_activity_feed_route,priority:1"`
	DriverID       *string   `gorm:"type:varchar(255)"`
	DriverName     *string   `gorm:"type:varchar(255)"`
	LastDriverID   *string   `gorm:"type:varchar(255)"`
	LastDriverName *string   `gorm:"type:varchar(255)"`
	Status         string    `gorm:"type:varchar(64);not null"`
	ActionTime     time.Time `gorm:"type:timestamptz;not null;index:idx_activity_feed_route,priority:2"`
}

// TableName specifies the database table name for feed entries.
func (EntryDTO) TableName() string {
	return "activity_feed"
}

func fromDomain(entry activity.Entry) EntryDTO {
	dto := EntryDTO{
		ID:         entry.ID().Google(),
		RouteID:    entry.RouteID().String(),
		RouteKey:   entry.RouteID().Key(),
		Status:     entry.Status().String(),
		ActionTime: entry.ActionTime(),
	}
	dto.DriverID, dto.DriverName = snapshotColumns(entry.Driver())
	dto.LastDriverID, dto.LastDriverName = snapshotColumns(entry.LastDriver())
	return dto
}

func snapshotColumns(s *activity.Snapshot) (*string, *string) {
	if s == nil {
		return nil, nil
	}
	id, name := s.ID.String(), s.Name
	return &id, &name
}
