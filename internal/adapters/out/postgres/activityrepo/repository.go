package activityrepo

import (
	"context"

	"dispatch/internal/adapters/out/postgres/pgerrs"
	"dispatch/internal/core/domain/model/activity"

	"gorm.io/gorm"
)

// GormActivityLog appends feed entries outside any unit of work; entries are
// written after the assignment transaction has committed.
type GormActivityLog struct {
	db *gorm.DB
}

func NewGormActivityLog(db *gorm.DB) *GormActivityLog {
	return &GormActivityLog{db: db}
}

// Append inserts the entry. A duplicate entry id yields errs.ErrObjectAlreadyExists.
func (l *GormActivityLog) Append(ctx context.Context, entry activity.Entry) error {
	dto := fromDomain(entry)
	if err := l.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return pgerrs.Translate(err, "activity entry", entry.ID().String())
	}
	return nil
}
