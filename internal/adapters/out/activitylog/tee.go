package activitylog

import (
	"context"
	"log/slog"

	"dispatch/internal/core/domain/model/activity"
	"dispatch/internal/core/ports"
)

// Mirror is a secondary sink fed by Tee.
type Mirror struct {
	Name string
	Log  ports.ActivityLog
}

// Tee appends to the primary log and then to every mirror. Only the primary
// result is returned; mirror failures are logged and otherwise ignored, and
// mirrors are skipped when the primary append fails.
type Tee struct {
	primary ports.ActivityLog
	mirrors []Mirror
	logger  *slog.Logger
}

func NewTee(primary ports.ActivityLog, logger *slog.Logger, mirrors ...Mirror) Tee {
	return Tee{
		primary: primary,
		mirrors: mirrors,
		logger:  logger.With("component", "activity_tee"),
	}
}

func (t Tee) Append(ctx context.Context, entry activity.Entry) error {
	if err := t.primary.Append(ctx, entry); err != nil {
		return err
	}

	for _, m := range t.mirrors {
		if err := m.Log.Append(ctx, entry); err != nil {
			t.logger.WarnContext(ctx, "Failed to mirror activity entry",
				"mirror", m.Name, "route_id", entry.RouteID().String(), "entry_id", entry.ID().String(), "error", err)
		}
	}
	return nil
}
