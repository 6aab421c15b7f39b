package ports

import (
	"context"

	"dispatch/internal/core/domain/model/activity"
)

// ActivityLog is the append-only sink of activity feed entries.
// Callers log failures and never propagate them.
type ActivityLog interface {
	Append(ctx context.Context, entry activity.Entry) error
}
