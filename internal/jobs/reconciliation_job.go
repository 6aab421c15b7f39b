package jobs

import (
	"context"
	"log/slog"

	"dispatch/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// DefaultReconcileSchedule runs a pass every minute.
const DefaultReconcileSchedule = "@every 1m"

// ReconcileHandler runs one reconciliation pass.
type ReconcileHandler interface {
	Handle(ctx context.Context, command commands.ReconcileAssignmentsCommand) (commands.ReconcileReport, error)
}

// ReconciliationJob repairs assignment drift on a cron schedule.
type ReconciliationJob struct {
	handler  ReconcileHandler
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewReconciliationJob accepts standard cron expressions with an optional
// seconds field and descriptors such as "@every 30s". An empty schedule
// means DefaultReconcileSchedule.
func NewReconciliationJob(handler ReconcileHandler, schedule string, logger *slog.Logger) *ReconciliationJob {
	if schedule == "" {
		schedule = DefaultReconcileSchedule
	}
	return &ReconciliationJob{
		handler:  handler,
		schedule: schedule,
		cron:     cron.New(cron.WithParser(cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor))),
		logger:   logger.With("component", "reconciliation_job"),
	}
}

// Start schedules the job. Overlapping passes are skipped.
func (j *ReconciliationJob) Start() error {
	job := cron.NewChain(cron.SkipIfStillRunning(cron.DiscardLogger)).Then(cron.FuncJob(func() {
		j.Run(context.Background())
	}))
	if _, err := j.cron.AddJob(j.schedule, job); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Reconciliation job started", "schedule", j.schedule)
	return nil
}

// Run executes a single pass and logs its outcome.
func (j *ReconciliationJob) Run(ctx context.Context) {
	report, err := j.handler.Handle(ctx, commands.NewReconcileAssignmentsCommand())
	if err != nil {
		j.logger.ErrorContext(ctx, "Reconciliation pass failed", "error", err)
		return
	}
	if report == (commands.ReconcileReport{}) {
		j.logger.DebugContext(ctx, "Reconciliation pass found no drift")
		return
	}
	j.logger.WarnContext(ctx, "Reconciliation pass repaired drift",
		"drivers_released", report.DriversReleased,
		"routes_released", report.RoutesReleased,
		"skipped", report.Skipped)
}

// Stop stops scheduling and waits for a running pass to finish.
func (j *ReconciliationJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Reconciliation job stopped")
}
