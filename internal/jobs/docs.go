// Package jobs provides scheduled background tasks for the dispatch service.
//
// Jobs are built on github.com/robfig/cron/v3 and managed through JobManager:
//
//	jobManager := jobs.NewJobManager(reconcileHandler, "@every 30s", logger)
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Available Jobs
//
// ReconciliationJob runs ReconcileAssignmentsCommand to repair routes and
// drivers whose references disagree, for example after a request was
// cancelled between its writes. A pass that is still running when the next
// tick fires is skipped.
package jobs
