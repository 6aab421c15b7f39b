package cmd

import (
	"log/slog"

	httpin "dispatch/internal/adapters/in/http"
	"dispatch/internal/adapters/out/activitylog"
	"dispatch/internal/adapters/out/memory"
	"dispatch/internal/adapters/out/postgres"
	"dispatch/internal/adapters/out/postgres/activityrepo"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/jobs"

	"gorm.io/gorm"
)

type CompositionRoot struct {
	configs     Config
	uowFactory  ports.UnitOfWorkFactory
	activityLog ports.ActivityLog
	clock       kernel.Clock
	logger      *slog.Logger

	getRoute        httpin.GetRouteHandler
	getDriver       httpin.GetDriverHandler
	getActivityFeed httpin.GetActivityFeedHandler
}

// NewCompositionRoot wires the application. A nil gormDB selects the
// in-memory store. Mirrors receive every activity entry after the primary log.
func NewCompositionRoot(configs Config, gormDB *gorm.DB, logger *slog.Logger, mirrors ...activitylog.Mirror) CompositionRoot {
	root := CompositionRoot{
		configs: configs,
		clock:   kernel.SystemClock(),
		logger:  logger,
	}

	var primary ports.ActivityLog
	if gormDB == nil {
		store := memory.NewStore()
		log := memory.NewActivityLog(store)
		primary = log
		root.uowFactory = memory.NewUnitOfWorkFactory(store)
		root.getRoute = memory.NewGetRouteQueryHandler(store)
		root.getDriver = memory.NewGetDriverQueryHandler(store)
		root.getActivityFeed = memory.NewGetActivityFeedQueryHandler(log)
	} else {
		primary = activityrepo.NewGormActivityLog(gormDB)
		root.uowFactory = postgres.NewGormUnitOfWorkFactory(gormDB)
		root.getRoute = queries.NewGetRouteQueryHandler(gormDB)
		root.getDriver = queries.NewGetDriverQueryHandler(gormDB)
		root.getActivityFeed = queries.NewGetActivityFeedQueryHandler(gormDB)
	}
	root.activityLog = activitylog.NewTee(primary, logger, mirrors...)
	return root
}

func (c *CompositionRoot) CreateUpdateRouteCommandHandler() commands.UpdateRouteCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewUpdateRouteCommandHandler(f, c.activityLog, c.clock, c.logger)
}

func (c *CompositionRoot) CreateReconcileAssignmentsCommandHandler() commands.ReconcileAssignmentsCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewReconcileAssignmentsCommandHandler(f, c.activityLog, c.clock, c.logger)
}

func (c *CompositionRoot) CreateCreateRouteCommandHandler() commands.CreateRouteCommandHandler {
	var f commands.RouteUoWFactory = FuncRouteUoWFactory(func() commands.RouteUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateRouteCommandHandler(f, c.clock)
}

func (c *CompositionRoot) CreateCreateDriverCommandHandler() commands.CreateDriverCommandHandler {
	var f commands.DriverUoWFactory = FuncDriverUoWFactory(func() commands.DriverUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateDriverCommandHandler(f, c.clock)
}

func (c *CompositionRoot) CreateGetRouteQueryHandler() httpin.GetRouteHandler {
	return c.getRoute
}

func (c *CompositionRoot) CreateGetDriverQueryHandler() httpin.GetDriverHandler {
	return c.getDriver
}

func (c *CompositionRoot) CreateGetActivityFeedQueryHandler() httpin.GetActivityFeedHandler {
	return c.getActivityFeed
}

func (c *CompositionRoot) CreateHTTPServer() *httpin.Server {
	return httpin.NewServer(httpin.Handlers{
		UpdateRoute:     c.CreateUpdateRouteCommandHandler(),
		CreateRoute:     c.CreateCreateRouteCommandHandler(),
		CreateDriver:    c.CreateCreateDriverCommandHandler(),
		GetRoute:        c.CreateGetRouteQueryHandler(),
		GetDriver:       c.CreateGetDriverQueryHandler(),
		GetActivityFeed: c.CreateGetActivityFeedQueryHandler(),
	}, c.logger)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(c.CreateReconcileAssignmentsCommandHandler(), c.configs.ReconcileSchedule, c.logger)
}

type FuncRouteUoWFactory func() commands.RouteUoW

func (f FuncRouteUoWFactory) Create() commands.RouteUoW {
	return f()
}

type FuncDriverUoWFactory func() commands.DriverUoW

func (f FuncDriverUoWFactory) Create() commands.DriverUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
