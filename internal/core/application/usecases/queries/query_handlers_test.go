package queries_test

import (
	"context"
	"testing"
	"time"

	postgres_adapter "dispatch/internal/adapters/out/postgres"
	"dispatch/internal/adapters/out/postgres/activityrepo"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/activity"
	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/route"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var t0 = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

type QueryHandlersTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	factory   ports.UnitOfWorkFactory
	feed      *activityrepo.GormActivityLog
}

func (suite *QueryHandlersTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(postgres_adapter.Migrate(db))
	suite.factory = postgres_adapter.NewGormUnitOfWorkFactory(db)
	suite.feed = activityrepo.NewGormActivityLog(db)
}

func (suite *QueryHandlersTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *QueryHandlersTestSuite) SetupTest() {
	err := suite.db.Exec("TRUNCATE TABLE routes, drivers, driver_past_assignments, activity_feed").Error
	suite.Require().NoError(err)
}

func (suite *QueryHandlersTestSuite) TestGetRoute_ReturnsStoredState() {
	suite.seedAssigned("Route-1", "D-1")

	query, err := queries.NewGetRouteQuery("ROUTE-1")
	suite.Require().NoError(err)

	view, err := queries.NewGetRouteQueryHandler(suite.db).Handle(context.Background(), query)

	suite.Require().NoError(err)
	suite.Equal("Route-1", view.RouteID)
	suite.Require().NotNil(view.AssignedDriverID)
	suite.Equal("D-1", *view.AssignedDriverID)
	suite.Nil(view.LastDriverID)
	suite.Equal("assigned", view.Status)
	suite.Equal("Depot", view.StartLocation)
	suite.Equal(3.5, view.Distance)
	suite.Require().NotNil(view.AssignedAt)
	suite.True(view.AssignedAt.Equal(t0.Add(time.Minute)))
	suite.Equal(int64(1), view.Version)
}

func (suite *QueryHandlersTestSuite) TestGetRoute_Missing_NotFound() {
	query, err := queries.NewGetRouteQuery("nope")
	suite.Require().NoError(err)

	_, err = queries.NewGetRouteQueryHandler(suite.db).Handle(context.Background(), query)

	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *QueryHandlersTestSuite) TestGetRoute_InvalidQuery_ReturnsError() {
	_, err := queries.NewGetRouteQueryHandler(suite.db).Handle(context.Background(), queries.GetRouteQuery{})

	suite.Require().ErrorIs(err, queries.ErrGetRouteQueryIsNotConstructed)
}

func (suite *QueryHandlersTestSuite) TestGetDriver_ReturnsHistoryOldestFirst() {
	ctx := context.Background()
	suite.seedAssigned("R-1", "D-1")

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	d, err := uow.DriverRepository().Get(ctx, kernel.MustNewDriverID("D-1"))
	suite.Require().NoError(err)
	_, err = d.ArchiveCurrentAssignment("Depot", "Harbor", t0.Add(time.Hour))
	suite.Require().NoError(err)
	d.Release(t0.Add(time.Hour))
	suite.Require().NoError(d.AssignRoute(kernel.MustNewRouteID("R-2"), t0.Add(2*time.Hour)))
	_, err = d.ArchiveCurrentAssignment("Harbor", "Airport", t0.Add(3*time.Hour))
	suite.Require().NoError(err)
	suite.Require().NoError(uow.DriverRepository().Save(ctx, d))
	suite.Require().NoError(uow.Commit(ctx))

	query, err := queries.NewGetDriverQuery("D-1")
	suite.Require().NoError(err)

	view, err := queries.NewGetDriverQueryHandler(suite.db).Handle(ctx, query)

	suite.Require().NoError(err)
	suite.Equal("Driver D-1", view.Name)
	suite.Equal("on_route", view.Status)
	suite.Require().NotNil(view.AssignedRouteID)
	suite.Equal("R-2", *view.AssignedRouteID)
	suite.Require().Len(view.PastAssignedRoutes, 2)
	suite.Equal("R-1", view.PastAssignedRoutes[0].RouteID)
	suite.Equal("Harbor", view.PastAssignedRoutes[0].EndLocation)
	suite.Equal("R-2", view.PastAssignedRoutes[1].RouteID)
	suite.True(view.PastAssignedRoutes[1].UnassignedAt.Equal(t0.Add(3 * time.Hour)))
}

func (suite *QueryHandlersTestSuite) TestGetDriver_Missing_NotFound() {
	query, err := queries.NewGetDriverQuery("ghost")
	suite.Require().NoError(err)

	_, err = queries.NewGetDriverQueryHandler(suite.db).Handle(context.Background(), query)

	var notFound *errs.ObjectNotFoundError
	suite.Require().ErrorAs(err, &notFound)
	suite.Equal("driver", notFound.ParamName)
}

func (suite *QueryHandlersTestSuite) TestGetActivityFeed_OrdersByActionTimeAndLimits() {
	ctx := context.Background()
	routeID := kernel.MustNewRouteID("Route-1")
	dana := activity.Snapshot{ID: kernel.MustNewDriverID("D-1"), Name: "Dana"}

	unassigned, err := activity.NewUnassignedEntry(routeID, &dana, t0.Add(2*time.Minute))
	suite.Require().NoError(err)
	assigned, err := activity.NewAssignedEntry(routeID, dana, t0.Add(time.Minute))
	suite.Require().NoError(err)
	status, err := activity.NewEntry(routeID, route.Status("delayed"), nil, &dana, t0.Add(3*time.Minute))
	suite.Require().NoError(err)
	other, err := activity.NewAssignedEntry(kernel.MustNewRouteID("R-2"), dana, t0)
	suite.Require().NoError(err)

	for _, e := range []activity.Entry{unassigned, assigned, status, other} {
		suite.Require().NoError(suite.feed.Append(ctx, e))
	}

	handler := queries.NewGetActivityFeedQueryHandler(suite.db)

	query, err := queries.NewGetActivityFeedQuery("route-1", 0)
	suite.Require().NoError(err)
	entries, err := handler.Handle(ctx, query)
	suite.Require().NoError(err)
	suite.Require().Len(entries, 3)
	suite.Equal(assigned.ID().String(), entries[0].ID)
	suite.Equal("assigned", entries[0].Status)
	suite.Require().NotNil(entries[0].Driver)
	suite.Equal("Dana", entries[0].Driver.Name)
	suite.Nil(entries[0].LastDriver)
	suite.Equal("unassigned", entries[1].Status)
	suite.Nil(entries[1].Driver)
	suite.Require().NotNil(entries[1].LastDriver)
	suite.Equal("D-1", entries[1].LastDriver.ID)
	suite.Equal("delayed", entries[2].Status)

	limited, err := queries.NewGetActivityFeedQuery("Route-1", 1)
	suite.Require().NoError(err)
	entries, err = handler.Handle(ctx, limited)
	suite.Require().NoError(err)
	suite.Len(entries, 1)
}

func (suite *QueryHandlersTestSuite) TestGetActivityFeed_UnknownRoute_ReturnsEmptySlice() {
	query, err := queries.NewGetActivityFeedQuery("nope", 0)
	suite.Require().NoError(err)

	entries, err := queries.NewGetActivityFeedQueryHandler(suite.db).Handle(context.Background(), query)

	suite.Require().NoError(err)
	suite.NotNil(entries)
	suite.Empty(entries)
}

func (suite *QueryHandlersTestSuite) TestGetActivityFeed_ContextCancellation_ReturnsError() {
	query, err := queries.NewGetActivityFeedQuery("R-1", 0)
	suite.Require().NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = queries.NewGetActivityFeedQueryHandler(suite.db).Handle(ctx, query)
	suite.Require().Error(err)
}

func (suite *QueryHandlersTestSuite) seedAssigned(routeID, driverID string) {
	ctx := context.Background()
	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))

	r, err := route.NewRoute(kernel.MustNewRouteID(routeID), route.Details{
		StartLocation: "Depot",
		EndLocation:   "Harbor",
		Distance:      3.5,
		DistanceUnit:  "km",
	}, t0)
	suite.Require().NoError(err)
	d, err := driver.NewDriver(kernel.MustNewDriverID(driverID), "Driver "+driverID, t0)
	suite.Require().NoError(err)
	suite.Require().NoError(uow.RouteRepository().Add(ctx, r))
	suite.Require().NoError(uow.DriverRepository().Add(ctx, d))

	at := t0.Add(time.Minute)
	suite.Require().NoError(d.AssignRoute(r.ID(), at))
	suite.Require().NoError(r.AssignDriver(d.ID(), at))
	suite.Require().NoError(uow.DriverRepository().Save(ctx, d))
	suite.Require().NoError(uow.RouteRepository().Save(ctx, r))
	suite.Require().NoError(uow.Commit(ctx))
}

func TestQueryHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(QueryHandlersTestSuite))
}
