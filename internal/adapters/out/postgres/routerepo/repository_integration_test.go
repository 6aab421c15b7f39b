package routerepo_test

import (
	"context"
	"testing"
	"time"

	"dispatch/internal/adapters/out/postgres/routerepo"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/route"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var t0 = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

// MockAggregateTracker is a mock implementation of aggregateTracker interface.
type MockAggregateTracker struct {
	mock.Mock
}

func (m *MockAggregateTracker) TrackAggregate(id string, aggregate any) {
	m.Called(id, aggregate)
}

// RouteRepositoryIntegrationTestSuite verifies route persistence against PostgreSQL.
type RouteRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *routerepo.GormRouteRepository
	tracker    *MockAggregateTracker
}

func (suite *RouteRepositoryIntegrationTestSuite) SetupSuite() {
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

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&routerepo.RouteDTO{}))
}

func (suite *RouteRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE routes").Error)

	suite.tracker = new(MockAggregateTracker)
	suite.tracker.On("TrackAggregate", mock.Anything, mock.Anything).Maybe()
	suite.repository = routerepo.NewGormRouteRepository(suite.db, suite.tracker)
}

func (suite *RouteRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *RouteRepositoryIntegrationTestSuite) TestAdd_ValidRoute_Success() {
	ctx := context.Background()
	r := suite.newRoute("Route-7")

	tracker := new(MockAggregateTracker)
	tracker.On("TrackAggregate", "route-7", r).Once()
	repository := routerepo.NewGormRouteRepository(suite.db, tracker)

	suite.Require().NoError(repository.Add(ctx, r))
	suite.assertRouteCount(1)
	tracker.AssertExpectations(suite.T())
}

func (suite *RouteRepositoryIntegrationTestSuite) TestAdd_DuplicateKeyIgnoringCase_AlreadyExists() {
	ctx := context.Background()
	suite.Require().NoError(suite.repository.Add(ctx, suite.newRoute("Route-7")))

	err := suite.repository.Add(ctx, suite.newRoute("ROUTE-7"))
	suite.Require().ErrorIs(err, errs.ErrObjectAlreadyExists)
	suite.assertRouteCount(1)
}

func (suite *RouteRepositoryIntegrationTestSuite) TestGet_IgnoresCase() {
	ctx := context.Background()
	suite.Require().NoError(suite.repository.Add(ctx, suite.newRoute("Route-7")))

	got, err := suite.repository.Get(ctx, kernel.MustNewRouteID("route-7"))
	suite.Require().NoError(err)
	suite.Equal("Route-7", got.ID().String())
	suite.Equal("Depot", got.Details().StartLocation)
	suite.Equal(route.Unassigned, got.Status())
	suite.True(got.UpdatedAt().Equal(t0))
}

func (suite *RouteRepositoryIntegrationTestSuite) TestGet_Missing_NotFound() {
	_, err := suite.repository.Get(context.Background(), kernel.MustNewRouteID("nope"))

	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
	var notFound *errs.ObjectNotFoundError
	suite.Require().ErrorAs(err, &notFound)
	suite.Equal("route", notFound.ParamName)
}

func (suite *RouteRepositoryIntegrationTestSuite) TestSave_RoundTripsAssignment() {
	ctx := context.Background()
	r := suite.newRoute("R-1")
	suite.Require().NoError(suite.repository.Add(ctx, r))

	suite.Require().NoError(r.AssignDriver(kernel.MustNewDriverID("D-1"), t0.Add(time.Minute)))
	suite.Require().NoError(r.AssignDriver(kernel.MustNewDriverID("D-2"), t0.Add(2*time.Minute)))
	suite.Require().NoError(suite.repository.Save(ctx, r))
	suite.Equal(int64(1), r.Version())

	got, err := suite.repository.Get(ctx, r.ID())
	suite.Require().NoError(err)
	suite.Equal("D-2", got.AssignedDriver().String())
	suite.Equal("D-1", got.LastDriver().String())
	suite.Equal(route.Assigned, got.Status())
	suite.True(got.AssignedAt().Equal(t0.Add(2 * time.Minute)))
	suite.Equal(int64(1), got.Version())
}

func (suite *RouteRepositoryIntegrationTestSuite) TestSave_ClearsDriverReference() {
	ctx := context.Background()
	r := suite.newRoute("R-1")
	suite.Require().NoError(r.AssignDriver(kernel.MustNewDriverID("D-1"), t0))
	suite.Require().NoError(suite.repository.Add(ctx, r))

	_, err := r.UnassignDriver(t0.Add(time.Minute))
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repository.Save(ctx, r))

	got, err := suite.repository.Get(ctx, r.ID())
	suite.Require().NoError(err)
	suite.Nil(got.AssignedDriver())
	suite.Equal("D-1", got.LastDriver().String())
	suite.Equal(route.Unassigned, got.Status())
}

func (suite *RouteRepositoryIntegrationTestSuite) TestSave_StaleVersion_Conflict() {
	ctx := context.Background()
	r := suite.newRoute("R-1")
	suite.Require().NoError(suite.repository.Add(ctx, r))

	stale, err := suite.repository.Get(ctx, r.ID())
	suite.Require().NoError(err)

	suite.Require().NoError(r.ChangeStatus(route.Status("in_transit"), t0))
	suite.Require().NoError(suite.repository.Save(ctx, r))

	suite.Require().NoError(stale.ChangeStatus(route.Status("delayed"), t0))
	err = suite.repository.Save(ctx, stale)
	suite.Require().ErrorIs(err, errs.ErrVersionConflict)

	got, err := suite.repository.Get(ctx, r.ID())
	suite.Require().NoError(err)
	suite.Equal(route.Status("in_transit"), got.Status())
}

func (suite *RouteRepositoryIntegrationTestSuite) TestGetAllAssigned_SelectsDriverOrStatus() {
	ctx := context.Background()

	bound := suite.newRoute("R-bound")
	suite.Require().NoError(bound.AssignDriver(kernel.MustNewDriverID("D-1"), t0))
	suite.Require().NoError(suite.repository.Add(ctx, bound))
	suite.Require().NoError(suite.repository.Add(ctx, suite.newRoute("R-free")))

	suite.Require().NoError(suite.db.Exec(
		"UPDATE routes SET status = 'assigned' WHERE route_key = 'r-free'",
	).Error)
	suite.Require().NoError(suite.repository.Add(ctx, suite.newRoute("R-idle")))

	routes, err := suite.repository.GetAllAssigned(ctx)
	suite.Require().NoError(err)

	keys := make([]string, 0, len(routes))
	for _, r := range routes {
		keys = append(keys, r.ID().Key())
	}
	suite.Equal([]string{"r-bound", "r-free"}, keys)
}

func (suite *RouteRepositoryIntegrationTestSuite) newRoute(id string) *route.Route {
	r, err := route.NewRoute(kernel.MustNewRouteID(id), route.Details{
		StartLocation: "Depot",
		EndLocation:   "Harbor",
		Distance:      12.5,
		DistanceUnit:  "km",
	}, t0)
	suite.Require().NoError(err)
	return r
}

func (suite *RouteRepositoryIntegrationTestSuite) assertRouteCount(expected int) {
	var count int64
	suite.Require().NoError(suite.db.Model(&routerepo.RouteDTO{}).Count(&count).Error)
	suite.Equal(int64(expected), count)
}

func TestRouteRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(RouteRepositoryIntegrationTestSuite))
}
