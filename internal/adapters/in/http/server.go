package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/route"
	"dispatch/internal/generated/servers"

	"github.com/labstack/echo/v4"
)

const routeUpdatedMessage = "Route updated successfully"

// Use case ports of the HTTP server. Query handlers exist for both storage
// backends, so they are accepted through these interfaces.
type (
	UpdateRouteHandler interface {
		Handle(ctx context.Context, command commands.UpdateRouteCommand) (commands.UpdateRouteResult, error)
	}
	CreateRouteHandler interface {
		Handle(ctx context.Context, command commands.CreateRouteCommand) error
	}
	CreateDriverHandler interface {
		Handle(ctx context.Context, command commands.CreateDriverCommand) error
	}
	GetRouteHandler interface {
		Handle(ctx context.Context, query queries.GetRouteQuery) (queries.GetRouteQueryResponse, error)
	}
	GetDriverHandler interface {
		Handle(ctx context.Context, query queries.GetDriverQuery) (queries.GetDriverQueryResponse, error)
	}
	GetActivityFeedHandler interface {
		Handle(ctx context.Context, query queries.GetActivityFeedQuery) ([]queries.ActivityEntryResponse, error)
	}
)

// Handlers groups the use cases served over HTTP.
type Handlers struct {
	UpdateRoute     UpdateRouteHandler
	CreateRoute     CreateRouteHandler
	CreateDriver    CreateDriverHandler
	GetRoute        GetRouteHandler
	GetDriver       GetDriverHandler
	GetActivityFeed GetActivityFeedHandler
}

// Server implements servers.ServerInterface on top of the application use cases.
type Server struct {
	handlers Handlers
	logger   *slog.Logger
}

var _ servers.ServerInterface = (*Server)(nil)

func NewServer(handlers Handlers, logger *slog.Logger) *Server {
	return &Server{
		handlers: handlers,
		logger:   logger.With("component", "http_server"),
	}
}

// UpdateRoute handles PUT /api/v1/routes/{routeId}.
func (s *Server) UpdateRoute(ctx echo.Context, routeId string) error {
	body, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, servers.Error{Error: CodeInvalidRequest, Message: "Invalid request body"})
	}

	update, err := parseRouteUpdate(body)
	if err != nil {
		return s.writeError(ctx, err)
	}

	cmd, err := commands.NewUpdateRouteCommand(routeId, update.change, update.status, update.patch)
	if err != nil {
		return s.writeError(ctx, err)
	}

	result, err := s.handlers.UpdateRoute.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.writeError(ctx, err)
	}

	changed := make(map[string]interface{}, len(result.Changes)+1)
	for field, value := range result.Changes {
		changed[field] = value
	}
	changed[route.FieldRouteID] = result.RouteID.String()

	return ctx.JSON(http.StatusOK, servers.RouteUpdated{
		Message: routeUpdatedMessage,
		Route:   changed,
	})
}

// CreateRoute handles POST /api/v1/routes.
func (s *Server) CreateRoute(ctx echo.Context) error {
	var body servers.CreateRouteJSONRequestBody
	if err := ctx.Bind(&body); err != nil {
		return ctx.JSON(http.StatusBadRequest, servers.Error{Error: CodeInvalidRequest, Message: "Invalid request body"})
	}

	cmd, err := commands.NewCreateRouteCommand(body.RouteId, route.Details{
		StartLocation: deref(body.StartLocation),
		EndLocation:   deref(body.EndLocation),
		Distance:      deref(body.Distance),
		DistanceUnit:  deref(body.DistanceUnit),
		Duration:      deref(body.Duration),
		TimeUnit:      deref(body.TimeUnit),
		Cost:          deref(body.Cost),
		Currency:      deref(body.Currency),
		MaxSpeed:      deref(body.MaxSpeed),
		SpeedUnit:     deref(body.SpeedUnit),
		Notes:         deref(body.Notes),
	})
	if err != nil {
		return s.writeError(ctx, err)
	}

	if err = s.handlers.CreateRoute.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.writeError(ctx, err)
	}
	return ctx.NoContent(http.StatusCreated)
}

// CreateDriver handles POST /api/v1/drivers. Drivers start available unless
// "available" is false.
func (s *Server) CreateDriver(ctx echo.Context) error {
	var body servers.CreateDriverJSONRequestBody
	if err := ctx.Bind(&body); err != nil {
		return ctx.JSON(http.StatusBadRequest, servers.Error{Error: CodeInvalidRequest, Message: "Invalid request body"})
	}

	available := body.Available == nil || *body.Available
	cmd, err := commands.NewCreateDriverCommand(body.DriverId, body.Name, available)
	if err != nil {
		return s.writeError(ctx, err)
	}

	if err = s.handlers.CreateDriver.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.writeError(ctx, err)
	}
	return ctx.NoContent(http.StatusCreated)
}

// GetRoute handles GET /api/v1/routes/{routeId}.
func (s *Server) GetRoute(ctx echo.Context, routeId string) error {
	query, err := queries.NewGetRouteQuery(routeId)
	if err != nil {
		return s.writeError(ctx, err)
	}

	view, err := s.handlers.GetRoute.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.writeError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, servers.Route{
		RouteId:          view.RouteID,
		AssignedDriverId: view.AssignedDriverID,
		LastDriverId:     view.LastDriverID,
		Status:           view.Status,
		AssignedAt:       view.AssignedAt,
		UpdatedAt:        view.UpdatedAt,
		StartLocation:    view.StartLocation,
		EndLocation:      view.EndLocation,
		Distance:         view.Distance,
		DistanceUnit:     view.DistanceUnit,
		Duration:         view.Duration,
		TimeUnit:         view.TimeUnit,
		Cost:             view.Cost,
		Currency:         view.Currency,
		MaxSpeed:         view.MaxSpeed,
		SpeedUnit:        view.SpeedUnit,
		Notes:            view.Notes,
	})
}

// GetRouteActivity handles GET /api/v1/routes/{routeId}/activity.
func (s *Server) GetRouteActivity(ctx echo.Context, routeId string, params servers.GetRouteActivityParams) error {
	query, err := queries.NewGetActivityFeedQuery(routeId, deref(params.Limit))
	if err != nil {
		return s.writeError(ctx, err)
	}

	entries, err := s.handlers.GetActivityFeed.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.writeError(ctx, err)
	}

	response := make([]servers.ActivityEntry, len(entries))
	for i, entry := range entries {
		response[i] = servers.ActivityEntry{
			Id:         entry.ID,
			RouteId:    entry.RouteID,
			Status:     entry.Status,
			Driver:     driverRef(entry.Driver),
			LastDriver: driverRef(entry.LastDriver),
			ActionTime: entry.ActionTime,
		}
	}
	return ctx.JSON(http.StatusOK, response)
}

// GetDriver handles GET /api/v1/drivers/{driverId}.
func (s *Server) GetDriver(ctx echo.Context, driverId string) error {
	query, err := queries.NewGetDriverQuery(driverId)
	if err != nil {
		return s.writeError(ctx, err)
	}

	view, err := s.handlers.GetDriver.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.writeError(ctx, err)
	}

	history := make([]servers.PastAssignment, len(view.PastAssignedRoutes))
	for i, past := range view.PastAssignedRoutes {
		history[i] = servers.PastAssignment{
			RouteId:       past.RouteID,
			StartLocation: past.StartLocation,
			EndLocation:   past.EndLocation,
			AssignedAt:    past.AssignedAt,
			UnassignedAt:  past.UnassignedAt,
		}
	}

	return ctx.JSON(http.StatusOK, servers.Driver{
		DriverId:           view.DriverID,
		Name:               view.Name,
		Status:             view.Status,
		AssignedRouteId:    view.AssignedRouteID,
		AssignedAt:         view.AssignedAt,
		UpdatedAt:          view.UpdatedAt,
		PastAssignedRoutes: history,
	})
}

func driverRef(s *queries.DriverSnapshotResponse) *servers.DriverRef {
	if s == nil {
		return nil
	}
	ref := &servers.DriverRef{Id: s.ID}
	if s.Name != "" {
		name := s.Name
		ref.Name = &name
	}
	return ref
}

func deref[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}
