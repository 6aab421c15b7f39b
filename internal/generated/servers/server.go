// Package servers provides the echo bindings and models of the HTTP API
// described by openapi.yaml.
package servers

import (
	_ "embed"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
)

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// Register a route
	// (POST /api/v1/routes)
	CreateRoute(ctx echo.Context) error
	// Current state of a route
	// (GET /api/v1/routes/{routeId})
	GetRoute(ctx echo.Context, routeId string) error
	// Partial update of a route, including its driver assignment
	// (PUT /api/v1/routes/{routeId})
	UpdateRoute(ctx echo.Context, routeId string) error
	// Activity feed of a route, oldest first
	// (GET /api/v1/routes/{routeId}/activity)
	GetRouteActivity(ctx echo.Context, routeId string, params GetRouteActivityParams) error
	// Register a driver
	// (POST /api/v1/drivers)
	CreateDriver(ctx echo.Context) error
	// Current state and history of a driver
	// (GET /api/v1/drivers/{driverId})
	GetDriver(ctx echo.Context, driverId string) error
}

// ServerInterfaceWrapper converts echo contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

// CreateRoute converts echo context to params.
func (w *ServerInterfaceWrapper) CreateRoute(ctx echo.Context) error {
	return w.Handler.CreateRoute(ctx)
}

// GetRoute converts echo context to params.
func (w *ServerInterfaceWrapper) GetRoute(ctx echo.Context) error {
	routeId, err := bindPathString(ctx, "routeId")
	if err != nil {
		return err
	}
	return w.Handler.GetRoute(ctx, routeId)
}

// UpdateRoute converts echo context to params.
func (w *ServerInterfaceWrapper) UpdateRoute(ctx echo.Context) error {
	routeId, err := bindPathString(ctx, "routeId")
	if err != nil {
		return err
	}
	return w.Handler.UpdateRoute(ctx, routeId)
}

// GetRouteActivity converts echo context to params.
func (w *ServerInterfaceWrapper) GetRouteActivity(ctx echo.Context) error {
	routeId, err := bindPathString(ctx, "routeId")
	if err != nil {
		return err
	}

	var params GetRouteActivityParams
	err = runtime.BindQueryParameter("form", true, false, "limit", ctx.QueryParams(), &params.Limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter limit: %s", err))
	}

	return w.Handler.GetRouteActivity(ctx, routeId, params)
}

// CreateDriver converts echo context to params.
func (w *ServerInterfaceWrapper) CreateDriver(ctx echo.Context) error {
	return w.Handler.CreateDriver(ctx)
}

// GetDriver converts echo context to params.
func (w *ServerInterfaceWrapper) GetDriver(ctx echo.Context) error {
	driverId, err := bindPathString(ctx, "driverId")
	if err != nil {
		return err
	}
	return w.Handler.GetDriver(ctx, driverId)
}

func bindPathString(ctx echo.Context, name string) (string, error) {
	var value string
	err := runtime.BindStyledParameterWithOptions("simple", name, ctx.Param(name), &value,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter %s: %s", name, err))
	}
	return value, nil
}

// EchoRouter is the subset of echo.Echo and echo.Group used for registration.
type EchoRouter interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// RegisterHandlers adds each server route to the EchoRouter.
func RegisterHandlers(router EchoRouter, si ServerInterface) {
	RegisterHandlersWithBaseURL(router, si, "")
}

// RegisterHandlersWithBaseURL registers handlers, and prepends BaseURL to the
// paths, so that the paths can be served under a prefix.
func RegisterHandlersWithBaseURL(router EchoRouter, si ServerInterface, baseURL string) {
	wrapper := ServerInterfaceWrapper{
		Handler: si,
	}

	router.POST(baseURL+"/api/v1/routes", wrapper.CreateRoute)
	router.GET(baseURL+"/api/v1/routes/:routeId", wrapper.GetRoute)
	router.PUT(baseURL+"/api/v1/routes/:routeId", wrapper.UpdateRoute)
	router.GET(baseURL+"/api/v1/routes/:routeId/activity", wrapper.GetRouteActivity)
	router.POST(baseURL+"/api/v1/drivers", wrapper.CreateDriver)
	router.GET(baseURL+"/api/v1/drivers/:driverId", wrapper.GetDriver)
}

//go:embed openapi.yaml
var document []byte

// Document returns the raw OpenAPI document.
func Document() []byte {
	return document
}

// GetSwagger returns the parsed OpenAPI document.
func GetSwagger() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(document)
	if err != nil {
		return nil, fmt.Errorf("error loading OpenAPI document: %w", err)
	}
	return doc, nil
}
