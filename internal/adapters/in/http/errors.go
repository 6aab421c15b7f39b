package http

import (
	"errors"
	"fmt"
	"net/http"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/generated/servers"
	"dispatch/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Machine-readable error codes returned in the "error" field.
const (
	CodeDriverNotFound        = "DRIVER_NOT_FOUND"
	CodeRouteNotFound         = "ROUTE_NOT_FOUND"
	CodeDriverNotAvailable    = "DRIVER_NOT_AVAILABLE"
	CodeDriverAlreadyAssigned = "DRIVER_ALREADY_ASSIGNED"
	CodeDriverBusy            = "DRIVER_BUSY"
	CodeDriverUnavailable     = "DRIVER_UNAVAILABLE"
	CodeVersionConflict       = "VERSION_CONFLICT"
	CodeAlreadyExists         = "ALREADY_EXISTS"
	CodeInvalidRequest        = "INVALID_REQUEST"
	CodeInternal              = "INTERNAL_ERROR"
)

// errorResponse maps a use case error to a status code and body.
func errorResponse(err error) (int, servers.Error) {
	var (
		alreadyAssigned *services.DriverAlreadyAssignedError
		notAvailable    *services.DriverNotAvailableError
		notFound        *errs.ObjectNotFoundError
	)

	switch {
	case errors.As(err, &alreadyAssigned):
		return http.StatusBadRequest, servers.Error{
			Error:   CodeDriverAlreadyAssigned,
			Message: "Driver is already assigned to another route",
			Details: map[string]interface{}{"currentRouteId": alreadyAssigned.CurrentRouteID.String()},
		}
	case errors.As(err, &notAvailable):
		return http.StatusBadRequest, servers.Error{
			Error:   CodeDriverNotAvailable,
			Message: fmt.Sprintf("Driver is %s", notAvailable.Status),
		}
	case errors.As(err, &notFound):
		if notFound.ParamName == "driver" {
			return http.StatusNotFound, servers.Error{
				Error:   CodeDriverNotFound,
				Message: "Driver not found",
				Details: map[string]interface{}{"suggestion": "Please provide a valid driver ID"},
			}
		}
		return http.StatusNotFound, servers.Error{Error: CodeRouteNotFound, Message: "Route not found"}
	case errors.Is(err, services.ErrDriverBusy):
		return http.StatusBadRequest, servers.Error{Error: CodeDriverBusy, Message: "Driver is already on a route"}
	case errors.Is(err, services.ErrDriverUnavailable):
		return http.StatusBadRequest, servers.Error{
			Error:   CodeDriverUnavailable,
			Message: "Driver is unavailable for assignment at the moment",
		}
	case errors.Is(err, errs.ErrVersionConflict):
		return http.StatusBadRequest, servers.Error{
			Error:   CodeVersionConflict,
			Message: "Route or driver was changed concurrently, retry the request",
		}
	case errors.Is(err, errs.ErrObjectAlreadyExists):
		return http.StatusConflict, servers.Error{Error: CodeAlreadyExists, Message: err.Error()}
	case isInvalidRequest(err):
		return http.StatusBadRequest, servers.Error{Error: CodeInvalidRequest, Message: err.Error()}
	default:
		return http.StatusInternalServerError, servers.Error{Error: CodeInternal, Message: "Internal server error"}
	}
}

func isInvalidRequest(err error) bool {
	return errors.Is(err, commands.ErrInvalidRequest) ||
		errors.Is(err, errs.ErrValueIsRequired) ||
		errors.Is(err, errs.ErrValueIsInvalid) ||
		errors.Is(err, commands.ErrNameIsRequired)
}

func (s *Server) writeError(ctx echo.Context, err error) error {
	status, body := errorResponse(err)
	if status == http.StatusInternalServerError {
		s.logger.ErrorContext(ctx.Request().Context(), "Request failed",
			"method", ctx.Request().Method, "path", ctx.Path(), "error", err)
	} else {
		s.logger.DebugContext(ctx.Request().Context(), "Request rejected",
			"code", body.Error, "error", err)
	}
	return ctx.JSON(status, body)
}
