package http

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
)

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{
			name:   "driver not available",
			err:    services.NewDriverNotAvailableError(kernel.MustNewDriverID("D1"), driver.OnRoute),
			status: http.StatusBadRequest,
			code:   CodeDriverNotAvailable,
		},
		{
			name:   "driver not found",
			err:    errs.NewObjectNotFoundError("driver", "D1"),
			status: http.StatusNotFound,
			code:   CodeDriverNotFound,
		},
		{
			name:   "route not found",
			err:    fmt.Errorf("load: %w", errs.NewObjectNotFoundError("route", "R1")),
			status: http.StatusNotFound,
			code:   CodeRouteNotFound,
		},
		{name: "busy", err: services.ErrDriverBusy, status: http.StatusBadRequest, code: CodeDriverBusy},
		{name: "unavailable", err: services.ErrDriverUnavailable, status: http.StatusBadRequest, code: CodeDriverUnavailable},
		{
			name:   "version conflict",
			err:    errs.NewVersionConflictError("route", "R1", 3),
			status: http.StatusBadRequest,
			code:   CodeVersionConflict,
		},
		{
			name:   "already exists",
			err:    errs.NewObjectAlreadyExistsError("route", "R1"),
			status: http.StatusConflict,
			code:   CodeAlreadyExists,
		},
		{name: "invalid request", err: commands.ErrInvalidRequest, status: http.StatusBadRequest, code: CodeInvalidRequest},
		{name: "value required", err: errs.NewValueIsRequiredError("route_id"), status: http.StatusBadRequest, code: CodeInvalidRequest},
		{name: "unknown", err: errors.New("connection reset"), status: http.StatusInternalServerError, code: CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := errorResponse(tt.err)

			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, body.Error)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestErrorResponse_AlreadyAssignedDetails(t *testing.T) {
	err := services.NewDriverAlreadyAssignedError(kernel.MustNewDriverID("D3"), kernel.MustNewRouteID("R5"))

	status, body := errorResponse(err)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, CodeDriverAlreadyAssigned, body.Error)
	assert.Equal(t, "R5", body.Details["currentRouteId"])
}

func TestErrorResponse_InternalHidesCause(t *testing.T) {
	_, body := errorResponse(errors.New("pq: password authentication failed"))

	assert.NotContains(t, body.Message, "password")
}
