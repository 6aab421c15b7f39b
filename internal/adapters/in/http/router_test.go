package http_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"dispatch/cmd"
	httpin "dispatch/internal/adapters/in/http"
	"dispatch/internal/generated/servers"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type api struct {
	t *testing.T
	e *echo.Echo
}

func newAPI(t *testing.T) *api {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	root := cmd.NewCompositionRoot(cmd.Config{Storage: cmd.StorageMemory}, nil, logger)
	e, err := httpin.NewRouter(root.CreateHTTPServer(), logger)
	require.NoError(t, err)
	return &api{t: t, e: e}
}

func (a *api) do(method, path, body string) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *api) createRoute(id string) {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/v1/routes",
		`{"route_id":"`+id+`","start_location":"Depot","end_location":"Harbor"}`)
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
}

func (a *api) createDriver(id, name string, available bool) {
	a.t.Helper()
	body, err := json.Marshal(servers.NewDriver{DriverId: id, Name: name, Available: &available})
	require.NoError(a.t, err)
	rec := a.do(http.MethodPost, "/api/v1/drivers", string(body))
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
}

func (a *api) route(id string) servers.Route {
	a.t.Helper()
	rec := a.do(http.MethodGet, "/api/v1/routes/"+id, "")
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	var r servers.Route
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &r))
	return r
}

func (a *api) driver(id string) servers.Driver {
	a.t.Helper()
	rec := a.do(http.MethodGet, "/api/v1/drivers/"+id, "")
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	var d servers.Driver
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &d))
	return d
}

func (a *api) activity(id string) []servers.ActivityEntry {
	a.t.Helper()
	rec := a.do(http.MethodGet, "/api/v1/routes/"+id+"/activity", "")
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	var entries []servers.ActivityEntry
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &entries))
	return entries
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) servers.Error {
	t.Helper()
	var body servers.Error
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestUpdateRoute_AssignDriver(t *testing.T) {
	a := newAPI(t)
	a.createRoute("R1")
	a.createDriver("D1", "Dana", true)

	rec := a.do(http.MethodPut, "/api/v1/routes/R1", `{"assignedDriver_id":"D1"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body servers.RouteUpdated
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Route updated successfully", body.Message)
	assert.Equal(t, "R1", body.Route["route_id"])
	assert.Equal(t, "D1", body.Route["assignedDriver_id"])
	assert.Equal(t, "assigned", body.Route["status"])

	r := a.route("R1")
	require.NotNil(t, r.AssignedDriverId)
	assert.Equal(t, "D1", *r.AssignedDriverId)
	assert.Equal(t, "assigned", r.Status)
	assert.NotNil(t, r.AssignedAt)

	d := a.driver("D1")
	assert.Equal(t, "on_route", d.Status)
	require.NotNil(t, d.AssignedRouteId)
	assert.Equal(t, "R1", *d.AssignedRouteId)

	entries := a.activity("R1")
	require.Len(t, entries, 1)
	assert.Equal(t, "assigned", entries[0].Status)
	require.NotNil(t, entries[0].Driver)
	assert.Equal(t, "D1", entries[0].Driver.Id)
	require.NotNil(t, entries[0].Driver.Name)
	assert.Equal(t, "Dana", *entries[0].Driver.Name)
}

func TestUpdateRoute_DriverOnAnotherRoute(t *testing.T) {
	a := newAPI(t)
	a.createRoute("R1")
	a.createRoute("R2")
	a.createDriver("D2", "Eli", true)
	require.Equal(t, http.StatusOK, a.do(http.MethodPut, "/api/v1/routes/R2", `{"assignedDriver_id":"D2"}`).Code)

	rec := a.do(http.MethodPut, "/api/v1/routes/R1", `{"assignedDriver_id":"D2"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, httpin.CodeDriverNotAvailable, decodeError(t, rec).Error)
	r := a.route("R1")
	assert.Nil(t, r.AssignedDriverId)
	assert.Equal(t, "unassigned", r.Status)
	assert.Empty(t, a.activity("R1"))
}

func TestUpdateRoute_UnavailableDriver(t *testing.T) {
	a := newAPI(t)
	a.createRoute("R1")
	a.createDriver("D1", "Dana", false)

	rec := a.do(http.MethodPut, "/api/v1/routes/R1", `{"assignedDriver_id":"D1"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, httpin.CodeDriverNotAvailable, body.Error)
	assert.Contains(t, body.Message, "unavailable")
}

func TestUpdateRoute_RemoveDriver(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "null", body: `{"assignedDriver_id":null}`},
		{name: "empty string", body: `{"assignedDriver_id":""}`},
		{name: "status unassigned", body: `{"status":"unassigned"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newAPI(t)
			a.createRoute("R1")
			a.createDriver("D1", "Dana", true)
			require.Equal(t, http.StatusOK, a.do(http.MethodPut, "/api/v1/routes/R1", `{"assignedDriver_id":"D1"}`).Code)

			rec := a.do(http.MethodPut, "/api/v1/routes/R1", tt.body)

			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			r := a.route("R1")
			assert.Nil(t, r.AssignedDriverId)
			require.NotNil(t, r.LastDriverId)
			assert.Equal(t, "D1", *r.LastDriverId)
			assert.Equal(t, "unassigned", r.Status)

			d := a.driver("D1")
			assert.Equal(t, "available", d.Status)
			assert.Nil(t, d.AssignedRouteId)
			require.Len(t, d.PastAssignedRoutes, 1)
			assert.Equal(t, "R1", d.PastAssignedRoutes[0].RouteId)
			assert.Equal(t, "Depot", d.PastAssignedRoutes[0].StartLocation)
			assert.Equal(t, "Harbor", d.PastAssignedRoutes[0].EndLocation)

			entries := a.activity("R1")
			require.Len(t, entries, 2)
			last := entries[1]
			assert.Equal(t, "unassigned", last.Status)
			assert.Nil(t, last.Driver)
			require.NotNil(t, last.LastDriver)
			assert.Equal(t, "D1", last.LastDriver.Id)
		})
	}
}

func TestUpdateRoute_AbsentDriverKeepsAssignment(t *testing.T) {
	a := newAPI(t)
	a.createRoute("R1")
	a.createDriver("D1", "Dana", true)
	require.Equal(t, http.StatusOK, a.do(http.MethodPut, "/api/v1/routes/R1", `{"assignedDriver_id":"D1"}`).Code)

	rec := a.do(http.MethodPut, "/api/v1/routes/R1", `{"notes":"gate code 42"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	r := a.route("R1")
	require.NotNil(t, r.AssignedDriverId)
	assert.Equal(t, "D1", *r.AssignedDriverId)
	assert.Equal(t, "gate code 42", r.Notes)
	assert.Len(t, a.activity("R1"), 1)
}

func TestUpdateRoute_RouteIDIsCaseInsensitive(t *testing.T) {
	a := newAPI(t)
	a.createRoute("Route-7")
	a.createDriver("D1", "Dana", true)

	rec := a.do(http.MethodPut, "/api/v1/routes/ROUTE-7", `{"assignedDriver_id":"D1"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Route-7", a.route("route-7").RouteId)
}

func TestUpdateRoute_NotFound(t *testing.T) {
	a := newAPI(t)
	a.createRoute("R1")

	t.Run("route", func(t *testing.T) {
		rec := a.do(http.MethodPut, "/api/v1/routes/R404", `{"notes":"x"}`)

		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, httpin.CodeRouteNotFound, decodeError(t, rec).Error)
	})

	t.Run("driver", func(t *testing.T) {
		rec := a.do(http.MethodPut, "/api/v1/routes/R1", `{"assignedDriver_id":"D404"}`)

		require.Equal(t, http.StatusNotFound, rec.Code)
		body := decodeError(t, rec)
		assert.Equal(t, httpin.CodeDriverNotFound, body.Error)
		assert.Equal(t, "Please provide a valid driver ID", body.Details["suggestion"])
	})
}

func TestUpdateRoute_InvalidBody(t *testing.T) {
	a := newAPI(t)
	a.createRoute("R1")

	tests := []struct {
		name string
		body string
	}{
		{name: "empty object", body: `{}`},
		{name: "array", body: `[{"notes":"x"}]`},
		{name: "malformed", body: `{"notes":`},
		{name: "wrong type", body: `{"cost":"free"}`},
		{name: "bad status token", body: `{"status":"In Progress!"}`},
		{name: "assigned without driver", body: `{"status":"assigned"}`},
		{name: "contradicting status", body: `{"assignedDriver_id":null,"status":"assigned"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := a.do(http.MethodPut, "/api/v1/routes/R1", tt.body)

			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Equal(t, httpin.CodeInvalidRequest, decodeError(t, rec).Error)
		})
	}

	t.Run("missing body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/api/v1/routes/R1", http.NoBody)
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		a.e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, httpin.CodeInvalidRequest, decodeError(t, rec).Error)
	})
}

func TestCreateRoute_Duplicate(t *testing.T) {
	a := newAPI(t)
	a.createRoute("R1")

	rec := a.do(http.MethodPost, "/api/v1/routes", `{"route_id":"r1"}`)

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, httpin.CodeAlreadyExists, decodeError(t, rec).Error)
}

func TestCreateDriver_Validation(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodPost, "/api/v1/drivers", `{"driver_id":"D1"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, httpin.CodeInvalidRequest, decodeError(t, rec).Error)
}

func TestCreateDriver_DefaultsToAvailable(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodPost, "/api/v1/drivers", `{"driver_id":"D1","name":"Dana"}`)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	d := a.driver("D1")
	assert.Equal(t, "available", d.Status)
	assert.Empty(t, d.PastAssignedRoutes)
}

func TestGetRouteActivity_Limit(t *testing.T) {
	a := newAPI(t)
	a.createRoute("R1")
	a.createDriver("D1", "Dana", true)
	require.Equal(t, http.StatusOK, a.do(http.MethodPut, "/api/v1/routes/R1", `{"assignedDriver_id":"D1"}`).Code)
	require.Equal(t, http.StatusOK, a.do(http.MethodPut, "/api/v1/routes/R1", `{"assignedDriver_id":null}`).Code)

	t.Run("limited", func(t *testing.T) {
		rec := a.do(http.MethodGet, "/api/v1/routes/R1/activity?limit=1", "")

		require.Equal(t, http.StatusOK, rec.Code)
		var entries []servers.ActivityEntry
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
		assert.Len(t, entries, 1)
	})

	t.Run("out of range", func(t *testing.T) {
		rec := a.do(http.MethodGet, "/api/v1/routes/R1/activity?limit=0", "")

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, httpin.CodeInvalidRequest, decodeError(t, rec).Error)
	})
}

func TestGetDriver_NotFound(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodGet, "/api/v1/drivers/D404", "")

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, httpin.CodeDriverNotFound, decodeError(t, rec).Error)
}

func TestServiceEndpoints(t *testing.T) {
	a := newAPI(t)

	health := a.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, health.Code)
	assert.Equal(t, "Healthy", health.Body.String())

	doc := a.do(http.MethodGet, "/openapi.yaml", "")
	assert.Equal(t, http.StatusOK, doc.Code)
	assert.Contains(t, doc.Body.String(), "/api/v1/routes/{routeId}")
}
