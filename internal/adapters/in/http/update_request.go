package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/route"
	"dispatch/internal/core/domain/services"
)

// routeUpdate is a decoded PUT /routes/{routeId} body.
type routeUpdate struct {
	change services.AssignmentChange
	status *string
	patch  route.Patch
}

// parseRouteUpdate decodes a partial route document. Fields outside the
// update whitelist are ignored.
//
// assignedDriver_id:
//   - absent: keep the current assignment
//   - null or blank: remove the driver
//   - anything else: assign that driver
func parseRouteUpdate(body []byte) (routeUpdate, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return routeUpdate{}, fmt.Errorf("%w: body is required", commands.ErrInvalidRequest)
	}
	if body[0] != '{' {
		return routeUpdate{}, fmt.Errorf("%w: data must be an object", commands.ErrInvalidRequest)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return routeUpdate{}, fmt.Errorf("%w: malformed body: %s", commands.ErrInvalidRequest, err)
	}

	u := routeUpdate{change: services.KeepAssignment()}
	if raw, ok := fields[route.FieldAssignedDriverID]; ok {
		change, err := parseDriverChange(raw)
		if err != nil {
			return routeUpdate{}, err
		}
		u.change = change
	}

	p := &u.patch
	decoders := []error{
		decodeField(fields, route.FieldStatus, &u.status),
		decodeField(fields, route.FieldStartLocation, &p.StartLocation),
		decodeField(fields, route.FieldEndLocation, &p.EndLocation),
		decodeField(fields, route.FieldDistance, &p.Distance),
		decodeField(fields, route.FieldDistanceUnit, &p.DistanceUnit),
		decodeField(fields, route.FieldDuration, &p.Duration),
		decodeField(fields, route.FieldTimeUnit, &p.TimeUnit),
		decodeField(fields, route.FieldCost, &p.Cost),
		decodeField(fields, route.FieldCurrency, &p.Currency),
		decodeField(fields, route.FieldMaxSpeed, &p.MaxSpeed),
		decodeField(fields, route.FieldSpeedUnit, &p.SpeedUnit),
		decodeField(fields, route.FieldNotes, &p.Notes),
	}
	for _, err := range decoders {
		if err != nil {
			return routeUpdate{}, err
		}
	}
	return u, nil
}

func parseDriverChange(raw json.RawMessage) (services.AssignmentChange, error) {
	var id *string
	if err := json.Unmarshal(raw, &id); err != nil {
		return services.AssignmentChange{}, fmt.Errorf("%w: %s must be a string or null", commands.ErrInvalidRequest, route.FieldAssignedDriverID)
	}
	if id == nil || strings.TrimSpace(*id) == "" {
		return services.UnassignDriver(), nil
	}
	driverID, err := kernel.NewDriverID(*id)
	if err != nil {
		return services.AssignmentChange{}, err
	}
	return services.AssignTo(driverID), nil
}

// decodeField leaves dst nil when the field is absent or null.
func decodeField[T any](fields map[string]json.RawMessage, name string, dst **T) error {
	raw, ok := fields[name]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: field %s has the wrong type", commands.ErrInvalidRequest, name)
	}
	return nil
}
