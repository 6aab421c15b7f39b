package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/route"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/pkg/guard"
)

var ErrUpdateRouteCommandIsNotConstructed = errors.New(
	"UpdateRouteCommand must be created via NewUpdateRouteCommand constructor",
)

// UpdateRouteCommand is a partial update of one route: an optional change of
// the assigned driver, an optional status and the scalar fields to patch.
//
// Example:
//
//	status := "assigned"
//	cmd, err := NewUpdateRouteCommand("R1", services.AssignTo(driverID), &status, route.Patch{})
//	if err != nil {
//	    return err // errors.Is(err, ErrInvalidRequest)
//	}
//	result, err := handler.Handle(ctx, cmd)
type UpdateRouteCommand struct {
	routeID kernel.RouteID
	change  services.AssignmentChange
	status  *route.Status
	patch   route.Patch

	guard guard.ConstructorGuard
}

// NewUpdateRouteCommand validates the request shape.
//
// Rejected (all wrap ErrInvalidRequest or a kernel/route validation error):
//   - empty route id
//   - nothing to change at all
//   - status outside the route status grammar
//   - status "assigned" together with an explicit unassign
//   - status "unassigned" together with an explicit assign
func NewUpdateRouteCommand(
	routeID string,
	change services.AssignmentChange,
	status *string,
	patch route.Patch,
) (UpdateRouteCommand, error) {
	id, err := kernel.NewRouteID(routeID)
	if err != nil {
		return UpdateRouteCommand{}, err
	}

	command := UpdateRouteCommand{
		routeID: id,
		change:  change,
		patch:   patch,
		guard:   guard.NewConstructorGuard(),
	}

	if status != nil {
		s, parseErr := route.ParseStatus(*status)
		if parseErr != nil {
			return UpdateRouteCommand{}, parseErr
		}
		command.status = &s
	}

	if command.status == nil && change.IsKeep() && patch.IsEmpty() {
		return UpdateRouteCommand{}, ErrEmptyUpdate
	}
	if command.status != nil {
		if _, assigning := change.DriverID(); assigning && *command.status == route.Unassigned {
			return UpdateRouteCommand{}, invalidRequest("status %s conflicts with assigning a driver", route.Unassigned)
		}
		if change.IsUnassign() && *command.status == route.Assigned {
			return UpdateRouteCommand{}, invalidRequest("status %s conflicts with removing the driver", route.Assigned)
		}
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c UpdateRouteCommand) Validate() error {
	return c.guard.Validate(ErrUpdateRouteCommandIsNotConstructed)
}

func (c UpdateRouteCommand) RouteID() kernel.RouteID {
	return c.routeID
}

func (c UpdateRouteCommand) Change() services.AssignmentChange {
	return c.change
}

// Status returns the requested status, or nil when the request carried none.
func (c UpdateRouteCommand) Status() *route.Status {
	if c.status == nil {
		return nil
	}
	s := *c.status
	return &s
}

func (c UpdateRouteCommand) Patch() route.Patch {
	return c.patch
}
