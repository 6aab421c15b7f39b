package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/route"
	"dispatch/internal/pkg/guard"
)

var ErrCreateRouteCommandIsNotConstructed = errors.New(
	"CreateRouteCommand must be created via NewCreateRouteCommand constructor",
)

// CreateRouteCommand registers a new, unassigned route.
//
// Example:
//
//	cmd, err := NewCreateRouteCommand("R1", route.Details{StartLocation: "Depot A", EndLocation: "Dock 4"})
//	if err != nil {
//	    return fmt.Errorf("invalid route data: %w", err)
//	}
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("failed to create route: %w", err)
//	}
type CreateRouteCommand struct {
	routeID kernel.RouteID
	details route.Details

	guard guard.ConstructorGuard
}

func NewCreateRouteCommand(routeID string, details route.Details) (CreateRouteCommand, error) {
	id, err := kernel.NewRouteID(routeID)
	if err != nil {
		return CreateRouteCommand{}, err
	}
	return CreateRouteCommand{
		routeID: id,
		details: details,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateRouteCommand) Validate() error {
	return c.guard.Validate(ErrCreateRouteCommandIsNotConstructed)
}

func (c CreateRouteCommand) RouteID() kernel.RouteID {
	return c.routeID
}

func (c CreateRouteCommand) Details() route.Details {
	return c.details
}
