package commands

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/route"
)

// CreateRouteCommandHandler creates and persists new routes.
type CreateRouteCommandHandler struct {
	uowFactory RouteUoWFactory
	clock      kernel.Clock
}

func NewCreateRouteCommandHandler(uowFactory RouteUoWFactory, clock kernel.Clock) CreateRouteCommandHandler {
	return CreateRouteCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
	}
}

// Handle creates the route within a transaction.
// Returns errs.ErrObjectAlreadyExists when the id is taken (ignoring case).
func (h CreateRouteCommandHandler) Handle(ctx context.Context, cmd CreateRouteCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	r, err := route.NewRoute(cmd.RouteID(), cmd.Details(), h.clock.Now())
	if err != nil {
		return err
	}

	if err = uow.RouteRepository().Add(ctx, r); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
