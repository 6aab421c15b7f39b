package commands

import (
	"context"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
)

// CreateDriverCommandHandler creates and persists new drivers.
//
// Example:
//
//	handler := NewCreateDriverCommandHandler(uowFactory, kernel.SystemClock())
//	cmd, _ := NewCreateDriverCommand("D7", "Sam", true)
//
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("driver registration failed: %w", err)
//	}
type CreateDriverCommandHandler struct {
	uowFactory DriverUoWFactory
	clock      kernel.Clock
}

func NewCreateDriverCommandHandler(uowFactory DriverUoWFactory, clock kernel.Clock) CreateDriverCommandHandler {
	return CreateDriverCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
	}
}

// Handle creates the driver within a transaction.
// Automatically rolls back on any error to prevent partial data.
func (h CreateDriverCommandHandler) Handle(ctx context.Context, cmd CreateDriverCommand) error {
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

	now := h.clock.Now()
	d, err := driver.NewDriver(cmd.DriverID(), cmd.Name(), now)
	if err != nil {
		return err
	}
	if !cmd.Available() {
		if err = d.SetAvailability(false, now); err != nil {
			return err
		}
	}

	if err = uow.DriverRepository().Add(ctx, d); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
