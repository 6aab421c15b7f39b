package commands

import (
	"errors"
	"strings"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var (
	ErrCreateDriverCommandIsNotConstructed = errors.New(
		"CreateDriverCommand must be created via NewCreateDriverCommand constructor",
	)
	ErrNameIsRequired = errors.New("name is required")
)

// CreateDriverCommand registers a new driver, available or off duty.
//
// Example:
//
//	cmd, err := NewCreateDriverCommand("D1", "Dana", true)
//	if err != nil {
//	    return fmt.Errorf("invalid driver data: %w", err)
//	}
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("failed to create driver: %w", err)
//	}
type CreateDriverCommand struct { //nolint:recvcheck //using for validation
	driverID  kernel.DriverID
	name      string
	available bool

	guard guard.ConstructorGuard
}

// NewCreateDriverCommand validates that the id and name are not empty.
func NewCreateDriverCommand(driverID, name string, available bool) (CreateDriverCommand, error) {
	command := CreateDriverCommand{
		available: available,
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setDriverID(driverID),
		command.setName(name),
	); err != nil {
		return CreateDriverCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateDriverCommand) Validate() error {
	return c.guard.Validate(ErrCreateDriverCommandIsNotConstructed)
}

func (c CreateDriverCommand) DriverID() kernel.DriverID {
	return c.driverID
}

func (c CreateDriverCommand) Name() string {
	return c.name
}

// Available reports whether the driver starts available rather than unavailable.
func (c CreateDriverCommand) Available() bool {
	return c.available
}

func (c *CreateDriverCommand) setDriverID(raw string) error {
	id, err := kernel.NewDriverID(raw)
	if err != nil {
		return err
	}

	c.driverID = id
	return nil
}

func (c *CreateDriverCommand) setName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameIsRequired
	}

	c.name = name
	return nil
}
