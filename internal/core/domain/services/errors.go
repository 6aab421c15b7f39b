package services

import (
	"errors"
	"fmt"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
)

// Rejections of an assignment change. Each aborts the command before anything is stored.
var (
	ErrDriverNotAvailable    = errors.New("driver is not available")
	ErrDriverAlreadyAssigned = errors.New("driver is already assigned to another route")
	ErrDriverBusy            = errors.New("driver is already on a route")
	ErrDriverUnavailable     = errors.New("driver is unavailable for assignment at the moment")
)

// DriverNotAvailableError reports the status that blocked a new assignment.
type DriverNotAvailableError struct {
	DriverID kernel.DriverID
	Status   driver.Status
}

func NewDriverNotAvailableError(id kernel.DriverID, status driver.Status) *DriverNotAvailableError {
	return &DriverNotAvailableError{DriverID: id, Status: status}
}

func (e *DriverNotAvailableError) Error() string {
	return fmt.Sprintf("driver %s is %s", e.DriverID, e.Status)
}

func (e *DriverNotAvailableError) Unwrap() error {
	return ErrDriverNotAvailable
}

// DriverAlreadyAssignedError carries the route the driver is bound to.
type DriverAlreadyAssignedError struct {
	DriverID       kernel.DriverID
	CurrentRouteID kernel.RouteID
}

func NewDriverAlreadyAssignedError(id kernel.DriverID, current kernel.RouteID) *DriverAlreadyAssignedError {
	return &DriverAlreadyAssignedError{DriverID: id, CurrentRouteID: current}
}

func (e *DriverAlreadyAssignedError) Error() string {
	return fmt.Sprintf("%s: driver %s is assigned to %s", ErrDriverAlreadyAssigned, e.DriverID, e.CurrentRouteID)
}

func (e *DriverAlreadyAssignedError) Unwrap() error {
	return ErrDriverAlreadyAssigned
}
