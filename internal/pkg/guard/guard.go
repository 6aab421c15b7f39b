// Package guard provides ConstructorGuard, a marker embedded in commands, queries
// and value objects so a zero-value struct can be told apart from one built by
// its constructor.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when no specific error is supplied.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard records whether the enclosing value went through its constructor.
// Embed it as a field and set it with NewConstructorGuard:
//
//	type UpdateRouteCommand struct {
//	    routeID kernel.RouteID
//	    guard   guard.ConstructorGuard
//	}
//
//	func (c UpdateRouteCommand) Validate() error {
//	    return c.guard.Validate(ErrUpdateRouteCommandIsNotConstructed)
//	}
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard returns a guard marked as constructed.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns validationError (or ErrDefaultConstructorGuard when it is nil)
// if the guard is a zero value, and nil otherwise.
func (g ConstructorGuard) Validate(validationError error) error {
	if g.isConstructed {
		return nil
	}
	if validationError == nil {
		return ErrDefaultConstructorGuard
	}
	return validationError
}
