package kernel

import (
	"strings"

	"dispatch/internal/pkg/errs"
)

var (
	// ErrRouteIDIsRequired is returned for an empty or zero-value RouteID.
	ErrRouteIDIsRequired = errs.NewValueIsRequiredError("route_id")
	// ErrDriverIDIsRequired is returned for an empty or zero-value DriverID.
	ErrDriverIDIsRequired = errs.NewValueIsRequiredError("driver_id")
)

// RouteID identifies a route. The original spelling is kept for display and
// responses while Key provides the normalized form used for equality and lookup,
// so "R-17" and "r-17" name the same route.
type RouteID struct {
	value string
}

// NewRouteID trims surrounding whitespace and rejects empty identifiers.
func NewRouteID(value string) (RouteID, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return RouteID{}, ErrRouteIDIsRequired
	}
	return RouteID{value: value}, nil
}

// MustNewRouteID is NewRouteID for literals in tests and fixtures.
func MustNewRouteID(value string) RouteID {
	id, err := NewRouteID(value)
	if err != nil {
		panic(err)
	}
	return id
}

// String returns the identifier as it was supplied.
func (id RouteID) String() string {
	return id.value
}

// Key returns the normalized identifier.
func (id RouteID) Key() string {
	return NormalizeRouteKey(id.value)
}

// IsEqual reports whether both identifiers name the same route.
func (id RouteID) IsEqual(other RouteID) bool {
	return id.Key() == other.Key()
}

// Validate rejects the zero value.
func (id RouteID) Validate() error {
	if id.value == "" {
		return ErrRouteIDIsRequired
	}
	return nil
}

// NormalizeRouteKey maps a raw route identifier to its storage key.
func NormalizeRouteKey(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// DriverID identifies a driver. Driver identifiers are compared exactly.
type DriverID struct {
	value string
}

// NewDriverID trims surrounding whitespace and rejects empty identifiers.
func NewDriverID(value string) (DriverID, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return DriverID{}, ErrDriverIDIsRequired
	}
	return DriverID{value: value}, nil
}

// MustNewDriverID is NewDriverID for literals in tests and fixtures.
func MustNewDriverID(value string) DriverID {
	id, err := NewDriverID(value)
	if err != nil {
		panic(err)
	}
	return id
}

func (id DriverID) String() string {
	return id.value
}

func (id DriverID) IsEqual(other DriverID) bool {
	return id.value == other.value
}

func (id DriverID) Validate() error {
	if id.value == "" {
		return ErrDriverIDIsRequired
	}
	return nil
}

// SameDriver compares two optional driver references; two nil references are equal.
func SameDriver(a, b *DriverID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.IsEqual(*b)
}

// SameRoute compares two optional route references; two nil references are equal.
func SameRoute(a, b *RouteID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.IsEqual(*b)
}
