package driver

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Status represents the availability of a driver.
//
// State transitions:
//
//	Available ──Assign──> OnRoute
//	    ^  │                 │
//	    │  └─MarkUnavailable─┼──> Unavailable
//	    │                    │         │
//	    └──────Release───────┴─────────┘
//
// Release is accepted from every status so drifted drivers can always be freed.
type Status string

const (
	// Available drivers can be assigned a route.
	Available Status = "available"
	// OnRoute drivers are bound to exactly one route.
	OnRoute Status = "on_route"
	// Unavailable drivers are off duty and cannot be assigned.
	Unavailable Status = "unavailable"
)

// ParseStatus validates and converts a raw status token.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if err := s.Validate(); err != nil {
		return "", err
	}
	return s, nil
}

// Validate checks that the status is one of Available, OnRoute or Unavailable.
func (s Status) Validate() error {
	switch s {
	case Available, OnRoute, Unavailable:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause(
			"driver status",
			fmt.Errorf("%q is not a valid driver status", string(s)),
		)
	}
}

func (s Status) String() string {
	return string(s)
}

// Assign transitions the status to OnRoute.
//
// Valid transitions:
//   - Available -> OnRoute
//
// Invalid transitions:
//   - OnRoute -> OnRoute (already bound)
//   - Unavailable -> OnRoute (off duty)
func (s Status) Assign() (Status, error) {
	if s != Available {
		return "", errs.NewValueIsInvalidErrorWithCause(
			"driver status",
			fmt.Errorf("%s is not a valid status to assign", s),
		)
	}
	return OnRoute, nil
}

// Release transitions the status to Available from any status.
func (s Status) Release() Status {
	return Available
}

// MarkUnavailable transitions Available -> Unavailable. Unavailable is kept as is.
// A driver on a route must be released first.
func (s Status) MarkUnavailable() (Status, error) {
	if s == OnRoute {
		return "", errs.NewValueIsInvalidErrorWithCause(
			"driver status",
			fmt.Errorf("%s is not a valid status to become unavailable", s),
		)
	}
	return Unavailable, nil
}

// MarkAvailable transitions Unavailable -> Available. Available is kept as is.
func (s Status) MarkAvailable() (Status, error) {
	if s == OnRoute {
		return "", errs.NewValueIsInvalidErrorWithCause(
			"driver status",
			fmt.Errorf("%s is not a valid status to become available without release", s),
		)
	}
	return Available, nil
}
