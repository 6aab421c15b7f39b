package route

import (
	"fmt"
	"regexp"

	"dispatch/internal/pkg/errs"
)

// Status is the lifecycle state of a route.
//
// Unassigned and Assigned are owned by the assignment relation. Every other
// lower-case token (in_progress, completed, cancelled, ...) is an operational
// status that the dispatch core stores without interpreting.
//
//	Unassigned ──AssignDriver──> Assigned
//	     ^                          │
//	     └──────UnassignDriver──────┘
//
//	any ──Transition(op)──> op   (op is an operational status)
type Status string

const (
	Unassigned Status = "unassigned"
	Assigned   Status = "assigned"
)

var statusPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// ParseStatus validates and converts a raw status token.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if err := s.Validate(); err != nil {
		return "", err
	}
	return s, nil
}

// Validate accepts the relation statuses and any well-formed operational token.
func (s Status) Validate() error {
	if !statusPattern.MatchString(string(s)) {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid route status", string(s)))
	}
	return nil
}

func (s Status) String() string {
	return string(s)
}

// IsOperational reports whether the status is opaque to the assignment relation.
func (s Status) IsOperational() bool {
	return s != Assigned && s != Unassigned
}

// ValidateCanHaveDriver checks the status against the presence of a driver.
//
// Business Rules:
//   - Assigned routes must have a driver
//   - Unassigned routes must not have a driver
//   - Operational statuses accept either
func (s Status) ValidateCanHaveDriver(hasDriver bool) error {
	if s == Assigned && !hasDriver {
		return errs.NewValueIsInvalidErrorWithCause(
			"status",
			fmt.Errorf("%s is not a valid status to have no driver", s),
		)
	}
	if s == Unassigned && hasDriver {
		return errs.NewValueIsInvalidErrorWithCause(
			"status",
			fmt.Errorf("%s is not a valid status to have a driver", s),
		)
	}
	return nil
}

// Transition validates a status change requested by a caller (not by the
// assignment relation itself) and returns the resulting status.
//
// Valid transitions:
//   - any -> operational status
//   - any -> Assigned, only while a driver is bound
//   - any -> Unassigned, only while no driver is bound
func (s Status) Transition(to Status, hasDriver bool) (Status, error) {
	if err := s.Validate(); err != nil {
		return "", err
	}
	if err := to.Validate(); err != nil {
		return "", err
	}
	if err := to.ValidateCanHaveDriver(hasDriver); err != nil {
		return "", err
	}
	return to, nil
}
