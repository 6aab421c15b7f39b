package services

import "dispatch/internal/core/domain/model/kernel"

type changeKind int

const (
	changeKeep changeKind = iota
	changeAssign
	changeUnassign
)

// AssignmentChange is what a caller asked for the assignment relation:
// nothing, a specific driver, or no driver.
type AssignmentChange struct {
	kind     changeKind
	driverID kernel.DriverID
}

// KeepAssignment leaves the relation untouched.
func KeepAssignment() AssignmentChange {
	return AssignmentChange{kind: changeKeep}
}

// AssignTo requests driverID to be bound to the route.
func AssignTo(driverID kernel.DriverID) AssignmentChange {
	return AssignmentChange{kind: changeAssign, driverID: driverID}
}

// UnassignDriver requests the route to have no driver.
func UnassignDriver() AssignmentChange {
	return AssignmentChange{kind: changeUnassign}
}

// IsKeep reports whether the relation was not mentioned in the request.
func (c AssignmentChange) IsKeep() bool {
	return c.kind == changeKeep
}

// IsUnassign reports whether an explicit removal was requested.
func (c AssignmentChange) IsUnassign() bool {
	return c.kind == changeUnassign
}

// DriverID returns the requested driver for an assign change.
func (c AssignmentChange) DriverID() (kernel.DriverID, bool) {
	return c.driverID, c.kind == changeAssign
}

func (c AssignmentChange) String() string {
	switch c.kind {
	case changeAssign:
		return "assign " + c.driverID.String()
	case changeUnassign:
		return "unassign"
	default:
		return "keep"
	}
}

// Case is the protocol selected for an AssignmentChange against the current route.
type Case int

const (
	// CaseNoChange leaves the relation as is (same driver requested, or nothing to remove).
	CaseNoChange Case = iota
	// CaseAssign binds a new driver, superseding any current one.
	CaseAssign
	// CaseUnassign removes the current driver.
	CaseUnassign
)

func (c Case) String() string {
	switch c {
	case CaseAssign:
		return "assign"
	case CaseUnassign:
		return "unassign"
	default:
		return "no_change"
	}
}
