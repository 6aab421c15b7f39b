// Package driver provides the Driver aggregate, the driver side of the
// assignment relation.
//
// The package includes:
//   - Driver: the aggregate root holding identity, availability and the current route
//   - Status: the driver state machine (available, on_route, unavailable)
//   - PastAssignment: an immutable record of a finished assignment
//
// Key business rules:
//   - A driver is on_route if and only if it references a route
//   - Only an available driver can be assigned a route
//   - Releasing a driver always returns it to available, whatever drift it carried
//   - The assignment history only grows; recorded entries are never changed
package driver
