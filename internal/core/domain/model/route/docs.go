// Package route provides the Route aggregate of the dispatch domain.
//
// A Route is a delivery/transport job that carries at most one assigned driver
// and remembers the previously assigned driver for audit. The package includes:
//   - Route: the aggregate root with the assignment relation and scalar details
//   - Status: the route status with its transition rules
//   - Patch: the caller-writable scalar fields applied by ApplyPatch
//   - Changes: the field-level diff recorded while a route is mutated
//
// Key business rules:
//   - status is "assigned" exactly when a driver is bound through AssignDriver
//   - lastDriver_id changes only when an assignment is superseded or removed
//   - assigned_at and updated_at are stamped by the aggregate, never by callers
//   - every successful save bumps the version used for optimistic concurrency
package route
