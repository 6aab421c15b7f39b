// Package kernel holds the shared value objects of the dispatch domain:
// route and driver identifiers, UUIDs for feed entries and the Clock used to
// stamp assignment timestamps.
//
// Identifiers are immutable values. A RouteID compares case-insensitively
// through its normalized Key, which is also the form used for storage lookups.
// A DriverID compares exactly.
package kernel
