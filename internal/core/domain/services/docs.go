// Package services provides domain services that coordinate business
// operations spanning more than one aggregate.
//
// The package includes:
//   - AssignmentCoordinator: keeps the Route and Driver sides of the assignment
//     relation consistent while binding, releasing and confirming drivers
//
// Services here are pure: they mutate aggregates in memory and never touch
// storage. Loading, saving and version checks belong to the command handlers.
package services
