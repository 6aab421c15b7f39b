package commands

import (
	"errors"

	"dispatch/internal/pkg/guard"
)

var ErrReconcileAssignmentsCommandIsNotConstructed = errors.New(
	"ReconcileAssignmentsCommand must be created via NewReconcileAssignmentsCommand constructor",
)

// ReconcileAssignmentsCommand triggers a repair pass over the assignment relation.
// It is parameterless; the scheduled reconciliation job issues it.
type ReconcileAssignmentsCommand struct {
	guard guard.ConstructorGuard
}

func NewReconcileAssignmentsCommand() ReconcileAssignmentsCommand {
	return ReconcileAssignmentsCommand{guard: guard.NewConstructorGuard()}
}

// Validate ensures the command was created through the constructor.
func (c ReconcileAssignmentsCommand) Validate() error {
	return c.guard.Validate(ErrReconcileAssignmentsCommandIsNotConstructed)
}
