package planner

import (
	"fmt"

	"studiodrop/internal/services"
)

// UnresolvedError reports a plan that cannot be built because part of the
// drop identity or the output location is missing. It matches
// services.ErrPlanUnresolved with errors.Is.
type UnresolvedError struct {
	Field  string
	Reason string
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("plan unresolved: %s: %s", e.Field, e.Reason)
}

func (e *UnresolvedError) Unwrap() error {
	return services.ErrPlanUnresolved
}
