package deps

import (
	"fmt"
	"strings"
)

// CycleError indicates a dependency edit or ordering hit a cycle.
// Path holds the offending chain, first id repeated at the end,
// e.g. ["a", "b", "a"].
type CycleError struct {
	Path []string
}

func (e CycleError) Error() string {
	if len(e.Path) == 0 {
		return "dependency cycle detected"
	}
	return fmt.Sprintf("dependency cycle: %s", strings.Join(e.Path, " -> "))
}

// UnknownDependencyError indicates a dependency id that resolves to no task
// in the plan.
type UnknownDependencyError struct {
	TaskID string
	DepID  string
}

func (e UnknownDependencyError) Error() string {
	return fmt.Sprintf("task %s references unknown dependency: %s", e.TaskID, e.DepID)
}
