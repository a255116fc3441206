package workflow

import (
	"fmt"
	"strings"

	"github.com/bhirmbani/kwaci-grow-sub003/internal/task"
)

// IllegalTransitionError reports a status change the engine refused.
type IllegalTransitionError struct {
	TaskID string
	From   task.Status
	To     task.Status
	Reason string
}

func (e IllegalTransitionError) Error() string {
	return fmt.Sprintf("cannot move task %s from %s to %s: %s", e.TaskID, e.From, e.To, e.Reason)
}

// ConfirmationRequiredError means the requested change touches tasks that
// depend on the target and must be re-issued with an acknowledgment. It is
// not a failure: the caller shows Dependents and asks again.
type ConfirmationRequiredError struct {
	TaskID     string
	Action     string
	Dependents []*task.Task
}

func (e ConfirmationRequiredError) Error() string {
	ids := make([]string, len(e.Dependents))
	for i, t := range e.Dependents {
		ids[i] = t.ID
	}

	return fmt.Sprintf("%s of task %s affects dependent task(s) %s: re-run with confirmation to proceed",
		e.Action, e.TaskID, strings.Join(ids, ", "))
}

// DependentIDs lists the ids of the tasks that would be affected.
func (e ConfirmationRequiredError) DependentIDs() []string {
	ids := make([]string, len(e.Dependents))
	for i, t := range e.Dependents {
		ids[i] = t.ID
	}

	return ids
}
