// Package workflow owns task status transitions and the mutation entry
// points built on top of them. Rendering layers may hint at what is
// allowed, but every change is re-validated here before it persists.
package workflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/bhirmbani/kwaci-grow-sub003/internal/deps"
	"github.com/bhirmbani/kwaci-grow-sub003/internal/task"
)

// CheckTransition decides whether t may move to the given status. Same-state
// requests are rejected as non-transitions. Starting work requires every
// dependency to be completed; finishing directly from pending does not,
// so a task can be marked done without ever having been started.
func CheckTransition(t *task.Task, to task.Status, g *deps.Graph) error {
	if to == t.Status {
		return IllegalTransitionError{
			TaskID: t.ID,
			From:   t.Status,
			To:     to,
			Reason: fmt.Sprintf("task is already %s", to),
		}
	}

	if t.Status == task.StatusPending && to == task.StatusInProgress && !g.CanStart(t.ID) {
		return IllegalTransitionError{
			TaskID: t.ID,
			From:   t.Status,
			To:     to,
			Reason: fmt.Sprintf("waiting on %s", strings.Join(g.Unmet(t.ID), ", ")),
		}
	}

	return nil
}

// Cascades returns the tasks put at risk by the transition. Moving a
// completed task back to any other status can flip its dependents from
// startable to blocked, so those must be surfaced for confirmation before
// the change applies. An empty result means the change is self-contained.
func Cascades(t *task.Task, to task.Status, g *deps.Graph) []*task.Task {
	if t.Status != task.StatusCompleted || to == task.StatusCompleted {
		return nil
	}

	return g.Dependents(t.ID)
}

// ApplyStatus mutates t with the transition's side effects. Entering
// completed stamps CompletedAt; leaving it clears CompletedAt and discards
// the recorded ActualDuration, since both describe a completion that no
// longer stands.
func ApplyStatus(t *task.Task, to task.Status, now time.Time) {
	from := t.Status
	t.Status = to
	t.UpdatedAt = now

	if to == task.StatusCompleted {
		completed := now
		t.CompletedAt = &completed

		return
	}

	t.CompletedAt = nil
	if from == task.StatusCompleted {
		t.ActualDuration = nil
	}
}
