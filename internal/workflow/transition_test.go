//nolint:testpackage
package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bhirmbani/kwaci-grow-sub003/internal/deps"
	"github.com/bhirmbani/kwaci-grow-sub003/internal/task"
)

func depTask(id string, createdAt time.Time, status task.Status, dependsOn ...string) *task.Task {
	return &task.Task{
		ID:                id,
		PlanID:            "plan-1",
		Title:             "Task " + id,
		Status:            status,
		Category:          task.CategoryProduction,
		Priority:          task.PriorityMedium,
		EstimatedDuration: 10,
		DependsOn:         dependsOn,
		CreatedAt:         createdAt,
		UpdatedAt:         createdAt,
	}
}

func TestCheckTransition(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		tasks   []*task.Task
		id      string
		to      task.Status
		wantErr string
	}{
		{
			name:    "same state is not a transition",
			tasks:   []*task.Task{depTask("a", base, task.StatusPending)},
			id:      "a",
			to:      task.StatusPending,
			wantErr: "already pending",
		},
		{
			name: "start blocked by incomplete dependency",
			tasks: []*task.Task{
				depTask("a", base, task.StatusInProgress),
				depTask("b", base.Add(time.Minute), task.StatusPending, "a"),
			},
			id:      "b",
			to:      task.StatusInProgress,
			wantErr: "waiting on a",
		},
		{
			name: "start blocked by unknown dependency",
			tasks: []*task.Task{
				depTask("b", base, task.StatusPending, "ghost"),
			},
			id:      "b",
			to:      task.StatusInProgress,
			wantErr: "waiting on ghost",
		},
		{
			name: "start allowed once dependencies complete",
			tasks: []*task.Task{
				depTask("a", base, task.StatusCompleted),
				depTask("b", base.Add(time.Minute), task.StatusPending, "a"),
			},
			id: "b",
			to: task.StatusInProgress,
		},
		{
			name:  "start allowed without dependencies",
			tasks: []*task.Task{depTask("a", base, task.StatusPending)},
			id:    "a",
			to:    task.StatusInProgress,
		},
		{
			name: "complete directly from pending skips the start gate",
			tasks: []*task.Task{
				depTask("a", base, task.StatusPending),
				depTask("b", base.Add(time.Minute), task.StatusPending, "a"),
			},
			id: "b",
			to: task.StatusCompleted,
		},
		{
			name: "cancel a blocked task",
			tasks: []*task.Task{
				depTask("a", base, task.StatusPending),
				depTask("b", base.Add(time.Minute), task.StatusPending, "a"),
			},
			id: "b",
			to: task.StatusCancelled,
		},
		{
			name:  "rework a completed task",
			tasks: []*task.Task{depTask("a", base, task.StatusCompleted)},
			id:    "a",
			to:    task.StatusInProgress,
		},
		{
			name:  "reactivate a cancelled task",
			tasks: []*task.Task{depTask("a", base, task.StatusCancelled)},
			id:    "a",
			to:    task.StatusPending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := deps.NewGraph(tt.tasks)
			err := CheckTransition(g.Get(tt.id), tt.to, g)

			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			var itErr IllegalTransitionError
			assert.ErrorAs(t, err, &itErr)
			assert.Equal(t, tt.id, itErr.TaskID)
			assert.Equal(t, tt.to, itErr.To)
		})
	}
}

func TestCascades(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tasks := []*task.Task{
		depTask("a", base, task.StatusCompleted),
		depTask("b", base.Add(time.Minute), task.StatusPending, "a"),
		depTask("c", base.Add(2*time.Minute), task.StatusInProgress, "a"),
		depTask("solo", base.Add(3*time.Minute), task.StatusCompleted),
	}
	g := deps.NewGraph(tasks)

	t.Run("leaving completed surfaces dependents", func(t *testing.T) {
		casc := Cascades(g.Get("a"), task.StatusPending, g)
		require.Len(t, casc, 2)
		assert.Equal(t, "b", casc[0].ID)
		assert.Equal(t, "c", casc[1].ID)

		casc = Cascades(g.Get("a"), task.StatusCancelled, g)
		assert.Len(t, casc, 2)
	})

	t.Run("leaving completed without dependents is self-contained", func(t *testing.T) {
		assert.Empty(t, Cascades(g.Get("solo"), task.StatusPending, g))
	})

	t.Run("transitions not leaving completed never cascade", func(t *testing.T) {
		assert.Empty(t, Cascades(g.Get("b"), task.StatusCancelled, g))
		assert.Empty(t, Cascades(g.Get("c"), task.StatusCompleted, g))
	})
}

func TestApplyStatus(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	now := base.Add(time.Hour)

	t.Run("entering completed stamps CompletedAt", func(t *testing.T) {
		tsk := depTask("a", base, task.StatusInProgress)
		ApplyStatus(tsk, task.StatusCompleted, now)

		assert.Equal(t, task.StatusCompleted, tsk.Status)
		assert.Equal(t, now, tsk.UpdatedAt)
		require.NotNil(t, tsk.CompletedAt)
		assert.Equal(t, now, *tsk.CompletedAt)
	})

	t.Run("leaving completed clears completion fields", func(t *testing.T) {
		completed := base
		duration := 25

		tsk := depTask("a", base, task.StatusCompleted)
		tsk.CompletedAt = &completed
		tsk.ActualDuration = &duration

		ApplyStatus(tsk, task.StatusPending, now)

		assert.Equal(t, task.StatusPending, tsk.Status)
		assert.Nil(t, tsk.CompletedAt)
		assert.Nil(t, tsk.ActualDuration)
	})

	t.Run("other transitions leave completion fields alone", func(t *testing.T) {
		tsk := depTask("a", base, task.StatusPending)
		ApplyStatus(tsk, task.StatusInProgress, now)

		assert.Equal(t, task.StatusInProgress, tsk.Status)
		assert.Equal(t, now, tsk.UpdatedAt)
		assert.Nil(t, tsk.CompletedAt)
	})
}
