//nolint:testpackage
package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kwacierrors "github.com/bhirmbani/kwaci-grow-sub003/internal/errors"
	"github.com/bhirmbani/kwaci-grow-sub003/internal/plan"
	"github.com/bhirmbani/kwaci-grow-sub003/internal/task"
	"github.com/bhirmbani/kwaci-grow-sub003/internal/workflow"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func TestOpenCreatesAndMigrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "kwaci.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// Reopen: migrations are recorded, not reapplied.
	s, err = Open(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	var n int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM _migrations").Scan(&n))
	assert.Equal(t, 1, n)
}

func TestPlanRoundTrip(t *testing.T) {
	s := newTestStore(t)

	p := plan.New("Grand opening", "main", "first month of operations")
	require.NoError(t, s.SavePlan(p))

	loaded, err := s.Plan(p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Name, loaded.Name)
	assert.Equal(t, p.Branch, loaded.Branch)
	assert.Equal(t, p.Note, loaded.Note)
	assert.True(t, loaded.CreatedAt.Equal(p.CreatedAt.Truncate(time.Second)))

	p.Name = "Grand opening week"
	require.NoError(t, s.SavePlan(p))

	loaded, err = s.Plan(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Grand opening week", loaded.Name)

	second := plan.New("Expansion", "", "")
	second.CreatedAt = p.CreatedAt.Add(time.Hour)
	require.NoError(t, s.SavePlan(second))

	plans, err := s.Plans()
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, p.ID, plans[0].ID)
	assert.Equal(t, second.ID, plans[1].ID)

	_, err = s.Plan("missing")
	var notFound kwacierrors.PlanNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "missing", notFound.ID)
}

func TestGoalRoundTrip(t *testing.T) {
	s := newTestStore(t)

	p := plan.New("Grand opening", "", "")
	require.NoError(t, s.SavePlan(p))

	g := plan.NewGoal(p.ID, "Sell 100 cups", 100, "cups")
	require.NoError(t, s.SaveGoal(g))

	g.CurrentValue = 40
	require.NoError(t, s.SaveGoal(g))

	goals, err := s.Goals(p.ID)
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, "Sell 100 cups", goals[0].Title)
	assert.InDelta(t, 40, goals[0].CurrentValue, 0.001)
	assert.Equal(t, "cups", goals[0].Unit)

	_, err = s.Goals("missing")
	var notFound kwacierrors.PlanNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestTaskRoundTrip(t *testing.T) {
	s := newTestStore(t)

	p := plan.New("Grand opening", "", "")
	require.NoError(t, s.SavePlan(p))

	created := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	completed := created.Add(2 * time.Hour)
	duration := 75

	tk := &task.Task{
		ID:                "abc123",
		PlanID:            p.ID,
		Title:             "Roast house blend",
		Description:       "Roast 5kg for the weekend rush",
		Status:            task.StatusCompleted,
		Category:          task.CategoryProduction,
		Priority:          task.PriorityHigh,
		EstimatedDuration: 90,
		ActualDuration:    &duration,
		DependsOn:         []string{"def456"},
		TaskType:          "roasting",
		Note:              "small drum",
		GoalIDs:           []string{"goal-1"},
		CreatedAt:         created,
		UpdatedAt:         completed,
		CompletedAt:       &completed,
	}
	require.NoError(t, s.PersistTask(tk))

	tasks, err := s.LoadTasks(p.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	got := tasks[0]
	assert.Equal(t, tk.ID, got.ID)
	assert.Equal(t, p.ID, got.PlanID)
	assert.Equal(t, tk.Title, got.Title)
	assert.Equal(t, tk.Description, got.Description)
	assert.Equal(t, task.StatusCompleted, got.Status)
	assert.Equal(t, task.CategoryProduction, got.Category)
	assert.Equal(t, task.PriorityHigh, got.Priority)
	assert.Equal(t, 90, got.EstimatedDuration)
	require.NotNil(t, got.ActualDuration)
	assert.Equal(t, 75, *got.ActualDuration)
	assert.Equal(t, []string{"def456"}, got.DependsOn)
	assert.Equal(t, "roasting", got.TaskType)
	assert.Equal(t, "small drum", got.Note)
	assert.Equal(t, []string{"goal-1"}, got.GoalIDs)
	assert.True(t, got.CreatedAt.Equal(created))
	assert.True(t, got.UpdatedAt.Equal(completed))
	require.NotNil(t, got.CompletedAt)
	assert.True(t, got.CompletedAt.Equal(completed))

	// Upsert replaces mutable columns in place.
	tk.Status = task.StatusCancelled
	tk.ActualDuration = nil
	tk.CompletedAt = nil
	tk.DependsOn = nil
	require.NoError(t, s.PersistTask(tk))

	tasks, err = s.LoadTasks(p.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, task.StatusCancelled, tasks[0].Status)
	assert.Nil(t, tasks[0].ActualDuration)
	assert.Nil(t, tasks[0].CompletedAt)
	assert.Empty(t, tasks[0].DependsOn)

	require.NoError(t, s.PersistDeletion(p.ID, tk.ID))

	var notFound kwacierrors.TaskNotFoundError
	require.ErrorAs(t, s.PersistDeletion(p.ID, tk.ID), &notFound)

	orphan := tk.Clone()
	orphan.PlanID = "missing"
	var planMissing kwacierrors.PlanNotFoundError
	require.ErrorAs(t, s.PersistTask(orphan), &planMissing)
}

func TestLoadTasksOrder(t *testing.T) {
	s := newTestStore(t)

	p := plan.New("Grand opening", "", "")
	require.NoError(t, s.SavePlan(p))

	base := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	inserts := []struct {
		id     string
		offset time.Duration
	}{
		{"late", 2 * time.Minute},
		{"early", 0},
		{"mid", time.Minute},
	}
	for _, in := range inserts {
		tk := &task.Task{
			ID:                in.id,
			PlanID:            p.ID,
			Title:             "Task " + in.id,
			Status:            task.StatusPending,
			Category:          task.CategorySetup,
			Priority:          task.PriorityMedium,
			EstimatedDuration: 10,
			CreatedAt:         base.Add(in.offset),
			UpdatedAt:         base.Add(in.offset),
		}
		require.NoError(t, s.PersistTask(tk))
	}

	tasks, err := s.LoadTasks(p.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, "early", tasks[0].ID)
	assert.Equal(t, "mid", tasks[1].ID)
	assert.Equal(t, "late", tasks[2].ID)
}

func TestPlanDeletionCascades(t *testing.T) {
	s := newTestStore(t)

	p := plan.New("Grand opening", "", "")
	require.NoError(t, s.SavePlan(p))
	require.NoError(t, s.SaveGoal(plan.NewGoal(p.ID, "Sell 100 cups", 100, "cups")))

	now := time.Now().UTC()
	require.NoError(t, s.PersistTask(&task.Task{
		ID: "abc123", PlanID: p.ID, Title: "Calibrate grinder",
		Status: task.StatusPending, Category: task.CategoryMaintenance,
		Priority: task.PriorityLow, EstimatedDuration: 20,
		CreatedAt: now, UpdatedAt: now,
	}))

	_, err := s.db.Exec("DELETE FROM plans WHERE id = ?", p.ID)
	require.NoError(t, err)

	var n int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM tasks").Scan(&n))
	assert.Zero(t, n)
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM goals").Scan(&n))
	assert.Zero(t, n)
}

func TestCoordinatorRunsOnSqlite(t *testing.T) {
	s := newTestStore(t)

	p := plan.New("Grand opening", "", "")
	require.NoError(t, s.SavePlan(p))

	c := workflow.NewCoordinator(s)

	a, err := c.CreateTask(p.ID, workflow.TaskInput{
		Title:             "Install espresso machine",
		Description:       "Plumb and level the two-group machine",
		Category:          task.CategorySetup,
		Priority:          task.PriorityHigh,
		EstimatedDuration: 120,
	})
	require.NoError(t, err)

	b, err := c.CreateTask(p.ID, workflow.TaskInput{
		Title:             "Calibrate espresso machine",
		Description:       "Dial in pressure and temperature",
		Category:          task.CategorySetup,
		Priority:          task.PriorityHigh,
		EstimatedDuration: 45,
		DependsOn:         []string{a.ID},
	})
	require.NoError(t, err)

	_, err = c.ChangeStatus(p.ID, b.ID, workflow.StatusChange{To: task.StatusInProgress})
	var itErr workflow.IllegalTransitionError
	require.ErrorAs(t, err, &itErr)

	_, err = c.ChangeStatus(p.ID, a.ID, workflow.StatusChange{To: task.StatusCompleted})
	require.NoError(t, err)

	started, err := c.ChangeStatus(p.ID, b.ID, workflow.StatusChange{To: task.StatusInProgress})
	require.NoError(t, err)
	assert.Equal(t, task.StatusInProgress, started.Status)

	remaining, err := c.DeleteTask(p.ID, a.ID, true)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Empty(t, remaining[0].DependsOn)
}
