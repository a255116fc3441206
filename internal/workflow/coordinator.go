package workflow

import (
	"slices"
	"sync"
	"time"

	"github.com/bhirmbani/kwaci-grow-sub003/internal/deps"
	kwacierrors "github.com/bhirmbani/kwaci-grow-sub003/internal/errors"
	"github.com/bhirmbani/kwaci-grow-sub003/internal/plan"
	"github.com/bhirmbani/kwaci-grow-sub003/internal/task"
)

// Coordinator is the single entry point for task mutations. Every request
// is validated in full before anything is written, so a rejected request
// leaves the plan graph exactly as it was. Mutations are serialized per
// plan: dependency and gating checks need a consistent view of the whole
// graph, and tasks in different plans never reference each other.
type Coordinator struct {
	store plan.Store

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewCoordinator creates a Coordinator backed by the given store.
func NewCoordinator(store plan.Store) *Coordinator {
	return &Coordinator{
		store: store,
		locks: make(map[string]*sync.Mutex),
	}
}

// planLock returns the mutex guarding one plan's task graph.
func (c *Coordinator) planLock(planID string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()

	lock, ok := c.locks[planID]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[planID] = lock
	}

	return lock
}

// TaskInput carries the caller-supplied fields for a new task.
type TaskInput struct {
	Title             string
	Description       string
	Category          task.Category
	Priority          task.Priority
	EstimatedDuration int
	DependsOn         []string
	TaskType          string
	Note              string
	GoalIDs           []string
}

// TaskUpdate is a partial edit. Nil fields are left untouched. A non-nil
// Status routes through the transition engine with full gating and cascade
// confirmation; Acknowledge is the confirmation for a cascading change.
type TaskUpdate struct {
	Title             *string
	Description       *string
	Category          *task.Category
	Priority          *task.Priority
	EstimatedDuration *int
	ActualDuration    *int
	DependsOn         *[]string
	TaskType          *string
	Note              *string
	GoalIDs           *[]string
	Status            *task.Status
	Acknowledge       bool
}

// StatusChange describes a requested transition. ActualDuration may only
// accompany a move to completed. Acknowledge confirms a change that was
// previously answered with ConfirmationRequiredError.
type StatusChange struct {
	To             task.Status
	ActualDuration *int
	Acknowledge    bool
}

// CreateTask validates and persists a new task. New tasks always begin
// pending; dependencies must name existing tasks in the same plan.
func (c *Coordinator) CreateTask(planID string, in TaskInput) (*task.Task, error) {
	lock := c.planLock(planID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := c.store.Plan(planID); err != nil {
		return nil, err
	}

	tasks, err := c.store.LoadTasks(planID)
	if err != nil {
		return nil, err
	}

	exists := idSet(tasks)
	now := time.Now().UTC()

	t := &task.Task{
		ID:                task.GenerateID(planID, in.Title, now, func(id string) bool { return exists[id] }),
		PlanID:            planID,
		Title:             in.Title,
		Description:       in.Description,
		Status:            task.StatusPending,
		Category:          in.Category,
		Priority:          in.Priority,
		EstimatedDuration: in.EstimatedDuration,
		DependsOn:         slices.Clone(in.DependsOn),
		TaskType:          in.TaskType,
		Note:              in.Note,
		GoalIDs:           slices.Clone(in.GoalIDs),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := t.Validate().ToError(); err != nil {
		return nil, err
	}

	g := deps.NewGraph(tasks)
	if err := g.ValidateDependencies(t.ID, t.DependsOn); err != nil {
		return nil, err
	}

	if err := c.validateGoalLinks(planID, t.GoalIDs); err != nil {
		return nil, err
	}

	if err := c.store.PersistTask(t); err != nil {
		return nil, err
	}

	return t, nil
}

// UpdateTask applies a partial edit to one task. All checks run against a
// clone before anything persists: field shape first, then dependency
// existence and cycle-freedom, then the status transition. A status change
// that both rewires dependencies and starts the task gates on the new
// dependency set, since the edit lands atomically.
func (c *Coordinator) UpdateTask(planID, taskID string, upd TaskUpdate) (*task.Task, error) {
	lock := c.planLock(planID)
	lock.Lock()
	defer lock.Unlock()

	tasks, err := c.store.LoadTasks(planID)
	if err != nil {
		return nil, err
	}

	t := findTask(tasks, taskID)
	if t == nil {
		return nil, kwacierrors.TaskNotFoundError{ID: taskID}
	}

	now := time.Now().UTC()
	updated := t.Clone()

	if upd.Title != nil {
		updated.Title = *upd.Title
	}
	if upd.Description != nil {
		updated.Description = *upd.Description
	}
	if upd.Category != nil {
		updated.Category = *upd.Category
	}
	if upd.Priority != nil {
		updated.Priority = *upd.Priority
	}
	if upd.EstimatedDuration != nil {
		updated.EstimatedDuration = *upd.EstimatedDuration
	}
	if upd.ActualDuration != nil {
		d := *upd.ActualDuration
		updated.ActualDuration = &d
	}
	if upd.TaskType != nil {
		updated.TaskType = *upd.TaskType
	}
	if upd.Note != nil {
		updated.Note = *upd.Note
	}
	if upd.GoalIDs != nil {
		updated.GoalIDs = slices.Clone(*upd.GoalIDs)
	}
	if upd.DependsOn != nil {
		updated.DependsOn = slices.Clone(*upd.DependsOn)
	}

	if err := updated.Validate().ToError(); err != nil {
		return nil, err
	}

	if upd.DependsOn != nil {
		g := deps.NewGraph(tasks)
		if err := g.ValidateDependencies(taskID, updated.DependsOn); err != nil {
			return nil, err
		}
	}

	if upd.GoalIDs != nil {
		if err := c.validateGoalLinks(planID, updated.GoalIDs); err != nil {
			return nil, err
		}
	}

	if upd.Status != nil {
		to := *upd.Status
		if !task.IsValidStatus(to) {
			return nil, task.ValidationErrors{
				{Field: "status", Value: to, Message: "unknown status"},
			}.ToError()
		}

		merged := make([]*task.Task, len(tasks))
		copy(merged, tasks)
		merged[slices.Index(tasks, t)] = updated

		g := deps.NewGraph(merged)
		if err := CheckTransition(updated, to, g); err != nil {
			return nil, err
		}

		if casc := Cascades(updated, to, g); len(casc) > 0 && !upd.Acknowledge {
			return nil, ConfirmationRequiredError{TaskID: taskID, Action: "status change", Dependents: casc}
		}

		ApplyStatus(updated, to, now)
	} else {
		updated.UpdatedAt = now
	}

	if upd.ActualDuration != nil && updated.Status != task.StatusCompleted {
		return nil, task.ValidationErrors{
			{Field: "actual_duration", Value: *upd.ActualDuration, Message: "only recorded for completed tasks"},
		}.ToError()
	}

	if err := c.store.PersistTask(updated); err != nil {
		return nil, err
	}

	return updated, nil
}

// ChangeStatus is UpdateTask narrowed to the status field. The CLI's start,
// done, cancel, and reopen commands all land here.
func (c *Coordinator) ChangeStatus(planID, taskID string, ch StatusChange) (*task.Task, error) {
	upd := TaskUpdate{Status: &ch.To, Acknowledge: ch.Acknowledge}
	if ch.ActualDuration != nil {
		d := *ch.ActualDuration
		upd.ActualDuration = &d
	}

	return c.UpdateTask(planID, taskID, upd)
}

// DeleteTask removes a task and returns the surviving tasks. When other
// tasks depend on the target, the caller must pass force after seeing
// ConfirmationRequiredError. Dependents are stripped of the id and
// persisted before the record itself is deleted, so the graph never holds
// a dangling reference even if persistence fails midway.
func (c *Coordinator) DeleteTask(planID, taskID string, force bool) ([]*task.Task, error) {
	lock := c.planLock(planID)
	lock.Lock()
	defer lock.Unlock()

	tasks, err := c.store.LoadTasks(planID)
	if err != nil {
		return nil, err
	}

	t := findTask(tasks, taskID)
	if t == nil {
		return nil, kwacierrors.TaskNotFoundError{ID: taskID}
	}

	g := deps.NewGraph(tasks)
	if dependents := g.Dependents(taskID); len(dependents) > 0 && !force {
		return nil, ConfirmationRequiredError{TaskID: taskID, Action: "deletion", Dependents: dependents}
	}

	now := time.Now().UTC()
	remaining := make([]*task.Task, 0, len(tasks)-1)

	for _, other := range tasks {
		if other.ID == taskID {
			continue
		}

		if !slices.Contains(other.DependsOn, taskID) {
			remaining = append(remaining, other)
			continue
		}

		stripped := other.Clone()
		stripped.DependsOn = slices.DeleteFunc(stripped.DependsOn, func(id string) bool { return id == taskID })
		stripped.UpdatedAt = now

		if err := c.store.PersistTask(stripped); err != nil {
			return nil, err
		}

		remaining = append(remaining, stripped)
	}

	if err := c.store.PersistDeletion(planID, taskID); err != nil {
		return nil, err
	}

	return remaining, nil
}

// DuplicateTask clones a task under a fresh id. The copy starts over:
// pending, no dependencies, no completion stamp, no recorded duration.
// Everything else carries over verbatim.
func (c *Coordinator) DuplicateTask(planID, taskID string) (*task.Task, error) {
	lock := c.planLock(planID)
	lock.Lock()
	defer lock.Unlock()

	tasks, err := c.store.LoadTasks(planID)
	if err != nil {
		return nil, err
	}

	t := findTask(tasks, taskID)
	if t == nil {
		return nil, kwacierrors.TaskNotFoundError{ID: taskID}
	}

	exists := idSet(tasks)
	now := time.Now().UTC()

	dup := t.Clone()
	dup.ID = task.GenerateID(planID, t.Title, now, func(id string) bool { return exists[id] })
	dup.Status = task.StatusPending
	dup.DependsOn = nil
	dup.CompletedAt = nil
	dup.ActualDuration = nil
	dup.CreatedAt = now
	dup.UpdatedAt = now

	if err := c.store.PersistTask(dup); err != nil {
		return nil, err
	}

	return dup, nil
}

// Prune deletes every completed and cancelled task in the plan and returns
// the removed ids sorted. Surviving tasks are stripped of references to the
// removed ones before any deletion happens.
func (c *Coordinator) Prune(planID string) ([]string, error) {
	lock := c.planLock(planID)
	lock.Lock()
	defer lock.Unlock()

	tasks, err := c.store.LoadTasks(planID)
	if err != nil {
		return nil, err
	}

	finished := make(map[string]bool)
	for _, t := range tasks {
		if t.Status == task.StatusCompleted || t.Status == task.StatusCancelled {
			finished[t.ID] = true
		}
	}
	if len(finished) == 0 {
		return nil, nil
	}

	now := time.Now().UTC()

	for _, t := range tasks {
		if finished[t.ID] {
			continue
		}

		if !slices.ContainsFunc(t.DependsOn, func(id string) bool { return finished[id] }) {
			continue
		}

		stripped := t.Clone()
		stripped.DependsOn = slices.DeleteFunc(stripped.DependsOn, func(id string) bool { return finished[id] })
		stripped.UpdatedAt = now

		if err := c.store.PersistTask(stripped); err != nil {
			return nil, err
		}
	}

	removed := make([]string, 0, len(finished))
	for id := range finished {
		removed = append(removed, id)
	}
	slices.Sort(removed)

	for _, id := range removed {
		if err := c.store.PersistDeletion(planID, id); err != nil {
			return nil, err
		}
	}

	return removed, nil
}

// Tasks returns every task in the plan.
func (c *Coordinator) Tasks(planID string) ([]*task.Task, error) {
	lock := c.planLock(planID)
	lock.Lock()
	defer lock.Unlock()

	return c.store.LoadTasks(planID)
}

// Task returns one task by id.
func (c *Coordinator) Task(planID, taskID string) (*task.Task, error) {
	lock := c.planLock(planID)
	lock.Lock()
	defer lock.Unlock()

	tasks, err := c.store.LoadTasks(planID)
	if err != nil {
		return nil, err
	}

	t := findTask(tasks, taskID)
	if t == nil {
		return nil, kwacierrors.TaskNotFoundError{ID: taskID}
	}

	return t, nil
}

// Order returns the plan's tasks in dependency order.
func (c *Coordinator) Order(planID string) ([]*task.Task, error) {
	lock := c.planLock(planID)
	lock.Lock()
	defer lock.Unlock()

	tasks, err := c.store.LoadTasks(planID)
	if err != nil {
		return nil, err
	}

	return deps.NewGraph(tasks).TopologicalOrder()
}

// Ready returns the pending tasks whose dependencies are all completed.
func (c *Coordinator) Ready(planID string) ([]*task.Task, error) {
	lock := c.planLock(planID)
	lock.Lock()
	defer lock.Unlock()

	tasks, err := c.store.LoadTasks(planID)
	if err != nil {
		return nil, err
	}

	return deps.NewGraph(tasks).Ready(), nil
}

func (c *Coordinator) validateGoalLinks(planID string, goalIDs []string) error {
	if len(goalIDs) == 0 {
		return nil
	}

	goals, err := c.store.Goals(planID)
	if err != nil {
		return err
	}

	known := make(map[string]bool, len(goals))
	for _, goal := range goals {
		known[goal.ID] = true
	}

	var errs task.ValidationErrors
	for _, id := range goalIDs {
		if !known[id] {
			errs = append(errs, task.ValidationError{Field: "goal_ids", Value: id, Message: "unknown goal"})
		}
	}

	return errs.ToError()
}

func findTask(tasks []*task.Task, id string) *task.Task {
	for _, t := range tasks {
		if t.ID == id {
			return t
		}
	}

	return nil
}

func idSet(tasks []*task.Task) map[string]bool {
	ids := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		ids[t.ID] = true
	}

	return ids
}
