package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	kwacierrors "github.com/bhirmbani/kwaci-grow-sub003/internal/errors"
	"github.com/bhirmbani/kwaci-grow-sub003/internal/plan"
	"github.com/bhirmbani/kwaci-grow-sub003/internal/task"
)

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// SavePlan inserts or updates a plan record.
func (s *Store) SavePlan(p *plan.Plan) error {
	_, err := s.db.Exec(`
		INSERT INTO plans (id, name, branch, note, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			branch = excluded.branch,
			note = excluded.note
	`, p.ID, p.Name, p.Branch, p.Note, p.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save plan: %w", err)
	}
	return nil
}

// Plan retrieves one plan by id.
func (s *Store) Plan(planID string) (*plan.Plan, error) {
	row := s.db.QueryRow(`
		SELECT id, name, branch, note, created_at
		FROM plans WHERE id = ?
	`, planID)

	p, err := scanPlan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, kwacierrors.PlanNotFoundError{ID: planID}
	}
	if err != nil {
		return nil, fmt.Errorf("get plan %s: %w", planID, err)
	}
	return p, nil
}

// Plans returns all plans, oldest first.
func (s *Store) Plans() ([]*plan.Plan, error) {
	rows, err := s.db.Query(`
		SELECT id, name, branch, note, created_at
		FROM plans ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var plans []*plan.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plans: %w", err)
	}
	return plans, nil
}

// SaveGoal inserts or updates a goal record.
func (s *Store) SaveGoal(g *plan.Goal) error {
	_, err := s.db.Exec(`
		INSERT INTO goals (id, plan_id, title, target_value, current_value, unit, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			target_value = excluded.target_value,
			current_value = excluded.current_value,
			unit = excluded.unit
	`, g.ID, g.PlanID, g.Title, g.TargetValue, g.CurrentValue, g.Unit, g.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save goal: %w", err)
	}
	return nil
}

// Goals returns the plan's goals, oldest first.
func (s *Store) Goals(planID string) ([]*plan.Goal, error) {
	if _, err := s.Plan(planID); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT id, plan_id, title, target_value, current_value, unit, created_at
		FROM goals WHERE plan_id = ? ORDER BY created_at, id
	`, planID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var goals []*plan.Goal
	for rows.Next() {
		var g plan.Goal
		var createdAt string
		if err := rows.Scan(&g.ID, &g.PlanID, &g.Title, &g.TargetValue, &g.CurrentValue, &g.Unit, &createdAt); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		if g.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("parse goal created_at: %w", err)
		}
		goals = append(goals, &g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate goals: %w", err)
	}
	return goals, nil
}

// LoadTasks returns every task in the plan, oldest first.
func (s *Store) LoadTasks(planID string) ([]*task.Task, error) {
	if _, err := s.Plan(planID); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT plan_id, id, title, description, status, category, priority,
			estimated_duration, actual_duration, depends_on, task_type, note,
			goal_ids, created_at, updated_at, completed_at
		FROM tasks WHERE plan_id = ? ORDER BY created_at, id
	`, planID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []*task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

// PersistTask inserts or updates one task.
func (s *Store) PersistTask(t *task.Task) error {
	if _, err := s.Plan(t.PlanID); err != nil {
		return err
	}

	dependsOn, err := marshalIDs(t.DependsOn)
	if err != nil {
		return fmt.Errorf("encode depends_on: %w", err)
	}
	goalIDs, err := marshalIDs(t.GoalIDs)
	if err != nil {
		return fmt.Errorf("encode goal_ids: %w", err)
	}

	var completedAt *string
	if t.CompletedAt != nil {
		v := t.CompletedAt.Format(time.RFC3339)
		completedAt = &v
	}

	_, err = s.db.Exec(`
		INSERT INTO tasks (plan_id, id, title, description, status, category, priority,
			estimated_duration, actual_duration, depends_on, task_type, note,
			goal_ids, created_at, updated_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(plan_id, id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			status = excluded.status,
			category = excluded.category,
			priority = excluded.priority,
			estimated_duration = excluded.estimated_duration,
			actual_duration = excluded.actual_duration,
			depends_on = excluded.depends_on,
			task_type = excluded.task_type,
			note = excluded.note,
			goal_ids = excluded.goal_ids,
			updated_at = excluded.updated_at,
			completed_at = excluded.completed_at
	`, t.PlanID, t.ID, t.Title, t.Description, string(t.Status), string(t.Category), string(t.Priority),
		t.EstimatedDuration, t.ActualDuration, dependsOn, t.TaskType, t.Note,
		goalIDs, t.CreatedAt.Format(time.RFC3339), t.UpdatedAt.Format(time.RFC3339), completedAt)
	if err != nil {
		return fmt.Errorf("save task: %w", err)
	}
	return nil
}

// PersistDeletion removes one task row.
func (s *Store) PersistDeletion(planID, taskID string) error {
	res, err := s.db.Exec("DELETE FROM tasks WHERE plan_id = ? AND id = ?", planID, taskID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if n == 0 {
		return kwacierrors.TaskNotFoundError{ID: taskID}
	}
	return nil
}

func scanPlan(row rowScanner) (*plan.Plan, error) {
	var p plan.Plan
	var createdAt string
	if err := row.Scan(&p.ID, &p.Name, &p.Branch, &p.Note, &createdAt); err != nil {
		return nil, err
	}

	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	p.CreatedAt = t
	return &p, nil
}

func scanTask(row rowScanner) (*task.Task, error) {
	var t task.Task
	var status, category, priority string
	var actualDuration sql.NullInt64
	var dependsOn, goalIDs string
	var createdAt, updatedAt string
	var completedAt sql.NullString

	if err := row.Scan(&t.PlanID, &t.ID, &t.Title, &t.Description, &status, &category, &priority,
		&t.EstimatedDuration, &actualDuration, &dependsOn, &t.TaskType, &t.Note,
		&goalIDs, &createdAt, &updatedAt, &completedAt); err != nil {
		return nil, err
	}

	t.Status = task.Status(status)
	t.Category = task.Category(category)
	t.Priority = task.Priority(priority)

	if actualDuration.Valid {
		d := int(actualDuration.Int64)
		t.ActualDuration = &d
	}

	if err := json.Unmarshal([]byte(dependsOn), &t.DependsOn); err != nil {
		return nil, fmt.Errorf("decode depends_on: %w", err)
	}
	if err := json.Unmarshal([]byte(goalIDs), &t.GoalIDs); err != nil {
		return nil, fmt.Errorf("decode goal_ids: %w", err)
	}

	var err error
	if t.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if t.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	if completedAt.Valid {
		v, err := time.Parse(time.RFC3339, completedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse completed_at: %w", err)
		}
		t.CompletedAt = &v
	}

	return &t, nil
}

// marshalIDs encodes an id list as a JSON array, never null, so the column
// stays queryable with sqlite's json functions.
func marshalIDs(ids []string) (string, error) {
	if len(ids) == 0 {
		return "[]", nil
	}

	b, err := json.Marshal(ids)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
