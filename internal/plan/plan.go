// Package plan holds the plan and goal records and the persistence boundary
// the workflow engine talks to. The engine never reaches past Store, so file
// and database backends are interchangeable.
package plan

import (
	"time"

	"github.com/google/uuid"

	"github.com/bhirmbani/kwaci-grow-sub003/internal/task"
)

// Plan is an operational plan owning a set of tasks.
type Plan struct {
	ID        string    `yaml:"id"`
	Name      string    `yaml:"name"`
	Branch    string    `yaml:"branch,omitempty"`
	Note      string    `yaml:"note,omitempty"`
	CreatedAt time.Time `yaml:"created_at"`
}

// New creates a plan with a fresh id.
func New(name, branch, note string) *Plan {
	return &Plan{
		ID:        uuid.NewString(),
		Name:      name,
		Branch:    branch,
		Note:      note,
		CreatedAt: time.Now().UTC(),
	}
}

// Goal is a valued target tasks may link to. Goals belong to the planning
// collaborator: the workflow engine reads them to check links and never
// writes them. Progress computation stays outside this module.
type Goal struct {
	ID           string    `yaml:"id"`
	PlanID       string    `yaml:"plan_id"`
	Title        string    `yaml:"title"`
	TargetValue  float64   `yaml:"target_value"`
	CurrentValue float64   `yaml:"current_value"`
	Unit         string    `yaml:"unit,omitempty"`
	CreatedAt    time.Time `yaml:"created_at"`
}

// NewGoal creates a goal with a fresh id.
func NewGoal(planID, title string, target float64, unit string) *Goal {
	return &Goal{
		ID:          uuid.NewString(),
		PlanID:      planID,
		Title:       title,
		TargetValue: target,
		Unit:        unit,
		CreatedAt:   time.Now().UTC(),
	}
}

// Store is the persistence boundary. Implementations must return
// kwacierrors.TaskNotFoundError / PlanNotFoundError for missing records so
// callers can branch on the failure. The engine treats every error from
// here as a persistence failure to surface, never to retry.
type Store interface {
	// LoadTasks returns every task of the plan.
	LoadTasks(planID string) ([]*task.Task, error)
	// PersistTask inserts or overwrites one task record.
	PersistTask(t *task.Task) error
	// PersistDeletion removes one task record.
	PersistDeletion(planID, taskID string) error

	Plans() ([]*Plan, error)
	Plan(planID string) (*Plan, error)
	SavePlan(p *Plan) error

	Goals(planID string) ([]*Goal, error)
	SaveGoal(g *Goal) error
}
