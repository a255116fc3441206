// Package storage persists plans, goals, and tasks as plain files under a
// workspace's .kwaci directory, one markdown file per task so everything
// stays greppable and hand-editable.
package storage

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	kwacierrors "github.com/bhirmbani/kwaci-grow-sub003/internal/errors"
	"github.com/bhirmbani/kwaci-grow-sub003/internal/plan"
	"github.com/bhirmbani/kwaci-grow-sub003/internal/task"
)

const (
	kwaciDir  = ".kwaci"
	plansDir  = "plans"
	tasksDir  = "tasks"
	planFile  = "plan.yaml"
	goalsFile = "goals.yaml"
	fileExt   = ".md"
)

// Store is the file-backed plan.Store. Layout under the workspace root:
//
//	.kwaci/plans/<planID>/plan.yaml
//	.kwaci/plans/<planID>/goals.yaml
//	.kwaci/plans/<planID>/tasks/<taskID>.md
type Store struct {
	basePath string
}

// NewStore locates the enclosing workspace and returns a store rooted at
// its .kwaci directory.
func NewStore() (*Store, error) {
	root, err := FindWorkspaceRoot()
	if err != nil {
		return nil, err
	}

	return &Store{basePath: filepath.Join(root, kwaciDir)}, nil
}

// NewStoreWithPath creates a Store rooted at a custom .kwaci directory.
func NewStoreWithPath(path string) *Store {
	return &Store{basePath: path}
}

// BasePath returns the base path of the store.
func (s *Store) BasePath() string {
	return s.basePath
}

// IsInitialized checks if the kwaci directory exists.
func (s *Store) IsInitialized() bool {
	info, err := os.Stat(s.basePath)
	return err == nil && info.IsDir()
}

// Init creates the kwaci directory.
func (s *Store) Init(force bool) error {
	if s.IsInitialized() && !force {
		return kwacierrors.AlreadyInitializedError{}
	}
	return os.MkdirAll(filepath.Join(s.basePath, plansDir), 0o755)
}

func (s *Store) planDir(planID string) string {
	return filepath.Join(s.basePath, plansDir, SanitizeID(planID))
}

func (s *Store) tasksPath(planID string) string {
	return filepath.Join(s.planDir(planID), tasksDir)
}

func (s *Store) taskPath(planID, taskID string) string {
	return filepath.Join(s.tasksPath(planID), SanitizeID(taskID)+fileExt)
}

// SavePlan writes the plan record, creating its directories on first save.
func (s *Store) SavePlan(p *plan.Plan) error {
	if !s.IsInitialized() {
		return kwacierrors.NotInitializedError{}
	}

	if err := os.MkdirAll(s.tasksPath(p.ID), 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.planDir(p.ID), planFile), data, 0o644)
}

// Plan reads one plan record.
func (s *Store) Plan(planID string) (*plan.Plan, error) {
	if !s.IsInitialized() {
		return nil, kwacierrors.NotInitializedError{}
	}

	data, err := os.ReadFile(filepath.Join(s.planDir(planID), planFile))
	if os.IsNotExist(err) {
		return nil, kwacierrors.PlanNotFoundError{ID: planID}
	}
	if err != nil {
		return nil, err
	}

	var p plan.Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Plans returns all plans, oldest first.
func (s *Store) Plans() ([]*plan.Plan, error) {
	if !s.IsInitialized() {
		return nil, kwacierrors.NotInitializedError{}
	}

	entries, err := os.ReadDir(filepath.Join(s.basePath, plansDir))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var plans []*plan.Plan
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		p, err := s.Plan(entry.Name())
		if err != nil {
			continue // Skip malformed plan directories
		}
		plans = append(plans, p)
	}

	sort.Slice(plans, func(i, j int) bool {
		return plans[i].CreatedAt.Before(plans[j].CreatedAt)
	})

	return plans, nil
}

// Goals returns the plan's goals in file order.
func (s *Store) Goals(planID string) ([]*plan.Goal, error) {
	if _, err := s.Plan(planID); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(s.planDir(planID), goalsFile))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var goals []*plan.Goal
	if err := yaml.Unmarshal(data, &goals); err != nil {
		return nil, err
	}
	return goals, nil
}

// SaveGoal inserts or replaces one goal in the plan's goal file.
func (s *Store) SaveGoal(g *plan.Goal) error {
	goals, err := s.Goals(g.PlanID)
	if err != nil {
		return err
	}

	replaced := false
	for i, existing := range goals {
		if existing.ID == g.ID {
			goals[i] = g
			replaced = true
			break
		}
	}
	if !replaced {
		goals = append(goals, g)
	}

	data, err := yaml.Marshal(goals)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.planDir(g.PlanID), goalsFile), data, 0o644)
}

// LoadTasks reads every task in the plan, oldest first.
func (s *Store) LoadTasks(planID string) ([]*task.Task, error) {
	if _, err := s.Plan(planID); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.tasksPath(planID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var tasks []*task.Task
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExt) {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), fileExt)
		t, err := s.loadTask(planID, id)
		if err != nil {
			continue // Skip malformed files
		}
		tasks = append(tasks, t)
	}

	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
		}
		return tasks[i].ID < tasks[j].ID
	})

	return tasks, nil
}

// LoadTask reads one task.
func (s *Store) LoadTask(planID, taskID string) (*task.Task, error) {
	if !s.IsInitialized() {
		return nil, kwacierrors.NotInitializedError{}
	}
	return s.loadTask(planID, taskID)
}

func (s *Store) loadTask(planID, taskID string) (*task.Task, error) {
	content, err := os.ReadFile(s.taskPath(planID, taskID))
	if os.IsNotExist(err) {
		return nil, kwacierrors.TaskNotFoundError{ID: taskID}
	}
	if err != nil {
		return nil, err
	}
	return ParseMarkdown(content)
}

// PersistTask writes one task file.
func (s *Store) PersistTask(t *task.Task) error {
	if _, err := s.Plan(t.PlanID); err != nil {
		return err
	}

	if err := os.MkdirAll(s.tasksPath(t.PlanID), 0o755); err != nil {
		return err
	}

	content, err := SerializeMarkdown(t)
	if err != nil {
		return err
	}
	return os.WriteFile(s.taskPath(t.PlanID, t.ID), content, 0o644)
}

// PersistDeletion removes one task file.
func (s *Store) PersistDeletion(planID, taskID string) error {
	if !s.IsInitialized() {
		return kwacierrors.NotInitializedError{}
	}

	err := os.Remove(s.taskPath(planID, taskID))
	if os.IsNotExist(err) {
		return kwacierrors.TaskNotFoundError{ID: taskID}
	}
	return err
}
