package task

import "time"

// Status represents the current state of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Category classifies a task by the area of shop operations it belongs to.
type Category string

const (
	CategorySetup       Category = "setup"
	CategoryProduction  Category = "production"
	CategorySales       Category = "sales"
	CategoryInventory   Category = "inventory"
	CategoryMaintenance Category = "maintenance"
	CategoryTraining    Category = "training"
)

// Priority represents the importance level of a task.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// PriorityOrder returns the sort order for a priority (lower = higher priority).
func PriorityOrder(p Priority) int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

// Task represents a unit of work inside an operational plan.
//
// DependsOn holds ids of tasks in the same plan that must be completed
// before this task may enter in-progress. The relation across a plan must
// stay acyclic; that is enforced at mutation time, not here.
type Task struct {
	ID                string     `yaml:"id"`
	PlanID            string     `yaml:"plan_id"`
	Title             string     `yaml:"title"`
	Status            Status     `yaml:"status"`
	Category          Category   `yaml:"category"`
	Priority          Priority   `yaml:"priority"`
	EstimatedDuration int        `yaml:"estimated_duration"` // minutes
	ActualDuration    *int       `yaml:"actual_duration,omitempty"`
	DependsOn         []string   `yaml:"depends_on,omitempty"`
	TaskType          string     `yaml:"task_type,omitempty"`
	Note              string     `yaml:"note,omitempty"`
	GoalIDs           []string   `yaml:"goal_ids,omitempty"`
	CreatedAt         time.Time  `yaml:"created_at"`
	UpdatedAt         time.Time  `yaml:"updated_at"`
	CompletedAt       *time.Time `yaml:"completed_at,omitempty"`
	Description       string     `yaml:"-"` // Stored as markdown body, not frontmatter
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	c := *t
	if t.ActualDuration != nil {
		d := *t.ActualDuration
		c.ActualDuration = &d
	}
	if t.CompletedAt != nil {
		ts := *t.CompletedAt
		c.CompletedAt = &ts
	}
	if t.DependsOn != nil {
		c.DependsOn = make([]string, len(t.DependsOn))
		copy(c.DependsOn, t.DependsOn)
	}
	if t.GoalIDs != nil {
		c.GoalIDs = make([]string, len(t.GoalIDs))
		copy(c.GoalIDs, t.GoalIDs)
	}
	return &c
}

// IsValidStatus checks if a status string is valid.
func IsValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsValidCategory checks if a category string is valid.
func IsValidCategory(c Category) bool {
	switch c {
	case CategorySetup, CategoryProduction, CategorySales,
		CategoryInventory, CategoryMaintenance, CategoryTraining:
		return true
	default:
		return false
	}
}

// IsValidPriority checks if a priority string is valid.
func IsValidPriority(p Priority) bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}

// Statuses returns all valid statuses, for help text and validation messages.
func Statuses() []Status {
	return []Status{StatusPending, StatusInProgress, StatusCompleted, StatusCancelled}
}

// Categories returns all valid categories.
func Categories() []Category {
	return []Category{
		CategorySetup, CategoryProduction, CategorySales,
		CategoryInventory, CategoryMaintenance, CategoryTraining,
	}
}

// Priorities returns all valid priorities.
func Priorities() []Priority {
	return []Priority{PriorityHigh, PriorityMedium, PriorityLow}
}
