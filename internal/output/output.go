package output

import (
	"github.com/bhirmbani/kwaci-grow-sub003/internal/plan"
	"github.com/bhirmbani/kwaci-grow-sub003/internal/task"
)

// Formatter defines the interface for output formatting.
type Formatter interface {
	FormatTask(t *task.Task) string
	FormatTaskList(tasks []*task.Task) string
	FormatPlanList(plans []*plan.Plan, currentID string) string
	FormatGoalList(goals []*plan.Goal, linked map[string]int) string
	FormatError(err error) string
	FormatMessage(msg string) string
	FormatGraph(nodes []GraphNode) string
}

// GraphNode represents a node in the dependency graph output.
type GraphNode struct {
	Task     *task.Task
	Children []GraphNode
}
