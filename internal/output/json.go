package output

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/bhirmbani/kwaci-grow-sub003/internal/plan"
	"github.com/bhirmbani/kwaci-grow-sub003/internal/task"
	"github.com/bhirmbani/kwaci-grow-sub003/internal/workflow"
)

// JSONFormatter formats output as JSON.
type JSONFormatter struct{}

// marshalJSON marshals a value to indented JSON with a trailing newline.
func marshalJSON(v any) string {
	data, _ := json.MarshalIndent(v, "", "  ")
	return string(data) + "\n"
}

// NewJSONFormatter creates a new JSONFormatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// taskJSON is the JSON representation of a task.
type taskJSON struct {
	ID                string   `json:"id"`
	PlanID            string   `json:"plan_id"`
	Title             string   `json:"title"`
	Status            string   `json:"status"`
	Category          string   `json:"category"`
	Priority          string   `json:"priority"`
	EstimatedDuration int      `json:"estimated_duration"`
	ActualDuration    *int     `json:"actual_duration,omitempty"`
	DependsOn         []string `json:"depends_on,omitempty"`
	TaskType          string   `json:"task_type,omitempty"`
	Note              string   `json:"note,omitempty"`
	GoalIDs           []string `json:"goal_ids,omitempty"`
	CreatedAt         string   `json:"created_at"`
	UpdatedAt         string   `json:"updated_at"`
	CompletedAt       *string  `json:"completed_at,omitempty"`
	Description       string   `json:"description,omitempty"`
}

func toTaskJSON(t *task.Task) taskJSON {
	tj := taskJSON{
		ID:                t.ID,
		PlanID:            t.PlanID,
		Title:             t.Title,
		Status:            string(t.Status),
		Category:          string(t.Category),
		Priority:          string(t.Priority),
		EstimatedDuration: t.EstimatedDuration,
		ActualDuration:    t.ActualDuration,
		DependsOn:         t.DependsOn,
		TaskType:          t.TaskType,
		Note:              t.Note,
		GoalIDs:           t.GoalIDs,
		CreatedAt:         t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         t.UpdatedAt.Format(time.RFC3339),
		Description:       t.Description,
	}
	if t.CompletedAt != nil {
		s := t.CompletedAt.Format(time.RFC3339)
		tj.CompletedAt = &s
	}
	return tj
}

// FormatTask formats a single task as JSON.
func (f *JSONFormatter) FormatTask(t *task.Task) string {
	return marshalJSON(toTaskJSON(t))
}

// FormatTaskList formats a list of tasks as JSON.
func (f *JSONFormatter) FormatTaskList(tasks []*task.Task) string {
	jsonTasks := make([]taskJSON, len(tasks))
	for i, t := range tasks {
		jsonTasks[i] = toTaskJSON(t)
	}
	return marshalJSON(jsonTasks)
}

// planJSON is the JSON representation of a plan.
type planJSON struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Branch    string `json:"branch,omitempty"`
	Note      string `json:"note,omitempty"`
	CreatedAt string `json:"created_at"`
	Current   bool   `json:"current,omitempty"`
}

// FormatPlanList formats the plan listing as JSON.
func (f *JSONFormatter) FormatPlanList(plans []*plan.Plan, currentID string) string {
	jsonPlans := make([]planJSON, len(plans))
	for i, p := range plans {
		jsonPlans[i] = planJSON{
			ID:        p.ID,
			Name:      p.Name,
			Branch:    p.Branch,
			Note:      p.Note,
			CreatedAt: p.CreatedAt.Format(time.RFC3339),
			Current:   p.ID == currentID,
		}
	}
	return marshalJSON(jsonPlans)
}

// goalJSON is the JSON representation of a goal.
type goalJSON struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	TargetValue  float64 `json:"target_value"`
	CurrentValue float64 `json:"current_value"`
	Unit         string  `json:"unit,omitempty"`
	LinkedTasks  int     `json:"linked_tasks"`
}

// FormatGoalList formats the goal listing as JSON.
func (f *JSONFormatter) FormatGoalList(goals []*plan.Goal, linked map[string]int) string {
	jsonGoals := make([]goalJSON, len(goals))
	for i, g := range goals {
		jsonGoals[i] = goalJSON{
			ID:           g.ID,
			Title:        g.Title,
			TargetValue:  g.TargetValue,
			CurrentValue: g.CurrentValue,
			Unit:         g.Unit,
			LinkedTasks:  linked[g.ID],
		}
	}
	return marshalJSON(jsonGoals)
}

// errorJSON is the JSON representation of an error.
type errorJSON struct {
	Error      string   `json:"error"`
	Dependents []string `json:"dependents,omitempty"`
}

// FormatError formats an error as JSON. Confirmation errors carry the ids of
// the dependent tasks so a caller can show them before re-running.
func (f *JSONFormatter) FormatError(err error) string {
	return marshalJSON(errorJSON{Error: err.Error(), Dependents: dependentIDs(err)})
}

func dependentIDs(err error) []string {
	var confirm workflow.ConfirmationRequiredError
	if errors.As(err, &confirm) {
		return confirm.DependentIDs()
	}
	return nil
}

// messageJSON is the JSON representation of a message.
type messageJSON struct {
	Message string `json:"message"`
}

// FormatMessage formats a simple message as JSON.
func (f *JSONFormatter) FormatMessage(msg string) string {
	return marshalJSON(messageJSON{Message: msg})
}

// graphNodeJSON is the JSON representation of a graph node.
type graphNodeJSON struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Status   string          `json:"status"`
	Priority string          `json:"priority"`
	Children []graphNodeJSON `json:"children,omitempty"`
}

func toGraphNodeJSON(node GraphNode) graphNodeJSON {
	children := make([]graphNodeJSON, len(node.Children))
	for i, c := range node.Children {
		children[i] = toGraphNodeJSON(c)
	}
	return graphNodeJSON{
		ID:       node.Task.ID,
		Title:    node.Task.Title,
		Status:   string(node.Task.Status),
		Priority: string(node.Task.Priority),
		Children: children,
	}
}

// FormatGraph formats a dependency graph as JSON.
func (f *JSONFormatter) FormatGraph(nodes []GraphNode) string {
	jsonNodes := make([]graphNodeJSON, len(nodes))
	for i, n := range nodes {
		jsonNodes[i] = toGraphNodeJSON(n)
	}
	return marshalJSON(jsonNodes)
}
