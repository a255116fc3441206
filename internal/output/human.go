package output

import (
	"fmt"
	"strings"

	"github.com/bhirmbani/kwaci-grow-sub003/internal/plan"
	"github.com/bhirmbani/kwaci-grow-sub003/internal/task"
)

// HumanFormatter formats output for human-readable terminal display.
type HumanFormatter struct{}

// NewHumanFormatter creates a new HumanFormatter.
func NewHumanFormatter() *HumanFormatter {
	return &HumanFormatter{}
}

// FormatTask formats a single task for display.
func (f *HumanFormatter) FormatTask(t *task.Task) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("[%s] %s\n", t.ID, t.Title))
	sb.WriteString(fmt.Sprintf("  Status:   %s\n", t.Status))
	sb.WriteString(fmt.Sprintf("  Category: %s\n", t.Category))
	sb.WriteString(fmt.Sprintf("  Priority: %s\n", t.Priority))
	sb.WriteString(fmt.Sprintf("  Estimate: %dm\n", t.EstimatedDuration))

	if t.ActualDuration != nil {
		sb.WriteString(fmt.Sprintf("  Actual:   %dm\n", *t.ActualDuration))
	}

	sb.WriteString(fmt.Sprintf("  Created:  %s\n", t.CreatedAt.Format("2006-01-02 15:04")))

	if t.CompletedAt != nil {
		sb.WriteString(fmt.Sprintf("  Done:     %s\n", t.CompletedAt.Format("2006-01-02 15:04")))
	}
	if len(t.DependsOn) > 0 {
		sb.WriteString(fmt.Sprintf("  Depends:  %s\n", strings.Join(t.DependsOn, ", ")))
	}
	if len(t.GoalIDs) > 0 {
		sb.WriteString(fmt.Sprintf("  Goals:    %s\n", strings.Join(t.GoalIDs, ", ")))
	}
	if t.TaskType != "" {
		sb.WriteString(fmt.Sprintf("  Type:     %s\n", t.TaskType))
	}
	if t.Note != "" {
		sb.WriteString(fmt.Sprintf("  Note:     %s\n", t.Note))
	}
	if t.Description != "" {
		sb.WriteString("\n")
		sb.WriteString(t.Description)
		sb.WriteString("\n")
	}

	return sb.String()
}

// FormatTaskList formats a list of tasks for display.
func (f *HumanFormatter) FormatTaskList(tasks []*task.Task) string {
	if len(tasks) == 0 {
		return "No tasks found.\n"
	}

	var sb strings.Builder
	for _, t := range tasks {
		sb.WriteString(f.formatTaskLine(t))
	}
	return sb.String()
}

// formatTaskLine formats a single task as a compact one-liner.
func (f *HumanFormatter) formatTaskLine(t *task.Task) string {
	statusIcon := f.statusIcon(t.Status)
	priorityMark := f.priorityMark(t.Priority)
	deps := ""
	if len(t.DependsOn) > 0 {
		deps = fmt.Sprintf(" [needs: %s]", strings.Join(t.DependsOn, ", "))
	}
	return fmt.Sprintf("%s %s [%s] %s (%s)%s\n", statusIcon, priorityMark, t.ID, t.Title, t.Category, deps)
}

func (f *HumanFormatter) statusIcon(s task.Status) string {
	switch s {
	case task.StatusPending:
		return "[ ]"
	case task.StatusInProgress:
		return "[*]"
	case task.StatusCompleted:
		return "[X]"
	case task.StatusCancelled:
		return "[-]"
	default:
		return "[?]"
	}
}

func (f *HumanFormatter) priorityMark(p task.Priority) string {
	switch p {
	case task.PriorityHigh:
		return "P1"
	case task.PriorityMedium:
		return "P2"
	case task.PriorityLow:
		return "P3"
	default:
		return "P?"
	}
}

// FormatPlanList formats the plan listing, marking the current plan.
func (f *HumanFormatter) FormatPlanList(plans []*plan.Plan, currentID string) string {
	if len(plans) == 0 {
		return "No plans found.\n"
	}

	var sb strings.Builder
	for _, p := range plans {
		marker := " "
		if p.ID == currentID {
			marker = "*"
		}
		branch := ""
		if p.Branch != "" {
			branch = fmt.Sprintf(" @ %s", p.Branch)
		}
		sb.WriteString(fmt.Sprintf("%s [%s] %s%s\n", marker, p.ID, p.Name, branch))
	}
	return sb.String()
}

// FormatGoalList formats the plan's goals with their progress and the number
// of tasks linked to each.
func (f *HumanFormatter) FormatGoalList(goals []*plan.Goal, linked map[string]int) string {
	if len(goals) == 0 {
		return "No goals found.\n"
	}

	var sb strings.Builder
	for _, g := range goals {
		unit := ""
		if g.Unit != "" {
			unit = " " + g.Unit
		}
		sb.WriteString(fmt.Sprintf("[%s] %s: %g/%g%s (%d task(s))\n",
			g.ID, g.Title, g.CurrentValue, g.TargetValue, unit, linked[g.ID]))
	}
	return sb.String()
}

// FormatError formats an error for display.
func (f *HumanFormatter) FormatError(err error) string {
	return fmt.Sprintf("Error: %s\n", err.Error())
}

// FormatMessage formats a simple message.
func (f *HumanFormatter) FormatMessage(msg string) string {
	return msg + "\n"
}

// FormatGraph formats a dependency graph as ASCII art.
func (f *HumanFormatter) FormatGraph(nodes []GraphNode) string {
	if len(nodes) == 0 {
		return "No tasks found.\n"
	}

	var sb strings.Builder
	for _, node := range nodes {
		f.formatGraphNode(&sb, node, "", true)
	}
	return sb.String()
}

func (f *HumanFormatter) formatGraphNode(sb *strings.Builder, node GraphNode, prefix string, isLast bool) {
	connector := "├── "
	if isLast {
		connector = "└── "
	}
	if prefix == "" {
		connector = ""
	}

	statusIcon := f.statusIcon(node.Task.Status)
	fmt.Fprintf(sb, "%s%s%s [%s] %s\n", prefix, connector, statusIcon, node.Task.ID, node.Task.Title)

	childPrefix := prefix
	if prefix != "" {
		if isLast {
			childPrefix += "    "
		} else {
			childPrefix += "│   "
		}
	}

	for i, child := range node.Children {
		f.formatGraphNode(sb, child, childPrefix, i == len(node.Children)-1)
	}
}
