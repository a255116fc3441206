package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/bhirmbani/kwaci-grow-sub003/internal/deps"
	kwacierrors "github.com/bhirmbani/kwaci-grow-sub003/internal/errors"
	"github.com/bhirmbani/kwaci-grow-sub003/internal/output"
	"github.com/bhirmbani/kwaci-grow-sub003/internal/task"
	"github.com/bhirmbani/kwaci-grow-sub003/internal/workflow"
)

// addCmd implements 'kwaci add'.
func addCmd() *cobra.Command {
	var (
		description string
		category    string
		priority    string
		estimate    int
		dependsOn   []string
		taskType    string
		note        string
		goals       []string
	)
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a new task to the plan",
		Args:  cobra.ExactArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			c, store, err := getCoordinator()
			if err != nil {
				printError(err)
			}
			defer closeStore(store)

			planID, err := currentPlanID()
			if err != nil {
				printError(err)
			}

			t, err := c.CreateTask(planID, workflow.TaskInput{
				Title:             args[0],
				Description:       description,
				Category:          task.Category(category),
				Priority:          task.Priority(priority),
				EstimatedDuration: estimate,
				DependsOn:         dependsOn,
				TaskType:          taskType,
				Note:              note,
				GoalIDs:           goals,
			})
			if err != nil {
				printError(err)
			}
			printOutput(formatter.FormatTask(t))
		},
	}
	cmd.Flags().StringVarP(&description, "desc", "d", "", "Task description")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Category (setup, production, sales, inventory, maintenance, training)")
	cmd.Flags().StringVarP(&priority, "priority", "p", "medium", "Priority (high, medium, low)")
	cmd.Flags().IntVarP(&estimate, "estimate", "e", 0, "Estimated duration in minutes")
	cmd.Flags().StringSliceVar(&dependsOn, "deps", nil, "Ids of tasks this one depends on")
	cmd.Flags().StringVar(&taskType, "type", "", "Cross-navigation tag (e.g. production-batches)")
	cmd.Flags().StringVar(&note, "note", "", "Free-form note")
	cmd.Flags().StringSliceVar(&goals, "goals", nil, "Ids of goals this task contributes to")
	return cmd
}

// listCmd implements 'kwaci list'.
func listCmd() *cobra.Command {
	var statuses, categories []string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the plan's tasks",
		Run: func(_ *cobra.Command, _ []string) {
			c, store, err := getCoordinator()
			if err != nil {
				printError(err)
			}
			defer closeStore(store)

			planID, err := currentPlanID()
			if err != nil {
				printError(err)
			}

			tasks, err := c.Tasks(planID)
			if err != nil {
				printError(err)
			}

			if len(statuses) > 0 {
				tasks = slices.DeleteFunc(tasks, func(t *task.Task) bool {
					return !slices.Contains(statuses, string(t.Status))
				})
			}
			if len(categories) > 0 {
				tasks = slices.DeleteFunc(tasks, func(t *task.Task) bool {
					return !slices.Contains(categories, string(t.Category))
				})
			}

			printOutput(formatter.FormatTaskList(tasks))
		},
	}
	cmd.Flags().StringSliceVar(&statuses, "status", nil, "Show only these statuses")
	cmd.Flags().StringSliceVar(&categories, "category", nil, "Show only these categories")
	return cmd
}

// showCmd implements 'kwaci show'.
func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show task details",
		Args:  cobra.ExactArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			c, store, err := getCoordinator()
			if err != nil {
				printError(err)
			}
			defer closeStore(store)

			planID, err := currentPlanID()
			if err != nil {
				printError(err)
			}

			t, err := c.Task(planID, args[0])
			if err != nil {
				printError(err)
			}
			printOutput(formatter.FormatTask(t))
		},
	}
}

// readyCmd implements 'kwaci ready'.
func readyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ready",
		Short: "List pending tasks whose dependencies are all completed",
		Run: func(_ *cobra.Command, _ []string) {
			c, store, err := getCoordinator()
			if err != nil {
				printError(err)
			}
			defer closeStore(store)

			planID, err := currentPlanID()
			if err != nil {
				printError(err)
			}

			tasks, err := c.Ready(planID)
			if err != nil {
				printError(err)
			}
			printOutput(formatter.FormatTaskList(tasks))
		},
	}
}

// orderCmd implements 'kwaci order'.
func orderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "order",
		Short: "List tasks in dependency order",
		Run: func(_ *cobra.Command, _ []string) {
			c, store, err := getCoordinator()
			if err != nil {
				printError(err)
			}
			defer closeStore(store)

			planID, err := currentPlanID()
			if err != nil {
				printError(err)
			}

			tasks, err := c.Order(planID)
			if err != nil {
				printError(err)
			}
			printOutput(formatter.FormatTaskList(tasks))
		},
	}
}

// graphCmd implements 'kwaci graph'.
func graphCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "graph [id]",
		Short: "Display the dependency tree",
		Args:  cobra.MaximumNArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			c, store, err := getCoordinator()
			if err != nil {
				printError(err)
			}
			defer closeStore(store)

			planID, err := currentPlanID()
			if err != nil {
				printError(err)
			}

			tasks, err := c.Tasks(planID)
			if err != nil {
				printError(err)
			}

			g := deps.NewGraph(tasks)

			var roots []*task.Task
			if len(args) == 1 {
				t := g.Get(args[0])
				if t == nil {
					printError(kwacierrors.TaskNotFoundError{ID: args[0]})
				}
				roots = []*task.Task{t}
			} else {
				roots = g.Roots()
			}

			nodes := make([]output.GraphNode, len(roots))
			for i, r := range roots {
				nodes[i] = depTree(g, r, map[string]bool{})
			}
			printOutput(formatter.FormatGraph(nodes))
		},
	}
}

// depTree expands a task into its dependency tree. The seen set guards the
// walk against cycles in hand-edited files; a repeated task is shown once
// without its children.
func depTree(g *deps.Graph, t *task.Task, seen map[string]bool) output.GraphNode {
	node := output.GraphNode{Task: t}
	if seen[t.ID] {
		return node
	}
	seen[t.ID] = true

	for _, depID := range t.DependsOn {
		if dep := g.Get(depID); dep != nil {
			node.Children = append(node.Children, depTree(g, dep, seen))
		}
	}

	delete(seen, t.ID)
	return node
}

// editCmd implements 'kwaci edit'.
func editCmd() *cobra.Command {
	var (
		title       string
		description string
		category    string
		priority    string
		estimate    int
		taskType    string
		note        string
		goals       []string
	)
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit task fields",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			c, store, err := getCoordinator()
			if err != nil {
				printError(err)
			}
			defer closeStore(store)

			planID, err := currentPlanID()
			if err != nil {
				printError(err)
			}

			var upd workflow.TaskUpdate
			if cmd.Flags().Changed("title") {
				upd.Title = &title
			}
			if cmd.Flags().Changed("desc") {
				upd.Description = &description
			}
			if cmd.Flags().Changed("category") {
				cat := task.Category(category)
				upd.Category = &cat
			}
			if cmd.Flags().Changed("priority") {
				p := task.Priority(priority)
				upd.Priority = &p
			}
			if cmd.Flags().Changed("estimate") {
				upd.EstimatedDuration = &estimate
			}
			if cmd.Flags().Changed("type") {
				upd.TaskType = &taskType
			}
			if cmd.Flags().Changed("note") {
				upd.Note = &note
			}
			if cmd.Flags().Changed("goals") {
				upd.GoalIDs = &goals
			}

			t, err := c.UpdateTask(planID, args[0], upd)
			if err != nil {
				printError(err)
			}
			printOutput(formatter.FormatTask(t))
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVarP(&description, "desc", "d", "", "New description")
	cmd.Flags().StringVarP(&category, "category", "c", "", "New category")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "New priority")
	cmd.Flags().IntVarP(&estimate, "estimate", "e", 0, "New estimated duration in minutes")
	cmd.Flags().StringVar(&taskType, "type", "", "New cross-navigation tag")
	cmd.Flags().StringVar(&note, "note", "", "New note")
	cmd.Flags().StringSliceVar(&goals, "goals", nil, "New goal links (replaces the list)")
	return cmd
}

// depCmd implements 'kwaci dep'.
func depCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dep <id> <depends-on-id>...",
		Short: "Add dependencies to a task",
		Args:  cobra.MinimumNArgs(2), //nolint:mnd // CLI takes at least 2 positional args
		Run: func(_ *cobra.Command, args []string) {
			c, store, err := getCoordinator()
			if err != nil {
				printError(err)
			}
			defer closeStore(store)

			planID, err := currentPlanID()
			if err != nil {
				printError(err)
			}

			t, err := c.Task(planID, args[0])
			if err != nil {
				printError(err)
			}

			merged := slices.Clone(t.DependsOn)
			added := false
			for _, depID := range args[1:] {
				if !slices.Contains(merged, depID) {
					merged = append(merged, depID)
					added = true
				}
			}
			if !added {
				printOutput(formatter.FormatMessage("Dependency already exists"))
				return
			}

			updated, err := c.UpdateTask(planID, args[0], workflow.TaskUpdate{DependsOn: &merged})
			if err != nil {
				printError(err)
			}
			printOutput(formatter.FormatTask(updated))
		},
	}
}

// undepCmd implements 'kwaci undep'.
func undepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "undep <id> <depends-on-id>",
		Short: "Remove a dependency",
		Args:  cobra.ExactArgs(2), //nolint:mnd // CLI takes 2 positional args
		Run: func(_ *cobra.Command, args []string) {
			c, store, err := getCoordinator()
			if err != nil {
				printError(err)
			}
			defer closeStore(store)

			planID, err := currentPlanID()
			if err != nil {
				printError(err)
			}

			t, err := c.Task(planID, args[0])
			if err != nil {
				printError(err)
			}

			trimmed := slices.DeleteFunc(slices.Clone(t.DependsOn), func(d string) bool {
				return d == args[1]
			})
			if len(trimmed) == len(t.DependsOn) {
				printOutput(formatter.FormatMessage("Dependency not found"))
				return
			}

			updated, err := c.UpdateTask(planID, args[0], workflow.TaskUpdate{DependsOn: &trimmed})
			if err != nil {
				printError(err)
			}
			printOutput(formatter.FormatTask(updated))
		},
	}
}

// dupCmd implements 'kwaci dup'.
func dupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dup <id>",
		Short: "Duplicate a task (fresh id, pending, no dependencies)",
		Args:  cobra.ExactArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			c, store, err := getCoordinator()
			if err != nil {
				printError(err)
			}
			defer closeStore(store)

			planID, err := currentPlanID()
			if err != nil {
				printError(err)
			}

			t, err := c.DuplicateTask(planID, args[0])
			if err != nil {
				printError(err)
			}
			printOutput(formatter.FormatTask(t))
		},
	}
}

// rmCmd implements 'kwaci rm'.
func rmCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a task",
		Args:  cobra.ExactArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			c, store, err := getCoordinator()
			if err != nil {
				printError(err)
			}
			defer closeStore(store)

			planID, err := currentPlanID()
			if err != nil {
				printError(err)
			}

			if _, err := c.DeleteTask(planID, args[0], force); err != nil {
				printError(err)
			}
			printOutput(formatter.FormatMessage(fmt.Sprintf("Removed task %s", args[0])))
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Delete even when other tasks depend on it")
	return cmd
}

// pruneCmd implements 'kwaci prune'.
func pruneCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove all completed and cancelled tasks",
		Run: func(_ *cobra.Command, _ []string) {
			c, store, err := getCoordinator()
			if err != nil {
				printError(err)
			}
			defer closeStore(store)

			planID, err := currentPlanID()
			if err != nil {
				printError(err)
			}

			if !yes {
				tasks, err := c.Tasks(planID)
				if err != nil {
					printError(err)
				}
				finished := slices.DeleteFunc(tasks, func(t *task.Task) bool {
					return t.Status != task.StatusCompleted && t.Status != task.StatusCancelled
				})
				if len(finished) == 0 {
					printOutput(formatter.FormatMessage("No finished tasks to prune"))
					return
				}
				printOutput(formatter.FormatTaskList(finished))
				printOutput(formatter.FormatMessage("Re-run with --yes to remove these tasks"))
				return
			}

			removed, err := c.Prune(planID)
			if err != nil {
				printError(err)
			}
			if len(removed) == 0 {
				printOutput(formatter.FormatMessage("No finished tasks to prune"))
				return
			}
			printOutput(formatter.FormatMessage(fmt.Sprintf("Pruned %d finished task(s)", len(removed))))
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Remove without listing first")
	return cmd
}
