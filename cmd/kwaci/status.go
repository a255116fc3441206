package main

import (
	"github.com/spf13/cobra"

	"github.com/bhirmbani/kwaci-grow-sub003/internal/session"
	"github.com/bhirmbani/kwaci-grow-sub003/internal/task"
	"github.com/bhirmbani/kwaci-grow-sub003/internal/workflow"
)

// startCmd implements 'kwaci start'. Besides the transition it records the
// task in the session file; focus mode refuses a second start until the
// recorded task is finished.
func startCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start <id>",
		Short: "Start a task (pending -> in-progress, gated on dependencies)",
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

			base, err := basePath()
			if err != nil {
				printError(err)
			}

			sess, err := session.Current(base)
			if err != nil {
				printError(err)
			}
			if sess.Focus && sess.Active() && sess.TaskID != args[0] {
				printError(session.FocusHeldError{TaskID: sess.TaskID})
			}

			t, err := c.ChangeStatus(planID, args[0], workflow.StatusChange{To: task.StatusInProgress})
			if err != nil {
				printError(err)
			}

			if _, _, err := session.Begin(base, planID, args[0]); err != nil {
				printError(err)
			}
			printOutput(formatter.FormatTask(t))
		},
	}
}

// doneCmd implements 'kwaci done'.
func doneCmd() *cobra.Command {
	var (
		duration int
		yes      bool
	)
	cmd := &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a task completed",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ch := workflow.StatusChange{To: task.StatusCompleted, Acknowledge: yes}
			if cmd.Flags().Changed("duration") {
				ch.ActualDuration = &duration
			}
			runStatusChange(args[0], ch, true)
		},
	}
	cmd.Flags().IntVar(&duration, "duration", 0, "Actual duration in minutes")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Acknowledge a cascading change")
	return cmd
}

// cancelCmd implements 'kwaci cancel'.
func cancelCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel a task",
		Args:  cobra.ExactArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			runStatusChange(args[0], workflow.StatusChange{To: task.StatusCancelled, Acknowledge: yes}, true)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Acknowledge a cascading change")
	return cmd
}

// reopenCmd implements 'kwaci reopen'.
func reopenCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reopen <id>",
		Short: "Move a task back to pending",
		Args:  cobra.ExactArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			runStatusChange(args[0], workflow.StatusChange{To: task.StatusPending, Acknowledge: yes}, false)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Acknowledge a cascading change")
	return cmd
}

// statusCmd implements 'kwaci status', the explicit form of the transition
// commands above.
func statusCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "status <id> <state>",
		Short: "Move a task to an explicit state",
		Args:  cobra.ExactArgs(2), //nolint:mnd // CLI takes 2 positional args
		Run: func(_ *cobra.Command, args []string) {
			to := task.Status(args[1])
			finishes := to == task.StatusCompleted || to == task.StatusCancelled
			runStatusChange(args[0], workflow.StatusChange{To: to, Acknowledge: yes}, finishes)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Acknowledge a cascading change")
	return cmd
}

// runStatusChange routes one transition through the coordinator and keeps
// the session record in step: finishing or cancelling the recorded task
// clears it.
func runStatusChange(taskID string, ch workflow.StatusChange, finishes bool) {
	c, store, err := getCoordinator()
	if err != nil {
		printError(err)
	}
	defer closeStore(store)

	planID, err := currentPlanID()
	if err != nil {
		printError(err)
	}

	t, err := c.ChangeStatus(planID, taskID, ch)
	if err != nil {
		printError(err)
	}

	if finishes {
		if base, err := basePath(); err == nil {
			if _, err := session.Finish(base, taskID); err != nil {
				printError(err)
			}
		}
	}

	printOutput(formatter.FormatTask(t))
}
