package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bhirmbani/kwaci-grow-sub003/internal/session"
)

// focusCmd implements 'kwaci focus'.
func focusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "focus on|off",
		Short: "Toggle focus mode (one task at a time)",
		Args:  cobra.ExactArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			base, err := basePath()
			if err != nil {
				printError(err)
			}

			switch args[0] {
			case "on":
				if err := session.SetFocus(base, true); err != nil {
					printError(err)
				}
				printOutput(formatter.FormatMessage("Focus mode on"))
			case "off":
				if err := session.SetFocus(base, false); err != nil {
					printError(err)
				}
				printOutput(formatter.FormatMessage("Focus mode off"))
			default:
				printError(fmt.Errorf("expected 'on' or 'off', got %q", args[0]))
			}
		},
	}
}

// currentCmd implements 'kwaci current'.
func currentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show the task currently being worked on",
		Run: func(_ *cobra.Command, _ []string) {
			base, err := basePath()
			if err != nil {
				printError(err)
			}

			sess, err := session.Current(base)
			if err != nil {
				printError(err)
			}
			if !sess.Active() {
				printOutput(formatter.FormatMessage("No task in progress"))
				return
			}

			c, store, err := getCoordinator()
			if err != nil {
				printError(err)
			}
			defer closeStore(store)

			t, err := c.Task(sess.PlanID, sess.TaskID)
			if err != nil {
				printError(err)
			}
			printOutput(formatter.FormatTask(t))
		},
	}
}
