package main

import (
	"fmt"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bhirmbani/kwaci-grow-sub003/internal/plan"
)

// planCmd implements 'kwaci plan' and its subcommands.
func planCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Manage plans",
	}
	cmd.AddCommand(planNewCmd(), planListCmd(), planUseCmd())
	return cmd
}

// planNewCmd implements 'kwaci plan new'.
func planNewCmd() *cobra.Command {
	var branch, note string
	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Create a plan",
		Args:  cobra.ExactArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			store, err := getStore()
			if err != nil {
				printError(err)
			}
			defer closeStore(store)

			p := plan.New(args[0], branch, note)
			if err := store.SavePlan(p); err != nil {
				printError(err)
			}
			printOutput(formatter.FormatMessage(fmt.Sprintf("Created plan %s (%s)", p.ID, p.Name)))
		},
	}
	cmd.Flags().StringVar(&branch, "branch", "", "Branch (location) the plan belongs to")
	cmd.Flags().StringVar(&note, "note", "", "Free-form note")
	return cmd
}

// planListCmd implements 'kwaci plan list'.
func planListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List plans",
		Run: func(_ *cobra.Command, _ []string) {
			store, err := getStore()
			if err != nil {
				printError(err)
			}
			defer closeStore(store)

			plans, err := store.Plans()
			if err != nil {
				printError(err)
			}
			printOutput(formatter.FormatPlanList(plans, viper.GetString("plan")))
		},
	}
}

// planUseCmd implements 'kwaci plan use'. The chosen plan is written to the
// workspace config so plan-scoped commands can omit --plan.
func planUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use <id>",
		Short: "Select the current plan",
		Args:  cobra.ExactArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			store, err := getStore()
			if err != nil {
				printError(err)
			}
			defer closeStore(store)

			p, err := store.Plan(args[0])
			if err != nil {
				printError(err)
			}

			base, err := basePath()
			if err != nil {
				printError(err)
			}

			viper.Set("plan", p.ID)
			if err := viper.WriteConfigAs(filepath.Join(base, configFile)); err != nil {
				printError(err)
			}
			printOutput(formatter.FormatMessage(fmt.Sprintf("Using plan %s (%s)", p.ID, p.Name)))
		},
	}
}

// goalCmd implements 'kwaci goal' and its subcommands. Goals are maintained
// by the planning collaborator; the CLI only reads them.
func goalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goal",
		Short: "Inspect the plan's goals",
	}
	cmd.AddCommand(goalListCmd())
	return cmd
}

// goalListCmd implements 'kwaci goal list'.
func goalListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List goals with their progress and linked task counts",
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

			goals, err := store.Goals(planID)
			if err != nil {
				printError(err)
			}

			tasks, err := c.Tasks(planID)
			if err != nil {
				printError(err)
			}

			linked := make(map[string]int)
			for _, t := range tasks {
				for _, g := range goals {
					if slices.Contains(t.GoalIDs, g.ID) {
						linked[g.ID]++
					}
				}
			}

			printOutput(formatter.FormatGoalList(goals, linked))
		},
	}
}
