// kwaci is the operational-planning CLI for a coffee shop: plans own tasks,
// tasks form a dependency graph, and status changes are gated and confirmed
// by the workflow engine.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bhirmbani/kwaci-grow-sub003/internal/db"
	kwacierrors "github.com/bhirmbani/kwaci-grow-sub003/internal/errors"
	"github.com/bhirmbani/kwaci-grow-sub003/internal/output"
	"github.com/bhirmbani/kwaci-grow-sub003/internal/plan"
	"github.com/bhirmbani/kwaci-grow-sub003/internal/storage"
	"github.com/bhirmbani/kwaci-grow-sub003/internal/workflow"
)

const (
	kwaciDir   = ".kwaci"
	configFile = "config.yaml"
)

//nolint:gochecknoglobals // CLI flags and formatter are package-level by design
var (
	jsonOutput bool
	planFlag   string
	formatter  output.Formatter
)

func main() {
	cobra.OnInitialize(initConfig)

	rootCmd := &cobra.Command{
		Use:          "kwaci",
		Short:        "Plan-scoped task tracking with dependency gating",
		Long:         "kwaci - operational planning for a coffee shop: tasks, dependencies, and gated status transitions, per plan.",
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if jsonOutput {
				formatter = output.NewJSONFormatter()
			} else {
				formatter = output.NewHumanFormatter()
			}
		},
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&planFlag, "plan", "", "Plan id (defaults to the configured current plan)")

	rootCmd.AddCommand(
		initCmd(),
		planCmd(),
		goalCmd(),
		addCmd(),
		listCmd(),
		showCmd(),
		readyCmd(),
		orderCmd(),
		graphCmd(),
		startCmd(),
		doneCmd(),
		cancelCmd(),
		reopenCmd(),
		statusCmd(),
		editCmd(),
		depCmd(),
		undepCmd(),
		dupCmd(),
		rmCmd(),
		pruneCmd(),
		focusCmd(),
		currentCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initConfig wires viper to .kwaci/config.yaml with KWACI_ env overrides.
// A missing config file is fine; defaults apply.
func initConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	if root, err := storage.FindWorkspaceRoot(); err == nil {
		viper.AddConfigPath(filepath.Join(root, kwaciDir))
	}

	viper.SetDefault("store", "files")
	viper.SetDefault("db", filepath.Join(kwaciDir, "kwaci.db"))

	viper.SetEnvPrefix("KWACI")
	viper.AutomaticEnv()

	_ = viper.ReadInConfig()
}

// basePath returns the enclosing workspace's .kwaci directory.
func basePath() (string, error) {
	root, err := storage.FindWorkspaceRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, kwaciDir), nil
}

// getStore returns the configured plan store: file-backed by default,
// sqlite when config says so.
func getStore() (plan.Store, error) {
	base, err := basePath()
	if err != nil {
		return nil, err
	}

	if viper.GetString("store") == "sqlite" {
		return db.Open(filepath.Join(filepath.Dir(base), viper.GetString("db")))
	}
	return storage.NewStoreWithPath(base), nil
}

// getCoordinator builds the mutation coordinator over the configured store.
func getCoordinator() (*workflow.Coordinator, plan.Store, error) {
	store, err := getStore()
	if err != nil {
		return nil, nil, err
	}
	return workflow.NewCoordinator(store), store, nil
}

// closeStore closes stores that hold resources (the sqlite one).
func closeStore(s plan.Store) {
	if c, ok := s.(io.Closer); ok {
		_ = c.Close()
	}
}

// currentPlanID resolves the plan a command operates on: the --plan flag,
// then the configured current plan.
func currentPlanID() (string, error) {
	if planFlag != "" {
		return planFlag, nil
	}
	if id := viper.GetString("plan"); id != "" {
		return id, nil
	}
	return "", kwacierrors.NoPlanSelectedError{}
}

func printOutput(s string) {
	os.Stdout.WriteString(s) //nolint:gosec // stdout write errors are unrecoverable
}

func printError(err error) {
	os.Stdout.WriteString(formatter.FormatError(err)) //nolint:gosec // stdout write errors are unrecoverable
	os.Exit(1)
}

// initCmd implements 'kwaci init'.
func initCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a kwaci workspace",
		Run: func(_ *cobra.Command, _ []string) {
			cwd, err := os.Getwd()
			if err != nil {
				printError(err)
			}

			store := storage.NewStoreWithPath(filepath.Join(cwd, kwaciDir))
			if err = store.Init(force); err != nil {
				printError(err)
			}

			if viper.GetString("store") == "sqlite" {
				dbStore, err := db.Open(filepath.Join(cwd, viper.GetString("db")))
				if err != nil {
					printError(err)
				}
				defer closeStore(dbStore)
			}

			printOutput(formatter.FormatMessage(fmt.Sprintf("Initialized kwaci at %s", store.BasePath())))
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Reinitialize even if already exists")
	return cmd
}
