package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/newtron-network/rosctl/pkg/inventory"
)

var (
	tasksFile string
	keepGoing bool
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Reconcile every task in a task file",
	Long: `Reconcile every task in a YAML task file, in order.

Each task is independent: its own connection, lock and audit event. A
failed task is not rolled back and earlier tasks stay applied. The run
stops at the first error unless --keep-going is set. A device rejecting a
command is reported per task and does not stop the run.

Examples:
  rosctl -I inventory.yaml apply -f tasks.yaml
  rosctl -I inventory.yaml apply -f tasks.yaml -x --keep-going`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if tasksFile == "" {
			return fmt.Errorf("task file required: use -f <file>")
		}
		tf, err := inventory.LoadTasks(tasksFile)
		if err != nil {
			return err
		}

		r, cleanup, err := newRunner(keepGoing)
		if err != nil {
			return err
		}
		defer cleanup()

		results, runErr := r.Run(cmd.Context(), tf.Tasks)
		if err := printTaskResults(os.Stdout, results); err != nil {
			return err
		}
		return runErr
	},
}

func init() {
	applyCmd.Flags().StringVarP(&tasksFile, "file", "f", "", "Task file (YAML)")
	applyCmd.Flags().BoolVar(&keepGoing, "keep-going", false, "Continue after a failed task")
}
