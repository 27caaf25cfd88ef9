package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"ivyharness/internal/run"
)

var runsStatusFilter string

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect stored runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := run.DefaultStore()
		if err != nil {
			return err
		}
		states, err := store.List(runsStatusFilter)
		if err != nil {
			return err
		}
		if len(states) == 0 {
			cmd.Println("no runs")
			return nil
		}
		for _, st := range states {
			cmd.Printf("%s  %-8s %-6s %-8s %s\n", st.ID, st.Protocol, st.Role, st.Status, st.TestName)
		}
		return nil
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show a run's state and verdict",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := run.DefaultStore()
		if err != nil {
			return err
		}
		st, err := store.Get(args[0])
		if err != nil {
			return err
		}

		out := map[string]interface{}{"run": st}
		if verdict, err := store.GetVerdict(args[0]); err == nil {
			out["verdict"] = verdict
		}
		if deployment, err := store.GetDeployment(args[0]); err == nil {
			out["deployment"] = deployment
		}

		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		cmd.Println(string(data))
		return nil
	},
}

var runsDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete a stored run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := run.DefaultStore()
		if err != nil {
			return err
		}
		return store.Delete(args[0])
	},
}

func init() {
	runsListCmd.Flags().StringVar(&runsStatusFilter, "status", "", "filter by status (pending, running, passed, failed)")
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsDeleteCmd)
}
