package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"ivyharness/internal/command"
	"ivyharness/internal/orchestrator"
	"ivyharness/internal/run"
)

var generateJSON bool

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate and persist the phase command sequences without executing",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log, err := newLogger()
		if err != nil {
			return err
		}
		defer log.Sync()

		store, err := run.DefaultStore()
		if err != nil {
			return err
		}

		o := orchestrator.New(cfg, store, openDB(log), nil, log, cmd.OutOrStdout())
		prep, err := o.Prepare()
		if err != nil {
			return err
		}

		if generateJSON {
			out := map[string]interface{}{
				"run_id":     prep.State.ID,
				"deployment": prep.Deployment,
			}
			phases := make(map[string][]command.Record)
			for _, phase := range command.Phases {
				if records := prep.Pipeline.Phase(phase); len(records) > 0 {
					phases[string(phase)] = records
				}
			}
			out["phases"] = phases
			data, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return err
			}
			cmd.Println(string(data))
			return nil
		}

		for _, phase := range command.Phases {
			records := prep.Pipeline.Phase(phase)
			if len(records) == 0 {
				continue
			}
			cmd.Printf("== %s (%d commands)\n", phase, len(records))
			for _, rec := range records {
				marker := " "
				if rec.Critical {
					marker = "!"
				}
				cmd.Printf(" %s %s\n", marker, rec.Text)
			}
		}
		cmd.Printf("== run (deployment)\n   %s\n", prep.Deployment)
		cmd.Printf("\nrun %s saved to %s\n", prep.State.ID, store.BaseDir())
		return nil
	},
}

func init() {
	generateCmd.Flags().BoolVar(&generateJSON, "json", false, "emit machine-readable output")
}
