package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"ivyharness/internal/analysis"
	"ivyharness/internal/run"
)

var (
	analyzeLogsRoot string
	analyzeJSON     bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [run-id]",
	Short: "Classify captured outputs into a verdict",
	Long: `Collects each monitored service's captured artifacts from the logs
root and classifies them. With a run-id argument the verdict is also saved
to the run store.`,
	Args: cobra.MaximumNArgs(1),
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

		h := cfg.Harness
		logsRoot := h.LogsRoot
		if analyzeLogsRoot != "" {
			logsRoot = analyzeLogsRoot
		}

		collected := run.Collect(logsRoot, h.Protocol, h.ServiceName, h.Targets)
		verdict := analysis.NewClassifier(log).Analyze(collected)

		traces := make(map[string][]string)
		for _, service := range append([]string{h.ServiceName}, h.Targets...) {
			root := run.ServiceRoot(logsRoot, h.ServiceName, service)
			if found := run.CollectTraces(root, h.Protocol, service); len(found) > 0 {
				traces[service] = found
			}
		}

		if len(args) == 1 {
			store, err := run.DefaultStore()
			if err != nil {
				return err
			}
			if err := store.SaveVerdict(args[0], &verdict); err != nil {
				return err
			}
		}

		if analyzeJSON {
			out := map[string]interface{}{"verdict": verdict}
			if len(traces) > 0 {
				out["traces"] = traces
			}
			data, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return err
			}
			cmd.Println(string(data))
		} else {
			cmd.Printf("%s: %s\n", fmtPassed(verdict.Passed), verdict.Summary)
			for name, result := range verdict.Detailed {
				cmd.Printf("  %-24s %s\n", name, result.Status)
				for _, msg := range result.ErrorMessages {
					cmd.Printf("    - %s\n", msg)
				}
				for _, trace := range traces[name] {
					cmd.Printf("    trace: %s\n", trace)
				}
			}
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeLogsRoot, "logs", "", "override the logs root directory")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "emit machine-readable output")
}
