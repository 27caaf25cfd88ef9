package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ivyharness/internal/config"
)

var version = "dev"

func SetVersion(v string) {
	version = v
}

var (
	configFile string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "ivyharness",
	Short: "ivyharness: protocol conformance test orchestration",
	Long: `ivyharness drives formally specified protocol tests against real
implementations: it resolves roles and parameters, generates the per-phase
shell command sequences, validates the rendered deployment command, and
classifies the captured output into a pass/fail verdict.

Run state is stored in ~/.ivyharness/runs (JSON artifacts); the optional
event log lives in PostgreSQL (IVYHARNESS_DB).`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to harness config (default: ./harness.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(dbCmd)
}

// loadConfig reads the harness config from --config or the default search
// locations, and rejects invalid configs before any command uses them.
func loadConfig() (*config.HarnessConfig, error) {
	var cfg *config.HarnessConfig
	var err error
	if configFile != "" {
		cfg, err = config.Load(configFile)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return nil, err
	}
	if errs := config.Validate(cfg); len(errs) > 0 {
		for _, e := range errs {
			fmt.Println("  -", e)
		}
		return nil, fmt.Errorf("config has %d validation error(s)", len(errs))
	}
	return cfg, nil
}

// newLogger builds the process logger. Debug level with --verbose.
func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
