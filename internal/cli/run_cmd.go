package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ivyharness/internal/db"
	"ivyharness/internal/orchestrator"
	"ivyharness/internal/run"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute a complete test run: generate, execute, analyze",
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
		verdict, err := o.Run(cmd.Context())
		if err != nil {
			return err
		}

		cmd.Printf("\n%s: %s\n", fmtPassed(verdict.Passed), verdict.Summary)
		for name, result := range verdict.Detailed {
			cmd.Printf("  %-24s %s\n", name, result.Status)
		}
		if !verdict.Passed {
			return fmt.Errorf("test run failed")
		}
		return nil
	},
}

func fmtPassed(passed bool) string {
	if passed {
		return "PASSED"
	}
	return "FAILED"
}

// openDB connects to the event log database. The database is optional: a
// connection failure is logged and the run proceeds without event logging.
func openDB(log *zap.Logger) *db.DB {
	d, err := db.Open(db.DefaultDSN())
	if err != nil {
		log.Warn("event log database unavailable", zap.Error(err))
		return nil
	}
	if err := d.Migrate(); err != nil {
		log.Warn("event log migration failed", zap.Error(err))
		d.Close()
		return nil
	}
	return d
}
