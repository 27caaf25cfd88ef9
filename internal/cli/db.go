package cli

import (
	"github.com/spf13/cobra"

	"ivyharness/internal/db"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Event log database management",
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := db.Open(db.DefaultDSN())
		if err != nil {
			return err
		}
		defer d.Close()
		if err := d.Migrate(); err != nil {
			return err
		}
		cmd.Println("schema up to date")
		return nil
	},
}

var dbResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the database (destructive!)",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := db.Open(db.DefaultDSN())
		if err != nil {
			return err
		}
		defer d.Close()
		if err := d.Reset(); err != nil {
			return err
		}
		cmd.Println("database reset")
		return nil
	},
}

var dbHistoryCmd = &cobra.Command{
	Use:   "history <run-id>",
	Short: "Show the event history for a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := db.Open(db.DefaultDSN())
		if err != nil {
			return err
		}
		defer d.Close()

		events, err := d.GetRunHistory(args[0])
		if err != nil {
			return err
		}
		for _, e := range events {
			phase := e.Phase
			if phase == "" {
				phase = "-"
			}
			cmd.Printf("%s  %-12s %-16s %s\n", e.CreatedAt, phase, e.Event, e.Detail)
		}
		return nil
	},
}

var dbVerdictsLimit int

var dbVerdictsCmd = &cobra.Command{
	Use:   "verdicts",
	Short: "List recently recorded verdicts",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := db.Open(db.DefaultDSN())
		if err != nil {
			return err
		}
		defer d.Close()

		rows, err := d.ListRecentVerdicts(dbVerdictsLimit)
		if err != nil {
			return err
		}
		for _, v := range rows {
			cmd.Printf("%s  %s  %s\n", v.RunID, fmtPassed(v.Passed), v.Summary)
		}
		return nil
	},
}

func init() {
	dbVerdictsCmd.Flags().IntVar(&dbVerdictsLimit, "limit", 20, "maximum number of verdicts to list")
	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbResetCmd)
	dbCmd.AddCommand(dbHistoryCmd)
	dbCmd.AddCommand(dbVerdictsCmd)
}
