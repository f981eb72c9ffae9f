package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/eduprompt-backend/internal/app"
	"github.com/heartmarshall/eduprompt-backend/internal/domain"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Run catalog backups",
}

var backupTickCmd = &cobra.Command{
	Use:   "tick",
	Short: "Run the scheduled backup if it is due",
	Long: `Checks the saved backup schedule and runs a backup only when the next
slot has passed, then applies retention. Intended for an external cron:

  */5 * * * * catalogctl backup tick`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withContainer(cmd, func(c *app.Container) error {
			res, ran, err := c.Scheduler.Tick(cmd.Context())
			if !ran && err == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "backup not due")
				return nil
			}
			printRun(cmd.OutOrStdout(), res)
			return err
		})
	},
}

var backupRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a backup now regardless of the schedule",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withContainer(cmd, func(c *app.Container) error {
			res, err := c.Scheduler.RunBackupNow(cmd.Context())
			printRun(cmd.OutOrStdout(), res)
			if err != nil {
				logger.ErrorContext(cmd.Context(), "backup run failed", slog.String("error", err.Error()))
			}
			return err
		})
	},
}

func printRun(w io.Writer, res *domain.RunResult) {
	if res == nil {
		return
	}
	if !res.Success {
		fmt.Fprintf(w, "backup failed: %s\n", res.Error)
		return
	}
	id := "-"
	if res.BackupID != nil {
		id = res.BackupID.String()
	}
	fmt.Fprintf(w, "backup %s created, %d expired removed\n", id, res.CleanedUpCount)
}

func init() {
	backupCmd.AddCommand(backupTickCmd, backupRunCmd)
	rootCmd.AddCommand(backupCmd)
}
