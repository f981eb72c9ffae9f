package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/eduprompt-backend/internal/app"
)

var auditCleanupDays int

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Maintain the audit log",
}

var auditCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete audit entries older than --days",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withContainer(cmd, func(c *app.Container) error {
			n, err := c.Audit.Cleanup(cmd.Context(), auditCleanupDays)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d audit entries older than %d days\n", n, auditCleanupDays)
			return nil
		})
	},
}

func init() {
	auditCleanupCmd.Flags().IntVar(&auditCleanupDays, "days", 90, "retention in days (1..3650)")
	auditCmd.AddCommand(auditCleanupCmd)
	rootCmd.AddCommand(auditCmd)
}
