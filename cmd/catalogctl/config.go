package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/eduprompt-backend/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
	// Listing variables must work before a valid configuration exists.
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
}

var configEnvCmd = &cobra.Command{
	Use:   "env",
	Short: "List the environment variables the server reads",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		desc, err := config.Describe()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), desc)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configEnvCmd)
	rootCmd.AddCommand(configCmd)
}
