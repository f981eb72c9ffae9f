package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/eduprompt-backend/internal/app"
	"github.com/heartmarshall/eduprompt-backend/internal/config"
)

var (
	cfgFile string

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "catalogctl",
	Short: "Operate the EduPrompt catalog backend",
	Long: `catalogctl runs maintenance tasks against the catalog database and
snapshot store using the same configuration as the server.

Configuration is read from --config (or CONFIG_PATH) and the environment.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	load := config.Load
	if cfgFile != "" {
		load = func() (*config.Config, error) { return config.LoadFile(cfgFile) }
	}

	loaded, err := load()
	if err != nil {
		return err
	}
	cfg = loaded
	logger = app.NewLogger(cfg.Log)
	return nil
}

// withContainer wires the services for one command and closes them afterwards.
func withContainer(cmd *cobra.Command, fn func(c *app.Container) error) error {
	c, err := app.Build(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(c)
}
