package main

import (
	"github.com/foxseedlab/kikitori/internal/config"
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var cfg *config.Config

	rootCmd := &cobra.Command{
		Use:           "kikitori",
		Short:         "Podcast transcription backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg = mustLoadConfig()
			initLogger(cfg)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	loaded := func() *config.Config { return cfg }
	rootCmd.AddCommand(newServeCommand(loaded))
	rootCmd.AddCommand(newMigrateCommand(loaded))

	return rootCmd
}
