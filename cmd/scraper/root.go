package main

import (
	"github.com/spf13/cobra"
)

const serviceName = "scraper"

func newRootCommand() *cobra.Command {
	var backendsFlag string
	var jsonFlag bool

	ctx := newCommandContext(&backendsFlag, &jsonFlag)

	rootCmd := &cobra.Command{
		Use:           "scraper",
		Short:         "Torrent stream scraper",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&backendsFlag, "backends", "b", "", "Backends TOML file (overrides SCRAPER_BACKENDS_FILE)")
	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "Write JSON instead of tables")

	rootCmd.AddCommand(newSubmitCommand(ctx))
	rootCmd.AddCommand(newFrontierCommand(ctx))
	rootCmd.AddCommand(newBackendsCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newMigrateCommand(ctx))
	rootCmd.AddCommand(newServeCommand(ctx))

	return rootCmd
}
