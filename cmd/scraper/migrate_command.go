package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	gormrepo "github.com/narwhalmedia/scraper/internal/infrastructure/persistence/gorm"
)

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	var status, dryRun bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply attempt history database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			log, err := ctx.ensureLogger()
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}

			db, cleanup, err := gormrepo.Open(cfg, log)
			if err != nil {
				return err
			}
			defer cleanup()

			migrator := gormrepo.NewMigrator(db, log)
			out := cmd.OutOrStdout()

			if status {
				applied, err := migrator.Applied(cmd.Context())
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(applied))
				for _, m := range applied {
					rows = append(rows, []string{m.Version, m.Name, m.AppliedAt.Local().Format(time.DateTime)})
				}
				fmt.Fprintln(out, renderTable([]string{"Version", "Name", "Applied"}, rows, nil))
			}

			if status || dryRun {
				pending, err := migrator.Pending(cmd.Context())
				if err != nil {
					return err
				}
				if len(pending) == 0 {
					fmt.Fprintln(out, "No pending migrations.")
					return nil
				}
				for _, m := range pending {
					fmt.Fprintf(out, "pending %s | %s\n", m.Version, m.Name)
				}
				return nil
			}

			applied, err := migrator.Migrate(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Applied %d migrations\n", len(applied))
			return nil
		},
	}

	cmd.Flags().BoolVar(&status, "status", false, "Show applied and pending migrations")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show pending migrations without applying them")
	return cmd
}
