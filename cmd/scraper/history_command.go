package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/narwhalmedia/scraper/internal/config"
	"github.com/narwhalmedia/scraper/internal/container"
)

func recordAttempts(cfg *config.Config) {
	cfg.Scraping.RecordAttempts = true
	cfg.Scraping.EventSink = "none"
	cfg.Scraping.ArchiveResults = false
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history <item-id>",
		Short: "Show recorded scrape attempts for an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid item id %q: %w", args[0], err)
			}

			return ctx.withScraper(recordAttempts, func(c *container.ScraperContainer) error {
				attempts, err := c.Attempts.ListByItem(cmd.Context(), itemID, limit)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, attempts)
				}

				rows := make([][]string, 0, len(attempts))
				for _, a := range attempts {
					failed := 0
					for _, b := range a.Backends {
						if b.Outcome != "ok" {
							failed++
						}
					}
					rows = append(rows, []string{
						a.FinishedAt.Local().Format(time.DateTime),
						a.Label,
						fmt.Sprint(a.Offered),
						fmt.Sprint(a.Added),
						fmt.Sprint(a.StreamsTotal),
						fmt.Sprintf("%d/%d", failed, len(a.Backends)),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Finished", "Item", "Offered", "Added", "Streams", "Failed"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
				))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of attempts to show")
	cmd.AddCommand(newHistoryStatsCommand(ctx))
	cmd.AddCommand(newHistoryPruneCommand(ctx))
	return cmd
}

func newHistoryStatsCommand(ctx *commandContext) *cobra.Command {
	var since time.Duration

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Aggregate backend outcomes over a period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withScraper(recordAttempts, func(c *container.ScraperContainer) error {
				stats, err := c.Attempts.BackendStats(cmd.Context(), time.Now().Add(-since))
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, stats)
				}

				rows := make([][]string, 0, len(stats))
				for _, s := range stats {
					rows = append(rows, []string{
						s.Backend,
						s.Outcome,
						fmt.Sprint(s.Count),
						fmt.Sprintf("%.0fms", s.AvgElapsedMS),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Backend", "Outcome", "Count", "Avg"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight},
				))
				return nil
			})
		},
	}

	cmd.Flags().DurationVar(&since, "since", 24*time.Hour, "Look-back window")
	return cmd
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete attempts older than a cutoff",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withScraper(recordAttempts, func(c *container.ScraperContainer) error {
				deleted, err := c.Attempts.DeleteBefore(cmd.Context(), time.Now().Add(-olderThan))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d attempts\n", deleted)
				return nil
			})
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "Delete attempts finished before now minus this")
	return cmd
}
