package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/narwhalmedia/scraper/internal/container"
	"github.com/narwhalmedia/scraper/internal/domain/media"
)

func newFrontierCommand(ctx *commandContext) *cobra.Command {
	var target targetFlags

	cmd := &cobra.Command{
		Use:   "frontier <item.json>",
		Short: "List the units a scrape of the item would submit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scrapeCmd, err := readCommand(args[0], target.season, target.episode)
			if err != nil {
				return err
			}

			return ctx.withScraper(nil, func(c *container.ScraperContainer) error {
				units, err := c.Service.Frontier(scrapeCmd)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					snaps := make([]media.Snapshot, 0, len(units))
					for _, unit := range units {
						snaps = append(snaps, media.ToSnapshot(unit))
					}
					return writeJSON(cmd, snaps)
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(itemHeaders, itemRows(units), itemAligns))
				return nil
			})
		},
	}

	target.register(cmd)
	return cmd
}
