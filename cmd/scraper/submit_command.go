package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/narwhalmedia/scraper/internal/container"
	"github.com/narwhalmedia/scraper/internal/domain/media"
)

type targetFlags struct {
	season  int
	episode int
}

func (f *targetFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.season, "season", "s", -1, "Season number inside a show")
	cmd.Flags().IntVarP(&f.episode, "episode", "e", 0, "Episode number inside the season")
}

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	var target targetFlags
	var output string
	var write bool

	cmd := &cobra.Command{
		Use:   "submit <item.json>",
		Short: "Scrape an item and print the updated state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scrapeCmd, err := readCommand(args[0], target.season, target.episode)
			if err != nil {
				return err
			}
			scrapeCmd.RequestID = uuid.NewString()
			if write && output == "" {
				output = args[0]
			}

			return ctx.withScraper(nil, func(c *container.ScraperContainer) error {
				outcome, scrapeErr := c.Service.Scrape(cmd.Context(), scrapeCmd)
				if outcome == nil {
					return scrapeErr
				}

				if output != "" {
					if err := writeSnapshot(output, outcome.Root); err != nil {
						return err
					}
				}

				if ctx.jsonOutput() {
					if err := writeJSON(cmd, media.ToSnapshot(outcome.Root)); err != nil {
						return err
					}
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), renderTable(itemHeaders, itemRows(outcome.Submitted), itemAligns))
				}
				return scrapeErr
			})
		},
	}

	target.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the updated item snapshot to this file")
	cmd.Flags().BoolVarP(&write, "write", "w", false, "Write the updated item snapshot back to the input file")
	return cmd
}

func writeSnapshot(path string, item media.Item) error {
	tmp := path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create snapshot file: %w", err)
	}
	if err := media.EncodeSnapshot(file, item); err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
