package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/narwhalmedia/scraper/internal/config"
	"github.com/narwhalmedia/scraper/internal/container"
)

type backendView struct {
	Name        string `json:"name"`
	Initialized bool   `json:"initialized"`
}

func newBackendsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List configured backends and whether they initialized",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			noSinks := func(cfg *config.Config) {
				cfg.Scraping.EventSink = "none"
				cfg.Scraping.RecordAttempts = false
				cfg.Scraping.ArchiveResults = false
			}
			return ctx.withScraper(noSinks, func(c *container.ScraperContainer) error {
				all := c.Registry.All()
				views := make([]backendView, 0, len(all))
				for _, b := range all {
					views = append(views, backendView{Name: b.Name(), Initialized: b.Initialized()})
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, views)
				}

				rows := make([][]string, 0, len(views))
				for _, v := range views {
					status := "initialized"
					if !v.Initialized {
						status = "disabled"
					}
					rows = append(rows, []string{v.Name, status})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Backend", "Status"}, rows, nil))
				if !c.Registry.Usable() {
					cmd.PrintErrln("warning: no backend is initialized")
				}
				return nil
			})
		},
	}
}
