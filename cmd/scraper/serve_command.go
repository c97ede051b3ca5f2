package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/narwhalmedia/scraper/internal/container"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Consume scrape requests from NATS and serve health checks",
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
			defer func() { _ = log.Sync() }()

			log.Info("starting service",
				zap.String("environment", cfg.Server.Environment),
				zap.Int("backends", len(cfg.Backends)),
				zap.String("event_sink", cfg.Scraping.EventSink),
			)

			server, cleanup, err := container.InitializeServer(cfg, log)
			if err != nil {
				return fmt.Errorf("failed to initialize service: %w", err)
			}
			defer cleanup()

			if !server.Registry.Usable() {
				log.Warn("no backend is initialized, requests will find nothing")
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			g, gctx := errgroup.WithContext(runCtx)
			g.Go(func() error {
				return server.Consumer.Start(gctx)
			})
			g.Go(func() error {
				return server.Health.Serve(gctx)
			})

			err = g.Wait()
			log.Info("shutting down service")
			if err != nil && runCtx.Err() == nil {
				return err
			}
			return nil
		},
	}
}
