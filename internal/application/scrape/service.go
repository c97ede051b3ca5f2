// Package scrape resolves inbound scrape commands to items and runs them
// through the orchestrator.
package scrape

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/narwhalmedia/scraper/internal/domain/media"
	"github.com/narwhalmedia/scraper/internal/scraping"
	apperrors "github.com/narwhalmedia/scraper/pkg/errors"
)

// Service handles scrape use cases
type Service struct {
	orchestrator *scraping.Orchestrator
	logger       *zap.Logger
	now          func() time.Time
}

// NewService creates a new scrape application service
func NewService(orchestrator *scraping.Orchestrator, logger *zap.Logger) *Service {
	return &Service{
		orchestrator: orchestrator,
		logger:       logger.Named("scrape"),
		now:          time.Now,
	}
}

// Resolve rebuilds the item tree carried by cmd and locates its target
func (s *Service) Resolve(cmd ScrapeCommand) (root, target media.Item, err error) {
	root, err = media.FromSnapshot(cmd.Item)
	if err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrorTypeBadRequest, "invalid item snapshot", err)
	}
	if cmd.Season == nil {
		return root, root, nil
	}

	episode := 0
	if cmd.Episode != nil {
		episode = *cmd.Episode
	}
	target, err = media.Locate(root, *cmd.Season, episode)
	if err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrorTypeNotFound, "scrape target not found", err)
	}
	return root, target, nil
}

// Scrape resolves cmd and submits its target, or the target's partial
// frontier when it is a partially completed composite. The returned outcome
// is populated even when some units failed.
func (s *Service) Scrape(ctx context.Context, cmd ScrapeCommand) (*ScrapeOutcome, error) {
	root, target, err := s.Resolve(cmd)
	if err != nil {
		return nil, err
	}

	logger := s.logger.With(
		zap.String("request_id", cmd.RequestID),
		zap.String("item", target.LogLabel()),
	)
	logger.Debug("Scrape requested", zap.String("kind", string(target.Kind())))

	submitted, err := s.orchestrator.Process(ctx, target)
	outcome := &ScrapeOutcome{Root: root, Target: target, Submitted: submitted}
	if err != nil {
		logger.Warn("Scrape finished with errors", zap.Int("submitted", len(submitted)), zap.Error(err))
		return outcome, err
	}

	logger.Info("Scrape finished",
		zap.Int("submitted", len(submitted)),
		zap.Int("streams", len(target.Streams())),
	)
	return outcome, nil
}

// Frontier resolves cmd and returns the units a scrape would submit
func (s *Service) Frontier(cmd ScrapeCommand) ([]media.Item, error) {
	_, target, err := s.Resolve(cmd)
	if err != nil {
		return nil, err
	}
	if units := s.orchestrator.Walker().PartialFrontier(target, s.now()); len(units) > 0 {
		return units, nil
	}
	return []media.Item{target}, nil
}

// HandleScrapeCommand adapts Scrape for message consumers
func (s *Service) HandleScrapeCommand(ctx context.Context, cmd ScrapeCommand) error {
	_, err := s.Scrape(ctx, cmd)
	return err
}
