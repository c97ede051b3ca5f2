package gorm

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/narwhalmedia/scraper/internal/domain/media"
	"github.com/narwhalmedia/scraper/internal/scraping"
)

// AttemptRepository stores scrape attempt history
type AttemptRepository struct {
	db *gorm.DB
}

// NewAttemptRepository creates a new attempt repository
func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{db: db}
}

// Record stores result for item together with its per-backend rows
func (r *AttemptRepository) Record(ctx context.Context, item media.Item, result *scraping.ScrapeResult) (*AttemptModel, error) {
	model := toAttemptModel(item, result)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return nil, fmt.Errorf("failed to record attempt for %s: %w", item.LogLabel(), err)
	}
	return model, nil
}

// ListByItem returns the most recent attempts for an item, newest first
func (r *AttemptRepository) ListByItem(ctx context.Context, itemID uuid.UUID, limit int) ([]AttemptModel, error) {
	if limit <= 0 {
		limit = 20
	}

	var models []AttemptModel
	err := r.db.WithContext(ctx).
		Preload("Backends", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("item_id = ?", itemID).
		Order("finished_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	return models, nil
}

// BackendStats counts outcomes per backend for attempts finished since since
func (r *AttemptRepository) BackendStats(ctx context.Context, since time.Time) ([]BackendStat, error) {
	var stats []BackendStat
	err := r.db.WithContext(ctx).
		Model(&BackendAttemptModel{}).
		Select("scrape_backend_attempts.backend AS backend, scrape_backend_attempts.outcome AS outcome, "+
			"COUNT(*) AS count, AVG(scrape_backend_attempts.elapsed_ms) AS avg_elapsed_ms").
		Joins("JOIN scrape_attempts ON scrape_attempts.id = scrape_backend_attempts.attempt_id").
		Where("scrape_attempts.finished_at >= ?", since).
		Group("scrape_backend_attempts.backend, scrape_backend_attempts.outcome").
		Order("backend ASC, outcome ASC").
		Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate backend stats: %w", err)
	}
	return stats, nil
}

// DeleteBefore prunes attempts finished before cutoff
func (r *AttemptRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		old := tx.Model(&AttemptModel{}).Select("id").Where("finished_at < ?", cutoff)
		if err := tx.Where("attempt_id IN (?)", old).Delete(&BackendAttemptModel{}).Error; err != nil {
			return err
		}
		res := tx.Where("finished_at < ?", cutoff).Delete(&AttemptModel{})
		deleted = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, fmt.Errorf("failed to prune attempts: %w", err)
	}
	return deleted, nil
}

func toAttemptModel(item media.Item, result *scraping.ScrapeResult) *AttemptModel {
	model := &AttemptModel{
		ItemID:       item.ID(),
		Kind:         string(item.Kind()),
		Label:        item.LogLabel(),
		IMDbID:       item.IMDbID(),
		StartedAt:    result.StartedAt,
		FinishedAt:   result.FinishedAt,
		Offered:      result.Offered,
		Merged:       len(result.Merged),
		Duplicates:   result.Duplicates,
		Ranked:       len(result.Streams),
		Added:        result.Added,
		StreamsTotal: len(item.Streams()),
		ScrapedTimes: item.ScrapedTimes(),
		Backends:     make([]BackendAttemptModel, 0, len(result.Statuses)),
	}
	for i, status := range result.Statuses {
		row := BackendAttemptModel{
			Position:  i,
			Backend:   status.Backend,
			Outcome:   string(status.Outcome),
			Results:   status.Results,
			ElapsedMS: status.Elapsed.Milliseconds(),
		}
		if status.Err != nil {
			row.Error = status.Err.Error()
		}
		model.Backends = append(model.Backends, row)
	}
	return model
}

// AttemptSink records every completed scrape
type AttemptSink struct {
	repo *AttemptRepository
}

// NewAttemptSink creates a sink backed by repo
func NewAttemptSink(repo *AttemptRepository) *AttemptSink {
	return &AttemptSink{repo: repo}
}

// HandleScrape implements scraping.ResultSink
func (s *AttemptSink) HandleScrape(ctx context.Context, item media.Item, result *scraping.ScrapeResult) error {
	_, err := s.repo.Record(ctx, item, result)
	return err
}
