package scraping

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/narwhalmedia/scraper/internal/domain/media"
	apperrors "github.com/narwhalmedia/scraper/pkg/errors"
)

const topResultsLogged = 10

// ResultSink receives every completed scrape, e.g. to publish an event or
// record history. Sink failures are logged and never fail a submission.
type ResultSink interface {
	HandleScrape(ctx context.Context, item media.Item, result *ScrapeResult) error
}

// Orchestrator gates items through the backoff policy, queries every active
// backend concurrently and attaches the ranked streams to the item. A single
// item must not be submitted concurrently.
type Orchestrator struct {
	registry *Registry
	ranker   Ranker
	policy   BackoffPolicy
	walker   Walker
	opts     Options
	sinks    []ResultSink
	logger   *zap.Logger
	now      func() time.Time
}

// OrchestratorOption customizes an Orchestrator
type OrchestratorOption func(*Orchestrator)

// WithClock overrides the clock used for backoff checks and scrape times
func WithClock(now func() time.Time) OrchestratorOption {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// WithSinks registers sinks notified after every completed scrape
func WithSinks(sinks ...ResultSink) OrchestratorOption {
	return func(o *Orchestrator) {
		o.sinks = append(o.sinks, sinks...)
	}
}

// NewOrchestrator creates a new orchestrator
func NewOrchestrator(registry *Registry, ranker Ranker, opts Options, logger *zap.Logger, options ...OrchestratorOption) *Orchestrator {
	if opts.BackendTimeout <= 0 {
		opts.BackendTimeout = DefaultOptions().BackendTimeout
	}
	policy := NewBackoffPolicy(opts)
	o := &Orchestrator{
		registry: registry,
		ranker:   ranker,
		policy:   policy,
		walker:   NewWalker(policy),
		opts:     opts,
		logger:   logger.Named("orchestrator"),
		now:      time.Now,
	}
	for _, opt := range options {
		opt(o)
	}
	return o
}

// Policy returns the backoff policy in use
func (o *Orchestrator) Policy() BackoffPolicy {
	return o.policy
}

// Walker returns the hierarchy walker in use
func (o *Orchestrator) Walker() Walker {
	return o.walker
}

// Submit scrapes item if it is released and out of its backoff window, then
// returns it. Newly found streams are appended and the attempt is recorded
// on the item. On a ranking failure the item is returned untouched together
// with the error.
func (o *Orchestrator) Submit(ctx context.Context, item media.Item) (media.Item, error) {
	if ok, reason := o.policy.CanScrape(item, o.now()); ok {
		result, err := o.FanOutAndMerge(ctx, item)
		if err != nil {
			return item, err
		}

		result.Added = item.AppendStreams(result.Streams...)
		item.MarkScraped(o.now())
		o.notify(ctx, item, result)
	} else {
		o.logger.Debug("Cannot scrape item",
			zap.String("item", item.LogLabel()),
			zap.String("reason", string(reason)),
		)
	}

	if len(item.Streams()) == 0 {
		o.logger.Info("Scraping returned no good results", zap.String("item", item.LogLabel()))
	}
	return item, nil
}

// Process submits the partial frontier of item when it has one and the item
// itself otherwise. It returns the items that were submitted.
func (o *Orchestrator) Process(ctx context.Context, item media.Item) ([]media.Item, error) {
	units := o.walker.PartialFrontier(item, o.now())
	if len(units) == 0 {
		units = []media.Item{item}
	} else {
		o.logger.Debug("Scraping partial frontier",
			zap.String("item", item.LogLabel()),
			zap.Int("units", len(units)),
		)
	}

	var errs error
	submitted := make([]media.Item, 0, len(units))
	for _, unit := range units {
		if err := ctx.Err(); err != nil {
			return submitted, multierr.Append(errs, err)
		}
		scraped, err := o.Submit(ctx, unit)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		submitted = append(submitted, scraped)
	}
	return submitted, errs
}

// FanOutAndMerge queries every active backend, merges their results and
// ranks them. Backend failures are isolated: a failing, panicking or stalled
// backend contributes nothing and is reported in the per-backend statuses.
// Only a ranking failure or cancellation of ctx is returned as an error.
func (o *Orchestrator) FanOutAndMerge(ctx context.Context, item media.Item) (*ScrapeResult, error) {
	backends := o.registry.Active()
	result := &ScrapeResult{
		ItemID:    item.ID(),
		Label:     item.LogLabel(),
		Statuses:  make([]BackendStatus, len(backends)),
		StartedAt: o.now(),
	}

	acc := newAccumulator()
	var g errgroup.Group
	if o.opts.MaxWorkers > 0 {
		g.SetLimit(o.opts.MaxWorkers)
	}
	for i, backend := range backends {
		g.Go(func() error {
			results, status := o.query(ctx, backend, item)
			result.Statuses[i] = status
			if status.Outcome == OutcomeOK {
				acc.mergeOne(results)
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scrape of %s interrupted: %w", item.LogLabel(), err)
	}

	result.Merged, result.Offered = acc.snapshot()
	result.Duplicates = result.Offered - len(result.Merged)
	if result.Duplicates > 0 {
		o.logger.Debug("Removed duplicate hashes",
			zap.String("item", item.LogLabel()),
			zap.Int("total", result.Offered),
			zap.Int("duplicates", result.Duplicates),
		)
	}

	streams, err := o.ranker.Rank(ctx, item, result.Merged, o.opts.Debug)
	if err != nil {
		return nil, apperrors.Ranking(item.LogLabel(), err)
	}
	result.Streams = streams
	result.FinishedAt = o.now()

	if o.opts.Debug {
		o.logTopStreams(item, streams)
	}
	return result, nil
}

// query runs one backend call under its own timeout and recovers panics. A
// backend that ignores its context is abandoned once the deadline passes.
func (o *Orchestrator) query(ctx context.Context, backend Backend, item media.Item) (map[string]RawResult, BackendStatus) {
	start := time.Now()
	status := BackendStatus{Backend: backend.Name()}

	queryCtx, cancel := context.WithTimeout(ctx, o.opts.BackendTimeout)
	defer cancel()

	type reply struct {
		results map[string]RawResult
		err     error
	}
	done := make(chan reply, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- reply{err: &panicError{value: r}}
			}
		}()
		results, err := backend.Query(queryCtx, item)
		done <- reply{results: results, err: err}
	}()

	var out reply
	select {
	case out = <-done:
	case <-queryCtx.Done():
		out = reply{err: queryCtx.Err()}
	}
	status.Elapsed = time.Since(start)

	if out.err != nil {
		var pe *panicError
		switch {
		case errors.As(out.err, &pe):
			status.Outcome = OutcomePanicked
		case errors.Is(out.err, context.DeadlineExceeded):
			status.Outcome = OutcomeTimeout
		case errors.Is(out.err, context.Canceled):
			status.Outcome = OutcomeCanceled
		default:
			status.Outcome = OutcomeFailed
		}
		status.Err = apperrors.Backend(status.Backend, out.err)
		o.logger.Warn("Backend query failed",
			zap.String("backend", status.Backend),
			zap.String("item", item.LogLabel()),
			zap.String("outcome", string(status.Outcome)),
			zap.Duration("elapsed", status.Elapsed),
			zap.Error(out.err),
		)
		return nil, status
	}

	results := normalizeResults(status.Backend, out.results)
	status.Outcome = OutcomeOK
	status.Results = len(results)
	return results, status
}

// normalizeResults keys results by normalized info hash and fills in the
// reporting backend.
func normalizeResults(backend string, results map[string]RawResult) map[string]RawResult {
	normalized := make(map[string]RawResult, len(results))
	for key, r := range results {
		if r.InfoHash == "" {
			r.InfoHash = key
		}
		r.InfoHash = media.NormalizeInfoHash(r.InfoHash)
		if r.InfoHash == "" {
			continue
		}
		if r.Backend == "" {
			r.Backend = backend
		}
		normalized[r.InfoHash] = r
	}
	return normalized
}

func (o *Orchestrator) logTopStreams(item media.Item, streams []media.Stream) {
	top := streams
	if len(top) > topResultsLogged {
		top = top[:topResultsLogged]
	}
	for _, s := range top {
		o.logger.Debug("Ranked stream",
			zap.String("item", item.LogLabel()),
			zap.String("parsed_title", s.ParsedTitle()),
			zap.Float64("rank", s.Rank()),
			zap.String("infohash", s.InfoHash()),
			zap.String("raw_title", s.RawTitle()),
		)
	}
}

func (o *Orchestrator) notify(ctx context.Context, item media.Item, result *ScrapeResult) {
	for _, sink := range o.sinks {
		if err := sink.HandleScrape(ctx, item, result); err != nil {
			o.logger.Warn("Failed to hand off scrape result",
				zap.String("sink", fmt.Sprintf("%T", sink)),
				zap.String("item", item.LogLabel()),
				zap.Error(err),
			)
		}
	}
}
