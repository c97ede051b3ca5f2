// Package ranking turns merged backend results into streams ordered by score.
package ranking

import (
	"context"
	"math"
	"sort"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/anacrolix/torrent/metainfo"
	"go.uber.org/zap"

	"github.com/narwhalmedia/scraper/internal/domain/media"
	"github.com/narwhalmedia/scraper/internal/scraping"
)

// DefaultMinSimilarity is the title similarity below which a release is
// considered a different title.
const DefaultMinSimilarity = 0.85

var resolutionScores = map[string]float64{
	"2160p": 30,
	"1080p": 25,
	"720p":  15,
	"576p":  8,
	"480p":  5,
}

// Config tunes the default ranker
type Config struct {
	MinSimilarity float64
	// RejectTrash drops cam and telesync releases
	RejectTrash bool
}

// DefaultRanker scores releases by title similarity, resolution and seeders.
type DefaultRanker struct {
	cfg    Config
	metric *metrics.JaroWinkler
	logger *zap.Logger
}

var _ scraping.Ranker = (*DefaultRanker)(nil)

// NewDefaultRanker creates a ranker
func NewDefaultRanker(cfg Config, logger *zap.Logger) *DefaultRanker {
	if cfg.MinSimilarity <= 0 || cfg.MinSimilarity > 1 {
		cfg.MinSimilarity = DefaultMinSimilarity
	}
	metric := metrics.NewJaroWinkler()
	metric.CaseSensitive = false
	return &DefaultRanker{
		cfg:    cfg,
		metric: metric,
		logger: logger.Named("ranker"),
	}
}

// Rank scores every result that matches item and returns them by descending
// rank, ties broken by info hash.
func (r *DefaultRanker) Rank(ctx context.Context, item media.Item, results map[string]scraping.RawResult, verbose bool) ([]media.Stream, error) {
	wanted := normalizeTitle(item.Title())
	streams := make([]media.Stream, 0, len(results))

	for key, res := range results {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var hash metainfo.Hash
		if err := hash.FromHexString(res.InfoHash); err != nil {
			r.reject(verbose, item, key, res.Title, "invalid info hash")
			continue
		}

		rel := ParseRelease(res.Title)
		if r.cfg.RejectTrash && rel.Trash {
			r.reject(verbose, item, key, res.Title, "low quality release")
			continue
		}

		similarity := strutil.Similarity(normalizeTitle(rel.Title), wanted, r.metric)
		if similarity < r.cfg.MinSimilarity {
			r.reject(verbose, item, key, res.Title, "title mismatch")
			continue
		}
		if reason, ok := matches(item, rel); !ok {
			r.reject(verbose, item, key, res.Title, reason)
			continue
		}

		stream, err := media.NewStream(hash.HexString(), res.Title, rel.Title, res.Backend, score(similarity, rel, res.Seeders))
		if err != nil {
			r.reject(verbose, item, key, res.Title, err.Error())
			continue
		}
		streams = append(streams, stream)
	}

	sort.Slice(streams, func(i, j int) bool {
		if streams[i].Rank() != streams[j].Rank() {
			return streams[i].Rank() > streams[j].Rank()
		}
		return streams[i].InfoHash() < streams[j].InfoHash()
	})
	return streams, nil
}

func (r *DefaultRanker) reject(verbose bool, item media.Item, key, title, reason string) {
	if !verbose {
		return
	}
	r.logger.Debug("Rejected result",
		zap.String("item", item.LogLabel()),
		zap.String("infohash", key),
		zap.String("raw_title", title),
		zap.String("reason", reason),
	)
}

// matches checks the release against the season and episode of item
func matches(item media.Item, rel Release) (string, bool) {
	switch v := item.(type) {
	case *media.Movie:
		if rel.HasSeason() || len(rel.Episodes) > 0 {
			return "episodic release for a movie", false
		}
		if v.Year() > 0 && rel.Year > 0 && absInt(v.Year()-rel.Year) > 1 {
			return "year mismatch", false
		}
	case *media.Show:
		if len(rel.Episodes) > 0 {
			return "single episode for a show", false
		}
	case *media.Season:
		if rel.Season != v.Number() || len(rel.Episodes) > 0 {
			return "wrong season", false
		}
	case *media.Episode:
		if rel.Season != v.Season().Number() {
			return "wrong season", false
		}
		if len(rel.Episodes) > 0 && !rel.HasEpisode(v.Number()) {
			return "wrong episode", false
		}
	}
	return "", true
}

func score(similarity float64, rel Release, seeders int) float64 {
	s := similarity * 100
	s += resolutionScores[rel.Resolution]
	if seeders > 0 {
		s += math.Log1p(float64(seeders)) * 5
	}
	if rel.Trash {
		s -= 50
	}
	return math.Round(s*100) / 100
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
