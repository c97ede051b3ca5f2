package ranking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/narwhalmedia/scraper/internal/domain/media"
	"github.com/narwhalmedia/scraper/internal/scraping"
	"github.com/narwhalmedia/scraper/test/testutil"
)

func TestParseRelease(t *testing.T) {
	tests := []struct {
		raw  string
		want Release
	}{
		{
			raw:  "Breaking.Bad.S01E02.1080p.WEB-DL.x264",
			want: Release{Title: "breaking bad", Season: 1, Episodes: []int{2}, Resolution: "1080p"},
		},
		{
			raw:  "Breaking Bad S02 Complete 2160p",
			want: Release{Title: "breaking bad", Season: 2, Resolution: "2160p", SeasonPack: true},
		},
		{
			raw:  "Breaking Bad Season 3 720p",
			want: Release{Title: "breaking bad", Season: 3, Resolution: "720p", SeasonPack: true},
		},
		{
			raw:  "The.Office.US.3x07.HDTV",
			want: Release{Title: "the office us", Season: 3, Episodes: []int{7}},
		},
		{
			raw:  "Heat.1995.REMASTERED.1080p.BluRay",
			want: Release{Title: "heat", Year: 1995, Resolution: "1080p"},
		},
		{
			raw:  "2012.2009.4K.HDR",
			want: Release{Title: "2012", Year: 2009, Resolution: "2160p"},
		},
		{
			raw:  "Show.S01E01-E03.720p",
			want: Release{Title: "show", Season: 1, Episodes: []int{1, 2, 3}, Resolution: "720p"},
		},
		{
			raw:  "Dune Part Two 2024 HDCAM",
			want: Release{Title: "dune part two", Year: 2024, Trash: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRelease(tt.raw))
		})
	}
}

func rawResults(results ...scraping.RawResult) map[string]scraping.RawResult {
	out := make(map[string]scraping.RawResult, len(results))
	for _, r := range results {
		out[r.InfoHash] = r
	}
	return out
}

func TestRankMovie(t *testing.T) {
	ranker := NewDefaultRanker(Config{RejectTrash: true}, zap.NewNop())
	movie := testutil.CreateTestMovie("Heat")

	streams, err := ranker.Rank(context.Background(), movie, rawResults(
		scraping.RawResult{InfoHash: testutil.TestInfoHash(1), Title: "Heat.1995.720p.BluRay", Seeders: 50},
		scraping.RawResult{InfoHash: testutil.TestInfoHash(2), Title: "Heat.1995.2160p.UHD", Seeders: 50},
		scraping.RawResult{InfoHash: testutil.TestInfoHash(3), Title: "Heat.1995.CAM", Seeders: 900},
		scraping.RawResult{InfoHash: testutil.TestInfoHash(4), Title: "The.Matrix.1999.1080p", Seeders: 900},
		scraping.RawResult{InfoHash: "not-a-hash", Title: "Heat.1995.1080p", Seeders: 900},
	), false)
	require.NoError(t, err)

	require.Len(t, streams, 2)
	assert.Equal(t, testutil.TestInfoHash(2), streams[0].InfoHash())
	assert.Equal(t, "heat", streams[0].ParsedTitle())
	assert.Greater(t, streams[0].Rank(), streams[1].Rank())
}

func TestRankMovieRejectsWrongYear(t *testing.T) {
	ranker := NewDefaultRanker(Config{}, zap.NewNop())
	movie, err := media.NewMovie("Dune", "", 2021)
	require.NoError(t, err)

	streams, err := ranker.Rank(context.Background(), movie, rawResults(
		scraping.RawResult{InfoHash: testutil.TestInfoHash(1), Title: "Dune.1984.1080p"},
		scraping.RawResult{InfoHash: testutil.TestInfoHash(2), Title: "Dune.2021.1080p"},
	), false)
	require.NoError(t, err)
	require.Len(t, streams, 1)
	assert.Equal(t, "Dune.2021.1080p", streams[0].RawTitle())
}

func TestRankEpisode(t *testing.T) {
	ranker := NewDefaultRanker(Config{}, zap.NewNop())
	show := testutil.CreateTestShow("Breaking Bad", testutil.SeasonFixture{
		Number: 1, Released: true, Episodes: testutil.ReleasedEpisodes(3),
	})
	season := show.Children()[0]
	episode := season.Children()[1]

	results := rawResults(
		scraping.RawResult{InfoHash: testutil.TestInfoHash(1), Title: "Breaking.Bad.S01E02.1080p"},
		scraping.RawResult{InfoHash: testutil.TestInfoHash(2), Title: "Breaking.Bad.S01E03.1080p"},
		scraping.RawResult{InfoHash: testutil.TestInfoHash(3), Title: "Breaking.Bad.S01.720p"},
		scraping.RawResult{InfoHash: testutil.TestInfoHash(4), Title: "Breaking.Bad.S02E02.1080p"},
	)

	streams, err := ranker.Rank(context.Background(), episode, results, false)
	require.NoError(t, err)
	got := make([]string, 0, len(streams))
	for _, s := range streams {
		got = append(got, s.RawTitle())
	}
	assert.Equal(t, []string{"Breaking.Bad.S01E02.1080p", "Breaking.Bad.S01.720p"}, got)

	streams, err = ranker.Rank(context.Background(), season, results, false)
	require.NoError(t, err)
	require.Len(t, streams, 1)
	assert.Equal(t, "Breaking.Bad.S01.720p", streams[0].RawTitle())
}

func TestRankTieBreaksOnInfoHash(t *testing.T) {
	ranker := NewDefaultRanker(Config{}, zap.NewNop())
	movie := testutil.CreateTestMovie("Heat")

	streams, err := ranker.Rank(context.Background(), movie, rawResults(
		scraping.RawResult{InfoHash: testutil.TestInfoHash(9), Title: "Heat.1995.1080p"},
		scraping.RawResult{InfoHash: testutil.TestInfoHash(3), Title: "Heat.1995.1080p"},
	), false)
	require.NoError(t, err)
	require.Len(t, streams, 2)
	assert.Equal(t, testutil.TestInfoHash(3), streams[0].InfoHash())
}

func TestRankVerboseLogsRejections(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ranker := NewDefaultRanker(Config{}, zap.New(core))
	movie := testutil.CreateTestMovie("Heat")
	results := rawResults(scraping.RawResult{InfoHash: "zz", Title: "Heat.1995"})

	_, err := ranker.Rank(context.Background(), movie, results, false)
	require.NoError(t, err)
	assert.Zero(t, logs.Len())

	_, err = ranker.Rank(context.Background(), movie, results, true)
	require.NoError(t, err)
	entries := logs.FilterMessage("Rejected result").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "invalid info hash", entries[0].ContextMap()["reason"])
}

func TestRankHonoursContext(t *testing.T) {
	ranker := NewDefaultRanker(Config{}, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ranker.Rank(ctx, testutil.CreateTestMovie("Heat"), rawResults(
		scraping.RawResult{InfoHash: testutil.TestInfoHash(1), Title: "Heat.1995.1080p"},
	), false)
	assert.ErrorIs(t, err, context.Canceled)
}
