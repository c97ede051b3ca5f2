package backends

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/narwhalmedia/scraper/internal/domain/media"
	"github.com/narwhalmedia/scraper/test/testutil"
)

const torrentioBody = `{"streams":[
 {"name":"Torrentio\n4k","title":"The.Shawshank.Redemption.1994.2160p.UHD.BluRay.x265\n👤 412 💾 18.3 GB ⚙️ ThePirateBay","infoHash":"DD8255ECDC7CA55FB0BBF81323D87062DB1F6D1C","fileIdx":0,"behaviorHints":{"filename":"Shawshank.mkv"}},
 {"name":"Torrentio\n1080p","title":"The Shawshank Redemption (1994) 1080p\n👤 37 💾 2.1 GB","infoHash":"c9e15763f722f23e98a29decdfae341b98d53056"},
 {"name":"Torrentio","title":"missing hash","infoHash":""}
]}`

func TestTorrentioQuery(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(torrentioBody))
	}))
	defer srv.Close()

	backend := NewTorrentio(TorrentioOptions{
		Name:    "torrentio",
		Enabled: true,
		BaseURL: srv.URL + "/",
		Filter:  "sort=qualitysize",
	}, zaptest.NewLogger(t))
	require.True(t, backend.Initialized())

	results, err := backend.Query(context.Background(), testutil.CreateTestMovie("The Shawshank Redemption"))
	require.NoError(t, err)

	assert.Equal(t, "/sort=qualitysize/stream/movie/tt0111161.json", gotPath)
	require.Len(t, results, 2)

	uhd := results["dd8255ecdc7ca55fb0bbf81323d87062db1f6d1c"]
	assert.Equal(t, "The.Shawshank.Redemption.1994.2160p.UHD.BluRay.x265", uhd.Title)
	assert.Equal(t, 412, uhd.Seeders)
	assert.Equal(t, "torrentio", uhd.Backend)
	assert.Equal(t, "Shawshank.mkv", uhd.Attributes["filename"])
	assert.Equal(t, "0", uhd.Attributes["file_index"])
	assert.InDelta(t, 18.3*(1<<30), float64(uhd.SizeBytes), 1<<20)

	assert.Equal(t, 37, results["c9e15763f722f23e98a29decdfae341b98d53056"].Seeders)
}

func TestTorrentioStreamURL(t *testing.T) {
	backend := NewTorrentio(TorrentioOptions{Enabled: true, BaseURL: "https://torrentio.example"}, zap.NewNop())
	show := testutil.CreateTestShow("Breaking Bad", testutil.SeasonFixture{
		Number: 2, Released: true, Episodes: testutil.ReleasedEpisodes(5),
	})
	season := show.Seasons()[0]

	tests := []struct {
		name string
		item media.Item
		want string
	}{
		{"show", show, "https://torrentio.example/stream/series/tt0903747:1:1.json"},
		{"season", season, "https://torrentio.example/stream/series/tt0903747:2:1.json"},
		{"episode", season.Episodes()[4], "https://torrentio.example/stream/series/tt0903747:2:5.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := backend.streamURL(tt.item)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, "torrentio", backend.Name())
}

func TestTorrentioMissingIMDbID(t *testing.T) {
	backend := NewTorrentio(TorrentioOptions{Enabled: true, BaseURL: "https://torrentio.example"}, zap.NewNop())
	movie, err := media.NewMovie("Unmatched", "", 2001)
	require.NoError(t, err)

	_, err = backend.Query(context.Background(), movie)
	assert.ErrorIs(t, err, ErrMissingIMDbID)
}

func TestTorrentioInitialization(t *testing.T) {
	assert.False(t, NewTorrentio(TorrentioOptions{Enabled: false, BaseURL: "https://ok.example"}, zap.NewNop()).Initialized())
	assert.False(t, NewTorrentio(TorrentioOptions{Enabled: true, BaseURL: "not a url"}, zap.NewNop()).Initialized())
	assert.False(t, NewTorrentio(TorrentioOptions{Enabled: true, BaseURL: "ftp://ok.example"}, zap.NewNop()).Initialized())
}

func TestTorrentioHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	backend := NewTorrentio(TorrentioOptions{Enabled: true, BaseURL: srv.URL}, zap.NewNop())
	_, err := backend.Query(context.Background(), testutil.CreateTestMovie("The Shawshank Redemption"))

	var statusErr *HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
}

func TestParseTorrentioInvalidJSON(t *testing.T) {
	_, err := parseTorrentio([]byte("<html>"), "torrentio")
	assert.ErrorContains(t, err, "decoding response")
}
