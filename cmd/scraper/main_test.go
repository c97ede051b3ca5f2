package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/narwhalmedia/scraper/internal/domain/media"
)

const heatStreams = `{"streams":[
 {"name":"Torrentio\n4k","title":"Heat.1995.2160p.UHD.BluRay\n👤 120 💾 21 GB","infoHash":"dd8255ecdc7ca55fb0bbf81323d87062db1f6d1c"},
 {"name":"Torrentio\n720p","title":"Heat.1995.720p.BluRay\n👤 40 💾 4 GB","infoHash":"c9e15763f722f23e98a29decdfae341b98d53056"},
 {"name":"Torrentio","title":"The.Matrix.1999.1080p\n👤 900","infoHash":"0123456789abcdef0123456789abcdef01234567"}
]}`

const heatSnapshot = `{
  "id": "7d3f1f2e-5a0b-4c1e-9a67-2b1f4f3c9e10",
  "kind": "movie",
  "title": "Heat",
  "imdb_id": "tt0113277",
  "year": 1995,
  "state": "Indexed",
  "released": true
}`

type cliEnv struct {
	dir      string
	backends string
	item     string
	requests atomic.Int32
}

func setupCLI(t *testing.T) *cliEnv {
	t.Helper()
	t.Setenv("SCRAPER_BACKENDS_FILE", "")
	t.Setenv("SCRAPER_CACHE", "none")
	t.Setenv("SCRAPER_EVENT_SINK", "none")
	t.Setenv("LOG_LEVEL", "error")

	env := &cliEnv{dir: t.TempDir()}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env.requests.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(heatStreams))
	}))
	t.Cleanup(srv.Close)

	env.backends = filepath.Join(env.dir, "backends.toml")
	toml := fmt.Sprintf(`
[[backends]]
name = "torrentio"
type = "torrentio"
enabled = true
url = %q

[[backends]]
name = "indexer"
type = "htmlindex"
enabled = false
`, srv.URL)
	require.NoError(t, os.WriteFile(env.backends, []byte(toml), 0o600))

	env.item = filepath.Join(env.dir, "heat.json")
	require.NoError(t, os.WriteFile(env.item, []byte(heatSnapshot), 0o600))
	return env
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestBackendsCommand(t *testing.T) {
	env := setupCLI(t)

	out, err := runCLI(t, "--backends", env.backends, "--json", "backends")
	require.NoError(t, err)

	var views []backendView
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	assert.Equal(t, []backendView{
		{Name: "torrentio", Initialized: true},
		{Name: "indexer", Initialized: false},
	}, views)
}

func TestFrontierCommand(t *testing.T) {
	env := setupCLI(t)

	out, err := runCLI(t, "--backends", env.backends, "frontier", env.item)
	require.NoError(t, err)
	assert.Contains(t, out, "Heat (1995)")
	assert.Zero(t, env.requests.Load(), "frontier never queries backends")
}

func TestSubmitCommandWritesSnapshot(t *testing.T) {
	env := setupCLI(t)

	out, err := runCLI(t, "--backends", env.backends, "--json", "submit", "--write", env.item)
	require.NoError(t, err)
	assert.EqualValues(t, 1, env.requests.Load())

	var printed media.Snapshot
	require.NoError(t, json.Unmarshal([]byte(out), &printed))
	assert.Len(t, printed.Streams, 2)
	assert.Equal(t, 1, printed.ScrapedTimes)

	file, err := os.Open(env.item)
	require.NoError(t, err)
	defer file.Close()
	item, err := media.DecodeSnapshot(file)
	require.NoError(t, err)
	assert.Len(t, item.Streams(), 2)
	_, scraped := item.ScrapedAt()
	assert.True(t, scraped)

	// within the base interval the item is backing off
	out, err = runCLI(t, "--backends", env.backends, "submit", env.item)
	require.NoError(t, err)
	assert.Contains(t, out, "Heat (1995)")
	assert.EqualValues(t, 1, env.requests.Load())
}

func TestSubmitCommandRejectsBadTarget(t *testing.T) {
	env := setupCLI(t)

	_, err := runCLI(t, "--backends", env.backends, "submit", "--season", "1", env.item)
	assert.Error(t, err)

	_, err = runCLI(t, "submit", filepath.Join(env.dir, "missing.json"))
	assert.ErrorContains(t, err, "open item file")
}

func TestHistoryCommandRejectsInvalidID(t *testing.T) {
	setupCLI(t)

	_, err := runCLI(t, "history", "not-a-uuid")
	assert.ErrorContains(t, err, "invalid item id")
}

func TestMigrateCommand(t *testing.T) {
	env := setupCLI(t)
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_SQLITE_PATH", filepath.Join(env.dir, "history.db"))

	out, err := runCLI(t, "migrate", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "pending 001")

	out, err = runCLI(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "Applied 3 migrations")

	out, err = runCLI(t, "migrate", "--status")
	require.NoError(t, err)
	assert.Contains(t, out, "No pending migrations.")
}
