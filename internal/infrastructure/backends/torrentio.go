package backends

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/narwhalmedia/scraper/internal/domain/media"
	"github.com/narwhalmedia/scraper/internal/scraping"
)

// ErrMissingIMDbID is returned for items the catalog has not matched to IMDb
var ErrMissingIMDbID = errors.New("item has no imdb id")

// TorrentioOptions configures a Torrentio backend
type TorrentioOptions struct {
	Name    string
	Enabled bool
	BaseURL string
	// Filter is inserted as a path segment before /stream, e.g.
	// "sort=qualitysize|qualityfilter=480p,scr,cam"
	Filter string
	HTTP   HTTPOptions
}

// Torrentio queries a Stremio addon that serves streams keyed by IMDb id.
type Torrentio struct {
	name        string
	baseURL     string
	filter      string
	http        *httpClient
	initialized bool
}

// NewTorrentio validates opts and returns the backend. A backend with
// invalid options is returned uninitialized.
func NewTorrentio(opts TorrentioOptions, logger *zap.Logger) *Torrentio {
	name := opts.Name
	if name == "" {
		name = "torrentio"
	}
	t := &Torrentio{
		name:    name,
		baseURL: strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"),
		filter:  strings.Trim(strings.TrimSpace(opts.Filter), "/"),
		http:    newHTTPClient(opts.HTTP),
	}

	switch {
	case !opts.Enabled:
	case !validBaseURL(t.baseURL):
		logger.Warn("Torrentio base URL is invalid",
			zap.String("backend", name),
			zap.String("url", opts.BaseURL),
		)
	default:
		t.initialized = true
	}
	return t
}

// Name returns the backend name
func (t *Torrentio) Name() string { return t.name }

// Initialized reports whether the backend may be queried
func (t *Torrentio) Initialized() bool { return t.initialized }

// Query fetches the streams for item
func (t *Torrentio) Query(ctx context.Context, item media.Item) (map[string]scraping.RawResult, error) {
	u, err := t.streamURL(item)
	if err != nil {
		return nil, err
	}
	body, err := t.http.get(ctx, u, "application/json")
	if err != nil {
		return nil, err
	}
	return parseTorrentio(body, t.name)
}

func (t *Torrentio) streamURL(item media.Item) (string, error) {
	imdbID := item.IMDbID()
	if imdbID == "" {
		return "", fmt.Errorf("%s: %w", item.LogLabel(), ErrMissingIMDbID)
	}

	var path string
	switch item.Kind() {
	case media.KindMovie:
		path = "movie/" + imdbID
	case media.KindShow:
		path = fmt.Sprintf("series/%s:1:1", imdbID)
	case media.KindSeason:
		season, _ := coordinates(item)
		path = fmt.Sprintf("series/%s:%d:1", imdbID, season)
	case media.KindEpisode:
		season, episode := coordinates(item)
		path = fmt.Sprintf("series/%s:%d:%d", imdbID, season, episode)
	default:
		return "", fmt.Errorf("%w: %s", media.ErrInvalidKind, item.Kind())
	}

	base := t.baseURL
	if t.filter != "" {
		base += "/" + t.filter
	}
	return base + "/stream/" + path + ".json", nil
}

type torrentioResponse struct {
	Streams []torrentioStream `json:"streams"`
}

type torrentioStream struct {
	Name          string `json:"name"`
	Title         string `json:"title"`
	InfoHash      string `json:"infoHash"`
	FileIdx       *int   `json:"fileIdx,omitempty"`
	BehaviorHints struct {
		Filename   string `json:"filename"`
		BingeGroup string `json:"bingeGroup"`
	} `json:"behaviorHints"`
}

var seedersPattern = regexp.MustCompile(`👤\s*(\d+)`)

// parseTorrentio converts an addon response into raw results keyed by the
// normalized info hash.
func parseTorrentio(body []byte, backend string) (map[string]scraping.RawResult, error) {
	var resp torrentioResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	results := make(map[string]scraping.RawResult, len(resp.Streams))
	for _, s := range resp.Streams {
		key := media.NormalizeInfoHash(s.InfoHash)
		if key == "" {
			continue
		}
		title, _, _ := strings.Cut(s.Title, "\n")
		title = strings.TrimSpace(title)
		if title == "" {
			continue
		}

		raw := scraping.RawResult{
			InfoHash:  key,
			Title:     title,
			Backend:   backend,
			SizeBytes: parseSize(s.Title),
		}
		if m := seedersPattern.FindStringSubmatch(s.Title); m != nil {
			raw.Seeders, _ = strconv.Atoi(m[1])
		}

		attrs := map[string]string{}
		if s.Name != "" {
			attrs["source"] = strings.ReplaceAll(s.Name, "\n", " ")
		}
		if s.BehaviorHints.Filename != "" {
			attrs["filename"] = s.BehaviorHints.Filename
		}
		if s.FileIdx != nil {
			attrs["file_index"] = strconv.Itoa(*s.FileIdx)
		}
		if len(attrs) > 0 {
			raw.Attributes = attrs
		}
		results[key] = raw
	}
	return results, nil
}
