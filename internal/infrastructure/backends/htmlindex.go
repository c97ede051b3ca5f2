package backends

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/anacrolix/torrent/metainfo"
	"go.uber.org/zap"

	"github.com/narwhalmedia/scraper/internal/domain/media"
	"github.com/narwhalmedia/scraper/internal/scraping"
)

const queryPlaceholder = "{query}"

// Selectors locate result rows and their fields on a search page. Title,
// Seeders and Size are evaluated relative to the row.
type Selectors struct {
	Row     string
	Title   string
	Magnet  string
	Seeders string
	Size    string
}

// HTMLIndexOptions configures an HTML indexer backend
type HTMLIndexOptions struct {
	Name    string
	Enabled bool
	// SearchURL must contain the {query} placeholder
	SearchURL string
	Selectors Selectors
	HTTP      HTTPOptions
}

// HTMLIndex scrapes a torrent indexer's search result page.
type HTMLIndex struct {
	name        string
	searchURL   string
	selectors   Selectors
	http        *httpClient
	logger      *zap.Logger
	initialized bool
}

// NewHTMLIndex validates opts and returns the backend. A backend with
// invalid options is returned uninitialized.
func NewHTMLIndex(opts HTMLIndexOptions, logger *zap.Logger) *HTMLIndex {
	h := &HTMLIndex{
		name:      opts.Name,
		searchURL: strings.TrimSpace(opts.SearchURL),
		selectors: opts.Selectors,
		http:      newHTTPClient(opts.HTTP),
		logger:    logger,
	}

	if !opts.Enabled {
		return h
	}
	if err := h.validate(); err != nil {
		logger.Warn("HTML indexer is not configured correctly",
			zap.String("backend", opts.Name),
			zap.Error(err),
		)
		return h
	}
	h.initialized = true
	return h
}

func (h *HTMLIndex) validate() error {
	if h.name == "" {
		return fmt.Errorf("name is required")
	}
	if !strings.Contains(h.searchURL, queryPlaceholder) {
		return fmt.Errorf("search url must contain %s", queryPlaceholder)
	}
	if !validBaseURL(strings.ReplaceAll(h.searchURL, queryPlaceholder, "q")) {
		return fmt.Errorf("search url %q is not an absolute http url", h.searchURL)
	}
	if h.selectors.Row == "" || h.selectors.Magnet == "" {
		return fmt.Errorf("row and magnet selectors are required")
	}
	return nil
}

// Name returns the backend name
func (h *HTMLIndex) Name() string { return h.name }

// Initialized reports whether the backend may be queried
func (h *HTMLIndex) Initialized() bool { return h.initialized }

// Query searches the indexer for item
func (h *HTMLIndex) Query(ctx context.Context, item media.Item) (map[string]scraping.RawResult, error) {
	u := strings.ReplaceAll(h.searchURL, queryPlaceholder, url.QueryEscape(searchQuery(item)))
	body, err := h.http.get(ctx, u, "text/html")
	if err != nil {
		return nil, err
	}
	return h.parse(body)
}

// searchQuery renders the free text query for item, e.g. "Fargo S02E05"
func searchQuery(item media.Item) string {
	season, episode := coordinates(item)
	switch item.Kind() {
	case media.KindMovie:
		if m, ok := item.(*media.Movie); ok && m.Year() > 0 {
			return fmt.Sprintf("%s %d", item.Title(), m.Year())
		}
	case media.KindSeason:
		return fmt.Sprintf("%s S%02d", item.Title(), season)
	case media.KindEpisode:
		return fmt.Sprintf("%s S%02dE%02d", item.Title(), season, episode)
	}
	return item.Title()
}

func (h *HTMLIndex) parse(body []byte) (map[string]scraping.RawResult, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}

	results := make(map[string]scraping.RawResult)
	doc.Find(h.selectors.Row).Each(func(_ int, row *goquery.Selection) {
		href, ok := row.Find(h.selectors.Magnet).First().Attr("href")
		if !ok {
			return
		}
		magnet, err := metainfo.ParseMagnetUri(strings.TrimSpace(href))
		if err != nil {
			h.logger.Debug("Skipping row with invalid magnet",
				zap.String("backend", h.name),
				zap.Error(err),
			)
			return
		}

		title := magnet.DisplayName
		if h.selectors.Title != "" {
			if text := normSpace(row.Find(h.selectors.Title).First().Text()); text != "" {
				title = text
			}
		}
		if title == "" {
			return
		}

		key := magnet.InfoHash.HexString()
		raw := scraping.RawResult{
			InfoHash: key,
			Title:    title,
			Backend:  h.name,
			Magnet:   href,
		}
		if h.selectors.Seeders != "" {
			raw.Seeders = firstInt(row.Find(h.selectors.Seeders).First().Text())
		}
		if h.selectors.Size != "" {
			raw.SizeBytes = parseSize(row.Find(h.selectors.Size).First().Text())
		}
		results[key] = raw
	})
	return results, nil
}

func normSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
