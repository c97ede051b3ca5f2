// Package backends holds the concrete discovery backends queried by the
// scrape orchestrator.
package backends

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/narwhalmedia/scraper/internal/domain/media"
)

const (
	defaultTimeout   = 15 * time.Second
	defaultUserAgent = "scraper/1.0"
	maxBodyBytes     = 8 << 20
)

// HTTPStatusError reports a non-2xx response from a backend.
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
}

// HTTPOptions are the transport settings shared by every HTTP backend.
type HTTPOptions struct {
	Timeout time.Duration
	// RatePerSecond of zero disables rate limiting
	RatePerSecond float64
	Burst         int
	UserAgent     string
}

type httpClient struct {
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
}

func newHTTPClient(opts HTTPOptions) *httpClient {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RatePerSecond > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), burst)
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &httpClient{
		client:    &http.Client{Timeout: timeout},
		limiter:   limiter,
		userAgent: userAgent,
	}
}

// get waits for a rate limit token and returns the response body.
func (c *httpClient) get(ctx context.Context, rawURL, accept string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPStatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return body, nil
}

// validBaseURL reports whether raw is an absolute http(s) URL.
func validBaseURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// coordinates returns the season and episode numbers addressed by item, zero
// when not applicable.
func coordinates(item media.Item) (season, episode int) {
	switch v := item.(type) {
	case *media.Season:
		return v.Number(), 0
	case *media.Episode:
		return v.Season().Number(), v.Number()
	}
	return 0, 0
}

var sizePattern = regexp.MustCompile(`(?i)([\d.,]+)\s*(TB|GB|MB|KB|TiB|GiB|MiB|KiB)`)

// parseSize converts a human readable size such as "1.4 GB" to bytes.
func parseSize(s string) int64 {
	m := sizePattern.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return 0
	}
	var unit float64
	switch strings.ToUpper(m[2]) {
	case "TB", "TIB":
		unit = 1 << 40
	case "GB", "GIB":
		unit = 1 << 30
	case "MB", "MIB":
		unit = 1 << 20
	default:
		unit = 1 << 10
	}
	return int64(value * unit)
}

var digits = regexp.MustCompile(`\d+`)

func firstInt(s string) int {
	m := digits.FindString(strings.ReplaceAll(s, ",", ""))
	if m == "" {
		return 0
	}
	n, _ := strconv.Atoi(m)
	return n
}
