// Package archive keeps the merged raw results of every scrape for later
// inspection.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/narwhalmedia/scraper/internal/domain/media"
	"github.com/narwhalmedia/scraper/internal/scraping"
)

// Record is the archived form of one scrape
type Record struct {
	ItemID     uuid.UUID                     `json:"item_id"`
	Kind       media.Kind                    `json:"kind"`
	Label      string                        `json:"label"`
	IMDbID     string                        `json:"imdb_id,omitempty"`
	StartedAt  time.Time                     `json:"started_at"`
	FinishedAt time.Time                     `json:"finished_at"`
	Backends   []BackendRecord               `json:"backends"`
	Results    map[string]scraping.RawResult `json:"results"`
	Ranked     []string                      `json:"ranked"`
}

// BackendRecord is the archived status of one backend
type BackendRecord struct {
	Backend string `json:"backend"`
	Outcome string `json:"outcome"`
	Results int    `json:"results"`
	Error   string `json:"error,omitempty"`
}

// Archiver writes a Record for every completed scrape
type Archiver struct {
	storage Storage
}

// NewArchiver creates an archiver writing to storage
func NewArchiver(storage Storage) *Archiver {
	return &Archiver{storage: storage}
}

// Key returns where the record for item finishing at finished is stored
func Key(item media.Item, finished time.Time) string {
	return fmt.Sprintf("%s/%s/%s.json", item.Kind(), item.ID(), finished.UTC().Format("20060102T150405.000000000Z"))
}

// HandleScrape implements scraping.ResultSink
func (a *Archiver) HandleScrape(ctx context.Context, item media.Item, result *scraping.ScrapeResult) error {
	record := Record{
		ItemID:     item.ID(),
		Kind:       item.Kind(),
		Label:      item.LogLabel(),
		IMDbID:     item.IMDbID(),
		StartedAt:  result.StartedAt,
		FinishedAt: result.FinishedAt,
		Backends:   make([]BackendRecord, 0, len(result.Statuses)),
		Results:    result.Merged,
		Ranked:     make([]string, 0, len(result.Streams)),
	}
	for _, status := range result.Statuses {
		br := BackendRecord{Backend: status.Backend, Outcome: string(status.Outcome), Results: status.Results}
		if status.Err != nil {
			br.Error = status.Err.Error()
		}
		record.Backends = append(record.Backends, br)
	}
	for _, stream := range result.Streams {
		record.Ranked = append(record.Ranked, stream.InfoHash())
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal archive record: %w", err)
	}
	return a.storage.Store(ctx, Key(item, result.FinishedAt), bytes.NewReader(data))
}

// Load reads a previously archived record
func (a *Archiver) Load(ctx context.Context, key string) (*Record, error) {
	body, err := a.storage.Retrieve(ctx, key)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var record Record
	if err := json.NewDecoder(body).Decode(&record); err != nil {
		return nil, fmt.Errorf("failed to decode archive record %s: %w", key, err)
	}
	return &record, nil
}
