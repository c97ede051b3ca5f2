package media

import (
	"fmt"
	"strings"
)

// Stream is a ranked candidate source for an item. It is identified by its
// info hash and is immutable once created.
type Stream struct {
	infoHash    string
	rawTitle    string
	parsedTitle string
	backend     string
	rank        float64
}

// NewStream creates a new Stream value object
func NewStream(infoHash, rawTitle, parsedTitle, backend string, rank float64) (Stream, error) {
	key := NormalizeInfoHash(infoHash)
	if key == "" {
		return Stream{}, ErrInvalidInfoHash
	}
	if rawTitle == "" {
		return Stream{}, NewValidationError("raw_title", "cannot be empty")
	}
	return Stream{
		infoHash:    key,
		rawTitle:    rawTitle,
		parsedTitle: parsedTitle,
		backend:     backend,
		rank:        rank,
	}, nil
}

// InfoHash returns the dedup key of the stream
func (s Stream) InfoHash() string {
	return s.infoHash
}

// RawTitle returns the release title as reported by the backend
func (s Stream) RawTitle() string {
	return s.rawTitle
}

// ParsedTitle returns the title extracted from the release name
func (s Stream) ParsedTitle() string {
	return s.parsedTitle
}

// Backend returns the name of the backend that reported the stream
func (s Stream) Backend() string {
	return s.backend
}

// Rank returns the score assigned by the ranker
func (s Stream) Rank() float64 {
	return s.rank
}

// String returns a short representation for logs
func (s Stream) String() string {
	return fmt.Sprintf("%s (%s, rank=%.1f)", s.rawTitle, s.infoHash, s.rank)
}

// NormalizeInfoHash lowercases and trims an info hash so keys from
// different backends compare equal.
func NormalizeInfoHash(infoHash string) string {
	return strings.ToLower(strings.TrimSpace(infoHash))
}
