package ingest

import (
	"context"
	"time"

	"decks/internal/domain/entity"
)

// ParsedItem is one feed entry as produced by the parser, before
// sanitization, window filtering and deduplication.
type ParsedItem struct {
	Raw         entity.RawFeedItem
	PublishedAt time.Time
}

// FeedParser turns a raw feed body into entries. Implementations degrade to
// an empty slice on malformed input instead of failing the feed: a broken
// document is treated the same as a feed with nothing new.
type FeedParser interface {
	Parse(body string) []ParsedItem
}

// BodyFetcher retrieves the raw body of a feed URL.
type BodyFetcher interface {
	FetchBody(ctx context.Context, url string) (string, error)
}
