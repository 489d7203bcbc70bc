// Package ingest provides the news refresh use case: fetching registered
// feeds, filtering and sanitizing their items, and storing the survivors with
// at-least-once deduplication.
package ingest

import "errors"

// Sentinel errors for ingest use case operations.
var (
	// ErrFeedFetchFailed indicates that fetching a feed from its URL failed
	// after all retries were exhausted.
	ErrFeedFetchFailed = errors.New("failed to fetch feed")

	// ErrBodyTooLarge indicates that a feed response exceeded the body size cap.
	ErrBodyTooLarge = errors.New("feed body exceeds size limit")

	// ErrInvalidURL indicates that a feed URL failed validation before fetch.
	ErrInvalidURL = errors.New("invalid feed URL")

	// ErrTooManyRedirects indicates that a fetch followed more redirects than allowed.
	ErrTooManyRedirects = errors.New("too many redirects")
)
