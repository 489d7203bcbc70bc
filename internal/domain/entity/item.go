package entity

import "time"

// RawFeedItem is the transient parse result of a single feed entry, before
// sanitization and deduplication. It is kept verbatim in the item's raw audit
// column but never persisted on its own.
type RawFeedItem struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	PubDate     string `json:"pubDate"`
	Description string `json:"description,omitempty"`
	GUID        string `json:"guid,omitempty"`
}

// Item is one normalized, deduplicated unit of ingested content (a news
// headline) stored against a company or topic under an organization.
//
// Uniqueness invariant: exactly one stored row per
// (org, company/topic, source kind, source id); duplicate arrivals are
// absorbed by ignore-on-conflict upserts.
type Item struct {
	ID          int64
	OrgID       int64
	CompanyID   *int64
	TopicID     *int64
	SourceKind  string
	SourceID    string
	Title       string
	URL         string
	PublishedAt time.Time
	Summary     *string
	Raw         RawFeedItem
	CreatedAt   time.Time
}
