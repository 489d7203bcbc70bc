// Package parser provides RSS/Atom feed parsing using the gofeed library.
package parser

import (
	"log/slog"
	"strings"
	"time"

	"decks/internal/domain/entity"
	"decks/internal/usecase/ingest"

	"github.com/mmcdole/gofeed"
)

// RSSParser implements ingest.FeedParser on top of gofeed.
//
// Contract: a document that cannot be parsed as RSS/Atom/JSON feed yields
// zero items, not an error. Entries missing a title, link or publication
// date string are dropped individually; a date string that fails to parse
// falls back to the current time instead of rejecting the entry.
type RSSParser struct{}

func NewRSSParser() *RSSParser {
	return &RSSParser{}
}

func (p *RSSParser) Parse(body string) []ingest.ParsedItem {
	fp := gofeed.NewParser()
	feed, err := fp.ParseString(body)
	if err != nil {
		slog.Warn("feed parse failed, treating as empty",
			slog.String("error", err.Error()))
		return nil
	}

	items := make([]ingest.ParsedItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		title := strings.TrimSpace(it.Title)
		link := strings.TrimSpace(it.Link)
		if title == "" || link == "" || it.Published == "" {
			continue
		}

		publishedAt := time.Now()
		if it.PublishedParsed != nil {
			publishedAt = *it.PublishedParsed
		}

		items = append(items, ingest.ParsedItem{
			Raw: entity.RawFeedItem{
				Title:       title,
				Link:        link,
				PubDate:     it.Published,
				Description: it.Description,
				GUID:        it.GUID,
			},
			PublishedAt: publishedAt,
		})
	}

	return items
}
