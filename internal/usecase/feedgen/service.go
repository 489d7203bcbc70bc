// Package feedgen auto-generates news feeds for tracked targets: a Google
// News RSS search URL is derived from the target's identifying terms and
// registered as an active feed.
package feedgen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"decks/internal/domain/entity"
	"decks/internal/repository"
)

const googleNewsBase = "https://news.google.com/rss/search"

// ErrFeedExists is returned when the target already has an active news feed.
var ErrFeedExists = errors.New("feed already exists for target")

// Service derives and registers news feeds for companies and topics.
type Service struct {
	orgs  repository.OrgRepository
	feeds repository.FeedRepository
}

// NewService creates a new feedgen Service with the provided repositories.
func NewService(orgs repository.OrgRepository, feeds repository.FeedRepository) *Service {
	return &Service{orgs: orgs, feeds: feeds}
}

// Generate builds a Google News search feed for the target and persists it.
//
// Returns entity.ErrInvalidInput for an unknown target type,
// entity.ErrNotFound when the target does not exist under the organization,
// and ErrFeedExists when an active news feed is already registered.
func (s *Service) Generate(ctx context.Context, orgID int64, target entity.TargetType, targetID int64) (*entity.Feed, error) {
	if !target.Valid() {
		return nil, fmt.Errorf("%w: target type must be company or topic", entity.ErrInvalidInput)
	}

	exists, err := s.feeds.ExistsForTarget(ctx, orgID, target, targetID)
	if err != nil {
		return nil, fmt.Errorf("check existing feed: %w", err)
	}
	if exists {
		return nil, ErrFeedExists
	}

	feed := &entity.Feed{
		OrgID:  orgID,
		Kind:   "news",
		Active: true,
	}

	switch target {
	case entity.TargetCompany:
		company, err := s.orgs.GetCompany(ctx, orgID, targetID)
		if err != nil {
			return nil, err
		}
		feed.URL = searchFeedURL(companySearchTerms(company))
		feed.CompanyID = &targetID
	case entity.TargetTopic:
		topic, err := s.orgs.GetTopic(ctx, orgID, targetID)
		if err != nil {
			return nil, err
		}
		feed.URL = searchFeedURL(topic.Queries)
		feed.TopicID = &targetID
	}

	if err := s.feeds.Create(ctx, feed); err != nil {
		return nil, fmt.Errorf("create feed: %w", err)
	}

	slog.Info("feed auto-generated",
		slog.Int64("feed_id", feed.ID),
		slog.String("target_type", string(target)),
		slog.Int64("target_id", targetID),
		slog.String("url", feed.URL),
	)

	return feed, nil
}

// companySearchTerms builds the search terms for a company: quoted name,
// optional site: restriction, quoted ticker and aliases.
func companySearchTerms(company *entity.Company) []string {
	terms := []string{fmt.Sprintf("%q", company.Name)}
	if company.Domain != nil && *company.Domain != "" {
		terms = append(terms, "site:"+*company.Domain)
	}
	if company.Ticker != nil && *company.Ticker != "" {
		terms = append(terms, fmt.Sprintf("%q", *company.Ticker))
	}
	for _, alias := range company.Aliases {
		if alias != "" {
			terms = append(terms, fmt.Sprintf("%q", alias))
		}
	}
	return terms
}

// searchFeedURL assembles the Google News RSS search URL for the terms,
// OR-joined and query-escaped, with the US English locale parameters.
func searchFeedURL(terms []string) string {
	query := strings.Join(terms, " OR ")
	return googleNewsBase + "?q=" + url.QueryEscape(query) + "&hl=en-US&gl=US&ceid=US:en"
}
