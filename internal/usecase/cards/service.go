// Package cards implements the dashboard card refresh use case: for every
// tracked company and topic, the newest stored items are folded into a
// display payload and written to the org's default dashboard.
package cards

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"decks/internal/domain/entity"
	"decks/internal/observability/metrics"
	"decks/internal/repository"
)

// defaultHeadlineLimit is how many recent items a card displays.
const defaultHeadlineLimit = 5

// Result summarizes one refresh pass across all organizations.
type Result struct {
	CardsUpdated int
	Errors       []string
}

// Service rebuilds dashboard cards from the item store.
//
// A refresh never clears a card: targets with zero stored items are skipped
// so a previously populated card survives a dry spell in its feeds.
type Service struct {
	orgs  repository.OrgRepository
	items repository.ItemRepository
	cards repository.CardRepository

	headlineLimit int
	now           func() time.Time
}

// NewService creates a new cards Service with the provided repositories.
func NewService(orgs repository.OrgRepository, items repository.ItemRepository, cards repository.CardRepository) *Service {
	return &Service{
		orgs:          orgs,
		items:         items,
		cards:         cards,
		headlineLimit: defaultHeadlineLimit,
		now:           time.Now,
	}
}

// RefreshAll rebuilds the cards of every organization's default dashboard.
// Per-target failures are isolated into the result's error list; RefreshAll
// returns a non-nil error only when organizations cannot be enumerated.
func (s *Service) RefreshAll(ctx context.Context) (*Result, error) {
	logger := slog.Default()
	start := s.now()

	orgs, err := s.orgs.ListOrganizations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}

	result := &Result{}
	for _, org := range orgs {
		s.refreshOrg(ctx, org, result)
	}

	logger.Info("card refresh completed",
		slog.Int("organizations", len(orgs)),
		slog.Int("cards_updated", result.CardsUpdated),
		slog.Int("errors", len(result.Errors)),
		slog.Duration("duration", time.Since(start)),
	)

	return result, nil
}

func (s *Service) refreshOrg(ctx context.Context, org *entity.Organization, result *Result) {
	dashboard, err := s.orgs.DefaultDashboard(ctx, org.ID)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			slog.Warn("organization has no default dashboard, skipping",
				slog.Int64("org_id", org.ID))
			return
		}
		result.Errors = append(result.Errors, fmt.Sprintf("org %d: resolve dashboard: %v", org.ID, err))
		metrics.RecordCardRefreshError()
		return
	}

	companies, err := s.orgs.ListCompanies(ctx, org.ID)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("org %d: list companies: %v", org.ID, err))
		metrics.RecordCardRefreshError()
	}
	for _, company := range companies {
		updated, err := s.refreshCompanyCard(ctx, dashboard, company)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("company %q: %v", company.Name, err))
			metrics.RecordCardRefreshError()
			continue
		}
		if updated {
			result.CardsUpdated++
			metrics.RecordCardRefreshed(string(entity.CardCompetitor))
		}
	}

	topics, err := s.orgs.ListTopics(ctx, org.ID)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("org %d: list topics: %v", org.ID, err))
		metrics.RecordCardRefreshError()
	}
	for _, topic := range topics {
		updated, err := s.refreshTopicCard(ctx, dashboard, topic)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("topic %q: %v", topic.Name, err))
			metrics.RecordCardRefreshError()
			continue
		}
		if updated {
			result.CardsUpdated++
			metrics.RecordCardRefreshed(string(entity.CardIndustry))
		}
	}
}

// refreshCompanyCard rebuilds one competitor card. Reports false without
// error when the company has no stored items.
func (s *Service) refreshCompanyCard(ctx context.Context, dashboard *entity.Dashboard, company *entity.Company) (bool, error) {
	items, err := s.items.LatestForTarget(ctx, dashboard.OrgID, entity.TargetCompany, company.ID, s.headlineLimit)
	if err != nil {
		return false, fmt.Errorf("latest items: %w", err)
	}
	if len(items) == 0 {
		return false, nil
	}

	headlines, sources := buildPayload(items)
	refreshedAt := s.now()

	card := &entity.Card{
		OrgID:       dashboard.OrgID,
		DashboardID: dashboard.ID,
		Type:        entity.CardCompetitor,
		Title:       company.Name,
		Data:        entity.NewCompetitorCardData(company.Name, company.Ticker, headlines, refreshedAt),
		Sources:     sources,
		RefreshedAt: refreshedAt,
	}
	if err := s.cards.Upsert(ctx, card); err != nil {
		return false, fmt.Errorf("upsert card: %w", err)
	}
	return true, nil
}

// refreshTopicCard rebuilds one industry card. Reports false without error
// when the topic has no stored items.
func (s *Service) refreshTopicCard(ctx context.Context, dashboard *entity.Dashboard, topic *entity.Topic) (bool, error) {
	items, err := s.items.LatestForTarget(ctx, dashboard.OrgID, entity.TargetTopic, topic.ID, s.headlineLimit)
	if err != nil {
		return false, fmt.Errorf("latest items: %w", err)
	}
	if len(items) == 0 {
		return false, nil
	}

	headlines, sources := buildPayload(items)
	refreshedAt := s.now()

	card := &entity.Card{
		OrgID:       dashboard.OrgID,
		DashboardID: dashboard.ID,
		Type:        entity.CardIndustry,
		Title:       topic.Name,
		Data:        entity.NewIndustryCardData(topic.Name, headlines, refreshedAt),
		Sources:     sources,
		RefreshedAt: refreshedAt,
	}
	if err := s.cards.Upsert(ctx, card); err != nil {
		return false, fmt.Errorf("upsert card: %w", err)
	}
	return true, nil
}

// buildPayload converts items (already ordered newest first) into the
// headline list and the parallel citation list.
func buildPayload(items []*entity.Item) ([]entity.Headline, []entity.SourceRef) {
	headlines := make([]entity.Headline, 0, len(items))
	sources := make([]entity.SourceRef, 0, len(items))
	for _, item := range items {
		headlines = append(headlines, entity.Headline{
			Title: item.Title,
			URL:   item.URL,
			TS:    item.PublishedAt,
		})
		sources = append(sources, entity.SourceRef{
			Title: item.Title,
			URL:   item.URL,
		})
	}
	return headlines, sources
}
