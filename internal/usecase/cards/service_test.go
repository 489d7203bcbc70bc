package cards_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"decks/internal/domain/entity"
	cardsUC "decks/internal/usecase/cards"
)

/* ───────── モック実装 ───────── */

// stubOrgRepo はOrgRepositoryのモック実装
type stubOrgRepo struct {
	orgs      []*entity.Organization
	dashboard *entity.Dashboard
	companies []*entity.Company
	topics    []*entity.Topic

	listOrgsErr  error
	dashboardErr error
	companiesErr error
}

func (s *stubOrgRepo) ListOrganizations(_ context.Context) ([]*entity.Organization, error) {
	return s.orgs, s.listOrgsErr
}

func (s *stubOrgRepo) DefaultDashboard(_ context.Context, _ int64) (*entity.Dashboard, error) {
	if s.dashboardErr != nil {
		return nil, s.dashboardErr
	}
	return s.dashboard, nil
}

func (s *stubOrgRepo) ListCompanies(_ context.Context, _ int64) ([]*entity.Company, error) {
	return s.companies, s.companiesErr
}

func (s *stubOrgRepo) ListTopics(_ context.Context, _ int64) ([]*entity.Topic, error) {
	return s.topics, nil
}

func (s *stubOrgRepo) GetCompany(_ context.Context, _, _ int64) (*entity.Company, error) {
	return nil, nil
}
func (s *stubOrgRepo) GetTopic(_ context.Context, _, _ int64) (*entity.Topic, error) {
	return nil, nil
}

// stubItemRepo はItemRepositoryのモック実装。ターゲットごとの項目を返す。
type stubItemRepo struct {
	byCompany map[int64][]*entity.Item
	byTopic   map[int64][]*entity.Item
	latestErr error
	gotLimit  int
}

func (s *stubItemRepo) LatestForTarget(_ context.Context, _ int64, target entity.TargetType, targetID int64, limit int) ([]*entity.Item, error) {
	s.gotLimit = limit
	if s.latestErr != nil {
		return nil, s.latestErr
	}
	if target == entity.TargetCompany {
		return s.byCompany[targetID], nil
	}
	return s.byTopic[targetID], nil
}

func (s *stubItemRepo) Upsert(_ context.Context, _ *entity.Item) (bool, error) {
	return false, nil
}
func (s *stubItemRepo) CountForOrg(_ context.Context, _ int64) (int64, error) {
	return 0, nil
}

// stubCardRepo はCardRepositoryのモック実装
type stubCardRepo struct {
	upserted  []*entity.Card
	upsertErr error
}

func (s *stubCardRepo) Upsert(_ context.Context, card *entity.Card) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.upserted = append(s.upserted, card)
	return nil
}

func (s *stubCardRepo) ListForDashboard(_ context.Context, _, _ int64) ([]*entity.Card, error) {
	return nil, nil
}

/* ───────── ヘルパ ───────── */

func newsItem(title, url string, publishedAt time.Time) *entity.Item {
	return &entity.Item{
		Title:       title,
		URL:         url,
		PublishedAt: publishedAt,
	}
}

func baseOrgRepo() *stubOrgRepo {
	return &stubOrgRepo{
		orgs:      []*entity.Organization{{ID: 10, Name: "Acme Corp"}},
		dashboard: &entity.Dashboard{ID: 7, OrgID: 10, IsDefault: true},
	}
}

/* ───────── テスト ───────── */

func TestRefreshAll_BuildsCompetitorCard(t *testing.T) {
	orgRepo := baseOrgRepo()
	ticker := "STRP"
	orgRepo.companies = []*entity.Company{{ID: 100, OrgID: 10, Name: "Stripe", Ticker: &ticker}}

	newer := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	older := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	itemRepo := &stubItemRepo{byCompany: map[int64][]*entity.Item{
		100: {
			newsItem("Stripe launches new billing product", "https://example.com/1", newer),
			newsItem("Stripe expands into Brazil market", "https://example.com/2", older),
		},
	}}
	cardRepo := &stubCardRepo{}

	svc := cardsUC.NewService(orgRepo, itemRepo, cardRepo)
	result, err := svc.RefreshAll(context.Background())
	if err != nil {
		t.Fatalf("RefreshAll err=%v", err)
	}

	if result.CardsUpdated != 1 || len(result.Errors) != 0 {
		t.Fatalf("expected 1 card updated without errors, got %d updated, errors %v",
			result.CardsUpdated, result.Errors)
	}
	if itemRepo.gotLimit != 5 {
		t.Errorf("expected headline limit 5, got %d", itemRepo.gotLimit)
	}

	card := cardRepo.upserted[0]
	if card.OrgID != 10 || card.DashboardID != 7 {
		t.Errorf("card not scoped to default dashboard: %+v", card)
	}
	if card.Type != entity.CardCompetitor || card.Title != "Stripe" {
		t.Errorf("unexpected card identity: type=%s title=%q", card.Type, card.Title)
	}

	data, ok := card.Data.(entity.CompetitorCardData)
	if !ok {
		t.Fatalf("expected CompetitorCardData, got %T", card.Data)
	}
	if data.Competitor != "Stripe" || data.Ticker == nil || *data.Ticker != "STRP" {
		t.Errorf("unexpected payload fields: %+v", data)
	}
	if len(data.Headlines) != 2 || !data.Headlines[0].TS.After(data.Headlines[1].TS) {
		t.Errorf("expected 2 headlines newest first, got %+v", data.Headlines)
	}
	if len(card.Sources) != 2 || card.Sources[0].URL != "https://example.com/1" {
		t.Errorf("unexpected source list: %+v", card.Sources)
	}
}

func TestRefreshAll_BuildsIndustryCard(t *testing.T) {
	orgRepo := baseOrgRepo()
	orgRepo.topics = []*entity.Topic{{ID: 200, OrgID: 10, Name: "Payments infrastructure"}}

	itemRepo := &stubItemRepo{byTopic: map[int64][]*entity.Item{
		200: {newsItem("Payment rails upgraded nationwide", "https://example.com/1",
			time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC))},
	}}
	cardRepo := &stubCardRepo{}

	svc := cardsUC.NewService(orgRepo, itemRepo, cardRepo)
	result, err := svc.RefreshAll(context.Background())
	if err != nil {
		t.Fatalf("RefreshAll err=%v", err)
	}

	if result.CardsUpdated != 1 {
		t.Fatalf("expected 1 card updated, got %d", result.CardsUpdated)
	}
	card := cardRepo.upserted[0]
	if card.Type != entity.CardIndustry || card.Title != "Payments infrastructure" {
		t.Errorf("unexpected card identity: type=%s title=%q", card.Type, card.Title)
	}
	if _, ok := card.Data.(entity.IndustryCardData); !ok {
		t.Errorf("expected IndustryCardData, got %T", card.Data)
	}
}

func TestRefreshAll_ZeroItemsLeavesCardUntouched(t *testing.T) {
	orgRepo := baseOrgRepo()
	orgRepo.companies = []*entity.Company{{ID: 100, OrgID: 10, Name: "Stripe"}}

	itemRepo := &stubItemRepo{}
	cardRepo := &stubCardRepo{}

	svc := cardsUC.NewService(orgRepo, itemRepo, cardRepo)
	result, err := svc.RefreshAll(context.Background())
	if err != nil {
		t.Fatalf("RefreshAll err=%v", err)
	}

	if result.CardsUpdated != 0 || len(result.Errors) != 0 {
		t.Errorf("expected no updates and no errors, got %+v", result)
	}
	if len(cardRepo.upserted) != 0 {
		t.Errorf("expected no card writes, got %d", len(cardRepo.upserted))
	}
}

func TestRefreshAll_TargetFailureIsIsolated(t *testing.T) {
	orgRepo := baseOrgRepo()
	orgRepo.companies = []*entity.Company{{ID: 100, OrgID: 10, Name: "Stripe"}}
	orgRepo.topics = []*entity.Topic{{ID: 200, OrgID: 10, Name: "Payments infrastructure"}}

	// カード書き込みは常に失敗する
	itemRepo := &stubItemRepo{
		byCompany: map[int64][]*entity.Item{
			100: {newsItem("Stripe launches new billing product", "https://example.com/1",
				time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC))},
		},
		byTopic: map[int64][]*entity.Item{
			200: {newsItem("Payment rails upgraded nationwide", "https://example.com/2",
				time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC))},
		},
	}
	cardRepo := &stubCardRepo{upsertErr: errors.New("write refused")}

	svc := cardsUC.NewService(orgRepo, itemRepo, cardRepo)
	result, err := svc.RefreshAll(context.Background())
	if err != nil {
		t.Fatalf("RefreshAll err=%v", err)
	}

	if result.CardsUpdated != 0 {
		t.Errorf("expected no cards updated, got %d", result.CardsUpdated)
	}
	if len(result.Errors) != 2 {
		t.Fatalf("expected both targets to record errors, got %v", result.Errors)
	}
	if !strings.Contains(result.Errors[0], "Stripe") {
		t.Errorf("expected company error first, got %q", result.Errors[0])
	}
}

func TestRefreshAll_MissingDashboardSkipsOrg(t *testing.T) {
	orgRepo := baseOrgRepo()
	orgRepo.dashboardErr = entity.ErrNotFound
	orgRepo.companies = []*entity.Company{{ID: 100, OrgID: 10, Name: "Stripe"}}

	cardRepo := &stubCardRepo{}
	svc := cardsUC.NewService(orgRepo, &stubItemRepo{}, cardRepo)

	result, err := svc.RefreshAll(context.Background())
	if err != nil {
		t.Fatalf("RefreshAll err=%v", err)
	}
	if result.CardsUpdated != 0 || len(result.Errors) != 0 {
		t.Errorf("expected silent skip, got %+v", result)
	}
}

func TestRefreshAll_ListOrganizationsFailure(t *testing.T) {
	orgRepo := &stubOrgRepo{listOrgsErr: errors.New("db down")}

	svc := cardsUC.NewService(orgRepo, &stubItemRepo{}, &stubCardRepo{})
	if _, err := svc.RefreshAll(context.Background()); err == nil {
		t.Fatal("expected error when organizations cannot be listed")
	}
}
