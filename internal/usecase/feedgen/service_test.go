package feedgen_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"decks/internal/domain/entity"
	feedgenUC "decks/internal/usecase/feedgen"
)

/* ───────── モック実装 ───────── */

// stubOrgRepo はOrgRepositoryのモック実装
type stubOrgRepo struct {
	company *entity.Company
	topic   *entity.Topic
}

func (s *stubOrgRepo) GetCompany(_ context.Context, _, _ int64) (*entity.Company, error) {
	if s.company == nil {
		return nil, entity.ErrNotFound
	}
	return s.company, nil
}

func (s *stubOrgRepo) GetTopic(_ context.Context, _, _ int64) (*entity.Topic, error) {
	if s.topic == nil {
		return nil, entity.ErrNotFound
	}
	return s.topic, nil
}

func (s *stubOrgRepo) ListOrganizations(_ context.Context) ([]*entity.Organization, error) {
	return nil, nil
}
func (s *stubOrgRepo) DefaultDashboard(_ context.Context, _ int64) (*entity.Dashboard, error) {
	return nil, nil
}
func (s *stubOrgRepo) ListCompanies(_ context.Context, _ int64) ([]*entity.Company, error) {
	return nil, nil
}
func (s *stubOrgRepo) ListTopics(_ context.Context, _ int64) ([]*entity.Topic, error) {
	return nil, nil
}

// stubFeedRepo はFeedRepositoryのモック実装
type stubFeedRepo struct {
	exists    bool
	createErr error
	created   []*entity.Feed
}

func (s *stubFeedRepo) ExistsForTarget(_ context.Context, _ int64, _ entity.TargetType, _ int64) (bool, error) {
	return s.exists, nil
}

func (s *stubFeedRepo) Create(_ context.Context, feed *entity.Feed) error {
	if s.createErr != nil {
		return s.createErr
	}
	feed.ID = int64(len(s.created) + 1)
	s.created = append(s.created, feed)
	return nil
}

func (s *stubFeedRepo) Get(_ context.Context, _ int64) (*entity.Feed, error) {
	return nil, nil
}
func (s *stubFeedRepo) List(_ context.Context) ([]*entity.Feed, error) {
	return nil, nil
}
func (s *stubFeedRepo) ListActive(_ context.Context, _ int) ([]*entity.Feed, error) {
	return nil, nil
}
func (s *stubFeedRepo) Delete(_ context.Context, _ int64) error {
	return nil
}

/* ───────── テスト ───────── */

func TestGenerate_CompanyFeed(t *testing.T) {
	ticker := "STRP"
	domain := "stripe.com"
	orgRepo := &stubOrgRepo{company: &entity.Company{
		ID:      100,
		OrgID:   10,
		Name:    "Stripe",
		Ticker:  &ticker,
		Domain:  &domain,
		Aliases: []string{"Stripe Inc"},
	}}
	feedRepo := &stubFeedRepo{}

	svc := feedgenUC.NewService(orgRepo, feedRepo)
	feed, err := svc.Generate(context.Background(), 10, entity.TargetCompany, 100)
	if err != nil {
		t.Fatalf("Generate err=%v", err)
	}

	if feed.Kind != "news" || !feed.Active {
		t.Errorf("expected active news feed, got %+v", feed)
	}
	if feed.CompanyID == nil || *feed.CompanyID != 100 || feed.TopicID != nil {
		t.Errorf("feed not bound to company: %+v", feed)
	}

	if !strings.HasPrefix(feed.URL, "https://news.google.com/rss/search?q=") {
		t.Fatalf("unexpected URL base: %q", feed.URL)
	}
	if !strings.HasSuffix(feed.URL, "&hl=en-US&gl=US&ceid=US:en") {
		t.Errorf("missing locale parameters: %q", feed.URL)
	}
	for _, fragment := range []string{"Stripe", "site%3Astripe.com", "STRP", "Stripe+Inc", "+OR+"} {
		if !strings.Contains(feed.URL, fragment) {
			t.Errorf("URL missing %q: %q", fragment, feed.URL)
		}
	}
}

func TestGenerate_TopicFeed(t *testing.T) {
	orgRepo := &stubOrgRepo{topic: &entity.Topic{
		ID:      200,
		OrgID:   10,
		Name:    "Payments infrastructure",
		Queries: []string{"payment rails", "instant payments"},
	}}
	feedRepo := &stubFeedRepo{}

	svc := feedgenUC.NewService(orgRepo, feedRepo)
	feed, err := svc.Generate(context.Background(), 10, entity.TargetTopic, 200)
	if err != nil {
		t.Fatalf("Generate err=%v", err)
	}

	if feed.TopicID == nil || *feed.TopicID != 200 || feed.CompanyID != nil {
		t.Errorf("feed not bound to topic: %+v", feed)
	}
	if !strings.Contains(feed.URL, "payment+rails+OR+instant+payments") {
		t.Errorf("queries not OR-joined in URL: %q", feed.URL)
	}
}

func TestGenerate_InvalidTargetType(t *testing.T) {
	svc := feedgenUC.NewService(&stubOrgRepo{}, &stubFeedRepo{})

	_, err := svc.Generate(context.Background(), 10, entity.TargetType("dashboard"), 1)
	if !errors.Is(err, entity.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestGenerate_UnknownTarget(t *testing.T) {
	svc := feedgenUC.NewService(&stubOrgRepo{}, &stubFeedRepo{})

	_, err := svc.Generate(context.Background(), 10, entity.TargetCompany, 999)
	if !errors.Is(err, entity.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGenerate_ExistingFeedIsNotDuplicated(t *testing.T) {
	orgRepo := &stubOrgRepo{company: &entity.Company{ID: 100, OrgID: 10, Name: "Stripe"}}
	feedRepo := &stubFeedRepo{exists: true}

	svc := feedgenUC.NewService(orgRepo, feedRepo)
	_, err := svc.Generate(context.Background(), 10, entity.TargetCompany, 100)
	if !errors.Is(err, feedgenUC.ErrFeedExists) {
		t.Fatalf("expected ErrFeedExists, got %v", err)
	}
	if len(feedRepo.created) != 0 {
		t.Errorf("expected no feed created, got %d", len(feedRepo.created))
	}
}
