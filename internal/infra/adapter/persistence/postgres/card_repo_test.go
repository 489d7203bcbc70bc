package postgres_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"decks/internal/domain/entity"
	"decks/internal/infra/adapter/persistence/postgres"
)

func sampleCard() *entity.Card {
	refreshed := time.Date(2026, 2, 10, 13, 0, 0, 0, time.UTC)
	return &entity.Card{
		OrgID:       1,
		DashboardID: 2,
		Type:        entity.CardCompetitor,
		Title:       "Stripe News",
		Position:    0,
		Data: entity.NewCompetitorCardData("Stripe", nil, []entity.Headline{
			{Title: "Stripe launches new billing product", URL: "https://example.com/post/1", TS: refreshed},
		}, refreshed),
		Sources: []entity.SourceRef{
			{Title: "Stripe launches new billing product", URL: "https://example.com/post/1"},
		},
		RefreshedAt: refreshed,
	}
}

/* ──────────────────────────────── 1. Upsert ──────────────────────────────── */

func TestCardRepo_Upsert(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	card := sampleCard()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO cards`)).
		WithArgs(card.OrgID, card.DashboardID, card.Type, card.Title,
			card.Position, sqlmock.AnyArg(), sqlmock.AnyArg(), card.RefreshedAt).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(5)))

	repo := postgres.NewCardRepo(db)
	if err := repo.Upsert(context.Background(), card); err != nil {
		t.Fatalf("Upsert err=%v", err)
	}
	if card.ID != 5 {
		t.Fatalf("expected assigned id 5, got %d", card.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCardRepo_Upsert_RequiresData(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	card := sampleCard()
	card.Data = nil

	repo := postgres.NewCardRepo(db)
	if err := repo.Upsert(context.Background(), card); err == nil {
		t.Fatal("expected error for card without data")
	}
}

/* ──────────────────────────────── 2. ListForDashboard ──────────────────────────────── */

func TestCardRepo_ListForDashboard(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	refreshed := time.Date(2026, 2, 10, 13, 0, 0, 0, time.UTC)
	dataJSON := []byte(`{"schema_version":1,"competitor":"Stripe","ticker":null,"headlines":[],"last_refreshed":"2026-02-10T13:00:00Z"}`)
	sourcesJSON := []byte(`[{"title":"Stripe launches new billing product","url":"https://example.com/post/1"}]`)

	rows := sqlmock.NewRows([]string{
		"id", "org_id", "dashboard_id", "type", "title",
		"position", "data", "sources", "refreshed_at",
	}).AddRow(
		int64(5), int64(1), int64(2), string(entity.CardCompetitor), "Stripe News",
		0, dataJSON, sourcesJSON, refreshed,
	)

	mock.ExpectQuery(`FROM cards`).
		WithArgs(int64(1), int64(2)).
		WillReturnRows(rows)

	repo := postgres.NewCardRepo(db)
	got, err := repo.ListForDashboard(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("ListForDashboard err=%v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 card, got %d", len(got))
	}

	data, ok := got[0].Data.(entity.CompetitorCardData)
	if !ok {
		t.Fatalf("expected CompetitorCardData, got %T", got[0].Data)
	}
	if data.Competitor != "Stripe" {
		t.Errorf("expected competitor Stripe, got %q", data.Competitor)
	}
	if len(got[0].Sources) != 1 {
		t.Errorf("expected 1 source ref, got %d", len(got[0].Sources))
	}
	if !got[0].RefreshedAt.Equal(refreshed) {
		t.Errorf("unexpected refreshed_at %v", got[0].RefreshedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCardRepo_ListForDashboard_RejectsFutureSchema(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	rows := sqlmock.NewRows([]string{
		"id", "org_id", "dashboard_id", "type", "title",
		"position", "data", "sources", "refreshed_at",
	}).AddRow(
		int64(5), int64(1), int64(2), string(entity.CardIndustry), "Payments",
		0, []byte(`{"schema_version":99}`), nil, nil,
	)

	mock.ExpectQuery(`FROM cards`).
		WithArgs(int64(1), int64(2)).
		WillReturnRows(rows)

	repo := postgres.NewCardRepo(db)
	_, err := repo.ListForDashboard(context.Background(), 1, 2)
	if err == nil {
		t.Fatal("expected error for unsupported schema version")
	}
}
