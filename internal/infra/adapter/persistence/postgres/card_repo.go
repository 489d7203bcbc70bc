package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"decks/internal/domain/entity"
	"decks/internal/repository"
	"decks/internal/resilience/circuitbreaker"
)

type CardRepo struct{ db *circuitbreaker.DBCircuitBreaker }

func NewCardRepo(db *sql.DB) repository.CardRepository {
	return &CardRepo{db: circuitbreaker.NewDBCircuitBreaker(db)}
}

// Upsert writes the card. On conflict with an existing
// (org, dashboard, type, title) row the display payload, sources and
// refreshed_at are overwritten; position keeps its stored value so user
// ordering survives refreshes.
func (repo *CardRepo) Upsert(ctx context.Context, card *entity.Card) error {
	if card.Data == nil {
		return fmt.Errorf("Upsert: %w: card data is required", entity.ErrInvalidInput)
	}
	dataJSON, err := json.Marshal(card.Data)
	if err != nil {
		return fmt.Errorf("Upsert: marshal data: %w", err)
	}
	sourcesJSON, err := json.Marshal(card.Sources)
	if err != nil {
		return fmt.Errorf("Upsert: marshal sources: %w", err)
	}

	const query = `
INSERT INTO cards (org_id, dashboard_id, type, title, position, data, sources, refreshed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (org_id, dashboard_id, type, title) DO UPDATE SET
       data         = EXCLUDED.data,
       sources      = EXCLUDED.sources,
       refreshed_at = EXCLUDED.refreshed_at
RETURNING id`
	err = repo.db.QueryRowContext(ctx, query,
		card.OrgID, card.DashboardID, card.Type, card.Title,
		card.Position, dataJSON, sourcesJSON, card.RefreshedAt,
	).Scan(&card.ID)
	if err != nil {
		return fmt.Errorf("Upsert: %w", err)
	}
	return nil
}

func (repo *CardRepo) ListForDashboard(ctx context.Context, orgID, dashboardID int64) ([]*entity.Card, error) {
	const query = `
SELECT id, org_id, dashboard_id, type, title, position, data, sources, refreshed_at
FROM cards
WHERE org_id = $1 AND dashboard_id = $2
ORDER BY position ASC, id ASC`
	rows, err := repo.db.QueryContext(ctx, query, orgID, dashboardID)
	if err != nil {
		return nil, fmt.Errorf("ListForDashboard: %w", err)
	}
	defer func() { _ = rows.Close() }()

	cards := make([]*entity.Card, 0, 20)
	for rows.Next() {
		var card entity.Card
		var dataJSON, sourcesJSON []byte
		var refreshedAt sql.NullTime
		if err := rows.Scan(
			&card.ID, &card.OrgID, &card.DashboardID, &card.Type, &card.Title,
			&card.Position, &dataJSON, &sourcesJSON, &refreshedAt,
		); err != nil {
			return nil, fmt.Errorf("ListForDashboard: Scan: %w", err)
		}

		data, err := entity.DecodeCardData(card.Type, dataJSON)
		if err != nil {
			return nil, fmt.Errorf("ListForDashboard: %w", err)
		}
		card.Data = data

		if len(sourcesJSON) > 0 {
			if err := json.Unmarshal(sourcesJSON, &card.Sources); err != nil {
				return nil, fmt.Errorf("ListForDashboard: unmarshal sources: %w", err)
			}
		}
		if refreshedAt.Valid {
			card.RefreshedAt = refreshedAt.Time
		}
		cards = append(cards, &card)
	}
	return cards, rows.Err()
}
