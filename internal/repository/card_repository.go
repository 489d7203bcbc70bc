package repository

import (
	"context"

	"decks/internal/domain/entity"
)

type CardRepository interface {
	// Upsert writes the card, overwriting data, sources and refreshed_at
	// when a card with the same (org, dashboard, type, title) already
	// exists. Position is only set on first insert so user ordering
	// survives refreshes.
	Upsert(ctx context.Context, card *entity.Card) error
	ListForDashboard(ctx context.Context, orgID, dashboardID int64) ([]*entity.Card, error)
}
