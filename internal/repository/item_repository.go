package repository

import (
	"context"

	"decks/internal/domain/entity"
)

type ItemRepository interface {
	// Upsert inserts the item unless a row with the same
	// (org, company, topic, source kind, source id) identity already
	// exists. It reports whether a new row was written; a duplicate is
	// not an error.
	Upsert(ctx context.Context, item *entity.Item) (bool, error)
	// LatestForTarget retrieves the newest items for one company or
	// topic, ordered by published_at DESC, capped at limit.
	LatestForTarget(ctx context.Context, orgID int64, target entity.TargetType, targetID int64, limit int) ([]*entity.Item, error)
	CountForOrg(ctx context.Context, orgID int64) (int64, error)
}
