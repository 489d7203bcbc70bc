package repository

import (
	"context"

	"decks/internal/domain/entity"
)

type FeedRepository interface {
	Get(ctx context.Context, id int64) (*entity.Feed, error)
	List(ctx context.Context) ([]*entity.Feed, error)
	// ListActive retrieves active feeds across all organizations, oldest
	// first, capped at limit. A limit <= 0 means no cap.
	ListActive(ctx context.Context, limit int) ([]*entity.Feed, error)
	Create(ctx context.Context, feed *entity.Feed) error
	Delete(ctx context.Context, id int64) error
	// ExistsForTarget reports whether an active feed of the given kind
	// already exists for the target, so auto-generation can skip it.
	ExistsForTarget(ctx context.Context, orgID int64, target entity.TargetType, targetID int64) (bool, error)
}
