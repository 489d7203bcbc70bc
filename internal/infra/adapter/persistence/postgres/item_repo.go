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

type ItemRepo struct{ db *circuitbreaker.DBCircuitBreaker }

func NewItemRepo(db *sql.DB) repository.ItemRepository {
	return &ItemRepo{db: circuitbreaker.NewDBCircuitBreaker(db)}
}

// Upsert inserts the item, relying on the unique identity index to absorb
// duplicates. The conflict target uses NULLS NOT DISTINCT so company items
// (topic_id NULL) and topic items (company_id NULL) both deduplicate.
func (repo *ItemRepo) Upsert(ctx context.Context, item *entity.Item) (bool, error) {
	rawJSON, err := json.Marshal(item.Raw)
	if err != nil {
		return false, fmt.Errorf("Upsert: marshal raw: %w", err)
	}

	const query = `
INSERT INTO items (org_id, company_id, topic_id, source_kind, source_id,
                   title, url, published_at, summary, raw)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (org_id, company_id, topic_id, source_kind, source_id) DO NOTHING`
	res, err := repo.db.ExecContext(ctx, query,
		item.OrgID, item.CompanyID, item.TopicID, item.SourceKind, item.SourceID,
		item.Title, item.URL, item.PublishedAt, item.Summary, rawJSON,
	)
	if err != nil {
		return false, fmt.Errorf("Upsert: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("Upsert: RowsAffected: %w", err)
	}
	return n > 0, nil
}

func (repo *ItemRepo) LatestForTarget(ctx context.Context, orgID int64, target entity.TargetType, targetID int64, limit int) ([]*entity.Item, error) {
	var query string
	switch target {
	case entity.TargetCompany:
		query = `
SELECT id, org_id, company_id, topic_id, source_kind, source_id,
       title, url, published_at, summary, raw, created_at
FROM items
WHERE org_id = $1 AND company_id = $2
ORDER BY published_at DESC
LIMIT $3`
	case entity.TargetTopic:
		query = `
SELECT id, org_id, company_id, topic_id, source_kind, source_id,
       title, url, published_at, summary, raw, created_at
FROM items
WHERE org_id = $1 AND topic_id = $2
ORDER BY published_at DESC
LIMIT $3`
	default:
		return nil, fmt.Errorf("LatestForTarget: %w: target %q", entity.ErrInvalidInput, target)
	}

	rows, err := repo.db.QueryContext(ctx, query, orgID, targetID, limit)
	if err != nil {
		return nil, fmt.Errorf("LatestForTarget: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := make([]*entity.Item, 0, limit)
	for rows.Next() {
		var item entity.Item
		var rawJSON []byte
		if err := rows.Scan(
			&item.ID, &item.OrgID, &item.CompanyID, &item.TopicID,
			&item.SourceKind, &item.SourceID, &item.Title, &item.URL,
			&item.PublishedAt, &item.Summary, &rawJSON, &item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("LatestForTarget: Scan: %w", err)
		}
		if len(rawJSON) > 0 {
			if err := json.Unmarshal(rawJSON, &item.Raw); err != nil {
				return nil, fmt.Errorf("LatestForTarget: unmarshal raw: %w", err)
			}
		}
		items = append(items, &item)
	}
	return items, rows.Err()
}

func (repo *ItemRepo) CountForOrg(ctx context.Context, orgID int64) (int64, error) {
	const query = `SELECT COUNT(*) FROM items WHERE org_id = $1`
	var count int64
	if err := repo.db.QueryRowContext(ctx, query, orgID).Scan(&count); err != nil {
		return 0, fmt.Errorf("CountForOrg: %w", err)
	}
	return count, nil
}
