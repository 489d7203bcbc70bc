package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"decks/internal/domain/entity"
	"decks/internal/repository"
	"decks/internal/resilience/circuitbreaker"
)

type FeedRepo struct{ db *circuitbreaker.DBCircuitBreaker }

func NewFeedRepo(db *sql.DB) repository.FeedRepository {
	return &FeedRepo{db: circuitbreaker.NewDBCircuitBreaker(db)}
}

func scanFeed(rows *sql.Rows) (*entity.Feed, error) {
	var feed entity.Feed
	if err := rows.Scan(
		&feed.ID, &feed.OrgID, &feed.Kind, &feed.URL,
		&feed.CompanyID, &feed.TopicID, &feed.Active,
	); err != nil {
		return nil, err
	}
	return &feed, nil
}

func (repo *FeedRepo) Get(ctx context.Context, id int64) (*entity.Feed, error) {
	const query = `
SELECT id, org_id, kind, url, company_id, topic_id, active
FROM feeds
WHERE id = $1
LIMIT 1`
	var feed entity.Feed
	err := repo.db.QueryRowContext(ctx, query, id).Scan(
		&feed.ID, &feed.OrgID, &feed.Kind, &feed.URL,
		&feed.CompanyID, &feed.TopicID, &feed.Active,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return &feed, nil
}

func (repo *FeedRepo) List(ctx context.Context) ([]*entity.Feed, error) {
	const query = `
SELECT id, org_id, kind, url, company_id, topic_id, active
FROM feeds
ORDER BY id ASC`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	feeds := make([]*entity.Feed, 0, 50)
	for rows.Next() {
		feed, err := scanFeed(rows)
		if err != nil {
			return nil, fmt.Errorf("List: %w", err)
		}
		feeds = append(feeds, feed)
	}
	return feeds, rows.Err()
}

func (repo *FeedRepo) ListActive(ctx context.Context, limit int) ([]*entity.Feed, error) {
	query := `
SELECT id, org_id, kind, url, company_id, topic_id, active
FROM feeds
WHERE active = TRUE
ORDER BY id ASC`
	args := []interface{}{}
	if limit > 0 {
		query += `
LIMIT $1`
		args = append(args, limit)
	}
	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ListActive: %w", err)
	}
	defer func() { _ = rows.Close() }()

	feeds := make([]*entity.Feed, 0, 50)
	for rows.Next() {
		feed, err := scanFeed(rows)
		if err != nil {
			return nil, fmt.Errorf("ListActive: %w", err)
		}
		feeds = append(feeds, feed)
	}
	return feeds, rows.Err()
}

func (repo *FeedRepo) Create(ctx context.Context, feed *entity.Feed) error {
	if err := feed.Validate(); err != nil {
		return err
	}
	const query = `
INSERT INTO feeds (org_id, kind, url, company_id, topic_id, active)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id`
	err := repo.db.QueryRowContext(ctx, query,
		feed.OrgID, feed.Kind, feed.URL,
		feed.CompanyID, feed.TopicID, feed.Active,
	).Scan(&feed.ID)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *FeedRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM feeds WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Delete: no rows affected")
	}
	return nil
}

func (repo *FeedRepo) ExistsForTarget(ctx context.Context, orgID int64, target entity.TargetType, targetID int64) (bool, error) {
	var query string
	switch target {
	case entity.TargetCompany:
		query = `SELECT EXISTS(SELECT 1 FROM feeds WHERE org_id = $1 AND company_id = $2 AND active = TRUE)`
	case entity.TargetTopic:
		query = `SELECT EXISTS(SELECT 1 FROM feeds WHERE org_id = $1 AND topic_id = $2 AND active = TRUE)`
	default:
		return false, fmt.Errorf("ExistsForTarget: %w: target %q", entity.ErrInvalidInput, target)
	}

	var exists bool
	if err := repo.db.QueryRowContext(ctx, query, orgID, targetID).Scan(&exists); err != nil {
		return false, fmt.Errorf("ExistsForTarget: %w", err)
	}
	return exists, nil
}
