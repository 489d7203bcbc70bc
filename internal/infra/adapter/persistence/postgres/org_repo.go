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

type OrgRepo struct{ db *circuitbreaker.DBCircuitBreaker }

func NewOrgRepo(db *sql.DB) repository.OrgRepository {
	return &OrgRepo{db: circuitbreaker.NewDBCircuitBreaker(db)}
}

func (repo *OrgRepo) ListOrganizations(ctx context.Context) ([]*entity.Organization, error) {
	const query = `
SELECT id, name
FROM organizations
ORDER BY id ASC`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ListOrganizations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	orgs := make([]*entity.Organization, 0, 10)
	for rows.Next() {
		var org entity.Organization
		if err := rows.Scan(&org.ID, &org.Name); err != nil {
			return nil, fmt.Errorf("ListOrganizations: Scan: %w", err)
		}
		orgs = append(orgs, &org)
	}
	return orgs, rows.Err()
}

func (repo *OrgRepo) DefaultDashboard(ctx context.Context, orgID int64) (*entity.Dashboard, error) {
	const query = `
SELECT id, org_id, is_default
FROM dashboards
WHERE org_id = $1 AND is_default = TRUE
LIMIT 1`
	var dashboard entity.Dashboard
	err := repo.db.QueryRowContext(ctx, query, orgID).Scan(
		&dashboard.ID, &dashboard.OrgID, &dashboard.IsDefault,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("DefaultDashboard: org %d: %w", orgID, entity.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("DefaultDashboard: %w", err)
	}
	return &dashboard, nil
}

func scanCompany(rows *sql.Rows) (*entity.Company, error) {
	var company entity.Company
	var aliasesJSON []byte
	if err := rows.Scan(
		&company.ID, &company.OrgID, &company.Name,
		&company.Ticker, &company.Domain, &aliasesJSON,
	); err != nil {
		return nil, err
	}
	if len(aliasesJSON) > 0 {
		if err := json.Unmarshal(aliasesJSON, &company.Aliases); err != nil {
			return nil, fmt.Errorf("unmarshal aliases: %w", err)
		}
	}
	return &company, nil
}

func (repo *OrgRepo) ListCompanies(ctx context.Context, orgID int64) ([]*entity.Company, error) {
	const query = `
SELECT id, org_id, name, ticker, domain, aliases
FROM companies
WHERE org_id = $1
ORDER BY id ASC`
	rows, err := repo.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("ListCompanies: %w", err)
	}
	defer func() { _ = rows.Close() }()

	companies := make([]*entity.Company, 0, 20)
	for rows.Next() {
		company, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("ListCompanies: %w", err)
		}
		companies = append(companies, company)
	}
	return companies, rows.Err()
}

func scanTopic(rows *sql.Rows) (*entity.Topic, error) {
	var topic entity.Topic
	var queriesJSON []byte
	if err := rows.Scan(&topic.ID, &topic.OrgID, &topic.Name, &queriesJSON); err != nil {
		return nil, err
	}
	if len(queriesJSON) > 0 {
		if err := json.Unmarshal(queriesJSON, &topic.Queries); err != nil {
			return nil, fmt.Errorf("unmarshal queries: %w", err)
		}
	}
	return &topic, nil
}

func (repo *OrgRepo) ListTopics(ctx context.Context, orgID int64) ([]*entity.Topic, error) {
	const query = `
SELECT id, org_id, name, queries
FROM topics
WHERE org_id = $1
ORDER BY id ASC`
	rows, err := repo.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("ListTopics: %w", err)
	}
	defer func() { _ = rows.Close() }()

	topics := make([]*entity.Topic, 0, 20)
	for rows.Next() {
		topic, err := scanTopic(rows)
		if err != nil {
			return nil, fmt.Errorf("ListTopics: %w", err)
		}
		topics = append(topics, topic)
	}
	return topics, rows.Err()
}

func (repo *OrgRepo) GetCompany(ctx context.Context, orgID, companyID int64) (*entity.Company, error) {
	const query = `
SELECT id, org_id, name, ticker, domain, aliases
FROM companies
WHERE org_id = $1 AND id = $2
LIMIT 1`
	var company entity.Company
	var aliasesJSON []byte
	err := repo.db.QueryRowContext(ctx, query, orgID, companyID).Scan(
		&company.ID, &company.OrgID, &company.Name,
		&company.Ticker, &company.Domain, &aliasesJSON,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("GetCompany: company %d: %w", companyID, entity.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("GetCompany: %w", err)
	}
	if len(aliasesJSON) > 0 {
		if err := json.Unmarshal(aliasesJSON, &company.Aliases); err != nil {
			return nil, fmt.Errorf("GetCompany: unmarshal aliases: %w", err)
		}
	}
	return &company, nil
}

func (repo *OrgRepo) GetTopic(ctx context.Context, orgID, topicID int64) (*entity.Topic, error) {
	const query = `
SELECT id, org_id, name, queries
FROM topics
WHERE org_id = $1 AND id = $2
LIMIT 1`
	var topic entity.Topic
	var queriesJSON []byte
	err := repo.db.QueryRowContext(ctx, query, orgID, topicID).Scan(
		&topic.ID, &topic.OrgID, &topic.Name, &queriesJSON,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("GetTopic: topic %d: %w", topicID, entity.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("GetTopic: %w", err)
	}
	if len(queriesJSON) > 0 {
		if err := json.Unmarshal(queriesJSON, &topic.Queries); err != nil {
			return nil, fmt.Errorf("GetTopic: unmarshal queries: %w", err)
		}
	}
	return &topic, nil
}
