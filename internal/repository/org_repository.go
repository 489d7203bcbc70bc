package repository

import (
	"context"

	"decks/internal/domain/entity"
)

type OrgRepository interface {
	ListOrganizations(ctx context.Context) ([]*entity.Organization, error)
	// DefaultDashboard returns the organization's default dashboard, or
	// entity.ErrNotFound if none is configured.
	DefaultDashboard(ctx context.Context, orgID int64) (*entity.Dashboard, error)
	ListCompanies(ctx context.Context, orgID int64) ([]*entity.Company, error)
	ListTopics(ctx context.Context, orgID int64) ([]*entity.Topic, error)
	GetCompany(ctx context.Context, orgID, companyID int64) (*entity.Company, error)
	GetTopic(ctx context.Context, orgID, topicID int64) (*entity.Topic, error)
}
