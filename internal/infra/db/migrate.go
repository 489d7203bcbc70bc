package db

import (
	"database/sql"
	_ "embed"
)

//go:embed seeds/organizations.sql
var seedOrganizationsSQL string

func MigrateUp(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS organizations (
    id         SERIAL PRIMARY KEY,
    name       TEXT NOT NULL UNIQUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS dashboards (
    id         SERIAL PRIMARY KEY,
    org_id     INTEGER NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
    is_default BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS companies (
    id         SERIAL PRIMARY KEY,
    org_id     INTEGER NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
    name       TEXT NOT NULL,
    ticker     TEXT,
    domain     TEXT,
    aliases    JSONB,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (org_id, name)
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS topics (
    id         SERIAL PRIMARY KEY,
    org_id     INTEGER NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
    name       TEXT NOT NULL,
    queries    JSONB,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (org_id, name)
)`); err != nil {
		return err
	}

	// A feed targets exactly one of company_id / topic_id.
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS feeds (
    id         SERIAL PRIMARY KEY,
    org_id     INTEGER NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
    kind       VARCHAR(20) NOT NULL DEFAULT 'news',
    url        TEXT NOT NULL,
    company_id INTEGER REFERENCES companies(id) ON DELETE CASCADE,
    topic_id   INTEGER REFERENCES topics(id) ON DELETE CASCADE,
    active     BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    CONSTRAINT chk_feed_target CHECK ((company_id IS NULL) <> (topic_id IS NULL))
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS items (
    id           SERIAL PRIMARY KEY,
    org_id       INTEGER NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
    company_id   INTEGER REFERENCES companies(id) ON DELETE CASCADE,
    topic_id     INTEGER REFERENCES topics(id) ON DELETE CASCADE,
    source_kind  VARCHAR(20) NOT NULL,
    source_id    TEXT NOT NULL,
    title        TEXT NOT NULL,
    url          TEXT NOT NULL,
    published_at TIMESTAMPTZ NOT NULL,
    summary      TEXT,
    raw          JSONB,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS cards (
    id           SERIAL PRIMARY KEY,
    org_id       INTEGER NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
    dashboard_id INTEGER NOT NULL REFERENCES dashboards(id) ON DELETE CASCADE,
    type         VARCHAR(30) NOT NULL,
    title        TEXT NOT NULL,
    position     INTEGER NOT NULL DEFAULT 0,
    data         JSONB NOT NULL,
    sources      JSONB,
    refreshed_at TIMESTAMPTZ,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (org_id, dashboard_id, type, title)
)`); err != nil {
		return err
	}

	// NULLS NOT DISTINCT (PostgreSQL 15+) makes the deduplication key work
	// for both company items (topic_id NULL) and topic items (company_id NULL).
	if _, err := db.Exec(`
CREATE UNIQUE INDEX IF NOT EXISTS idx_items_identity
    ON items (org_id, company_id, topic_id, source_kind, source_id)
    NULLS NOT DISTINCT`); err != nil {
		return err
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_items_target_published
    ON items (org_id, company_id, topic_id, published_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_feeds_active ON feeds(active) WHERE active = TRUE`,
		`CREATE INDEX IF NOT EXISTS idx_feeds_org_id ON feeds(org_id)`,
		`CREATE INDEX IF NOT EXISTS idx_cards_dashboard ON cards(org_id, dashboard_id)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_dashboards_default
    ON dashboards(org_id) WHERE is_default`,
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}

	// シードデータの投入(重複は自動的にスキップ)
	if _, err := db.Exec(seedOrganizationsSQL); err != nil {
		return err
	}

	return nil
}

// MigrateDown rolls back the database schema.
// This function removes tables and indexes in reverse order of creation.
// Use with caution: this will delete all data in the affected tables.
func MigrateDown(db *sql.DB) error {
	dropStatements := []string{
		`DROP TABLE IF EXISTS cards CASCADE`,
		`DROP TABLE IF EXISTS items CASCADE`,
		`DROP TABLE IF EXISTS feeds CASCADE`,
		`DROP TABLE IF EXISTS topics CASCADE`,
		`DROP TABLE IF EXISTS companies CASCADE`,
		`DROP TABLE IF EXISTS dashboards CASCADE`,
		`DROP TABLE IF EXISTS organizations CASCADE`,
	}

	for _, stmt := range dropStatements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
