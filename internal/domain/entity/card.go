package entity

import (
	"encoding/json"
	"fmt"
	"time"
)

// CardType identifies the kind of dashboard card a payload belongs to.
type CardType string

const (
	CardCompetitor CardType = "competitor"
	CardIndustry   CardType = "industry"
)

// cardSchemaVersion is the current schema version written into card payloads.
// Readers must accept any version <= this and may migrate older shapes.
const cardSchemaVersion = 1

// Headline is a single entry in a card's display payload.
type Headline struct {
	Title string    `json:"title"`
	URL   string    `json:"url"`
	TS    time.Time `json:"ts"`
}

// SourceRef is one citation in a card's source list.
type SourceRef struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// CardData is the typed display payload of a dashboard card. Each card kind
// has its own versioned schema; payloads are stored as JSON in the card store.
type CardData interface {
	CardType() CardType
}

// CompetitorCardData is the payload of a competitor-news card.
type CompetitorCardData struct {
	SchemaVersion int        `json:"schema_version"`
	Competitor    string     `json:"competitor"`
	Ticker        *string    `json:"ticker"`
	Headlines     []Headline `json:"headlines"`
	LastRefreshed time.Time  `json:"last_refreshed"`
}

func (CompetitorCardData) CardType() CardType { return CardCompetitor }

// IndustryCardData is the payload of an industry-trend card.
type IndustryCardData struct {
	SchemaVersion int        `json:"schema_version"`
	Topic         string     `json:"topic"`
	Headlines     []Headline `json:"headlines"`
	LastRefreshed time.Time  `json:"last_refreshed"`
}

func (IndustryCardData) CardType() CardType { return CardIndustry }

// NewCompetitorCardData builds a competitor card payload at the current
// schema version.
func NewCompetitorCardData(name string, ticker *string, headlines []Headline, refreshedAt time.Time) CompetitorCardData {
	return CompetitorCardData{
		SchemaVersion: cardSchemaVersion,
		Competitor:    name,
		Ticker:        ticker,
		Headlines:     headlines,
		LastRefreshed: refreshedAt,
	}
}

// NewIndustryCardData builds an industry card payload at the current schema
// version.
func NewIndustryCardData(topic string, headlines []Headline, refreshedAt time.Time) IndustryCardData {
	return IndustryCardData{
		SchemaVersion: cardSchemaVersion,
		Topic:         topic,
		Headlines:     headlines,
		LastRefreshed: refreshedAt,
	}
}

// DecodeCardData decodes a stored card payload into its typed form based on
// the card type. Payloads written before schema versioning (version 0) decode
// into the current shape; unknown future versions are rejected.
func DecodeCardData(cardType CardType, data []byte) (CardData, error) {
	var probe struct {
		SchemaVersion int `json:"schema_version"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode card data: %w", err)
	}
	if probe.SchemaVersion > cardSchemaVersion {
		return nil, fmt.Errorf("decode card data: %w: unsupported schema version %d",
			ErrInvalidInput, probe.SchemaVersion)
	}

	switch cardType {
	case CardCompetitor:
		var d CompetitorCardData
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("decode competitor card data: %w", err)
		}
		return d, nil
	case CardIndustry:
		var d IndustryCardData
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("decode industry card data: %w", err)
		}
		return d, nil
	default:
		return nil, fmt.Errorf("decode card data: %w: unknown card type %q",
			ErrInvalidInput, cardType)
	}
}

// Card is a dashboard-visible summary widget whose display payload is derived
// from the latest items for its target. Mutated exclusively by the card
// aggregator via overwrite-on-conflict upserts keyed by
// (org, dashboard, type, title).
type Card struct {
	ID          int64
	OrgID       int64
	DashboardID int64
	Type        CardType
	Title       string
	Position    int
	Data        CardData
	Sources     []SourceRef
	RefreshedAt time.Time
}
