// Package entity defines the core domain entities and validation logic for the
// application. It contains the fundamental business objects such as Feed, Item
// and Card, along with their validation rules and domain-specific errors.
package entity

import "fmt"

// TargetType classifies what a feed (and the items ingested from it) is
// tracked against: a competitor company or an industry topic.
type TargetType string

const (
	TargetCompany TargetType = "company"
	TargetTopic   TargetType = "topic"
)

// Valid reports whether t is a known target type.
func (t TargetType) Valid() bool {
	return t == TargetCompany || t == TargetTopic
}

// Feed represents a configured external content source tracked by an
// organization. Feeds are created by user/admin action; the ingestion core
// only reads them.
type Feed struct {
	ID        int64
	OrgID     int64
	Kind      string // source classification, e.g. "news"
	URL       string
	CompanyID *int64
	TopicID   *int64
	Active    bool
}

// Validate validates the Feed entity fields.
// A feed must carry a safe fetchable URL and point at exactly one target.
func (f *Feed) Validate() error {
	if f.Kind == "" {
		return &ValidationError{Field: "kind", Message: "kind is required"}
	}
	if err := ValidateFeedURL(f.URL); err != nil {
		return err
	}
	if (f.CompanyID == nil) == (f.TopicID == nil) {
		return &ValidationError{
			Field:   "target",
			Message: "feed must reference exactly one of company_id or topic_id",
		}
	}
	return nil
}

// Target returns the feed's target classification and id.
func (f *Feed) Target() (TargetType, int64) {
	if f.CompanyID != nil {
		return TargetCompany, *f.CompanyID
	}
	return TargetTopic, *f.TopicID
}

// Describe returns a short human-readable label used in run-report error
// entries, e.g. "feed 12 (https://example.com/rss)".
func (f *Feed) Describe() string {
	return fmt.Sprintf("feed %d (%s)", f.ID, f.URL)
}
