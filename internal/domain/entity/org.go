package entity

// Organization is the tenant boundary under which feeds, items and cards are
// partitioned.
type Organization struct {
	ID   int64
	Name string
}

// Dashboard is a per-organization card container. The card aggregator writes
// into the organization's default dashboard.
type Dashboard struct {
	ID        int64
	OrgID     int64
	IsDefault bool
}

// Company is a tracked competitor under an organization.
type Company struct {
	ID      int64
	OrgID   int64
	Name    string
	Ticker  *string
	Domain  *string
	Aliases []string
}

// Topic is a tracked industry theme under an organization. Queries are the
// search terms used when auto-generating a news feed for the topic.
type Topic struct {
	ID      int64
	OrgID   int64
	Name    string
	Queries []string
}
