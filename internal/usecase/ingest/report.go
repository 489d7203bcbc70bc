package ingest

import "time"

// maxReportedErrors bounds the error list carried in a run report. Later
// failures are still counted per-feed but their messages are dropped so a
// pathological run cannot balloon the response payload.
const maxReportedErrors = 10

// Report summarizes one ingestion run across all feeds.
type Report struct {
	Inserted        int
	Skipped         int
	Errors          []string
	FeedsProcessed  int
	SuccessfulFeeds int
	Duration        time.Duration
}

func (r *Report) addError(msg string) {
	if len(r.Errors) < maxReportedErrors {
		r.Errors = append(r.Errors, msg)
	}
}

// SuccessRate returns the percentage of processed feeds that completed
// without error. A run that processed no feeds counts as 100%.
func (r *Report) SuccessRate() float64 {
	if r.FeedsProcessed == 0 {
		return 100.0
	}
	return float64(r.SuccessfulFeeds) / float64(r.FeedsProcessed) * 100.0
}
