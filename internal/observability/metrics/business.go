package metrics

import "time"

// RecordFeedFetchSuccess records a successful feed fetch, including the time
// taken and the size of the fetched body in bytes.
func RecordFeedFetchSuccess(duration time.Duration, size int) {
	FeedFetchAttemptsTotal.WithLabelValues("success").Inc()
	FeedFetchDuration.Observe(duration.Seconds())
	FeedFetchSize.Observe(float64(size))
}

// RecordFeedFetchFailed records a feed fetch that exhausted its retries.
func RecordFeedFetchFailed(duration time.Duration) {
	FeedFetchAttemptsTotal.WithLabelValues("failure").Inc()
	FeedFetchDuration.Observe(duration.Seconds())
}

// RecordItemsIngested records the breakdown of one feed's items after
// filtering and deduplication.
func RecordItemsIngested(inserted, duplicated, rejected int) {
	if inserted > 0 {
		ItemsIngestedTotal.WithLabelValues("inserted").Add(float64(inserted))
	}
	if duplicated > 0 {
		ItemsIngestedTotal.WithLabelValues("duplicate").Add(float64(duplicated))
	}
	if rejected > 0 {
		ItemsIngestedTotal.WithLabelValues("rejected").Add(float64(rejected))
	}
}

// RecordIngestRun records the outcome of a full ingest run.
// Status should be "success", "partial" or "failure".
func RecordIngestRun(status string, duration time.Duration) {
	IngestRunsTotal.WithLabelValues(status).Inc()
	IngestRunDuration.Observe(duration.Seconds())
}

// RecordCardRefreshed records one dashboard card written by the aggregator.
func RecordCardRefreshed(cardType string) {
	CardsRefreshedTotal.WithLabelValues(cardType).Inc()
}

// RecordCardRefreshError records an error during card refresh.
func RecordCardRefreshError() {
	CardRefreshErrors.Inc()
}

// UpdateFeedsTotal updates the total count of registered feeds.
// This gauge should be updated periodically to reflect the current state.
func UpdateFeedsTotal(count int) {
	FeedsTotal.Set(float64(count))
}

// RecordDBQuery records the duration of a database query operation.
// Operation should describe the query type (e.g., "select_feeds", "insert_item").
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateDBConnectionStats updates database connection pool statistics.
func UpdateDBConnectionStats(active, idle int) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}
