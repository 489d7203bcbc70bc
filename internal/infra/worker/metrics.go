package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"decks/internal/pkg/config"
)

// WorkerMetrics combines the standard configuration metrics with cron job
// execution tracking. Both scheduled jobs ("ingest" and "cards") share the
// same series and are distinguished by the job label.
type WorkerMetrics struct {
	*config.ConfigMetrics

	// CronJobRunsTotal counts runs by job and status (started/success/failure).
	CronJobRunsTotal *prometheus.CounterVec

	// CronJobDurationSeconds observes run duration per job.
	CronJobDurationSeconds *prometheus.HistogramVec

	// CronJobItemsIngestedTotal counts items inserted across ingest runs.
	CronJobItemsIngestedTotal prometheus.Counter

	// CronJobCardsRefreshedTotal counts cards written across refresh runs.
	CronJobCardsRefreshedTotal prometheus.Counter

	// CronJobLastSuccessTimestamp records the last successful run per job.
	CronJobLastSuccessTimestamp *prometheus.GaugeVec
}

// NewWorkerMetrics creates and registers all worker metrics.
func NewWorkerMetrics() *WorkerMetrics {
	return &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetrics("worker"),

		CronJobRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_cron_job_runs_total",
			Help: "Total number of cron job runs by job and status",
		}, []string{"job", "status"}),

		CronJobDurationSeconds: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "worker_cron_job_duration_seconds",
			Help:    "Duration of cron job execution in seconds",
			Buckets: []float64{1, 5, 30, 60, 300, 900, 1800},
		}, []string{"job"}),

		CronJobItemsIngestedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worker_cron_job_items_ingested_total",
			Help: "Total number of feed items inserted across all ingest runs",
		}),

		CronJobCardsRefreshedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worker_cron_job_cards_refreshed_total",
			Help: "Total number of dashboard cards written across all refresh runs",
		}),

		CronJobLastSuccessTimestamp: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "worker_cron_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful run per job",
		}, []string{"job"}),
	}
}

// RecordJobRun increments the run counter. Status is one of "started",
// "success" or "failure".
func (m *WorkerMetrics) RecordJobRun(job, status string) {
	m.CronJobRunsTotal.WithLabelValues(job, status).Inc()
}

// RecordJobDuration observes the duration of a job run in seconds.
func (m *WorkerMetrics) RecordJobDuration(job string, seconds float64) {
	m.CronJobDurationSeconds.WithLabelValues(job).Observe(seconds)
}

// RecordItemsIngested adds the number of items inserted by an ingest run.
func (m *WorkerMetrics) RecordItemsIngested(count int) {
	m.CronJobItemsIngestedTotal.Add(float64(count))
}

// RecordCardsRefreshed adds the number of cards written by a refresh run.
func (m *WorkerMetrics) RecordCardsRefreshed(count int) {
	m.CronJobCardsRefreshedTotal.Add(float64(count))
}

// RecordLastSuccess marks the current time as the job's last successful run.
func (m *WorkerMetrics) RecordLastSuccess(job string) {
	m.CronJobLastSuccessTimestamp.WithLabelValues(job).SetToCurrentTime()
}
