// Package worker holds the scheduling infrastructure for the background
// worker: validated configuration, cron job metrics, and the health probe
// server.
package worker

import (
	"fmt"
	"log/slog"
	"time"

	"decks/internal/pkg/config"
)

// WorkerConfig controls the worker's two scheduled jobs: the RSS ingestion
// run and the dashboard card refresh. Loaded fail-open from the environment,
// so a bad value never prevents the worker from starting.
type WorkerConfig struct {
	// IngestSchedule is the cron expression for the ingestion run.
	IngestSchedule string

	// CardsSchedule is the cron expression for the card refresh run.
	CardsSchedule string

	// Timezone is the IANA timezone the cron schedules are evaluated in.
	Timezone string

	// JobTimeout bounds a single job execution. A run that exceeds it is
	// cancelled and counted as a failure.
	JobTimeout time.Duration

	// HealthPort is the port for the liveness/readiness probe server.
	HealthPort int
}

// DefaultConfig returns production defaults: ingest every 30 minutes, cards
// refreshed 5 minutes past each hour, UTC schedules, 10 minute job timeout.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		IngestSchedule: "*/30 * * * *",
		CardsSchedule:  "5 * * * *",
		Timezone:       "UTC",
		JobTimeout:     10 * time.Minute,
		HealthPort:     9091,
	}
}

// Validate checks every field and returns the collected errors.
func (c *WorkerConfig) Validate() error {
	var errors []error

	if err := config.ValidateCronSchedule(c.IngestSchedule); err != nil {
		errors = append(errors, fmt.Errorf("ingest schedule: %w", err))
	}

	if err := config.ValidateCronSchedule(c.CardsSchedule); err != nil {
		errors = append(errors, fmt.Errorf("cards schedule: %w", err))
	}

	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errors = append(errors, fmt.Errorf("timezone: %w", err))
	}

	if err := config.ValidatePositiveDuration(c.JobTimeout); err != nil {
		errors = append(errors, fmt.Errorf("job timeout: %w", err))
	}

	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errors = append(errors, fmt.Errorf("health port: %w", err))
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation failed: %v", errors)
	}

	return nil
}

// LoadConfigFromEnv loads worker configuration from the environment with
// fail-open fallback: each invalid value reverts to its default, logs a
// warning and bumps the fallback metrics. The returned config is always
// valid and the error is always nil.
//
// Environment variables:
//   - INGEST_CRON_SCHEDULE: cron expression (default "*/30 * * * *")
//   - CARDS_CRON_SCHEDULE: cron expression (default "5 * * * *")
//   - WORKER_TIMEZONE: IANA timezone name (default "UTC")
//   - JOB_TIMEOUT: duration string, 1m-2h (default "10m")
//   - WORKER_HEALTH_PORT: integer 1024-65535 (default 9091)
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) (*WorkerConfig, error) {
	cfg := DefaultConfig()
	fallbackApplied := false

	applyFallback := func(field string, result config.ConfigLoadResult) {
		fallbackApplied = true
		metrics.RecordValidationError(field)
		metrics.RecordFallback(field)
		for _, warning := range result.Warnings {
			logger.Warn("configuration fallback applied",
				slog.String("field", field),
				slog.String("warning", warning))
		}
	}

	result := config.LoadEnvWithFallback("INGEST_CRON_SCHEDULE", cfg.IngestSchedule, config.ValidateCronSchedule)
	cfg.IngestSchedule = result.Value.(string)
	if result.FallbackApplied {
		applyFallback("ingest_schedule", result)
	}

	result = config.LoadEnvWithFallback("CARDS_CRON_SCHEDULE", cfg.CardsSchedule, config.ValidateCronSchedule)
	cfg.CardsSchedule = result.Value.(string)
	if result.FallbackApplied {
		applyFallback("cards_schedule", result)
	}

	result = config.LoadEnvWithFallback("WORKER_TIMEZONE", cfg.Timezone, config.ValidateTimezone)
	cfg.Timezone = result.Value.(string)
	if result.FallbackApplied {
		applyFallback("timezone", result)
	}

	result = config.LoadEnvDuration("JOB_TIMEOUT", cfg.JobTimeout, func(d time.Duration) error {
		return config.ValidateDuration(d, 1*time.Minute, 2*time.Hour)
	})
	cfg.JobTimeout = result.Value.(time.Duration)
	if result.FallbackApplied {
		applyFallback("job_timeout", result)
	}

	result = config.LoadEnvInt("WORKER_HEALTH_PORT", cfg.HealthPort, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	})
	cfg.HealthPort = result.Value.(int)
	if result.FallbackApplied {
		applyFallback("health_port", result)
	}

	metrics.SetFallbackActive(fallbackApplied)
	metrics.RecordLoadTimestamp()

	return &cfg, nil
}
