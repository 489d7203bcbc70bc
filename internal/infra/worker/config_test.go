package worker

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

// promauto はデフォルトレジストリに登録するため、テスト全体で 1 インスタンスを共有する
var (
	testMetricsOnce sync.Once
	testMetrics     *WorkerMetrics
)

func workerTestMetrics() *WorkerMetrics {
	testMetricsOnce.Do(func() {
		testMetrics = NewWorkerMetrics()
	})
	return testMetrics
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.IngestSchedule != "*/30 * * * *" {
		t.Errorf("unexpected IngestSchedule %q", config.IngestSchedule)
	}
	if config.CardsSchedule != "5 * * * *" {
		t.Errorf("unexpected CardsSchedule %q", config.CardsSchedule)
	}
	if config.Timezone != "UTC" {
		t.Errorf("unexpected Timezone %q", config.Timezone)
	}
	if config.JobTimeout != 10*time.Minute {
		t.Errorf("unexpected JobTimeout %v", config.JobTimeout)
	}
	if config.HealthPort != 9091 {
		t.Errorf("unexpected HealthPort %d", config.HealthPort)
	}

	if err := config.Validate(); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
}

func TestWorkerConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*WorkerConfig)
		wantErr string
	}{
		{
			name:    "invalid ingest schedule",
			mutate:  func(c *WorkerConfig) { c.IngestSchedule = "every morning" },
			wantErr: "ingest schedule",
		},
		{
			name:    "invalid cards schedule",
			mutate:  func(c *WorkerConfig) { c.CardsSchedule = "0 0" },
			wantErr: "cards schedule",
		},
		{
			name:    "invalid timezone",
			mutate:  func(c *WorkerConfig) { c.Timezone = "Mars/Olympus_Mons" },
			wantErr: "timezone",
		},
		{
			name:    "zero job timeout",
			mutate:  func(c *WorkerConfig) { c.JobTimeout = 0 },
			wantErr: "job timeout",
		},
		{
			name:    "privileged health port",
			mutate:  func(c *WorkerConfig) { c.HealthPort = 80 },
			wantErr: "health port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(&config)

			err := config.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadConfigFromEnv_Defaults(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	config, err := LoadConfigFromEnv(logger, workerTestMetrics())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := DefaultConfig()
	if *config != want {
		t.Errorf("expected defaults %+v, got %+v", want, *config)
	}
}

func TestLoadConfigFromEnv_Overrides(t *testing.T) {
	t.Setenv("INGEST_CRON_SCHEDULE", "0 */2 * * *")
	t.Setenv("CARDS_CRON_SCHEDULE", "30 */2 * * *")
	t.Setenv("WORKER_TIMEZONE", "America/New_York")
	t.Setenv("JOB_TIMEOUT", "20m")
	t.Setenv("WORKER_HEALTH_PORT", "9200")

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	config, err := LoadConfigFromEnv(logger, workerTestMetrics())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if config.IngestSchedule != "0 */2 * * *" {
		t.Errorf("unexpected IngestSchedule %q", config.IngestSchedule)
	}
	if config.CardsSchedule != "30 */2 * * *" {
		t.Errorf("unexpected CardsSchedule %q", config.CardsSchedule)
	}
	if config.Timezone != "America/New_York" {
		t.Errorf("unexpected Timezone %q", config.Timezone)
	}
	if config.JobTimeout != 20*time.Minute {
		t.Errorf("unexpected JobTimeout %v", config.JobTimeout)
	}
	if config.HealthPort != 9200 {
		t.Errorf("unexpected HealthPort %d", config.HealthPort)
	}
}

func TestLoadConfigFromEnv_FallbackOnInvalid(t *testing.T) {
	t.Setenv("INGEST_CRON_SCHEDULE", "whenever")
	t.Setenv("JOB_TIMEOUT", "30s") // below the 1m floor

	var logBuf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logBuf, nil))

	config, err := LoadConfigFromEnv(logger, workerTestMetrics())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := DefaultConfig()
	if config.IngestSchedule != want.IngestSchedule {
		t.Errorf("expected fallback schedule %q, got %q", want.IngestSchedule, config.IngestSchedule)
	}
	if config.JobTimeout != want.JobTimeout {
		t.Errorf("expected fallback timeout %v, got %v", want.JobTimeout, config.JobTimeout)
	}

	logs := logBuf.String()
	if !strings.Contains(logs, "configuration fallback applied") {
		t.Errorf("expected fallback warning in logs, got %q", logs)
	}
	if !strings.Contains(logs, "ingest_schedule") {
		t.Errorf("expected ingest_schedule field in logs, got %q", logs)
	}
}
