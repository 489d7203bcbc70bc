package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/robfig/cron/v3"

	"decks/internal/handler/http/respond"
	pgRepo "decks/internal/infra/adapter/persistence/postgres"
	"decks/internal/infra/db"
	"decks/internal/infra/fetcher"
	"decks/internal/infra/parser"
	workerPkg "decks/internal/infra/worker"
	"decks/internal/observability/logging"
	"decks/internal/usecase/cards"
	"decks/internal/usecase/ingest"
)

// waitForMigrations blocks until the API has applied the schema. The worker
// never runs migrations itself.
func waitForMigrations(logger *slog.Logger, database *sql.DB) {
	const probe = "SELECT 1 FROM feeds LIMIT 1"
	for i := 0; i < 10; i++ {
		if _, err := database.Exec(probe); err == nil {
			return
		}
		logger.Info("waiting for migrations, retrying in 3s", slog.Int("attempt", i+1))
		time.Sleep(3 * time.Second)
	}
	logger.Error("migrations did not complete in time")
	os.Exit(1)
}

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	database := db.Open()
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()
	waitForMigrations(logger, database)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	workerMetrics := workerPkg.NewWorkerMetrics()
	workerConfig, err := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	if err != nil {
		logger.Error("failed to load worker configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker configuration loaded",
		slog.String("ingest_schedule", workerConfig.IngestSchedule),
		slog.String("cards_schedule", workerConfig.CardsSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Duration("job_timeout", workerConfig.JobTimeout),
		slog.Int("health_port", workerConfig.HealthPort))

	startMetricsServer(ctx, logger)

	healthAddr := fmt.Sprintf(":%d", workerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()

	ingestSvc, cardsSvc := setupServices(logger, database)

	startScheduler(logger, ingestSvc, cardsSvc, workerConfig, workerMetrics, healthServer)
}

// setupServices wires the repositories and use cases the scheduled jobs run.
func setupServices(logger *slog.Logger, database *sql.DB) (*ingest.Service, *cards.Service) {
	feedRepo := pgRepo.NewFeedRepo(database)
	itemRepo := pgRepo.NewItemRepo(database)
	cardRepo := pgRepo.NewCardRepo(database)
	orgRepo := pgRepo.NewOrgRepo(database)

	fetchConfig, err := fetcher.LoadConfigFromEnv()
	if err != nil {
		logger.Warn("invalid fetch configuration, using defaults", slog.Any("error", err))
		fetchConfig = fetcher.DefaultConfig()
	}
	feedFetcher := fetcher.NewFeedFetcher(fetchConfig)

	ingestConfig := ingest.LoadConfigFromEnv()
	if err := ingestConfig.Validate(); err != nil {
		logger.Warn("invalid ingest configuration, using defaults", slog.Any("error", err))
		ingestConfig = ingest.DefaultConfig()
	}

	ingestSvc := ingest.NewService(feedRepo, itemRepo, feedFetcher, parser.NewRSSParser(), ingestConfig)
	cardsSvc := cards.NewService(orgRepo, itemRepo, cardRepo)
	return ingestSvc, cardsSvc
}

// startScheduler registers both cron jobs and blocks forever.
func startScheduler(
	logger *slog.Logger,
	ingestSvc *ingest.Service,
	cardsSvc *cards.Service,
	cfg *workerPkg.WorkerConfig,
	metrics *workerPkg.WorkerMetrics,
	healthServer *workerPkg.HealthServer,
) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone, using UTC", slog.String("timezone", cfg.Timezone), slog.Any("error", err))
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc))

	if _, err := c.AddFunc(cfg.IngestSchedule, func() {
		runIngestJob(logger, ingestSvc, cfg, metrics)
	}); err != nil {
		logger.Error("failed to add ingest job", slog.Any("error", err))
		os.Exit(1)
	}

	if _, err := c.AddFunc(cfg.CardsSchedule, func() {
		runCardsJob(logger, cardsSvc, cfg, metrics)
	}); err != nil {
		logger.Error("failed to add cards job", slog.Any("error", err))
		os.Exit(1)
	}

	c.Start()

	healthServer.SetReady(true)
	logger.Info("worker started",
		slog.String("ingest_schedule", cfg.IngestSchedule),
		slog.String("cards_schedule", cfg.CardsSchedule),
		slog.String("timezone", cfg.Timezone))
	select {}
}

// runIngestJob executes a single ingestion run with timeout and metrics.
func runIngestJob(logger *slog.Logger, svc *ingest.Service, cfg *workerPkg.WorkerConfig, metrics *workerPkg.WorkerMetrics) {
	const job = "ingest"
	startTime := time.Now()
	metrics.RecordJobRun(job, "started")
	logger.Info("ingest run started")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.JobTimeout)
	defer cancel()

	report, err := svc.Run(ctx)
	if err != nil {
		// 機密情報をマスクしてログ出力
		logger.Error("ingest run failed", slog.String("error", respond.SanitizeError(err)))
		metrics.RecordJobRun(job, "failure")
		metrics.RecordJobDuration(job, time.Since(startTime).Seconds())
		return
	}

	metrics.RecordJobRun(job, "success")
	metrics.RecordJobDuration(job, time.Since(startTime).Seconds())
	metrics.RecordItemsIngested(report.Inserted)
	metrics.RecordLastSuccess(job)

	logger.Info("ingest run completed",
		slog.Int("feeds_processed", report.FeedsProcessed),
		slog.Int("successful_feeds", report.SuccessfulFeeds),
		slog.Int("inserted", report.Inserted),
		slog.Int("skipped", report.Skipped),
		slog.Int("errors", len(report.Errors)),
		slog.Duration("duration", report.Duration),
	)
}

// runCardsJob executes a single card refresh run with timeout and metrics.
func runCardsJob(logger *slog.Logger, svc *cards.Service, cfg *workerPkg.WorkerConfig, metrics *workerPkg.WorkerMetrics) {
	const job = "cards"
	startTime := time.Now()
	metrics.RecordJobRun(job, "started")
	logger.Info("card refresh started")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.JobTimeout)
	defer cancel()

	result, err := svc.RefreshAll(ctx)
	if err != nil {
		logger.Error("card refresh failed", slog.String("error", respond.SanitizeError(err)))
		metrics.RecordJobRun(job, "failure")
		metrics.RecordJobDuration(job, time.Since(startTime).Seconds())
		return
	}

	metrics.RecordJobRun(job, "success")
	metrics.RecordJobDuration(job, time.Since(startTime).Seconds())
	metrics.RecordCardsRefreshed(result.CardsUpdated)
	metrics.RecordLastSuccess(job)

	logger.Info("card refresh completed",
		slog.Int("cards_updated", result.CardsUpdated),
		slog.Int("errors", len(result.Errors)),
		slog.Duration("duration", time.Since(startTime)),
	)
}
