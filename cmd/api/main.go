package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	hhttp "decks/internal/handler/http"
	pgRepo "decks/internal/infra/adapter/persistence/postgres"
	"decks/internal/infra/db"
	"decks/internal/infra/fetcher"
	"decks/internal/infra/parser"
	"decks/internal/observability/logging"
	"decks/internal/usecase/cards"
	"decks/internal/usecase/feedgen"
	"decks/internal/usecase/ingest"
	"decks/pkg/config"
)

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	handler := buildHandler(logger, database)
	runServer(logger, handler)
}

// initDatabase opens the database connection and applies pending migrations.
func initDatabase(logger *slog.Logger) *sql.DB {
	database := db.Open()
	if err := db.MigrateUp(database); err != nil {
		logger.Error("migration failed", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

// buildHandler wires the repositories, use cases and HTTP surface together.
func buildHandler(logger *slog.Logger, database *sql.DB) http.Handler {
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
	feedgenSvc := feedgen.NewService(orgRepo, feedRepo)

	serviceToken := os.Getenv("SERVICE_TOKEN")
	if serviceToken == "" {
		logger.Warn("SERVICE_TOKEN not set, run-trigger endpoints are disabled")
	}

	return hhttp.NewRouter(hhttp.Deps{
		DB:      database,
		Ingest:  ingestSvc,
		Cards:   cardsSvc,
		FeedGen: feedgenSvc,
		Auth:    hhttp.NewServiceAuth(serviceToken),
		Logger:  logger,
		Version: getVersion(),
	})
}

func getVersion() string {
	return config.GetEnvString("APP_VERSION", "dev")
}

// runServer starts the HTTP server and blocks until SIGINT/SIGTERM, then
// shuts down gracefully.
func runServer(logger *slog.Logger, handler http.Handler) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addr := ":" + config.GetEnvString("API_PORT", "8080")
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second, // Slowloris 対策
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.String("version", getVersion()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
