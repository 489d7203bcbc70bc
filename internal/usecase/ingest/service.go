package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"decks/internal/domain/entity"
	"decks/internal/observability/metrics"
	"decks/internal/repository"
	"decks/internal/utils/text"
	"decks/pkg/config"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Config holds the run-shaping knobs of the ingestion orchestrator.
type Config struct {
	MaxFeedsPerRun  int           // feeds processed per invocation
	BatchSize       int           // feeds fetched concurrently per batch
	BatchPause      time.Duration // minimum spacing between batch starts
	MaxItemsPerFeed int           // parsed entries accepted per feed
	MinTitleLength  int           // sanitized titles shorter than this are rejected
	MaxItemAge      time.Duration // entries published earlier than now-MaxItemAge are rejected
}

// DefaultConfig returns the production ingestion configuration.
func DefaultConfig() Config {
	return Config{
		MaxFeedsPerRun:  100,
		BatchSize:       5,
		BatchPause:      time.Second,
		MaxItemsPerFeed: 20,
		MinTitleLength:  10,
		MaxItemAge:      365 * 24 * time.Hour,
	}
}

// LoadConfigFromEnv creates a Config from environment variables, falling
// back to the defaults for unset or invalid values.
func LoadConfigFromEnv() Config {
	def := DefaultConfig()
	return Config{
		MaxFeedsPerRun:  config.GetEnvInt("INGEST_MAX_FEEDS", def.MaxFeedsPerRun),
		BatchSize:       config.GetEnvInt("INGEST_BATCH_SIZE", def.BatchSize),
		BatchPause:      config.GetEnvDuration("INGEST_BATCH_PAUSE", def.BatchPause),
		MaxItemsPerFeed: config.GetEnvInt("INGEST_MAX_ITEMS_PER_FEED", def.MaxItemsPerFeed),
		MinTitleLength:  def.MinTitleLength,
		MaxItemAge:      def.MaxItemAge,
	}
}

// Validate checks the configuration for invalid values.
func (c Config) Validate() error {
	if c.MaxFeedsPerRun <= 0 {
		return fmt.Errorf("max feeds per run must be positive, got %d", c.MaxFeedsPerRun)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive, got %d", c.BatchSize)
	}
	if c.MaxItemsPerFeed <= 0 {
		return fmt.Errorf("max items per feed must be positive, got %d", c.MaxItemsPerFeed)
	}
	return nil
}

// Service orchestrates one ingestion run: list active feeds, fetch and parse
// each in fixed-size concurrent batches, and upsert the normalized items.
//
// Each run is stateless and idempotent: re-running over the same feeds only
// grows the skipped counter, never duplicates rows.
type Service struct {
	feeds   repository.FeedRepository
	items   repository.ItemRepository
	fetcher BodyFetcher
	parser  FeedParser
	cfg     Config

	now func() time.Time
}

// NewService creates a new ingest Service with the provided collaborators.
func NewService(
	feeds repository.FeedRepository,
	items repository.ItemRepository,
	fetcher BodyFetcher,
	parser FeedParser,
	cfg Config,
) *Service {
	return &Service{
		feeds:   feeds,
		items:   items,
		fetcher: fetcher,
		parser:  parser,
		cfg:     cfg,
		now:     time.Now,
	}
}

// Run executes one ingestion pass over all active feeds.
//
// Per-feed failures (unsafe URL, fetch exhaustion, oversized body) are
// isolated: they are appended to the report's bounded error list and never
// abort the remaining feeds. Item-level write failures count as skipped and
// do not fail their feed. Run returns a non-nil error only when the feed
// list itself cannot be enumerated.
func (s *Service) Run(ctx context.Context) (*Report, error) {
	logger := slog.Default()
	start := s.now()

	feeds, err := s.feeds.ListActive(ctx, s.cfg.MaxFeedsPerRun)
	if err != nil {
		metrics.RecordIngestRun("failure", time.Since(start))
		return nil, fmt.Errorf("list active feeds: %w", err)
	}

	report := &Report{FeedsProcessed: len(feeds)}
	metrics.UpdateFeedsTotal(len(feeds))

	// バッチ間のペーシング: burst 1 なので最初のバッチだけ即時に通る
	limiter := rate.NewLimiter(rate.Every(s.cfg.BatchPause), 1)
	var mu sync.Mutex

	for i := 0; i < len(feeds); i += s.cfg.BatchSize {
		if err := limiter.Wait(ctx); err != nil {
			mu.Lock()
			report.addError(fmt.Sprintf("run interrupted: %v", err))
			mu.Unlock()
			break
		}

		batch := feeds[i:min(i+s.cfg.BatchSize, len(feeds))]
		g, gctx := errgroup.WithContext(ctx)
		for _, feed := range batch {
			feed := feed
			g.Go(func() error {
				inserted, skipped, feedErr := s.processFeed(gctx, feed)

				mu.Lock()
				defer mu.Unlock()
				report.Inserted += inserted
				report.Skipped += skipped
				if feedErr != nil {
					report.addError(fmt.Sprintf("%s: %v", feed.Describe(), feedErr))
					return nil
				}
				report.SuccessfulFeeds++
				return nil
			})
		}
		// Goroutines report failures through the shared report, never as
		// group errors, so one bad feed cannot cancel its batch.
		_ = g.Wait()
	}

	report.Duration = time.Since(start)
	metrics.RecordIngestRun(runStatus(report), report.Duration)

	logger.Info("ingest run completed",
		slog.Int("feeds_processed", report.FeedsProcessed),
		slog.Int("successful_feeds", report.SuccessfulFeeds),
		slog.Int("inserted", report.Inserted),
		slog.Int("skipped", report.Skipped),
		slog.Int("errors", len(report.Errors)),
		slog.Duration("duration", report.Duration),
	)

	return report, nil
}

// processFeed fetches, parses and upserts one feed. Only fetch failures
// surface as feed errors; a failed item write is logged, counted as
// skipped and the remaining items are still attempted.
func (s *Service) processFeed(ctx context.Context, feed *entity.Feed) (inserted, skipped int, err error) {
	logger := slog.Default()

	body, fetchErr := s.fetcher.FetchBody(ctx, feed.URL)
	if fetchErr != nil {
		return 0, 0, fetchErr
	}

	parsed := s.parser.Parse(body)
	if len(parsed) == 0 {
		logger.Info("feed yielded no items",
			slog.Int64("feed_id", feed.ID),
			slog.String("feed_url", feed.URL))
		return 0, 0, nil
	}
	if len(parsed) > s.cfg.MaxItemsPerFeed {
		parsed = parsed[:s.cfg.MaxItemsPerFeed]
	}

	now := s.now()
	oldest := now.Add(-s.cfg.MaxItemAge)
	var duplicated, rejected int

	for _, p := range parsed {
		title := text.Sanitize(p.Raw.Title)
		if utf8.RuneCountInString(title) < s.cfg.MinTitleLength {
			skipped++
			rejected++
			continue
		}
		// Garbage timestamps must not dominate: anything older than the
		// acceptance window or in the future is dropped, not stored.
		if p.PublishedAt.Before(oldest) || p.PublishedAt.After(now) {
			skipped++
			rejected++
			continue
		}

		item := &entity.Item{
			OrgID:       feed.OrgID,
			CompanyID:   feed.CompanyID,
			TopicID:     feed.TopicID,
			SourceKind:  feed.Kind,
			SourceID:    sourceID(p.Raw),
			Title:       title,
			URL:         p.Raw.Link,
			PublishedAt: p.PublishedAt,
			Raw:         p.Raw,
		}
		if p.Raw.Description != "" {
			if summary := text.Summarize(p.Raw.Description); summary != "" {
				item.Summary = &summary
			}
		}

		wasInserted, upsertErr := s.items.Upsert(ctx, item)
		if upsertErr != nil {
			// 書き込み失敗は skipped 扱い。フィードは中断しない。
			logger.Warn("item upsert failed",
				slog.Int64("feed_id", feed.ID),
				slog.String("source_id", item.SourceID),
				slog.String("error", upsertErr.Error()))
			skipped++
			continue
		}
		if wasInserted {
			inserted++
		} else {
			skipped++
			duplicated++
		}
	}

	metrics.RecordItemsIngested(inserted, duplicated, rejected)
	return inserted, skipped, nil
}

// runStatus classifies a finished run for metrics.
func runStatus(r *Report) string {
	switch {
	case len(r.Errors) == 0:
		return "success"
	case r.SuccessfulFeeds == 0:
		return "failure"
	default:
		return "partial"
	}
}
