package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/robfig/cron/v3"

	pgRepo "tubefeed/internal/infra/adapter/persistence/postgres"
	"tubefeed/internal/infra/db"
	"tubefeed/internal/infra/extractor"
	"tubefeed/internal/infra/feed"
	"tubefeed/internal/infra/notifier"
	"tubefeed/internal/infra/provider"
	workerPkg "tubefeed/internal/infra/worker"
	"tubefeed/internal/observability/logging"
	"tubefeed/internal/observability/metrics"
	"tubefeed/internal/observability/slo"
	"tubefeed/internal/pkg/config"
	"tubefeed/internal/usecase/fetch"
	"tubefeed/internal/usecase/notify"
)

func main() {
	logger := initLogger()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	database := initDatabase(ctx, logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	workerMetrics := workerPkg.NewMetrics()
	workerCfg := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", workerCfg.CronSchedule),
		slog.String("timezone", workerCfg.Timezone),
		slog.Duration("fetch_timeout", workerCfg.FetchTimeout),
		slog.Int("notify_max_concurrent", workerCfg.NotifyMaxConcurrent),
		slog.Int("health_port", workerCfg.HealthPort))

	notifyService := setupNotify(logger, workerCfg.NotifyMaxConcurrent)
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := notifyService.Shutdown(shutdownCtx); err != nil {
			logger.Error("notification shutdown incomplete", slog.Any("error", err))
		}
	}()

	startMetricsServer(ctx, logger, notifyService)

	healthAddr := fmt.Sprintf(":%d", workerCfg.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()

	svc := setupFetchService(logger, database, notifyService)

	runScheduler(ctx, logger, database, svc, workerCfg, workerMetrics, healthServer)
}

// initLogger initializes the process-wide structured logger.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// initDatabase opens the database connection and waits for the API
// server's migrations to complete.
func initDatabase(ctx context.Context, logger *slog.Logger) *sql.DB {
	database, err := db.Open(ctx)
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	waitForMigrations(logger, database)
	return database
}

func waitForMigrations(logger *slog.Logger, database *sql.DB) {
	const probe = "SELECT 1 FROM sources LIMIT 1"
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

// setupNotify builds the notification fan-out from webhook environment
// variables. Channels without a webhook URL stay disabled.
func setupNotify(logger *slog.Logger, maxConcurrent int) notify.Service {
	var channels []notify.Channel

	if url := os.Getenv("SLACK_WEBHOOK_URL"); url != "" {
		channels = append(channels, notify.NewSlackChannel(notifier.SlackConfig{
			Enabled:    true,
			WebhookURL: url,
			Timeout:    10 * time.Second,
		}))
		logger.Info("slack notifications enabled")
	}
	if url := os.Getenv("DISCORD_WEBHOOK_URL"); url != "" {
		channels = append(channels, notify.NewDiscordChannel(notifier.DiscordConfig{
			Enabled:    true,
			WebhookURL: url,
			Timeout:    10 * time.Second,
		}))
		logger.Info("discord notifications enabled")
	}

	logger.Info("notification service initialized",
		slog.Int("channels", len(channels)),
		slog.Int("max_concurrent", maxConcurrent))
	return notify.NewService(channels, maxConcurrent)
}

// setupFetchService wires the fetch pipeline with its dependencies.
func setupFetchService(logger *slog.Logger, database *sql.DB, notifyService notify.Service) *fetch.Service {
	sources := pgRepo.NewSourceRepo(database)
	videos := pgRepo.NewVideoRepo(database)
	filters := pgRepo.NewFilterRepo(database)

	handlersPath := config.String("HANDLERS_CONFIG", "handlers.yaml")
	providerCfg, err := provider.LoadConfig(handlersPath)
	if err != nil {
		logger.Error("failed to load handler configuration",
			slog.String("path", handlersPath), slog.Any("error", err))
		os.Exit(1)
	}
	providers := provider.NewRegistry(providerCfg)

	extractorURL := config.String("EXTRACTOR_URL", "http://localhost:8090")
	ext := extractor.NewClient(extractorURL, nil)

	feedsDir := config.String("FEEDS_DIR", "./feeds")
	publicURL := config.String("PUBLIC_URL", "http://localhost:8080")
	feeds := feed.NewRSSMaterializer(feedsDir, publicURL)

	fetchCfg := fetch.Config{
		DeleteOrphans: config.Bool("FETCH_DELETE_ORPHANS", false).Value,
	}
	return fetch.NewService(sources, videos, filters, ext, providers, feeds, notifyService, fetchCfg)
}

// runScheduler starts the cron scheduler and blocks until a shutdown
// signal arrives.
func runScheduler(
	ctx context.Context,
	logger *slog.Logger,
	database *sql.DB,
	svc *fetch.Service,
	cfg workerPkg.Config,
	workerMetrics *workerPkg.Metrics,
	healthServer *workerPkg.HealthServer,
) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone, using UTC",
			slog.String("timezone", cfg.Timezone), slog.Any("error", err))
		loc = time.UTC
	}

	var runs, failedRuns atomic.Int64

	c := cron.New(cron.WithLocation(loc))
	_, err = c.AddFunc(cfg.CronSchedule, func() {
		runFetchJob(ctx, logger, database, svc, cfg, workerMetrics, &runs, &failedRuns)
	})
	if err != nil {
		logger.Error("failed to add cron job", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()

	healthServer.SetReady(true)
	logger.Info("worker started",
		slog.String("schedule", cfg.CronSchedule),
		slog.String("timezone", cfg.Timezone))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down worker...")

	healthServer.SetReady(false)

	// Stop scheduling new runs, then wait for the in-flight one.
	stopCtx := c.Stop()
	<-stopCtx.Done()
	logger.Info("worker stopped")
}

// runFetchJob executes a single fetch over all sources with a timeout,
// records run metrics and refreshes the inventory gauges.
func runFetchJob(
	ctx context.Context,
	logger *slog.Logger,
	database *sql.DB,
	svc *fetch.Service,
	cfg workerPkg.Config,
	workerMetrics *workerPkg.Metrics,
	runs, failedRuns *atomic.Int64,
) {
	start := time.Now()
	workerMetrics.RecordRun("started")
	logger.Info("fetch run started")

	runCtx, cancel := context.WithTimeout(ctx, cfg.FetchTimeout)
	defer cancel()

	results, err := svc.FetchAllSources(runCtx)
	total := runs.Add(1)

	workerMetrics.RecordRunDuration(time.Since(start).Seconds())
	if err != nil {
		failed := failedRuns.Add(1)
		workerMetrics.RecordRun("failure")
		slo.UpdateFetchSuccess(float64(total-failed) / float64(total))
		logger.Error("fetch run failed", slog.Any("error", err))
		return
	}

	workerMetrics.RecordRun("success")
	workerMetrics.RecordSourcesProcessed(results.Sources)
	workerMetrics.RecordLastSuccess()
	slo.UpdateFetchSuccess(float64(total-failedRuns.Load()) / float64(total))

	updateInventoryGauges(runCtx, database)

	logger.Info("fetch run completed",
		slog.Int("sources", results.Sources),
		slog.Int("added_videos", results.AddedVideos),
		slog.Int("deleted_videos", results.DeletedVideos),
		slog.Int("refreshed_videos", results.RefreshedVideos),
		slog.Duration("duration", time.Since(start)))
}

// updateInventoryGauges refreshes the sources/videos totals after a
// run. Counting in SQL keeps this cheap even with a large library.
func updateInventoryGauges(ctx context.Context, database *sql.DB) {
	var sources, videos int64
	if err := database.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sources WHERE NOT deleted`).Scan(&sources); err == nil {
		metrics.SourcesTotal.Set(float64(sources))
	}
	if err := database.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM videos`).Scan(&videos); err == nil {
		metrics.VideosTotal.Set(float64(videos))
	}
}
