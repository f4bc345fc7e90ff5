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
	"github.com/redis/go-redis/v9"

	"tubefeed/internal/infra/cache"
	"tubefeed/internal/infra/db"
	"tubefeed/internal/infra/extractor"
	"tubefeed/internal/infra/feed"
	"tubefeed/internal/infra/notifier"
	"tubefeed/internal/infra/provider"
	"tubefeed/internal/pkg/config"

	pgRepo "tubefeed/internal/infra/adapter/persistence/postgres"
	"tubefeed/internal/usecase/fetch"
	filterUC "tubefeed/internal/usecase/filter"
	"tubefeed/internal/usecase/media"
	"tubefeed/internal/usecase/notify"
	srcUC "tubefeed/internal/usecase/source"

	hhttp "tubefeed/internal/handler/http"
	hfilter "tubefeed/internal/handler/http/filter"
	hmedia "tubefeed/internal/handler/http/media"
	"tubefeed/internal/handler/http/middleware"
	"tubefeed/internal/handler/http/requestid"
	hsrc "tubefeed/internal/handler/http/source"
	hvideo "tubefeed/internal/handler/http/video"
	"tubefeed/internal/observability/logging"
	"tubefeed/internal/observability/metrics"
	"tubefeed/internal/observability/tracing"
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

	version := getVersion()
	handler, mediaCache := setupServer(logger, database)
	defer closeCache(logger, mediaCache)

	go pollDBStats(ctx, database)

	runServer(ctx, logger, handler, version)
}

// initLogger initializes the process-wide structured logger.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// initDatabase opens the database connection and runs migrations.
func initDatabase(ctx context.Context, logger *slog.Logger) *sql.DB {
	database, err := db.Open(ctx)
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	if err := db.MigrateUp(database); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

// getVersion returns the application version from environment or default.
func getVersion() string {
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	return version
}

// setupServer wires repositories, use cases and handlers into the HTTP
// handler. The returned cache is nil when Redis is not configured.
func setupServer(logger *slog.Logger, database *sql.DB) (http.Handler, *cache.MediaCache) {
	sources := pgRepo.NewSourceRepo(database)
	videos := pgRepo.NewVideoRepo(database)
	filters := pgRepo.NewFilterRepo(database)

	mediaCache := setupCache(logger)

	providers := setupProviders(logger)

	extractorURL := config.String("EXTRACTOR_URL", "http://localhost:8090")
	ext := extractor.NewClient(extractorURL, nil)

	feedsDir := config.String("FEEDS_DIR", "./feeds")
	publicURL := config.String("PUBLIC_URL", "http://localhost:8080")
	feeds := feed.NewRSSMaterializer(feedsDir, publicURL)

	notifyService := setupNotify(logger)

	fetchCfg := fetch.Config{
		DeleteOrphans: config.Bool("FETCH_DELETE_ORPHANS", false).Value,
	}
	fetchSvc := fetch.NewService(sources, videos, filters, ext, providers, feeds, notifyService, fetchCfg)

	srcSvc := srcUC.NewService(sources, providers, feeds)
	filterSvc := filterUC.NewService(filters, sources, feeds)
	guard := media.NewGuard(videos, providers, fetchSvc, mediaCache)

	ipExtractor := setupIPExtractor(logger)

	// レート制限: フェッチ起動は1分間に10リクエストまで
	fetchRateLimiter := middleware.NewRateLimiter(10, 1*time.Minute, ipExtractor)

	// JSON API routes run under a request deadline. Media proxying and
	// feed downloads stream for as long as the body takes, so they are
	// mounted outside the timeout.
	apiMux := http.NewServeMux()
	hsrc.Register(apiMux, srcSvc, fetchSvc, fetchRateLimiter)
	hvideo.Register(apiMux, videos, fetchSvc)
	hfilter.Register(apiMux, filterSvc)
	api := hhttp.Timeout(30 * time.Second)(apiMux)

	mux := http.NewServeMux()
	for _, prefix := range []string{"/sources", "/sources/", "/videos", "/videos/", "/filters", "/filters/", "/fetch"} {
		mux.Handle(prefix, api)
	}

	hmedia.Register(mux, guard)

	// Materialized RSS documents are plain files under feedsDir.
	mux.Handle("GET /feeds/", http.StripPrefix("/feeds/", http.FileServer(http.Dir(feedsDir))))

	// ヘルスチェックエンドポイント
	mux.Handle("/health", &hhttp.HealthHandler{DB: database, Cache: mediaCache, Version: getVersion()})
	mux.Handle("/ready", &hhttp.ReadyHandler{DB: database})
	mux.Handle("/live", &hhttp.LiveHandler{})
	mux.Handle("/metrics", hhttp.MetricsHandler())

	return applyMiddleware(logger, mux), mediaCache
}

// setupCache connects to Redis when REDIS_ADDR is set. Media delivery
// works without it, so a missing address only disables response caching.
func setupCache(logger *slog.Logger) *cache.MediaCache {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		logger.Info("media cache disabled, REDIS_ADDR not set")
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})
	logger.Info("media cache enabled", slog.String("addr", addr))
	return cache.NewMediaCache(client)
}

func closeCache(logger *slog.Logger, mediaCache *cache.MediaCache) {
	if mediaCache == nil {
		return
	}
	if err := mediaCache.Close(); err != nil {
		logger.Error("failed to close media cache", slog.Any("error", err))
	}
}

// setupProviders loads the platform handler configuration. A missing
// file leaves every platform on built-in defaults.
func setupProviders(logger *slog.Logger) *provider.Registry {
	path := config.String("HANDLERS_CONFIG", "handlers.yaml")
	cfg, err := provider.LoadConfig(path)
	if err != nil {
		logger.Error("failed to load handler configuration",
			slog.String("path", path), slog.Any("error", err))
		os.Exit(1)
	}
	return provider.NewRegistry(cfg)
}

// setupNotify builds the notification fan-out from webhook environment
// variables. Channels without a webhook URL stay disabled.
func setupNotify(logger *slog.Logger) notify.Service {
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

	maxConcurrent := config.Int("NOTIFY_MAX_CONCURRENT", 10, func(v int) error {
		return config.ValidateIntRange(v, 1, 50)
	}).Value
	return notify.NewService(channels, maxConcurrent)
}

// setupIPExtractor selects the client IP strategy for rate limiting.
func setupIPExtractor(logger *slog.Logger) middleware.IPExtractor {
	proxyConfig, err := middleware.LoadTrustedProxyConfig()
	if err != nil {
		logger.Error("failed to load trusted proxy configuration", slog.Any("error", err))
		os.Exit(1)
	}
	if proxyConfig.Enabled {
		logger.Info("rate limiting: trusted proxy mode enabled",
			slog.Int("trusted_proxies_count", len(proxyConfig.AllowedCIDRs)))
		return middleware.NewTrustedProxyExtractor(*proxyConfig)
	}
	logger.Info("rate limiting: using RemoteAddr (proxy headers ignored)")
	return &middleware.RemoteAddrExtractor{}
}

// applyMiddleware wraps the handler with the middleware chain, applied
// in reverse order (innermost to outermost):
// Request ID → Tracing → Validation → Recovery → Logging → Body Limit → Metrics
func applyMiddleware(logger *slog.Logger, handler http.Handler) http.Handler {
	chain := handler
	chain = hhttp.MetricsMiddleware(chain)
	chain = hhttp.LimitRequestBody(1 << 20)(chain) // 1MB limit
	chain = hhttp.Logging(logger)(chain)
	chain = hhttp.Recover(logger)(chain)
	chain = hhttp.ValidateRequest()(chain)
	chain = tracing.Middleware(chain)
	chain = requestid.Middleware(chain)
	return chain
}

// pollDBStats samples the connection pool for the metrics endpoint.
func pollDBStats(ctx context.Context, database *sql.DB) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.RecordDBPoolStats(database.Stats())
		}
	}
}

// runServer starts the HTTP server and handles graceful shutdown.
func runServer(ctx context.Context, logger *slog.Logger, handler http.Handler, version string) {
	addr := config.String("LISTEN_ADDR", ":8080")
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attacks
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
