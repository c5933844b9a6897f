package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/vaporshelf/edge/internal/config"
	"github.com/vaporshelf/edge/internal/feed"
	"github.com/vaporshelf/edge/internal/httpserver"
	"github.com/vaporshelf/edge/internal/httpserver/deps"
	"github.com/vaporshelf/edge/internal/httpserver/mw"
	"github.com/vaporshelf/edge/internal/locale"
	"github.com/vaporshelf/edge/internal/logger"
	"github.com/vaporshelf/edge/internal/redis"
	"github.com/vaporshelf/edge/internal/scheduler"
	"github.com/vaporshelf/edge/internal/sitecfg"
	redisstore "github.com/vaporshelf/edge/internal/store/redis"
	"github.com/vaporshelf/edge/internal/upstream/health"
	"github.com/vaporshelf/edge/internal/upstream/presence"
	"github.com/vaporshelf/edge/internal/upstream/release"
	"github.com/vaporshelf/edge/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	registry    *sitecfg.Registry
	reloader    *scheduler.SiteReloader
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Redis is optional: without it each instance keeps its own caches.
	var redisClient *goredis.Client
	var store feed.SnapshotStore
	if cfg.RedisAddr != "" {
		loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		client, err := redis.New(redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			RedisDB:        cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, loggerClient)
		if err != nil {
			loggerClient.Errorf("Failed to connect to Redis: %v", err)
			os.Exit(1)
		}
		loggerClient.Info("Redis initialized successfully")
		redisClient = client
		store = redisstore.NewStore(client)
	} else {
		loggerClient.Info("Redis not configured, shared snapshot store disabled")
	}

	// Live site data (locales, roster, health targets)
	registry := sitecfg.NewRegistry()

	// Create manual reload trigger channel
	reloadTrigger := make(chan struct{}, 1)

	reloader := scheduler.NewSiteReloader(
		cfg.SiteFile,
		registry,
		loggerClient,
		cfg.ReloadInterval,
		reloadTrigger,
	)

	// One client shared by the release and presence fetchers.
	fetchClient := &http.Client{Timeout: cfg.FetchTimeout}

	releases := feed.NewReleaseFeed(
		release.NewClient(fetchClient, cfg.GithubAPI, cfg.GithubRepo, cfg.AssetSuffix, cfg.ReleasesURL),
		cfg.ReleaseTTL, time.Now, store, loggerClient,
	)
	presenceFeed := feed.NewPresenceFeed(
		presence.NewClient(fetchClient, cfg.LanyardURL),
		registry, cfg.PresenceTTL, time.Now, store, loggerClient,
	)
	healthFeed := feed.NewHealthFeed(
		health.NewProber(cfg.ProbeTimeout, cfg.SlowThreshold, time.Now),
		registry, cfg.HealthTTL, time.Now, store, loggerClient,
	)

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:        loggerClient,
		StartTime:     time.Now(),
		Version:       version.Version,
		Commit:        version.Commit,
		BuildDate:     version.BuildDate,
		GoVersion:     version.GoVersion,
		TimeNow:       time.Now,
		AllowedHosts:  cfg.AllowedHosts,
		AllowedCIDRS:  cfg.AllowedCIDRS,
		TrustProxy:    cfg.TrustProxy,
		DebugSecret:   cfg.DebugSecret,
		Resolver:      locale.NewResolver("/api", "/_assets"),
		Site:          registry,
		Releases:      releases,
		Presence:      presenceFeed,
		Health:        healthFeed,
		RedisClient:   redisClient,
		ReloadTrigger: reloadTrigger,
		APILimiter: mw.RateLimit(mw.RateLimitConfig{
			Burst:             cfg.RateBurst,
			RefillPerIPPerMin: cfg.RateRefill,
			TrustProxy:        cfg.TrustProxy,
		}),
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		registry:    registry,
		reloader:    reloader,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting edge v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("edge %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start site reloader (loads site data and starts periodic refresh)
	if err := a.reloader.Start(ctx); err != nil {
		return fmt.Errorf("failed to start site reloader: %w", err)
	}
	a.logger.Info("site reloader started",
		logger.Duration("interval", a.cfg.ReloadInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	a.reloader.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ edge stopped cleanly")
	return nil
}
