package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/seekmark/seekmark/internal/agent"
	"github.com/seekmark/seekmark/internal/bridge"
	"github.com/seekmark/seekmark/internal/config"
	"github.com/seekmark/seekmark/internal/httpserver"
	"github.com/seekmark/seekmark/internal/httpserver/deps"
	"github.com/seekmark/seekmark/internal/logger"
	"github.com/seekmark/seekmark/internal/playback"
	"github.com/seekmark/seekmark/internal/redis"
	"github.com/seekmark/seekmark/internal/scheduler"
	redisstore "github.com/seekmark/seekmark/internal/store/redis"
	"github.com/seekmark/seekmark/internal/version"
)

type App struct {
	cfg          *config.Config
	logger       logger.Logger
	server       *httpserver.Server
	redisClient  *goredis.Client
	bridge       *bridge.Bridge
	seedReloader *scheduler.SeedReloader
	gc           *scheduler.CommandGC
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Initialize Redis early - fail fast if unavailable
	loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
	redisClient, err := redis.New(redis.ConnectOptions{
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

	// Bookmark store over Redis
	store := redisstore.NewStore(redisClient)

	// Extension bridge and the tab/agent surfaces built on it
	br := bridge.New(cfg.CommandTimeout, cfg.CommandTTL, loggerClient)
	driver := bridge.NewDriver(br)
	agentClient := agent.NewClient(driver)

	synchronizer := playback.New(driver, agentClient, playback.Options{
		Host:         cfg.WatchHost,
		SettleDelay:  cfg.SettleDelay,
		SeekAttempts: cfg.SeekAttempts,
		SeekBackoff:  cfg.SeekBackoff,
	}, loggerClient)

	// Bridge command garbage collector
	gc := scheduler.NewCommandGC(br, loggerClient, cfg.GCInterval)

	// Seed reloader (if a seed file is configured)
	var seedReloader *scheduler.SeedReloader
	var seedReloadTrigger chan struct{}
	if cfg.SeedFile != "" {
		loggerClient.Info("seed file configured, initializing seed reloader",
			logger.String("file", cfg.SeedFile))
		seedReloadTrigger = make(chan struct{}, 1)
		seedReloader = scheduler.NewSeedReloader(
			cfg.SeedFile,
			store,
			loggerClient,
			cfg.SeedReloadInterval,
			seedReloadTrigger,
		)
	} else {
		loggerClient.Info("seed file not configured, seeding disabled")
	}

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:            loggerClient,
		StartTime:         time.Now(),
		Version:           version.Version,
		Commit:            version.Commit,
		BuildDate:         version.BuildDate,
		GoVersion:         version.GoVersion,
		TimeNow:           time.Now,
		WatchHost:         cfg.WatchHost,
		Store:             store,
		Bridge:            br,
		Driver:            driver,
		Agent:             agentClient,
		Synchronizer:      synchronizer,
		PullTimeout:       cfg.PullTimeout,
		AllowedCIDRS:      cfg.AllowedCIDRS,
		AllowedOrigins:    cfg.AllowedOrigins,
		TrustProxy:        cfg.TrustProxy,
		SeedReloadTrigger: seedReloadTrigger,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:          cfg,
		logger:       loggerClient,
		server:       server,
		redisClient:  redisClient,
		bridge:       br,
		seedReloader: seedReloader,
		gc:           gc,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting seekmark v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("seekmark %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start seed reloader (if enabled)
	if a.seedReloader != nil {
		if err := a.seedReloader.Start(ctx); err != nil {
			return fmt.Errorf("failed to start seed reloader: %w", err)
		}
		a.logger.Info("seed reloader started",
			logger.Duration("interval", a.cfg.SeedReloadInterval))
	}

	// Start bridge command garbage collector
	if err := a.gc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start bridge gc: %w", err)
	}
	a.logger.Info("bridge gc started",
		logger.Duration("interval", a.cfg.GCInterval))

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

	// Stop seed reloader
	if a.seedReloader != nil {
		a.seedReloader.Stop()
	}

	// Stop garbage collector
	a.gc.Stop()

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

	a.logger.Info("✅ seekmark stopped cleanly")
	return nil
}
