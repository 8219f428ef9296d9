package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/ysohn/markdrive/internal/config"
	"github.com/ysohn/markdrive/internal/httpserver"
	"github.com/ysohn/markdrive/internal/httpserver/deps"
	"github.com/ysohn/markdrive/internal/lock"
	"github.com/ysohn/markdrive/internal/logger"
	"github.com/ysohn/markdrive/internal/metadata"
	"github.com/ysohn/markdrive/internal/query"
	"github.com/ysohn/markdrive/internal/redis"
	"github.com/ysohn/markdrive/internal/remote"
	remoteredis "github.com/ysohn/markdrive/internal/remote/redis"
	"github.com/ysohn/markdrive/internal/sources/seedfile"
	"github.com/ysohn/markdrive/internal/store"
	msync "github.com/ysohn/markdrive/internal/sync"
	"github.com/ysohn/markdrive/internal/version"
)

// defaultFolders are created when the service starts with nothing: no
// remote document, no seed file.
var defaultFolders = []string{"General", "Starred"}

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	coordinator *msync.Coordinator
	syncTrigger chan struct{}
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
		DB:             cfg.RedisDB,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
	}, loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	loggerClient.Info("Redis initialized successfully")

	remoteStore := remoteredis.NewStore(redisClient)
	entityStore := store.New(loggerClient)

	watermark := bootstrap(cfg, entityStore, remoteStore, loggerClient)

	sessions := lock.NewKeeper(lock.KeeperConfig{IdleTTL: cfg.SessionTTL})
	engine := query.New(entityStore, sessions)

	syncTrigger := make(chan struct{}, 1)
	coordinator := msync.New(entityStore, remoteStore, loggerClient, msync.Options{
		Interval:  cfg.SyncInterval,
		Trigger:   syncTrigger,
		Watermark: watermark,
	})

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:          loggerClient,
		StartTime:       time.Now(),
		Version:         version.Version,
		Commit:          version.Commit,
		BuildDate:       version.BuildDate,
		GoVersion:       version.GoVersion,
		TimeNow:         time.Now,
		AllowedHosts:    cfg.AllowedHosts,
		AdminCIDRS:      cfg.AdminCIDRS,
		TrustProxy:      cfg.TrustProxy,
		Store:           entityStore,
		Query:           engine,
		Sessions:        sessions,
		Coordinator:     coordinator,
		Metadata:        metadata.NewFetcher(cfg.MetadataTimeout),
		RedisClient:     redisClient,
		UnlockBurst:     cfg.UnlockBurst,
		UnlockPerMinute: cfg.UnlockPerMinute,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		coordinator: coordinator,
		syncTrigger: syncTrigger,
	}
}

// bootstrap fills the entity store on startup: the remote document wins
// if one exists, then an optional seed file, and as a last resort the
// default folders so a fresh install is not an empty screen. When the
// remote document was loaded, its timestamp is returned so the sync
// coordinator starts with a watermark and local deletions made before the
// first sync are not resurrected from the remote copy.
func bootstrap(cfg *config.Config, s *store.Store, r remote.Store, log logger.Logger) time.Time {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	doc, err := r.LoadDocument(ctx)
	switch {
	case err == nil:
		if err := s.Replace(doc); err != nil {
			log.Error("remote document rejected, starting empty", logger.Error(err))
		} else {
			b, f, t := s.Counts()
			log.Info("loaded collection from remote store",
				logger.Int("bookmarks", b),
				logger.Int("folders", f),
				logger.Int("tags", t))
			return doc.LastModified
		}
	case errors.Is(err, remote.ErrNotFound):
		log.Info("no remote document yet, starting fresh")
	default:
		log.Warn("could not load remote document, starting from local state",
			logger.Error(err))
	}

	if cfg.SeedFile != "" {
		seed, err := seedfile.NewLoader(cfg.SeedFile).Load()
		if err != nil {
			log.Error("seed file unreadable, skipping", logger.Error(err))
		} else if err := seedfile.Apply(seed, s, log); err != nil {
			log.Error("seed file could not be applied", logger.Error(err))
		}
	}

	if !s.Empty() {
		return time.Time{}
	}

	for _, name := range defaultFolders {
		if _, err := s.CreateFolder(store.FolderInput{Name: name}); err != nil {
			log.Warn("default folder creation failed",
				logger.String("name", name),
				logger.Error(err))
		}
	}
	log.Info("initialized default folders")
	return time.Time{}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Markdrive v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("Markdrive %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start periodic remote sync (no-op if the interval is zero)
	a.coordinator.Start(ctx)
	if a.cfg.SyncInterval > 0 {
		a.logger.Info("background sync started",
			logger.Duration("interval", a.cfg.SyncInterval))
		// Push bootstrap state (seed data, default folders) without
		// waiting for the first tick.
		select {
		case a.syncTrigger <- struct{}{}:
		default:
		}
	} else {
		a.logger.Info("background sync disabled, manual sync only")
	}

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

	a.coordinator.Stop()

	// Best effort: push local changes before going away.
	syncCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	if err := a.coordinator.Sync(syncCtx); err != nil {
		a.logger.Warnf("final sync failed: %v", err)
	}
	cancel()

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

	a.logger.Info("✅ Markdrive stopped cleanly")
	return nil
}
