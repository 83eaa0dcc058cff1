package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/cnmzsjbz199328/LazyDog/cmd"
	"github.com/cnmzsjbz199328/LazyDog/internal/config"
	"github.com/cnmzsjbz199328/LazyDog/internal/llm"
	"github.com/cnmzsjbz199328/LazyDog/internal/notes"
	"github.com/cnmzsjbz199328/LazyDog/internal/platform/logger"
	"github.com/cnmzsjbz199328/LazyDog/internal/platform/otel"
	"github.com/cnmzsjbz199328/LazyDog/internal/server"
	"github.com/cnmzsjbz199328/LazyDog/internal/store"
	"github.com/cnmzsjbz199328/LazyDog/internal/store/cache"
	"github.com/cnmzsjbz199328/LazyDog/internal/store/cache/memory"
	"github.com/cnmzsjbz199328/LazyDog/internal/store/cache/redis"
	"github.com/cnmzsjbz199328/LazyDog/internal/store/sqlite"

	// Import providers to trigger init() registration
	_ "github.com/cnmzsjbz199328/LazyDog/internal/llm/gemini"
	_ "github.com/cnmzsjbz199328/LazyDog/internal/llm/glm"
	_ "github.com/cnmzsjbz199328/LazyDog/internal/llm/mistral"
	_ "github.com/cnmzsjbz199328/LazyDog/internal/llm/openrouter"
	_ "github.com/cnmzsjbz199328/LazyDog/internal/llm/xai"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	logger.Initialize(logger.DefaultConfig())
	log := logger.Get()
	defer logger.Sync()

	cmd.CheckForUpdates()

	shutdownTracer, err := otel.InitTracer("lazydog", log, os.Stdout)
	if err != nil {
		log.Warn("tracing disabled", zap.Error(err))
	}

	repo, err := sqlite.NewSQLiteStorage(cfg.Store.DSN)
	if err != nil {
		log.Fatal("failed to open storage", zap.Error(err))
	}
	defer func() {
		_ = repo.Close()
	}()

	var cacheSvc cache.CacheService
	if cfg.Redis.Enabled {
		cacheSvc = redis.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		log.Info("using redis cache", zap.String("addr", cfg.Redis.Addr))
	} else {
		cacheSvc = memory.NewMemoryCache()
		log.Info("using in-memory cache")
	}

	orch := llm.NewOrchestrator(cfg.AI.FallbackOrder, cfg.AI.AttemptTimeout, log)
	registered := llm.BootstrapProviders(orch, cfg.Providers, log)
	if registered == 0 {
		log.Warn("no AI providers registered; generation will always degrade")
	}

	notifier := store.NewNotifier()
	notifier.Subscribe(func(c store.Change) {
		log.Debug("document changed",
			zap.String("key", c.Key),
			zap.String("action", string(c.Action)))
	})

	service := notes.NewService(repo, notifier, orch, cacheSvc, cfg.AI, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	service.StartSweeper(ctx, cfg.AI.SweepInterval)

	srv := server.New(cfg, log, service, cmd.AppVersion)
	httpServer := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: srv.Handler(),
	}

	go func() {
		log.Info("starting server",
			zap.String("port", cfg.Server.Port),
			zap.String("env", cfg.Server.Env),
			zap.Int("providers", registered))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
	if shutdownTracer != nil {
		if err := shutdownTracer(shutdownCtx); err != nil {
			log.Error("tracer shutdown failed", zap.Error(err))
		}
	}
}
