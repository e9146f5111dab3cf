package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/meilisearch/meilisearch-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"talib.app/backend/internal/bootstrap"
	"talib.app/backend/internal/config"
	searchService "talib.app/backend/internal/modules/search/service"
	"talib.app/backend/internal/server"
	"talib.app/backend/pkg/database"
	"talib.app/backend/pkg/logger"
	"talib.app/backend/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	appLogger, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer appLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		appLogger.Fatal("database connection failed", zap.Error(err))
	}
	if err := bootstrap.Migrate(db); err != nil {
		appLogger.Fatal("migration failed", zap.Error(err))
	}
	if err := bootstrap.SeedCategories(db); err != nil {
		appLogger.Fatal("failed to seed categories", zap.Error(err))
	}
	if err := bootstrap.SeedAdmin(db, bootstrap.AdminSeed{
		Username: cfg.SeedAdminUsername,
		Email:    cfg.SeedAdminEmail,
		Password: cfg.SeedAdminPassword,
	}, appLogger); err != nil {
		appLogger.Fatal("failed to seed admin", zap.Error(err))
	}

	redisClient, err := database.ConnectRedis(ctx, cfg.RedisURL)
	if err != nil {
		appLogger.Warn("redis unavailable, running without cache and pub/sub", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	search := searchService.NewNoopSearchService()
	if cfg.MeiliSearchHost != "" {
		client := meilisearch.New(cfg.MeiliSearchHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
		search = searchService.NewMeiliSearchService(client, appLogger)
	} else {
		appLogger.Info("MEILISEARCH_HOST not set, search falls back to database")
	}

	imageStorage, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		appLogger.Fatal("failed to initialize storage", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	srv, err := server.NewServer(server.Deps{
		Config:   cfg,
		DB:       db,
		Redis:    redisClient,
		Search:   search,
		Storage:  imageStorage,
		Registry: registry,
		Logger:   appLogger,
	})
	if err != nil {
		appLogger.Fatal("failed to build server", zap.Error(err))
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			appLogger.Fatal("server exited with error", zap.Error(err))
		}
	case <-ctx.Done():
		appLogger.Info("shutting down")
		if err := srv.Shutdown(context.Background()); err != nil {
			appLogger.Error("graceful shutdown failed", zap.Error(err))
		}
	}
}
