package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/user/linkcheck-service/internal/adapter/postgres"
	redis_adapter "github.com/user/linkcheck-service/internal/adapter/redis"
	"github.com/user/linkcheck-service/internal/delivery/http/handler"
	"github.com/user/linkcheck-service/internal/delivery/http/router"
	"github.com/user/linkcheck-service/internal/usecase"
	"github.com/user/linkcheck-service/pkg/config"
	"github.com/user/linkcheck-service/pkg/logger"
	"github.com/user/linkcheck-service/pkg/metrics"
	"go.uber.org/zap"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		// No logger yet.
		panic(err)
	}

	// --- Logger ---
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()
	log.Info("Logger initialized", zap.String("level", cfg.LogLevel))

	// --- Metrics ---
	m := metrics.New(prometheus.DefaultRegisterer)

	ctx := context.Background()

	// --- Redis ---
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal("Unable to connect to Redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}
	log.Info("Redis connection established", zap.String("prefix", cfg.GlobalPrefix))

	// --- Repositories ---
	siteRepo := redis_adapter.NewSiteRepo(rdb, cfg.GlobalPrefix)
	issueRepo := redis_adapter.NewIssueRepo(rdb, cfg.GlobalPrefix)
	blacklistRepo := redis_adapter.NewBlacklistRepo(rdb, cfg.GlobalPrefix)
	linkCacheRepo := redis_adapter.NewLinkCacheRepo(rdb, cfg.GlobalPrefix)

	checks := map[string]handler.Pinger{"redis": siteRepo}

	// --- Use Cases ---
	policy, err := usecase.NewLinkPolicy(cfg.ValidSchemes, cfg.PermanentlyIgnore)
	if err != nil {
		log.Fatal("Invalid link policy", zap.Error(err))
	}
	linkCache := usecase.NewLinkCache(linkCacheRepo, policy, cfg.LinkCacheTTL(), m, log)
	reconciler := usecase.NewOrphanReconciler(siteRepo, issueRepo, blacklistRepo, m, log)
	registry := usecase.NewSiteRegistry(siteRepo, issueRepo, blacklistRepo, reconciler, cfg.RecencyWindow(), m, log)

	// --- Report archive (optional) ---
	var archiver *usecase.ReportArchiver
	if cfg.PostgresURL != "" {
		dbpool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			log.Fatal("Unable to connect to database", zap.Error(err))
		}
		defer dbpool.Close()

		archiveRepo := postgres.NewReportArchiveRepo(dbpool)
		if err := archiveRepo.EnsureSchema(ctx); err != nil {
			log.Fatal("Unable to prepare report archive schema", zap.Error(err))
		}
		archiver = usecase.NewReportArchiver(registry, archiveRepo, log)
		checks["postgres"] = archiveRepo
		log.Info("PostgreSQL report archive enabled")
	}

	// --- HTTP Server ---
	apiHandler := handler.NewHandler(linkCache, registry, policy, archiver, checks, log)
	httpRouter := router.New(apiHandler, m, prometheus.DefaultGatherer, log)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      httpRouter,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 65 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("Starting server", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Could not listen on port", zap.String("port", cfg.ServerPort), zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}
	log.Info("Server exiting")
}
