package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"versions/relay/internal/api"
	"versions/relay/internal/common"
	"versions/relay/internal/config"
	"versions/relay/internal/db"
	"versions/relay/internal/logging"
	"versions/relay/internal/metrics"
	"versions/relay/internal/routes"
	"versions/relay/internal/workers"
)

const shutdownTimeout = 15 * time.Second

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	if err := logging.Init(cfg.AppEnv); err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	logging.Info("VERSIONS relay starting up",
		"environment", cfg.AppEnv,
		"upstream", cfg.Upstream.BaseURL,
		"cache_backend", cfg.Cache.Backend,
		"timestamp", time.Now().Format(time.RFC3339),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metricsReg := metrics.NewRegistry(prometheus.DefaultRegisterer)

	activityDB, err := db.Open(cfg.Activity.Driver, cfg.Activity.DSN)
	if err != nil {
		// The activity log is optional; writes still go through without it.
		logging.Warn("Activity store unavailable, continuing without it", "driver", cfg.Activity.Driver, "error", err)
		activityDB = nil
	} else {
		logging.Info("Connected to activity store", "driver", cfg.Activity.Driver)
	}

	var redisClient *redis.Client
	if cfg.Cache.Backend == config.CacheBackendRedis {
		redisClient, err = common.NewRedisClient(common.RedisOptions{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logging.Named("redis"))
		if err != nil {
			logging.Warn("Redis unavailable, falling back to in-memory caches", "error", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	deps, err := api.InitDependencies(ctx, cfg, activityDB, redisClient, metricsReg, logging.Named("relay"))
	if err != nil {
		logging.Fatal("Failed to initialize dependencies", "error", err)
	}

	upSince := time.Now()
	router := routes.RegisterRoutes(deps, prometheus.DefaultGatherer, upSince)

	workers.InitWorkers(ctx, deps.Services.Audio, deps.Caches, cfg.WarmupInterval, logging.Named("workers"))

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logging.Info("Server starting", "addr", srv.Addr, "environment", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("Server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logging.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error("Graceful shutdown failed", "error", err)
	}
}
