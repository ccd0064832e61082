package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rateguard/internal/repository"
	"rateguard/internal/service"
	"rateguard/pkg/config"
	"rateguard/pkg/logger"
	"rateguard/pkg/postgres"
	"rateguard/pkg/redis"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ratesync sweeps the ticker pairs on an interval, resolves each one
// against the live feed (or the simulated fallback) and upserts the result
// into the rates table the dashboard reads from. Provider calls are paced
// with a rate limiter so a sweep never bursts past the feed's quota.
func main() {
	once := flag.Bool("once", false, "run a single sweep and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	cache, err := redis.NewClient(ctx, &cfg.Redis, appLogger)
	if err != nil {
		appLogger.Warn("Redis unavailable, sweeps will not warm the cache", zap.Error(err))
		cache = nil
	} else {
		defer cache.Close()
	}

	rateRepo := repository.NewRateRepository(db, appLogger)
	resolver := service.NewRateResolver(&cfg.RateFeed, cache, cfg.Redis.RateTTL, appLogger)
	limiter := rate.NewLimiter(rate.Limit(cfg.RateFeed.RequestsPerSec), 1)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		appLogger.Info("Shutting down ratesync")
		cancel()
	}()

	sweep(ctx, resolver, rateRepo, limiter, appLogger)
	if *once {
		return
	}

	ticker := time.NewTicker(cfg.Ticker.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweep(ctx, resolver, rateRepo, limiter, appLogger)
		}
	}
}

func sweep(ctx context.Context, resolver *service.RateResolver, rateRepo *repository.RateRepository, limiter *rate.Limiter, logger *zap.Logger) {
	start := time.Now()
	updated := 0

	for _, pair := range service.TickerPairs {
		if err := limiter.Wait(ctx); err != nil {
			return
		}

		result, err := resolver.Resolve(ctx, pair, time.Now())
		if err != nil {
			logger.Warn("Sweep resolve failed", zap.String("pair", pair), zap.Error(err))
			continue
		}

		quote := service.BuildRateQuote(pair, result)
		if err := rateRepo.Upsert(ctx, &quote); err != nil {
			logger.Error("Failed to upsert rate", zap.String("pair", pair), zap.Error(err))
			continue
		}
		updated++
	}

	logger.Info("Rate sweep finished",
		zap.Int("updated", updated),
		zap.Int("pairs", len(service.TickerPairs)),
		zap.Duration("elapsed", time.Since(start)))
}
