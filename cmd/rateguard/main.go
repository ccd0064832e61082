package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rateguard/internal/api"
	"rateguard/internal/api/handlers"
	"rateguard/internal/repository"
	"rateguard/internal/service"
	"rateguard/pkg/auth"
	"rateguard/pkg/config"
	"rateguard/pkg/logger"
	"rateguard/pkg/postgres"
	"rateguard/pkg/redis"

	"go.uber.org/zap"
)

// @title RateGuard FX API
// @version 1.0
// @description Hidden FX cost analysis for bank wire transfers
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@rateguard.dev

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting RateGuard FX service")

	// Initialize database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Redis is optional: without it the rate resolver just skips caching.
	cache, err := redis.NewClient(ctx, &cfg.Redis, appLogger)
	if err != nil {
		appLogger.Warn("Redis unavailable, rate caching disabled", zap.Error(err))
		cache = nil
	} else {
		defer cache.Close()
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db, appLogger)
	orgRepo := repository.NewOrganizationRepository(db, appLogger)
	quoteRepo := repository.NewQuoteRepository(db, appLogger)
	rateRepo := repository.NewRateRepository(db, appLogger)
	auditRepo := repository.NewAuditRepository(db, appLogger)

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Expiration, cfg.JWT.RefreshExp)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtManager, appLogger)

	// GigaChat is the primary extraction and parsing backend. Without a key
	// the service still serves quotes from PDFs with a text layer.
	var llmService *service.LLMService
	if cfg.GigaChat.APIKey != "" {
		llmService, err = service.NewLLMService(&cfg.GigaChat, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to initialize LLM service", zap.Error(err))
		}
		defer llmService.Close()
	} else {
		appLogger.Warn("GIGACHAT_API_KEY is empty, LLM extraction disabled")
	}

	providers := []service.TextExtractor{
		service.NewPDFTextExtractor(appLogger),
		service.NewGigaChatExtractor(llmService, appLogger),
		service.NewOpenAIExtractor(&cfg.OpenAI, appLogger),
	}
	extraction := service.NewExtractionService(providers, cfg.Upload.MaxFileSize, cfg.Upload.MinExtractedText, appLogger)

	parser := service.NewParserService(llmService, appLogger)
	resolver := service.NewRateResolver(&cfg.RateFeed, cache, cfg.Redis.RateTTL, appLogger)
	hub := service.NewTickerHub(appLogger)

	orgService := service.NewOrganizationService(orgRepo, userRepo, auditRepo, appLogger)
	billingService := service.NewBillingService(orgRepo, userRepo, auditRepo, &cfg.Billing, appLogger)
	advisoryService := service.NewAdvisoryService(llmService, appLogger)
	quoteService := service.NewQuoteService(quoteRepo, userRepo, orgRepo, auditRepo,
		extraction, parser, resolver, advisoryService, orgService, appLogger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, appLogger)
	profileHandler := handlers.NewProfileHandler(authService, appLogger)
	quoteHandler := handlers.NewQuoteHandler(quoteService, extraction, appLogger)
	orgHandler := handlers.NewOrganizationHandler(orgService, appLogger)
	billingHandler := handlers.NewBillingHandler(billingService, appLogger)
	rateHandler := handlers.NewRateHandler(resolver, rateRepo, hub, appLogger)

	// Setup router
	app := api.SetupRouter(authHandler, profileHandler, quoteHandler, orgHandler,
		billingHandler, rateHandler, jwtManager, appLogger)

	// Dashboard ticker: refresh simulated or cached rates on an interval and
	// fan them out to websocket subscribers.
	tickerCtx, stopTicker := context.WithCancel(ctx)
	defer stopTicker()
	go runTicker(tickerCtx, resolver, hub, cfg.Ticker.Interval, appLogger)

	liveFeed := api.NewLiveFeed(hub, jwtManager, cfg.Ticker.ListenAddr, appLogger)
	go func() {
		if err := liveFeed.Run(); err != nil {
			appLogger.Error("Live feed failed", zap.Error(err))
		}
	}()

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	stopTicker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := liveFeed.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Live feed shutdown error", zap.Error(err))
	}
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}

// runTicker publishes a fresh quote per ticker pair every interval.
func runTicker(ctx context.Context, resolver *service.RateResolver, hub *service.TickerHub, interval time.Duration, logger *zap.Logger) {
	publish := func() {
		for _, pair := range service.TickerPairs {
			result, err := resolver.Resolve(ctx, pair, time.Now())
			if err != nil {
				logger.Warn("Ticker resolve failed", zap.String("pair", pair), zap.Error(err))
				continue
			}
			hub.Publish(service.BuildRateQuote(pair, result))
		}
	}

	publish()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			publish()
		}
	}
}
