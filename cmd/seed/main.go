package main

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"rateguard/internal/models"
	"rateguard/internal/repository"
	"rateguard/internal/service"
	"rateguard/pkg/auth"
	"rateguard/pkg/config"
	"rateguard/pkg/logger"
	"rateguard/pkg/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// seed applies the schema and loads a demo workspace: one admin user, one
// free-plan organization and an initial rates table from the simulated
// reference values.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	appLogger.Info("Applying schema")
	if err := applySchema(ctx, db); err != nil {
		appLogger.Fatal("Failed to apply schema", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(db, appLogger)
	orgRepo := repository.NewOrganizationRepository(db, appLogger)
	rateRepo := repository.NewRateRepository(db, appLogger)

	// Demo admin. Skipped when a previous seed already created it.
	if existing, _ := userRepo.GetByEmail(ctx, "demo@rateguard.dev"); existing == nil {
		hashed, err := auth.HashPassword("demo-password")
		if err != nil {
			appLogger.Fatal("Failed to hash demo password", zap.Error(err))
		}

		now := time.Now()
		admin := &models.User{
			ID:             uuid.New(),
			DisplayName:    "Demo Admin",
			Email:          "demo@rateguard.dev",
			Password:       hashed,
			Country:        "US",
			OnboardingSeen: true,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := userRepo.Create(ctx, admin); err != nil {
			appLogger.Fatal("Failed to create demo user", zap.Error(err))
		}

		org := &models.Organization{
			ID:            uuid.New(),
			Name:          "Demo Imports LLC",
			AdminID:       admin.ID,
			MemberIDs:     []uuid.UUID{admin.ID},
			Plan:          models.PlanFree,
			SeatCap:       models.FreeSeatCap,
			CreditBalance: models.FreeCreditGrant,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := orgRepo.Create(ctx, org); err != nil {
			appLogger.Fatal("Failed to create demo organization", zap.Error(err))
		}
		if err := userRepo.SetOrganization(ctx, admin.ID, &org.ID); err != nil {
			appLogger.Fatal("Failed to link demo user", zap.Error(err))
		}

		appLogger.Info("Demo workspace created",
			zap.String("email", admin.Email),
			zap.String("org", org.Name))
	} else {
		appLogger.Info("Demo workspace already present, skipping")
	}

	// Seed today's simulated rates so the ticker has data before the first
	// ratesync sweep.
	seeded := 0
	today := time.Now()
	for _, pair := range service.TickerPairs {
		rate, err := service.SimulatedRate(pair, today)
		if err != nil {
			appLogger.Warn("Skipping pair", zap.String("pair", pair), zap.Error(err))
			continue
		}
		quote := models.RateQuote{
			Pair:      pair,
			Rate:      rate,
			Source:    models.RateSourceSimulated,
			Caveat:    "simulated rate, live feed not configured",
			Spread:    service.IndicativeSpread(pair),
			AsOf:      today,
			FetchedAt: today,
		}
		if err := rateRepo.Upsert(ctx, &quote); err != nil {
			appLogger.Error("Failed to seed rate", zap.String("pair", pair), zap.Error(err))
			continue
		}
		seeded++
	}

	appLogger.Info("Seeding finished", zap.Int("rates", seeded))
}

func applySchema(ctx context.Context, db *pgxpool.Pool) error {
	schema, err := readSchema()
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx, string(schema))
	return err
}

func readSchema() ([]byte, error) {
	paths := []string{
		filepath.Join("migrations", "001_init.sql"),
		filepath.Join("..", "..", "migrations", "001_init.sql"),
	}

	var lastErr error
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err == nil {
			return data, nil
		}
		lastErr = err
	}
	return nil, lastErr
}
