package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "rewards-ledger/internal/adapter/http"
	"rewards-ledger/internal/adapter/memory"
	"rewards-ledger/internal/adapter/postgres"
	"rewards-ledger/internal/adapter/usecase"
	"rewards-ledger/internal/config"
	"rewards-ledger/internal/core/domain"
	"rewards-ledger/internal/core/port"
	"rewards-ledger/internal/db"
)

// main is the entry point of the rewards-ledger service. It loads
// configuration, optionally runs database migrations, wires the selected
// storage backend into the ledger usecases, then starts the HTTP server. On
// receiving a termination signal it gracefully shuts down the server.
func main() {
	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	var logger *slog.Logger
	{
		// Initialise structured logger based on configuration.
		var handler slog.Handler
		level := cfg.Log.SlogLevel()
		switch cfg.Log.SlogFormat() {
		case "json":
			handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
		default:
			handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
		}
		logger = slog.New(handler)
	}

	operator, err := domain.ParseAddress(cfg.Ledger.Operator)
	if err != nil {
		logger.Error("invalid operator address", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var (
		tokens     port.TokenLedger
		campaigns  port.CampaignRepository
		activities port.ActivityRepository
		escrows    []domain.Address
	)
	switch cfg.Ledger.Storage {
	case "memory":
		ledger := memory.NewTokenLedger()
		campaignStore := memory.NewCampaignStore(ledger, operator, time.Now)
		activityStore := memory.NewActivityStore(ledger, operator, time.Now)
		tokens = ledger
		campaigns = campaignStore
		activities = activityStore
		escrows = []domain.Address{campaignStore.EscrowAddress(), activityStore.EscrowAddress()}
	default:
		// Optionally run migrations if configured. We use the Psql sub-config.
		if cfg.Psql.RunMigrations {
			if err = db.Migrate(cfg.Psql.Addr.String()); err != nil {
				logger.Error("migration error", slog.Any("error", err))
				os.Exit(1)
			}
			logger.Info("migrations applied successfully")
		}
		pool, err := db.NewPostgresPool(ctx, cfg.Psql)
		if err != nil {
			logger.Error("database connection error", slog.Any("error", err))
			os.Exit(1)
		}
		defer pool.Close()
		campaignRepo := postgres.NewCampaignRepository(pool, operator, time.Now)
		activityRepo := postgres.NewActivityRepository(pool, operator, time.Now)
		tokens = postgres.NewTokenLedger(pool)
		campaigns = campaignRepo
		activities = activityRepo
		escrows = []domain.Address{campaignRepo.EscrowAddress(), activityRepo.EscrowAddress()}
	}

	// Initialise the derived escrow accounts. A second initialization of
	// the same account reports ErrAlreadyExists, which on restart just
	// confirms the account is in place.
	for _, escrow := range escrows {
		err := tokens.InitAccount(ctx, escrow, cfg.Ledger.Token)
		switch {
		case errors.Is(err, domain.ErrAlreadyExists):
			logger.Info("escrow account already initialized", slog.String("address", escrow.String()))
		case err != nil:
			logger.Error("escrow initialization error", slog.Any("error", err))
			os.Exit(1)
		default:
			logger.Info("escrow account initialized", slog.String("address", escrow.String()))
		}
	}

	if cfg.Ledger.RunSeed {
		if err = db.Seed(ctx, tokens, campaigns, activities, cfg.Ledger.Token); err != nil {
			logger.Error("seed error", slog.Any("error", err))
		} else {
			logger.Info("demo data seeded")
		}
	}

	campaignSvc := usecase.NewCampaignUseCase(campaigns)
	activitySvc := usecase.NewActivityUseCase(activities)
	accountSvc := usecase.NewAccountUseCase(tokens)

	handler := httpadapter.NewHandler(campaignSvc, activitySvc, accountSvc, logger, cfg.Ledger.Faucet)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler: handler.Router(),
	}

	go func() {
		logger.Info("server listening", slog.Int("port", int(cfg.HTTP.Port)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err = srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
	} else {
		logger.Info("server gracefully stopped")
	}
}
