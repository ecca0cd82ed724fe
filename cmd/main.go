package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	httpadapter "agora-ads/internal/adapter/http"
	"agora-ads/internal/adapter/postgres"
	"agora-ads/internal/adapter/usecase"
	"agora-ads/internal/config"
	"agora-ads/internal/db"
)

// main is the entry point of the agora-ads engine. It loads configuration,
// optionally runs database migrations and seeds demo data, initializes the
// database pool and repositories, wires the allocation engine, then starts
// the HTTP server. On receiving a termination signal it gracefully shuts down
// the server and drains the decision log queue.
func main() {
	exitCode := 1
	defer func() {
		if r := recover(); r != nil {
			panic(r)
		} else {
			os.Exit(exitCode)
		}
	}()

	// A local .env is optional; environment variables win either way.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	var logger *slog.Logger
	{
		// Initialise structured logger based on configuration.
		var handler slog.Handler
		opts := cfg.Log.HandlerOptions()
		switch cfg.Log.SlogFormat() {
		case "json":
			handler = slog.NewJSONHandler(os.Stdout, opts)
		default:
			handler = slog.NewTextHandler(os.Stdout, opts)
		}
		logger = slog.New(handler)
	}

	if cfg.Psql.RunMigrations {
		if err = db.Migrate(cfg.Psql.Addr.String()); err != nil {
			logger.Error("migration error", slog.Any("error", err))
		} else {
			logger.Info("migrations applied successfully")
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.Psql)
	if err != nil {
		logger.Error("database connection error", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.Psql.Seed {
		if err = db.Seed(ctx, pool); err != nil {
			logger.Error("seed error", slog.Any("error", err))
		} else {
			logger.Info("demo data seeded")
		}
	}

	wallets := postgres.NewWalletRepository(pool)
	campaigns := postgres.NewCampaignRepository(pool)
	placements := postgres.NewPlacementRepository(pool)
	events := postgres.NewEventRepository(pool)
	decisionStore := postgres.NewDecisionRepository(pool)

	decisions := usecase.NewDecisionLogger(decisionStore, logger, cfg.Engine.DecisionQueueSize)
	ledger := usecase.NewLedger(wallets, logger)
	resolver := usecase.NewResolver(placements, campaigns, events, wallets, decisions, logger)
	billing := usecase.NewBilling(campaigns, events, ledger, logger)

	handler := httpadapter.NewHandler(resolver, billing, ledger, wallets, campaigns, logger)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      handler.Router(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() {
		logger.Info("server listening", slog.Int("port", int(cfg.HTTP.Port)))
		if err = srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	value := <-quit
	exitCode = 128 + int(value.(syscall.Signal))

	// Stop accepting requests first, then drain the audit queue.
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err = srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
	} else {
		logger.Info("server gracefully stopped")
	}
	if err = decisions.Close(shutdownCtx); err != nil {
		logger.Error("decision log drain error", slog.Any("error", err))
	}
}
