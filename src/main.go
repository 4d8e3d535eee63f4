package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fintrack-server/src/analytics"
	"fintrack-server/src/api"
	"fintrack-server/src/auth"
	"fintrack-server/src/config"
	"fintrack-server/src/db"
	pgstore "fintrack-server/src/db/sql"
	"fintrack-server/src/ledger"
	"fintrack-server/src/logging"
	"fintrack-server/src/plaid"
	"fintrack-server/src/rules"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg := config.Load()

	level, err := logging.ParseLevel(cfg.LogLevel)
	logger := logging.New(os.Stdout, level, cfg.LogFormat)
	slog.SetDefault(logger)
	if err != nil {
		logger.Warn("falling back to info logging", "err", err)
	}

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MigrateOnStart {
		if err := db.RunMigrations(cfg.DatabaseURL); err != nil {
			return err
		}
		logger.Info("database migrations applied")
	}

	// Connect to database
	pool, err := db.Connect(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		return err
	}
	defer pool.Close()

	store := pgstore.NewStore(pool)
	blocklist, err := db.NewTokenBlocklist(store)
	if err != nil {
		return err
	}
	defer blocklist.Close()

	ledgerService := ledger.NewService(store)
	rulesService := rules.NewService(store, ledgerService)
	deps := api.Dependencies{
		Auth:           auth.NewService(store, auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL, blocklist), cfg.InviteOnly()),
		Ledger:         ledgerService,
		Analytics:      analytics.NewService(ledgerService, nil),
		Rules:          rulesService,
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOrigins,
		DemoMode:       cfg.DemoMode,
		RequestTimeout: cfg.RequestTimeout,
	}
	if cfg.PlaidEnabled() {
		client, err := plaid.NewClient(cfg.PlaidClientID, cfg.PlaidSecret, cfg.PlaidEnv)
		if err != nil {
			return err
		}
		deps.Plaid = plaid.NewService(client, store, ledgerService, rulesService)
		logger.Info("plaid import enabled", "env", cfg.PlaidEnv)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("API server running", "port", cfg.Port, "demo_mode", cfg.DemoMode)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
