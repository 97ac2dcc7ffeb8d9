package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tidebank/corebank/internal/bank"
	"github.com/tidebank/corebank/internal/config"
	kafkaevents "github.com/tidebank/corebank/internal/events/kafka"
	"github.com/tidebank/corebank/internal/handler"
	"github.com/tidebank/corebank/internal/logging"
	"github.com/tidebank/corebank/internal/middleware"
	"github.com/tidebank/corebank/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Init("corebank", cfg.LogLevel, cfg.AppEnv)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := repository.NewPostgresDB(ctx, cfg.DatabaseURL, repository.PoolConfig{
		MaxOpenConns:     cfg.DBMaxOpenConns,
		MaxIdleConns:     cfg.DBMaxIdleConns,
		ConnMaxLifetimeS: cfg.DBConnMaxLifetimeS,
		ConnMaxIdleTimeS: cfg.DBConnMaxIdleTimeS,
	})
	cancel()
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	accounts := repository.NewAccountRepository(db)
	ledger := repository.NewLedgerRepository(db)

	cache := bank.NewCache()
	if err := cache.Load(context.Background(), accounts); err != nil {
		slog.Error("failed to load account cache", "error", err)
		os.Exit(1)
	}
	slog.Info("account cache loaded", "accounts", cache.Len())

	var publisher bank.EntryPublisher
	if len(cfg.KafkaBrokers) > 0 {
		p := kafkaevents.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer p.Close()
		publisher = p
		slog.Info("ledger event publishing enabled", "topic", cfg.KafkaTopic)
	}

	engine := bank.NewEngine(accounts, ledger, cache, publisher)

	scheduler := bank.NewAccrualScheduler(engine, time.Duration(cfg.AccrualIntervalH)*time.Hour)
	scheduler.Start()

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           buildRouter(cfg, db, engine),
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	scheduler.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func buildRouter(cfg *config.Config, db *sql.DB, engine *bank.Engine) http.Handler {
	authHandler := handler.NewAuthHandler(engine, cfg.JWTSecret, time.Duration(cfg.JWTExpiryMin)*time.Minute)
	accountHandler := handler.NewAccountHandler(engine)
	adminHandler := handler.NewAdminHandler(engine)
	healthHandler := handler.NewHealthHandler(db)

	authed := middleware.Auth(cfg.JWTSecret)
	admin := func(h http.HandlerFunc) http.Handler {
		return authed(middleware.RequireAdmin(h))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler.Health)

	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/v1/accounts", accountHandler.Register)

	mux.Handle("GET /api/v1/accounts/{number}", authed(http.HandlerFunc(accountHandler.Get)))
	mux.Handle("POST /api/v1/accounts/{number}/deposit", authed(http.HandlerFunc(accountHandler.Deposit)))
	mux.Handle("POST /api/v1/accounts/{number}/withdraw", authed(http.HandlerFunc(accountHandler.Withdraw)))
	mux.Handle("GET /api/v1/accounts/{number}/transactions", authed(http.HandlerFunc(accountHandler.History)))

	mux.Handle("POST /api/v1/accounts/{number}/interest", admin(adminHandler.ApplyInterest))
	mux.Handle("PUT /api/v1/accounts/{number}/type", admin(adminHandler.ChangeAccountType))
	mux.Handle("POST /api/v1/accounts/{number}/admin/grant", admin(adminHandler.GrantAdmin))
	mux.Handle("POST /api/v1/accounts/{number}/admin/revoke", admin(adminHandler.RevokeAdmin))

	return middleware.Tracing(middleware.Logging(middleware.Recovery(mux)))
}
