// Command predictgate-server starts the gated prediction API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/akarpov87/predictgate/internal/config"
	"github.com/akarpov87/predictgate/internal/limiter"
	"github.com/akarpov87/predictgate/internal/migrate"
	"github.com/akarpov87/predictgate/internal/predictor"
	"github.com/akarpov87/predictgate/internal/repository/postgres"
	httpserver "github.com/akarpov87/predictgate/internal/server/http"
	"github.com/akarpov87/predictgate/internal/service"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main loads configuration, runs migrations, and starts the HTTP server.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback, _ := zap.NewProduction()
		fallback.Fatal("config", zap.Error(err))
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.Addr),
		zap.String("environment", cfg.Environment),
	)

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := migrate.Up(ctx, cfg.DatabaseURL); err != nil {
		logger.Fatal("migrate up", zap.Error(err))
	}

	// DB pool
	db, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("postgres.New", zap.Error(err))
	}
	defer db.Close()

	// Repositories
	credRepo := postgres.NewCredentialRepo(db)
	auditRepo := postgres.NewAuditRepo(db)

	gate := limiter.NewMemory(cfg.RateLimit, cfg.RateWindow)
	defer gate.Close()
	keyGate := limiter.NewMemory(cfg.KeyIssueLimit, cfg.KeyIssueWindow)
	defer keyGate.Close()
	tokenGate := limiter.NewMemory(cfg.TokenLimit, cfg.TokenWindow)
	defer tokenGate.Close()

	model, err := predictor.LoadLinear(cfg.ModelPath)
	if err != nil {
		logger.Fatal("load model", zap.Error(err), zap.String("path", cfg.ModelPath))
	}

	// Services
	authSvc := service.NewAuthService(credRepo, []byte(cfg.SigningKey), cfg.SessionTTL)
	predictSvc := service.NewPredictService(model, auditRepo, gate, cfg.MaxBatch)

	app := httpserver.New(cfg, authSvc, predictSvc, db, keyGate, tokenGate, logger)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	// Wait for stop
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", zap.Error(err))
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}

	logger.Info("shutdown complete")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	zcfg := zap.NewProductionConfig()
	if lvl, err := zap.ParseAtomicLevel(cfg.LogLevel); err == nil {
		zcfg.Level = lvl
	}
	return zcfg.Build()
}
