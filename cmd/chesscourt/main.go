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

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/quietbay/chesscourt/internal/bootstrap"
	"github.com/quietbay/chesscourt/internal/config"
	"github.com/quietbay/chesscourt/internal/logging"
)

// Overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logging.Init(cfg.LogLevel, cfg.LogFormat)
	defer logging.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := bootstrap.New(ctx, cfg, version)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}

	go app.Court.RunSweeper(ctx, cfg.SweepInitialDelay, cfg.SweepInterval)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           app.Server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	logging.L().Info("chesscourt up",
		zap.String("addr", cfg.HTTPAddr), zap.String("version", version))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logging.L().Info("shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.L().Error("listener failed", zap.Error(err))
		}
	}

	cancel() // stop the sweeper

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutCancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		logging.L().Warn("http shutdown", zap.Error(err))
	}
	app.Close()
}
