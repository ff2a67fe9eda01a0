package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/moda-storefront/internal/storefront"
	"github.com/angelmondragon/moda-storefront/pkg/config"
	"github.com/angelmondragon/moda-storefront/pkg/logger"
)

var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront", Level: "info", Output: os.Stderr})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       cfg.App.LogLevel,
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
		Output:      os.Stderr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals...)
	defer stop()

	reg := prometheus.NewRegistry()
	session, err := storefront.Open(ctx, cfg, logg, reg)
	if err != nil {
		logg.Error(ctx, "failed to open storefront session", err)
		os.Exit(1)
	}
	defer func() {
		if err := session.Close(); err != nil {
			logg.Error(context.Background(), "error closing storefront session", err)
		}
	}()

	ctx = session.Context(ctx)
	if err := newShell(session, os.Stdout, reg).Run(ctx, os.Stdin); err != nil {
		logg.Error(ctx, "storefront stopped", err)
		return
	}
	logg.Info(ctx, "storefront closed")
}
