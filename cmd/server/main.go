package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wrtmon/wrtmon/internal/config"
	"github.com/wrtmon/wrtmon/internal/eventlog"
	httpapi "github.com/wrtmon/wrtmon/internal/http"
	"github.com/wrtmon/wrtmon/internal/logging"
	"github.com/wrtmon/wrtmon/internal/monitor"
	"github.com/wrtmon/wrtmon/internal/poller"
	"github.com/wrtmon/wrtmon/internal/shell"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)

	if err := os.MkdirAll(cfg.DBDir(), 0o755); err != nil {
		logger.Error("failed to create db directory", "err", err)
		os.Exit(1)
	}
	journal, err := eventlog.Open(ctx, cfg.DBPath, cfg.JournalLimit)
	if err != nil {
		logger.Error("failed to open event journal", "err", err)
		os.Exit(1)
	}
	defer journal.Close()

	runner := shell.NewSSHRunner(cfg.GatewayHost, cfg.GatewayUser, cfg.ConnectTimeout, cfg.CommandTimeout)
	mon := monitor.New(runner, journal, monitor.Options{
		WANInterface:     cfg.WANInterface,
		LANInterface:     cfg.LANInterface,
		BandThresholdMHz: cfg.BandThresholdMHz,
	}, logger)

	hub := httpapi.NewHub(logger)
	snapshotPoller := poller.New(mon, hub, cfg.PollInterval, logger)
	go snapshotPoller.Run(ctx)
	snapshotPoller.TriggerRefresh()

	api := httpapi.New(mon, snapshotPoller, journal, hub, cfg.GatewayHost, logger)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("server starting", "addr", httpServer.Addr, "gateway", cfg.GatewayHost)
	if err := httpapi.RunServer(ctx, httpServer, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server terminated with error", "err", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
