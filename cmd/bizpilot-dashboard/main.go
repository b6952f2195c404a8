package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"bizpilot/internal/apiclient"
	"bizpilot/internal/config"
	"bizpilot/internal/dashboard"
	"bizpilot/internal/log"
	"bizpilot/internal/poller"
)

func main() {
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", log.FieldError, err)
		os.Exit(1)
	}

	client := apiclient.New(cfg.APIBaseURL, logger)
	app := dashboard.NewApp(client, cfg.CacheTTL, logger)

	srv, err := dashboard.NewServer(":"+cfg.DashboardPort, app, logger)
	if err != nil {
		logger.Error("Failed to build dashboard server", log.FieldError, err)
		os.Exit(1)
	}
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connectivity probe, polled on a fixed interval for the lifetime of the
	// process. The first probe runs immediately so the indicator is accurate
	// on the first page load.
	probe := poller.New(cfg.ProbeInterval, app.Probe)
	probe.Tick(ctx)
	probe.Start(ctx)
	defer probe.Stop()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		probe.Stop()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		cancel()
	}()

	logger.Info("Starting BizPilot dashboard",
		"port", cfg.DashboardPort,
		"api_base_url", cfg.APIBaseURL,
		"probe_interval", cfg.ProbeInterval.String())
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", log.FieldError, err, "port", cfg.DashboardPort)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Dashboard stopped gracefully")
}
