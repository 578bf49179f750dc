package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"givetrack/internal/amqp"
	"givetrack/internal/config"
	apphttp "givetrack/internal/http"
	"givetrack/internal/log"
	"givetrack/internal/notify"
	"givetrack/internal/services"
	"givetrack/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	cfg := config.Load()

	logCfg := log.DefaultConfig()
	logCfg.Level = log.ParseLevel(cfg.LogLevel)
	logger := log.New(logCfg)
	log.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err.Error())
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", log.FieldError, err.Error(), "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("Database ready", "path", cfg.SQLiteDBPath)

	hub := notify.NewHub(cfg.WSSendBuffer, logger)

	var relay services.EventRelay
	if cfg.RelayEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, logger)
		if err != nil {
			// The relay is an optional mirror; serve without it.
			logger.Warn("AMQP relay unavailable, continuing without it", log.FieldError, err.Error())
		} else {
			defer client.Close()
			relay = client
			logger.Info("AMQP relay enabled", "exchange", cfg.AMQPExchange)
		}
	}

	srv := apphttp.NewServer("0.0.0.0:"+cfg.Port, apphttp.Deps{
		Accounts:      services.NewAccountService(repo, services.PlaintextCredentials{}, logger),
		Contributions: services.NewContributionService(repo, hub, relay, logger),
		Dashboards:    services.NewDashboardService(repo, logger),
		Hub:           hub,
		Store:         repo,
		Logger:        logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	host := localIPv4()
	logger.Info("Server running", "url", "http://"+host+":"+cfg.Port, log.FieldOperation, log.OpStartup)
	logger.Info("Devices on the local network can connect", "url", "http://"+host+":"+cfg.Port, "ws", "ws://"+host+":"+cfg.Port+"/ws")

	if err := serve(ctx, srv, cfg.ShutdownTimeout, logger); err != nil {
		logger.Error("Server error", log.FieldError, err.Error(), "port", cfg.Port)
		os.Exit(1)
	}

	logger.Info("Server stopped gracefully")
}

type server interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// serve runs srv until ctx is cancelled, then shuts it down and returns only
// once in-flight requests have drained or timeout has passed. Callers may
// release what handlers use as soon as it returns.
func serve(ctx context.Context, srv server, timeout time.Duration, logger *log.Logger) error {
	drained := make(chan struct{})

	go func() {
		defer close(drained)
		<-ctx.Done()
		logger.Info("Shutdown signal received", log.FieldOperation, log.OpShutdown)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err.Error())
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	<-drained
	return nil
}
