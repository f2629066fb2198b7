// Package cli consolidates the initialization shared by cmd/cardwatch and
// cmd/cardwatch-worker.
package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"cardwatch/internal/config"
	"cardwatch/internal/log"
	"cardwatch/internal/notify"
	"cardwatch/internal/storage"
)

// SetupLogger initializes structured logging from LOG_LEVEL and installs it
// as the default logger.
func SetupLogger(component string) *slog.Logger {
	logger := log.New(component, log.ParseLevel(os.Getenv("LOG_LEVEL")))
	slog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development. Errors are ignored
// since the file is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it, exiting the
// process on failure.
func LoadAndValidateConfig(logger *slog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// OpenStore opens the ledger store at the given path, exiting the process
// on failure.
func OpenStore(logger *slog.Logger, dbPath string) *storage.Repository {
	store, err := storage.NewRepository(dbPath)
	if err != nil {
		logger.Error("Failed to open store", "error", err, "path", dbPath)
		os.Exit(1)
	}
	return store
}

// BuildDispatcher reads notify_channels from the settings table and
// instantiates the configured channels. Misconfigured entries are logged
// and skipped; delivery proceeds with whatever did build.
func BuildDispatcher(ctx context.Context, logger *slog.Logger, cfg *config.Config, store *storage.Repository) *notify.Dispatcher {
	raw, err := store.GetSetting(ctx, "notify_channels")
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logger.Error("Read notify_channels failed", "error", err)
		}
		return notify.NewDispatcher()
	}

	registry := notify.NewRegistry()
	registry.Register("amqp", func(notify.ChannelConfig) (notify.Notifier, error) {
		return notify.NewAMQPChannel(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	})
	registry.Register("email", func(c notify.ChannelConfig) (notify.Notifier, error) {
		if c.To == "" {
			return nil, errors.New(`email channel requires "to"`)
		}
		if cfg.SMTPHost == "" {
			return nil, errors.New("SMTP_HOST is not configured")
		}
		return notify.NewEmailChannel(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom, c.To), nil
	})

	channels, err := registry.Build(raw)
	if err != nil {
		logger.Warn("Notification channel configuration problem", "error", err)
	}
	return notify.NewDispatcher(channels...)
}
