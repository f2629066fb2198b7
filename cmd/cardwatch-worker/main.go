package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"cardwatch/internal/cli"
	"cardwatch/internal/scheduler"
	"cardwatch/internal/services"
	"cardwatch/internal/source"
	"cardwatch/internal/storage"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger("cardwatch-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	store := cli.OpenStore(logger, cfg.SQLiteDBPath)
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dispatcher := cli.BuildDispatcher(ctx, logger, cfg, store)
	defer dispatcher.Close()

	ingest := services.NewIngestService(store, feedClient(ctx, cfg.SourceToken, store))
	reports := services.NewReportService(store, cfg.TopMerchantLimit)

	sched := scheduler.New(store, ingest, reports, dispatcher)
	logger.Info("Worker starting", "db", cfg.SQLiteDBPath)
	if err := sched.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Scheduler exited", "error", err)
	}
	logger.Info("Worker stopped")
}

// feedClient builds the provider client from the stored source_url. A
// missing url yields a client whose Fetch reports the misconfiguration.
func feedClient(ctx context.Context, token string, store *storage.Repository) *source.Client {
	url, err := store.GetSetting(ctx, "source_url")
	if err != nil {
		url = ""
	}
	return source.NewClient(url, token)
}
