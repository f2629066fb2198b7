// Package commands defines the cardwatch CLI surface.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"cardwatch/internal/cli"
	"cardwatch/internal/config"
	"cardwatch/internal/notify"
	"cardwatch/internal/services"
	"cardwatch/internal/source"
	"cardwatch/internal/storage"
)

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "cardwatch",
		Short:         "Card transaction ledger and reporting",
		Long:          "cardwatch ingests card transactions from provider exports,\nkeeps a deduplicated ledger and renders spending reports.",
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.AddCommand(
		newFetchCommand(),
		newImportCommand(),
		newReportCommand(),
		newCardCommand(),
		newCategoryCommand(),
		newConfigCommand(),
	)
	return rootCmd
}

// app bundles the wiring behind every subcommand.
type app struct {
	cfg   *config.Config
	store *storage.Repository
}

func openApp() (*app, error) {
	cli.LoadEnvFile()
	cli.SetupLogger("cardwatch")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	store, err := storage.NewRepository(cfg.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return &app{cfg: cfg, store: store}, nil
}

func (a *app) Close() {
	a.store.Close()
}

func (a *app) ingestService(ctx context.Context) *services.IngestService {
	url, err := a.store.GetSetting(ctx, "source_url")
	if err != nil {
		url = ""
	}
	return services.NewIngestService(a.store, source.NewClient(url, a.cfg.SourceToken))
}

func (a *app) reportService() *services.ReportService {
	return services.NewReportService(a.store, a.cfg.TopMerchantLimit)
}

func (a *app) dispatcher(ctx context.Context) *notify.Dispatcher {
	return cli.BuildDispatcher(ctx, slog.Default(), a.cfg, a.store)
}
