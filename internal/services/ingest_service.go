// Package services holds the application flows that sit between the CLI or
// worker and the storage layer.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cardwatch/internal/importer"
	"cardwatch/internal/source"
	"cardwatch/internal/storage"
)

// IngestService pulls transactions from the provider feed or from CSV
// exports and upserts them into the ledger.
type IngestService struct {
	store    *storage.Repository
	provider source.Provider
}

func NewIngestService(store *storage.Repository, provider source.Provider) *IngestService {
	return &IngestService{store: store, provider: provider}
}

// FetchAndStore pulls the export feed, normalizes it and upserts the rows.
// last_fetch_at is stamped even when individual rows fail, so a feed with a
// few bad rows does not wedge the auto-fetch schedule. Returns the parsed
// row count and how many rows were actually inserted or updated.
func (s *IngestService) FetchAndStore(ctx context.Context) (int, int, error) {
	records, err := s.provider.Fetch(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("fetch source: %w", err)
	}

	inputs, skipped := source.Normalize(records)
	if skipped > 0 {
		slog.WarnContext(ctx, "Dropped unparseable feed rows", "skipped", skipped)
	}

	var affected int
	var upsertErr error
	if len(inputs) > 0 {
		affected, upsertErr = s.store.UpsertTransactions(ctx, inputs)
	}

	if err := s.store.SetLastFetchAt(ctx, time.Now().UTC()); err != nil {
		return len(inputs), affected, fmt.Errorf("stamp last fetch: %w", err)
	}

	slog.InfoContext(ctx, "Ingest complete",
		"fetched", len(records),
		"parsed", len(inputs),
		"affected", affected,
	)
	return len(inputs), affected, upsertErr
}

// ImportFile upserts the rows of a CSV export. Returns the parsed row count
// and how many rows were actually inserted or updated.
func (s *IngestService) ImportFile(ctx context.Context, path string) (int, int, error) {
	res, err := importer.ParseFile(ctx, path)
	if err != nil {
		return 0, 0, err
	}
	if len(res.Inputs) == 0 {
		return 0, 0, nil
	}

	affected, err := s.store.UpsertTransactions(ctx, res.Inputs)
	slog.InfoContext(ctx, "CSV import complete",
		"path", path,
		"parsed", len(res.Inputs),
		"skipped", res.Skipped,
		"affected", affected,
	)
	return len(res.Inputs), affected, err
}
