package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardwatch/internal/report"
	"cardwatch/internal/source"
	"cardwatch/internal/storage"
)

type fakeProvider struct {
	records []source.Record
	err     error
}

func (f *fakeProvider) Fetch(context.Context) ([]source.Record, error) {
	return f.records, f.err
}

func newTestStore(t *testing.T) *storage.Repository {
	t.Helper()
	store, err := storage.NewRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func feedRecords() []source.Record {
	return []source.Record{
		{Timestamp: "2026-03-05T10:00:00Z", Type: "card_spend", Description: "Coffee Shop", Status: "settled", AmountUSD: "4.50", Card: "4242"},
		{Timestamp: "2026-03-05T11:00:00Z", Type: "card_spend", Description: "Grocer", Status: "settled", AmountUSD: "20.00", Card: "4242"},
		{Timestamp: "2026-03-06T09:00:00Z", Type: "card_spend", Description: "Broken", Status: "settled", AmountUSD: "oops", Card: "4242"},
	}
}

func TestFetchAndStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	svc := NewIngestService(store, &fakeProvider{records: feedRecords()})

	parsed, affected, err := svc.FetchAndStore(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, parsed, "unparseable rows are dropped")
	assert.Equal(t, 2, affected)

	last, err := store.LastFetchAt(ctx)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), last, time.Minute)

	// The same feed again changes nothing.
	parsed, affected, err = svc.FetchAndStore(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, parsed)
	assert.Equal(t, 0, affected)
}

func TestImportFile(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	svc := NewIngestService(store, &fakeProvider{})

	path := filepath.Join(t.TempDir(), "export.csv")
	csv := "timestamp, type, description, status, amount USD, card\n" +
		"2026-03-05T10:00:00Z, card_spend, Coffee Shop, settled, 4.50, 4242\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0644))

	parsed, affected, err := svc.ImportFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 1, parsed)
	assert.Equal(t, 1, affected)

	count, err := store.TransactionCount(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestReportServiceLatest(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ingest := NewIngestService(store, &fakeProvider{records: feedRecords()})
	_, _, err := ingest.FetchAndStore(ctx)
	require.NoError(t, err)

	reports := NewReportService(store, 10)

	text, count, err := reports.Latest(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Contains(t, text, "Coffee Shop")
	assert.Contains(t, text, "Grocer")

	// Everything is now marked reported; the next run is empty.
	text, count, err = reports.Latest(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Equal(t, report.EmptyReportLine, text)
}

func TestReportServiceLatestDryRun(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ingest := NewIngestService(store, &fakeProvider{records: feedRecords()})
	_, _, err := ingest.FetchAndStore(ctx)
	require.NoError(t, err)

	reports := NewReportService(store, 10)

	_, count, err := reports.Latest(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Nothing was marked, the rows stay reportable.
	_, count, err = reports.Latest(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestReportServiceDaily(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ingest := NewIngestService(store, &fakeProvider{records: feedRecords()})
	_, _, err := ingest.FetchAndStore(ctx)
	require.NoError(t, err)

	reports := NewReportService(store, 10)

	day := time.Date(2026, 3, 5, 15, 0, 0, 0, time.UTC)
	text, count, err := reports.Daily(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Contains(t, text, "Cardwatch Daily Report - 2026/03/05")

	_, count, err = reports.Daily(ctx, day.AddDate(0, 0, 10))
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestReportServiceMonthly(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ingest := NewIngestService(store, &fakeProvider{records: feedRecords()})
	_, _, err := ingest.FetchAndStore(ctx)
	require.NoError(t, err)

	require.NoError(t, store.SetCard(ctx, "4242", "Everyday"))
	require.NoError(t, store.CreateCategory(ctx, "Groceries"))
	require.NoError(t, store.AddCardToCategory(ctx, "4242", "Groceries"))

	reports := NewReportService(store, 10)

	text, err := reports.Monthly(ctx, 2026, 3, 0)
	require.NoError(t, err)
	assert.Contains(t, text, "Cardwatch Monthly Summary - 2026/03")
	assert.Contains(t, text, "Grand Total: $24.50")
	assert.Contains(t, text, "Groceries ($24.50):")
	assert.Contains(t, text, "Everyday (4242)")

	// Second call is served from the cache and stays identical.
	cached, err := reports.Monthly(ctx, 2026, 3, 0)
	require.NoError(t, err)
	assert.Equal(t, text, cached)
}
