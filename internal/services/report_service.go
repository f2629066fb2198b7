package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cardwatch/internal/cache"
	"cardwatch/internal/core"
	"cardwatch/internal/report"
	"cardwatch/internal/storage"
)

const (
	defaultTopLimit   = 10
	summaryCacheSize  = 16
	summaryCacheTTL   = 5 * time.Minute
	latestReportTitle = "Cardwatch Latest Report"
)

// ReportService renders the ledger's report views. Monthly summaries are
// served from a short-lived cache since the underlying aggregation fans out
// into several queries.
type ReportService struct {
	store      *storage.Repository
	aggregator *report.Aggregator
	summaries  *cache.TTLCache[core.MonthlySummary]
	topLimit   int
}

func NewReportService(store *storage.Repository, topLimit int) *ReportService {
	if topLimit <= 0 {
		topLimit = defaultTopLimit
	}
	return &ReportService{
		store:      store,
		aggregator: report.NewAggregator(store, store),
		summaries:  cache.New[core.MonthlySummary](summaryCacheSize, summaryCacheTTL),
		topLimit:   topLimit,
	}
}

// Latest renders every not-yet-reported transaction. When mark is set, the
// rendered rows are stamped reported afterwards so the next call starts
// from a clean slate.
func (s *ReportService) Latest(ctx context.Context, mark bool) (string, int, error) {
	txns, err := s.store.UnreportedTransactions(ctx)
	if err != nil {
		return "", 0, fmt.Errorf("load unreported transactions: %w", err)
	}

	text := report.FormatDaily(latestReportTitle, txns, s.cardInfo(ctx, txns))

	if mark && len(txns) > 0 {
		ids := make([]int64, len(txns))
		for i, t := range txns {
			ids[i] = t.ID
		}
		if err := s.store.MarkReported(ctx, ids); err != nil {
			return "", 0, fmt.Errorf("mark reported: %w", err)
		}
		slog.InfoContext(ctx, "Transactions marked reported", "count", len(ids))
	}
	return text, len(txns), nil
}

// Daily renders the transactions of one calendar day in the day's location.
func (s *ReportService) Daily(ctx context.Context, day time.Time) (string, int, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	txns, err := s.store.TransactionsForWindow(ctx, start, end)
	if err != nil {
		return "", 0, fmt.Errorf("load daily transactions: %w", err)
	}

	title := "Cardwatch Daily Report - " + start.Format("2006/01/02")
	return report.FormatDaily(title, txns, s.cardInfo(ctx, txns)), len(txns), nil
}

// Monthly renders the month's category/card rollup.
func (s *ReportService) Monthly(ctx context.Context, year, month, top int) (string, error) {
	if top <= 0 {
		top = s.topLimit
	}
	key := fmt.Sprintf("%04d-%02d:%d", year, month, top)

	if summary, ok := s.summaries.Get(key); ok {
		return report.FormatMonthly(summary), nil
	}

	summary, err := s.aggregator.MonthlySummary(ctx, year, month, top)
	if err != nil {
		return "", fmt.Errorf("build monthly summary: %w", err)
	}
	s.summaries.Put(key, summary)
	return report.FormatMonthly(summary), nil
}

// cardInfo resolves display names and category annotations for the cards
// appearing in a listing. Lookup failures degrade to the raw card id.
func (s *ReportService) cardInfo(ctx context.Context, txns []core.Transaction) map[string]report.CardInfo {
	infos := make(map[string]report.CardInfo)
	for _, t := range txns {
		if _, ok := infos[t.Card]; ok {
			continue
		}
		categories, err := s.store.CardCategories(ctx, t.Card)
		if err != nil {
			slog.WarnContext(ctx, "Resolve card categories failed", "card", t.Card, "error", err)
			categories = nil
		}
		infos[t.Card] = report.CardInfo{
			Display:    s.store.CardDisplay(ctx, t.Card),
			Categories: categories,
		}
	}
	return infos
}
