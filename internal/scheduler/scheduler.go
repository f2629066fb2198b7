// Package scheduler runs the worker's periodic jobs: auto-fetch, daily
// report delivery and monthly report delivery. The cadence lives in the
// settings table so the operator can retune it without redeploying.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"cardwatch/internal/notify"
	"cardwatch/internal/services"
	"cardwatch/internal/storage"

	"github.com/robfig/cron/v3"
)

type Scheduler struct {
	store    *storage.Repository
	ingest   *services.IngestService
	reports  *services.ReportService
	notifier *notify.Dispatcher
	cron     *cron.Cron
}

func New(store *storage.Repository, ingest *services.IngestService, reports *services.ReportService, notifier *notify.Dispatcher) *Scheduler {
	return &Scheduler{
		store:    store,
		ingest:   ingest,
		reports:  reports,
		notifier: notifier,
		cron:     cron.New(),
	}
}

// Start registers the jobs and runs the cron loop until ctx is cancelled.
// The check cadences are deliberately tighter than the configured schedules;
// each job re-reads its setting and decides whether it is due.
func (s *Scheduler) Start(ctx context.Context) error {
	jobs := []struct {
		spec string
		run  func()
	}{
		{"@every 30m", func() { s.autoFetch(ctx) }},
		{"@every 1m", func() { s.dailyReport(ctx) }},
		{"@every 1h", func() { s.monthlyReport(ctx) }},
	}
	for _, job := range jobs {
		if _, err := s.cron.AddFunc(job.spec, job.run); err != nil {
			return fmt.Errorf("schedule %s job: %w", job.spec, err)
		}
	}

	s.cron.Start()
	slog.InfoContext(ctx, "Scheduler started", "jobs", len(jobs))

	<-ctx.Done()
	stopped := s.cron.Stop()
	<-stopped.Done()
	slog.InfoContext(context.Background(), "Scheduler stopped")
	return ctx.Err()
}

// autoFetch pulls the feed once fetch_interval_hours have elapsed since
// last_fetch_at. A negative interval disables the job. Fetch failures are
// pushed to the notification channels so they do not go unnoticed.
func (s *Scheduler) autoFetch(ctx context.Context) {
	interval, err := s.store.FetchIntervalHours(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Read fetch interval failed", "error", err)
		return
	}
	if interval < 0 {
		return
	}

	last, err := s.store.LastFetchAt(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Read last fetch time failed", "error", err)
		return
	}
	elapsed := time.Since(last).Hours()
	if elapsed < interval {
		return
	}

	slog.InfoContext(ctx, "Auto-fetch due", "elapsed_hours", elapsed, "interval_hours", interval)
	if _, _, err := s.ingest.FetchAndStore(ctx); err != nil {
		slog.ErrorContext(ctx, "Auto-fetch failed", "error", err)
		s.notifier.Send(ctx, "Cardwatch fetch error:\n"+err.Error())
	}
}

// dailyReport fires once a day at daily_report_hour:00 and delivers the
// previous day's transactions. A negative hour disables the job; an empty
// day sends nothing.
func (s *Scheduler) dailyReport(ctx context.Context) {
	hour, ok := s.intSetting(ctx, "daily_report_hour")
	if !ok || hour < 0 {
		return
	}
	now := time.Now()
	if now.Hour() != hour || now.Minute() != 0 {
		return
	}

	// Refresh the ledger first so the report covers the full day. A failed
	// fetch is logged and already notified by the ingest path; the report
	// still goes out over whatever is stored.
	if _, _, err := s.ingest.FetchAndStore(ctx); err != nil {
		slog.ErrorContext(ctx, "Pre-report fetch failed", "error", err)
	}

	text, count, err := s.reports.Daily(ctx, now.AddDate(0, 0, -1))
	if err != nil {
		slog.ErrorContext(ctx, "Build daily report failed", "error", err)
		return
	}
	if count == 0 {
		slog.InfoContext(ctx, "Daily report empty, not sending")
		return
	}
	s.notifier.Send(ctx, text)
}

// monthlyReport fires on monthly_report_day at hour zero and delivers the
// previous month's summary. A negative day disables the job.
func (s *Scheduler) monthlyReport(ctx context.Context) {
	day, ok := s.intSetting(ctx, "monthly_report_day")
	if !ok || day < 0 {
		return
	}
	now := time.Now()
	if now.Day() != day || now.Hour() != 0 {
		return
	}

	year, month := previousMonth(now.Year(), int(now.Month()))
	text, err := s.reports.Monthly(ctx, year, month, 0)
	if err != nil {
		slog.ErrorContext(ctx, "Build monthly report failed", "error", err)
		return
	}
	s.notifier.Send(ctx, text)
}

func (s *Scheduler) intSetting(ctx context.Context, key string) (int, bool) {
	raw, err := s.store.GetSetting(ctx, key)
	if err != nil {
		slog.ErrorContext(ctx, "Read setting failed", "key", key, "error", err)
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		slog.ErrorContext(ctx, "Setting is not an integer", "key", key, "value", raw)
		return 0, false
	}
	return v, true
}

func previousMonth(year, month int) (int, int) {
	if month == 1 {
		return year - 1, 12
	}
	return year, month - 1
}
