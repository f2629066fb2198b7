package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"
)

// Setting is one row of the runtime key-value configuration owned by the
// operator (fetch interval, report schedule, notification channels).
type Setting struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}

// GetSetting returns a configuration value or ErrNotFound.
func (r *Repository) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("setting %s: %w", key, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("get setting: %w", err)
	}
	return value, nil
}

// SetSetting creates or overwrites a configuration value.
func (r *Repository) SetSetting(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
         ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("set setting: %w", err)
	}
	return nil
}

// AllSettings lists the configuration in key order.
func (r *Repository) AllSettings(ctx context.Context) ([]Setting, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT key, value, updated_at FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var s Setting
		var updatedAt string
		if err := rows.Scan(&s.Key, &s.Value, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		if s.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
			return nil, fmt.Errorf("parse setting updated_at: %w", err)
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// LastFetchAt returns when the source feed was last pulled.
func (r *Repository) LastFetchAt(ctx context.Context) (time.Time, error) {
	raw, err := r.GetSetting(ctx, "last_fetch_at")
	if err != nil {
		return time.Time{}, err
	}
	at, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse last_fetch_at %q: %w", raw, err)
	}
	return at, nil
}

// SetLastFetchAt stamps the successful completion of a fetch.
func (r *Repository) SetLastFetchAt(ctx context.Context, at time.Time) error {
	return r.SetSetting(ctx, "last_fetch_at", at.UTC().Format(time.RFC3339))
}

// FetchIntervalHours returns the configured auto-fetch cadence. Negative
// values disable auto-fetch.
func (r *Repository) FetchIntervalHours(ctx context.Context) (float64, error) {
	raw, err := r.GetSetting(ctx, "fetch_interval_hours")
	if err != nil {
		return 0, err
	}
	hours, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parse fetch_interval_hours %q: %w", raw, err)
	}
	return hours, nil
}
