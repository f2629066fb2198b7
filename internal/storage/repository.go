// Package storage is the durable ledger: a SQLite-backed store for
// transactions, cards, category membership and runtime settings.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cardwatch/internal/core"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// ErrNotFound marks lookups of keys or entities that do not exist, so
// callers can say "not set" instead of failing.
var ErrNotFound = errors.New("not found")

// Timestamps are stored as RFC3339 UTC text; lexicographic order matches
// chronological order, which the window queries rely on.
const timeLayout = time.RFC3339

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const upsertTransactionSQL = `
INSERT INTO transactions
    (timestamp, type, description, status, amount_usd_cents,
     card, card_holder, original_amount, original_currency,
     cashback, category, fingerprint, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (fingerprint) DO UPDATE SET
    status = excluded.status,
    amount_usd_cents = excluded.amount_usd_cents,
    original_amount = excluded.original_amount,
    cashback = excluded.cashback,
    updated_at = excluded.updated_at
WHERE transactions.status != excluded.status
   OR transactions.amount_usd_cents != excluded.amount_usd_cents`

// UpsertTransactions ingests a batch, one independent upsert per row. It
// returns the number of rows actually inserted or updated: re-ingesting
// identical data reports zero effect, and an update fires only when the
// stored status or amount differs from the incoming value. Failed rows are
// skipped; their errors come back joined next to the count of the rows that
// did succeed.
func (r *Repository) UpsertTransactions(ctx context.Context, inputs []core.TransactionInput) (int, error) {
	affected := 0
	var errs []error
	for _, in := range inputs {
		n, err := r.upsertTransaction(ctx, in)
		if err != nil {
			errs = append(errs, fmt.Errorf("upsert %.12s: %w", in.Fingerprint, err))
			continue
		}
		affected += n
	}
	return affected, errors.Join(errs...)
}

func (r *Repository) upsertTransaction(ctx context.Context, in core.TransactionInput) (int, error) {
	if err := in.Validate(); err != nil {
		return 0, err
	}

	// Auto-register the owning card. An existing nickname is never touched
	// from the ingestion path.
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO cards (card) VALUES (?) ON CONFLICT (card) DO NOTHING`,
		in.Card,
	); err != nil {
		return 0, fmt.Errorf("ensure card: %w", err)
	}

	now := time.Now().UTC().Format(timeLayout)
	res, err := r.db.ExecContext(ctx, upsertTransactionSQL,
		in.Timestamp.UTC().Format(timeLayout),
		in.Type,
		in.Description,
		in.Status,
		in.Amount.Cents,
		in.Card,
		nullString(in.CardHolder),
		nullDecimal(in.OriginalAmount),
		nullString(in.OriginalCurrency),
		nullDecimal(in.Cashback),
		nullString(in.Category),
		in.Fingerprint,
		now,
		now,
	)
	if err != nil {
		return 0, fmt.Errorf("exec upsert: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}

const transactionColumns = `id, timestamp, type, description, status, amount_usd_cents,
    card, card_holder, original_amount, original_currency,
    cashback, category, fingerprint, created_at, updated_at, reported_at`

// UnreportedTransactions returns rows never delivered in a "latest" report,
// newest first. Cancelled rows never count as reportable.
func (r *Repository) UnreportedTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions
         WHERE reported_at IS NULL AND status != ?
         ORDER BY timestamp DESC`,
		core.StatusCancelled,
	)
	if err != nil {
		return nil, fmt.Errorf("query unreported: %w", err)
	}
	return collectTransactions(rows)
}

// MarkReported stamps reported_at once for the given rows. Rows already
// marked keep their original stamp; an empty id list is a no-op.
func (r *Repository) MarkReported(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, len(ids)+1)
	args = append(args, time.Now().UTC().Format(timeLayout))
	for _, id := range ids {
		args = append(args, id)
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET reported_at = ?
         WHERE id IN (`+placeholders+`) AND reported_at IS NULL`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("mark reported: %w", err)
	}
	return nil
}

// TransactionsForWindow returns non-cancelled rows in the half-open
// interval [start, end), newest first.
func (r *Repository) TransactionsForWindow(ctx context.Context, start, end time.Time) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions
         WHERE timestamp >= ? AND timestamp < ? AND status != ?
         ORDER BY timestamp DESC`,
		start.UTC().Format(timeLayout),
		end.UTC().Format(timeLayout),
		core.StatusCancelled,
	)
	if err != nil {
		return nil, fmt.Errorf("query window: %w", err)
	}
	return collectTransactions(rows)
}

// RecentTransactions returns the newest rows regardless of status.
func (r *Repository) RecentTransactions(ctx context.Context, limit int) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions
         ORDER BY timestamp DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent: %w", err)
	}
	return collectTransactions(rows)
}

func (r *Repository) TransactionCount(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

// TotalsByCard sums amounts and counts rows per card for the non-cancelled
// transactions of a calendar month, largest spender first. The display name
// resolves to the card's nickname when one is set.
func (r *Repository) TotalsByCard(ctx context.Context, year, month int) ([]core.CardTotal, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT t.card,
               COALESCE(NULLIF(c.nickname, ''), t.card) AS display_name,
               SUM(t.amount_usd_cents) AS total_cents,
               COUNT(*) AS txn_count
        FROM transactions t
        LEFT JOIN cards c ON t.card = c.card
        WHERE CAST(strftime('%Y', t.timestamp) AS INTEGER) = ?
          AND CAST(strftime('%m', t.timestamp) AS INTEGER) = ?
          AND t.status != ?
        GROUP BY t.card, c.nickname
        ORDER BY total_cents DESC`,
		year, month, core.StatusCancelled,
	)
	if err != nil {
		return nil, fmt.Errorf("query totals by card: %w", err)
	}
	defer rows.Close()

	var totals []core.CardTotal
	for rows.Next() {
		var ct core.CardTotal
		if err := rows.Scan(&ct.Card, &ct.DisplayName, &ct.Total.Cents, &ct.TxnCount); err != nil {
			return nil, fmt.Errorf("scan card total: %w", err)
		}
		totals = append(totals, ct)
	}
	return totals, rows.Err()
}

// TopMerchantsOptions narrows a merchant ranking to one card or to the
// cards of one category. Zero values mean no restriction.
type TopMerchantsOptions struct {
	Card     string
	Category string
	Limit    int
}

// TopMerchants ranks merchants (trimmed descriptions) by card_spend volume
// within a calendar month, highest total first. Ties break on merchant name
// so repeated runs return the same order.
func (r *Repository) TopMerchants(ctx context.Context, year, month int, opts TopMerchantsOptions) ([]core.MerchantTotal, error) {
	conditions := []string{
		"CAST(strftime('%Y', t.timestamp) AS INTEGER) = ?",
		"CAST(strftime('%m', t.timestamp) AS INTEGER) = ?",
		"t.status != ?",
		"t.type = ?",
	}
	args := []any{year, month, core.StatusCancelled, core.TypeCardSpend}
	join := ""

	if opts.Card != "" {
		conditions = append(conditions, "t.card = ?")
		args = append(args, opts.Card)
	}
	if opts.Category != "" {
		join = "JOIN card_categories cc ON t.card = cc.card AND cc.category = ?"
		args = append([]any{opts.Category}, args...)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}
	args = append(args, limit)

	query := fmt.Sprintf(`
        SELECT TRIM(t.description) AS merchant, SUM(t.amount_usd_cents) AS total_cents
        FROM transactions t
        %s
        WHERE %s
        GROUP BY TRIM(t.description)
        ORDER BY total_cents DESC, merchant ASC
        LIMIT ?`, join, strings.Join(conditions, " AND "))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query top merchants: %w", err)
	}
	defer rows.Close()

	var merchants []core.MerchantTotal
	for rows.Next() {
		var mt core.MerchantTotal
		if err := rows.Scan(&mt.Merchant, &mt.Total.Cents); err != nil {
			return nil, fmt.Errorf("scan merchant total: %w", err)
		}
		merchants = append(merchants, mt)
	}
	return merchants, rows.Err()
}

func collectTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	defer rows.Close()
	var txns []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	slog.Debug("Loaded transactions", "count", len(txns))
	return txns, nil
}

func scanTransaction(rows *sql.Rows) (core.Transaction, error) {
	var (
		t                         core.Transaction
		ts, createdAt, updatedAt  string
		holder, origCur, category sql.NullString
		origAmount, cashback      sql.NullString
		reportedAt                sql.NullString
	)
	err := rows.Scan(&t.ID, &ts, &t.Type, &t.Description, &t.Status, &t.Amount.Cents,
		&t.Card, &holder, &origAmount, &origCur,
		&cashback, &category, &t.Fingerprint, &createdAt, &updatedAt, &reportedAt)
	if err != nil {
		return t, fmt.Errorf("scan transaction: %w", err)
	}

	if t.Timestamp, err = time.Parse(timeLayout, ts); err != nil {
		return t, fmt.Errorf("parse timestamp %q: %w", ts, err)
	}
	if t.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return t, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	if t.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return t, fmt.Errorf("parse updated_at %q: %w", updatedAt, err)
	}
	if reportedAt.Valid {
		at, err := time.Parse(timeLayout, reportedAt.String)
		if err != nil {
			return t, fmt.Errorf("parse reported_at %q: %w", reportedAt.String, err)
		}
		t.ReportedAt = &at
	}

	t.CardHolder = holder.String
	t.OriginalCurrency = origCur.String
	t.Category = category.String
	if t.OriginalAmount, err = parseNullDecimal(origAmount); err != nil {
		return t, err
	}
	if t.Cashback, err = parseNullDecimal(cashback); err != nil {
		return t, err
	}
	return t, nil
}

func parseNullDecimal(s sql.NullString) (decimal.NullDecimal, error) {
	if !s.Valid {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s.String)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("parse decimal %q: %w", s.String, err)
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullDecimal(d decimal.NullDecimal) any {
	if !d.Valid {
		return nil
	}
	return d.Decimal.String()
}
