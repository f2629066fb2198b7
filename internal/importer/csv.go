// Package importer loads transactions from card activity CSV exports.
package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"cardwatch/internal/core"
)

// requiredColumns must all appear in the header row. The optional columns
// are "card holder name", "original amount", "original currency",
// "cashback earned" and "category".
var requiredColumns = []string{"timestamp", "type", "description", "status", "amount USD", "card"}

// Result carries the parsed inputs plus the count of rows dropped because
// their amount or timestamp could not be parsed.
type Result struct {
	Inputs  []core.TransactionInput
	Skipped int
}

// ParseFile reads a CSV export from disk.
func ParseFile(ctx context.Context, path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return Parse(ctx, f)
}

// Parse reads a CSV export. Header columns are matched by trimmed name so
// exports with padded headers still import. Malformed rows are skipped and
// counted, never fatal.
func Parse(ctx context.Context, r io.Reader) (Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return Result{}, fmt.Errorf("read csv header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := col[name]; !ok {
			return Result{}, fmt.Errorf("csv missing column %q", name)
		}
	}
	field := func(record []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var res Result
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return res, fmt.Errorf("read csv row: %w", err)
		}

		rawTimestamp := field(record, "timestamp")
		rawAmount := field(record, "amount USD")
		description := field(record, "description")

		amount, err := core.ParseAmount(rawAmount)
		if err != nil {
			res.Skipped++
			continue
		}
		timestamp, err := core.ParseTimestamp(rawTimestamp)
		if err != nil {
			res.Skipped++
			continue
		}

		res.Inputs = append(res.Inputs, core.TransactionInput{
			Timestamp:        timestamp,
			Type:             field(record, "type"),
			Description:      description,
			Status:           field(record, "status"),
			Amount:           amount,
			Card:             field(record, "card"),
			CardHolder:       field(record, "card holder name"),
			OriginalAmount:   core.ParseOptionalDecimal(field(record, "original amount")),
			OriginalCurrency: field(record, "original currency"),
			Cashback:         core.ParseOptionalDecimal(field(record, "cashback earned")),
			Category:         field(record, "category"),
			Fingerprint:      core.Fingerprint(rawTimestamp, rawAmount, description),
		})
	}

	if res.Skipped > 0 {
		slog.WarnContext(ctx, "Skipped unparseable csv rows", "skipped", res.Skipped)
	}
	return res, nil
}
