// Package source pulls raw transaction records from the card provider's
// export feed and normalizes them into ledger inputs.
package source

import (
	"context"
	"strings"

	"cardwatch/internal/core"
)

// Record is one raw feed row. Every field stays a string here; parsing
// belongs to Normalize so fingerprints can hash the literal source text.
type Record struct {
	Timestamp        string `json:"timestamp"`
	Type             string `json:"type"`
	Description      string `json:"description"`
	Status           string `json:"status"`
	AmountUSD        string `json:"amount_usd"`
	Card             string `json:"card"`
	CardHolder       string `json:"card_holder,omitempty"`
	OriginalAmount   string `json:"original_amount,omitempty"`
	OriginalCurrency string `json:"original_currency,omitempty"`
	Cashback         string `json:"cashback,omitempty"`
	Category         string `json:"category,omitempty"`
}

// Provider produces raw transaction records from an external feed.
type Provider interface {
	Fetch(ctx context.Context) ([]Record, error)
}

// Normalize converts raw records into ledger inputs. Rows whose amount or
// timestamp cannot be parsed are dropped and counted. The fingerprint
// hashes the raw timestamp and amount strings, so a row maps to the same
// ledger entry no matter which fetch produced it.
func Normalize(records []Record) ([]core.TransactionInput, int) {
	var inputs []core.TransactionInput
	skipped := 0
	for _, rec := range records {
		rawTimestamp := strings.TrimSpace(rec.Timestamp)
		rawAmount := strings.TrimSpace(rec.AmountUSD)
		description := strings.TrimSpace(rec.Description)

		amount, err := core.ParseAmount(rawAmount)
		if err != nil {
			skipped++
			continue
		}
		timestamp, err := core.ParseTimestamp(rawTimestamp)
		if err != nil {
			skipped++
			continue
		}

		txnType := strings.TrimSpace(rec.Type)
		if txnType == "" {
			txnType = core.TypeCardSpend
		}

		inputs = append(inputs, core.TransactionInput{
			Timestamp:        timestamp,
			Type:             txnType,
			Description:      description,
			Status:           strings.TrimSpace(rec.Status),
			Amount:           amount,
			Card:             strings.TrimSpace(rec.Card),
			CardHolder:       strings.TrimSpace(rec.CardHolder),
			OriginalAmount:   core.ParseOptionalDecimal(rec.OriginalAmount),
			OriginalCurrency: strings.TrimSpace(rec.OriginalCurrency),
			Cashback:         core.ParseOptionalDecimal(rec.Cashback),
			Category:         strings.TrimSpace(rec.Category),
			Fingerprint:      core.Fingerprint(rawTimestamp, rawAmount, description),
		})
	}
	return inputs, skipped
}
