package importer

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardwatch/internal/core"
)

const sampleCSV = `timestamp, type, description, status, amount USD, card, card holder name, original amount, original currency, cashback earned, category
2026-03-05T10:00:00Z, card_spend,  Coffee Shop , settled, 4.50, 4242, Jamie, , , 0.0450, food
2026-03-05 11:30:00, card_spend, Grocer, pending, $20.00, 4242, , 18.50, EUR, ,
2026-03-06T09:00:00Z, card_spend, Broken, settled, not-a-number, 4242, , , , ,
not-a-date, card_spend, Also Broken, settled, 1.00, 4242, , , , ,
`

func TestParse(t *testing.T) {
	res, err := Parse(context.Background(), strings.NewReader(sampleCSV))
	require.NoError(t, err)

	assert.Equal(t, 2, res.Skipped)
	require.Len(t, res.Inputs, 2)

	first := res.Inputs[0]
	assert.Equal(t, time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC), first.Timestamp)
	assert.Equal(t, "Coffee Shop", first.Description)
	assert.EqualValues(t, 450, first.Amount.Cents)
	assert.Equal(t, "4242", first.Card)
	assert.Equal(t, "Jamie", first.CardHolder)
	assert.True(t, first.Cashback.Valid)
	assert.Equal(t, "0.0450", first.Cashback.Decimal.String())
	assert.False(t, first.OriginalAmount.Valid)
	assert.Equal(t, "food", first.Category)
	// The fingerprint hashes the raw source strings, with only the
	// description trimmed.
	assert.Equal(t, core.Fingerprint("2026-03-05T10:00:00Z", "4.50", "Coffee Shop"), first.Fingerprint)

	second := res.Inputs[1]
	assert.EqualValues(t, 2000, second.Amount.Cents)
	assert.True(t, second.OriginalAmount.Valid)
	assert.Equal(t, "EUR", second.OriginalCurrency)
}

func TestParseMissingColumn(t *testing.T) {
	_, err := Parse(context.Background(), strings.NewReader("timestamp, type, description\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amount USD")
}

func TestParseEmptyFile(t *testing.T) {
	_, err := Parse(context.Background(), strings.NewReader(""))
	assert.Error(t, err)
}
