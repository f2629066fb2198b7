package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardwatch/internal/core"
)

func TestFormatMonthly(t *testing.T) {
	summary := core.MonthlySummary{
		Year:       2026,
		Month:      3,
		GrandTotal: money(17000),
		Categories: []core.CategorySummary{
			{
				Name:  "Groceries",
				Total: money(12000),
				Cards: []core.CardSummary{
					{
						Card:        "4242",
						DisplayName: "Groceries Card",
						Categories:  []string{"Groceries", "Travel"},
						Total:       money(12000),
						TxnCount:    3,
						TopMerchants: []core.MerchantTotal{
							{Merchant: "Grocer", Total: money(9000)},
						},
					},
				},
			},
		},
		UncategorizedCards: []core.CardSummary{
			{Card: "7777", DisplayName: "7777", Total: money(1500), TxnCount: 1},
		},
		OverallTopMerchants: []core.MerchantTotal{
			{Merchant: "Grocer", Total: money(9000)},
		},
	}

	out := FormatMonthly(summary)
	lines := strings.Split(out, "\n")

	require.GreaterOrEqual(t, len(lines), 4)
	assert.Equal(t, "Cardwatch Monthly Summary - 2026/03", lines[0])
	assert.Equal(t, strings.Repeat("=", len(lines[0])), lines[1])
	assert.Equal(t, "Grand Total: $170.00", lines[2])

	assert.Contains(t, out, "Groceries ($120.00):")
	assert.Contains(t, out, "  Groceries Card (4242): $120.00 (3 txns)  (also in: Travel)")
	assert.Contains(t, out, "    Top:")
	assert.Contains(t, out, "      - Grocer: $90.00")
	assert.Contains(t, out, "Uncategorized ($15.00):")
	assert.Contains(t, out, "Top Merchants (All):")

	assert.False(t, strings.HasSuffix(out, "\n"), "no trailing blank lines")
}

func TestFormatMonthlyNoAlsoInForSingleCategory(t *testing.T) {
	summary := core.MonthlySummary{
		Year: 2026, Month: 3, GrandTotal: money(1000),
		Categories: []core.CategorySummary{
			{
				Name:  "Groceries",
				Total: money(1000),
				Cards: []core.CardSummary{
					{Card: "4242", DisplayName: "4242", Categories: []string{"Groceries"}, Total: money(1000), TxnCount: 1},
				},
			},
		},
	}
	out := FormatMonthly(summary)
	assert.NotContains(t, out, "also in")
}

func TestFormatDaily(t *testing.T) {
	ts := time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)
	txns := []core.Transaction{
		{Card: "4242", Description: "  Coffee Shop  ", Amount: money(450), Status: "settled", Timestamp: ts},
		{Card: "9999", Description: "Airline", Amount: money(123450), Status: "pending", Timestamp: ts},
	}
	cards := map[string]CardInfo{
		"4242": {Display: "Groceries Card (4242)", Categories: []string{"Groceries", "Travel"}},
	}

	out := FormatDaily("Cardwatch Daily Report - 2026/03/05", txns, cards)
	lines := strings.Split(out, "\n")

	assert.Equal(t, "Cardwatch Daily Report - 2026/03/05", lines[0])
	assert.Equal(t, strings.Repeat("=", len(lines[0])), lines[1])
	assert.Equal(t, "2 transaction(s)", lines[2])

	assert.Contains(t, out, "Groceries Card (4242) [Groceries, Travel]:")
	assert.Contains(t, out, "9999:", "unknown cards fall back to the raw id")

	// Fixed-width row: trimmed description padded to 30, amount right
	// aligned in 10, status capitalized.
	assert.Contains(t, out, "  Coffee Shop                    $      4.50  (Settled)")
	assert.Contains(t, out, "  Airline                        $  1,234.50  (Pending)")
	assert.False(t, strings.HasSuffix(out, "\n"))
}

func TestFormatDailyEmpty(t *testing.T) {
	out := FormatDaily("Cardwatch Daily Report - 2026/03/05", nil, nil)
	assert.Equal(t, "No new transactions to report.", out)
}
