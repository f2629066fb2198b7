package report

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardwatch/internal/core"
	"cardwatch/internal/storage"
)

type fakeLedger struct {
	totals    []core.CardTotal
	merchants map[string][]core.MerchantTotal // keyed by card, "" = overall
}

func (f *fakeLedger) TotalsByCard(context.Context, int, int) ([]core.CardTotal, error) {
	return f.totals, nil
}

func (f *fakeLedger) TopMerchants(_ context.Context, _, _ int, opts storage.TopMerchantsOptions) ([]core.MerchantTotal, error) {
	return f.merchants[opts.Card], nil
}

type fakeMembership struct {
	categories []core.Category
	byCard     map[string][]string
}

func (f *fakeMembership) ListCategories(context.Context) ([]core.Category, error) {
	return f.categories, nil
}

func (f *fakeMembership) CardCategories(_ context.Context, card string) ([]string, error) {
	return f.byCard[card], nil
}

func money(cents int64) core.Money { return core.Money{Cents: cents} }

func TestMonthlySummaryOverlapSemantics(t *testing.T) {
	// Card 4242 spent $120.00 over 3 transactions and belongs to both
	// Groceries and Travel; card 9999 spent $50.00 over 1 transaction and
	// belongs to Travel only.
	ledger := &fakeLedger{
		totals: []core.CardTotal{
			{Card: "4242", DisplayName: "Groceries Card", Total: money(12000), TxnCount: 3},
			{Card: "9999", DisplayName: "9999", Total: money(5000), TxnCount: 1},
		},
		merchants: map[string][]core.MerchantTotal{
			"":     {{Merchant: "Grocer", Total: money(9000)}},
			"4242": {{Merchant: "Grocer", Total: money(9000)}},
			"9999": {{Merchant: "Airline", Total: money(5000)}},
		},
	}
	membership := &fakeMembership{
		categories: []core.Category{{Name: "Groceries"}, {Name: "Travel"}},
		byCard: map[string][]string{
			"4242": {"Groceries", "Travel"},
			"9999": {"Travel"},
		},
	}

	summary, err := NewAggregator(ledger, membership).MonthlySummary(context.Background(), 2026, 3, 5)
	require.NoError(t, err)

	assert.Equal(t, 2026, summary.Year)
	assert.Equal(t, 3, summary.Month)

	// The grand total counts each card exactly once even though 4242 shows
	// up under two categories.
	assert.EqualValues(t, 17000, summary.GrandTotal.Cents)

	require.Len(t, summary.Categories, 2)
	groceries, travel := summary.Categories[0], summary.Categories[1]

	assert.Equal(t, "Groceries", groceries.Name)
	assert.EqualValues(t, 12000, groceries.Total.Cents)
	require.Len(t, groceries.Cards, 1)
	assert.Equal(t, "4242", groceries.Cards[0].Card)

	assert.Equal(t, "Travel", travel.Name)
	assert.EqualValues(t, 17000, travel.Total.Cents, "overlapping card contributes its full total to each category")
	require.Len(t, travel.Cards, 2)

	assert.Empty(t, summary.UncategorizedCards)
	require.Len(t, summary.OverallTopMerchants, 1)
	assert.Equal(t, "Grocer", summary.OverallTopMerchants[0].Merchant)
}

func TestMonthlySummaryUncategorizedBucket(t *testing.T) {
	ledger := &fakeLedger{
		totals: []core.CardTotal{
			{Card: "4242", DisplayName: "4242", Total: money(8000), TxnCount: 2},
			{Card: "7777", DisplayName: "Mystery", Total: money(1500), TxnCount: 1},
		},
		merchants: map[string][]core.MerchantTotal{},
	}
	membership := &fakeMembership{
		categories: []core.Category{{Name: "Groceries"}, {Name: "Empty"}},
		byCard:     map[string][]string{"4242": {"Groceries"}},
	}

	summary, err := NewAggregator(ledger, membership).MonthlySummary(context.Background(), 2026, 3, 5)
	require.NoError(t, err)

	// Categories with no active member cards are omitted entirely.
	require.Len(t, summary.Categories, 1)
	assert.Equal(t, "Groceries", summary.Categories[0].Name)

	require.Len(t, summary.UncategorizedCards, 1)
	assert.Equal(t, "7777", summary.UncategorizedCards[0].Card)
	assert.EqualValues(t, 9500, summary.GrandTotal.Cents)
}

func TestMonthlySummaryEmptyMonth(t *testing.T) {
	ledger := &fakeLedger{merchants: map[string][]core.MerchantTotal{}}
	membership := &fakeMembership{}

	summary, err := NewAggregator(ledger, membership).MonthlySummary(context.Background(), 2026, 3, 5)
	require.NoError(t, err)

	assert.Zero(t, summary.GrandTotal.Cents)
	assert.Empty(t, summary.Categories)
	assert.Empty(t, summary.UncategorizedCards)
}
