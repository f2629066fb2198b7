// Package report builds and renders the ledger's report views: the monthly
// category/card rollup and the flat daily/latest transaction listings.
package report

import (
	"context"
	"fmt"
	"slices"

	"cardwatch/internal/core"
	"cardwatch/internal/storage"

	"golang.org/x/sync/errgroup"
)

// Ledger is the slice of the storage layer the aggregator reads.
type Ledger interface {
	TotalsByCard(ctx context.Context, year, month int) ([]core.CardTotal, error)
	TopMerchants(ctx context.Context, year, month int, opts storage.TopMerchantsOptions) ([]core.MerchantTotal, error)
}

// Membership resolves card-category relations.
type Membership interface {
	ListCategories(ctx context.Context) ([]core.Category, error)
	CardCategories(ctx context.Context, card string) ([]string, error)
}

// Aggregator combines ledger queries and category membership into the
// monthly summary view.
type Aggregator struct {
	ledger     Ledger
	membership Membership
}

func NewAggregator(ledger Ledger, membership Membership) *Aggregator {
	return &Aggregator{ledger: ledger, membership: membership}
}

// cardEnrichConcurrency bounds the per-card lookups; the reads are
// independent point-in-time queries against one store.
const cardEnrichConcurrency = 4

// MonthlySummary rolls one calendar month up into category, card and
// merchant views. A card that belongs to several categories contributes its
// full total to each of them; the grand total counts every card exactly
// once. Categories with no active member cards are omitted.
func (a *Aggregator) MonthlySummary(ctx context.Context, year, month, topLimit int) (core.MonthlySummary, error) {
	summary := core.MonthlySummary{Year: year, Month: month}

	totals, err := a.ledger.TotalsByCard(ctx, year, month)
	if err != nil {
		return summary, fmt.Errorf("totals by card: %w", err)
	}

	cards := make([]core.CardSummary, len(totals))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cardEnrichConcurrency)
	for i, ct := range totals {
		i, ct := i, ct
		g.Go(func() error {
			categories, err := a.membership.CardCategories(gctx, ct.Card)
			if err != nil {
				return fmt.Errorf("categories for card %s: %w", ct.Card, err)
			}
			top, err := a.ledger.TopMerchants(gctx, year, month, storage.TopMerchantsOptions{
				Card:  ct.Card,
				Limit: topLimit,
			})
			if err != nil {
				return fmt.Errorf("top merchants for card %s: %w", ct.Card, err)
			}
			cards[i] = core.CardSummary{
				Card:         ct.Card,
				DisplayName:  ct.DisplayName,
				Categories:   categories,
				Total:        ct.Total,
				TxnCount:     ct.TxnCount,
				TopMerchants: top,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return summary, err
	}

	categories, err := a.membership.ListCategories(ctx)
	if err != nil {
		return summary, fmt.Errorf("list categories: %w", err)
	}

	claimed := make(map[string]bool)
	for _, cat := range categories {
		var members []core.CardSummary
		var total core.Money
		for _, cs := range cards {
			if slices.Contains(cs.Categories, cat.Name) {
				members = append(members, cs)
				total = total.Add(cs.Total)
				claimed[cs.Card] = true
			}
		}
		if len(members) > 0 {
			summary.Categories = append(summary.Categories, core.CategorySummary{
				Name:  cat.Name,
				Total: total,
				Cards: members,
			})
		}
	}

	for _, cs := range cards {
		summary.GrandTotal = summary.GrandTotal.Add(cs.Total)
		if !claimed[cs.Card] {
			summary.UncategorizedCards = append(summary.UncategorizedCards, cs)
		}
	}

	overall, err := a.ledger.TopMerchants(ctx, year, month, storage.TopMerchantsOptions{Limit: topLimit})
	if err != nil {
		return summary, fmt.Errorf("overall top merchants: %w", err)
	}
	summary.OverallTopMerchants = overall

	return summary, nil
}
