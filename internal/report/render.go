package report

import (
	"fmt"
	"sort"
	"strings"

	"cardwatch/internal/core"
)

// EmptyReportLine is the whole body of a report over zero transactions.
const EmptyReportLine = "No new transactions to report."

// CardInfo carries the resolved presentation context for one card in a
// daily listing.
type CardInfo struct {
	Display    string
	Categories []string
}

// FormatMonthly renders a monthly summary as fixed-width text. Line
// oriented, no trailing blank lines.
func FormatMonthly(s core.MonthlySummary) string {
	var lines []string
	header := fmt.Sprintf("Cardwatch Monthly Summary - %d/%02d", s.Year, s.Month)
	lines = append(lines, header, strings.Repeat("=", len(header)))
	lines = append(lines, "Grand Total: "+s.GrandTotal.USD(), "")

	for _, cat := range s.Categories {
		lines = append(lines, fmt.Sprintf("%s (%s):", cat.Name, cat.Total.USD()))
		for _, cs := range cat.Cards {
			also := ""
			if others := otherCategories(cs.Categories, cat.Name); len(others) > 0 {
				also = "  (also in: " + strings.Join(others, ", ") + ")"
			}
			lines = append(lines, fmt.Sprintf("  %s: %s (%d txns)%s",
				cardLabel(cs), cs.Total.USD(), cs.TxnCount, also))
			lines = append(lines, merchantLines(cs.TopMerchants, "    ")...)
		}
		lines = append(lines, "")
	}

	if len(s.UncategorizedCards) > 0 {
		var total core.Money
		for _, cs := range s.UncategorizedCards {
			total = total.Add(cs.Total)
		}
		lines = append(lines, fmt.Sprintf("Uncategorized (%s):", total.USD()))
		for _, cs := range s.UncategorizedCards {
			lines = append(lines, fmt.Sprintf("  %s: %s (%d txns)",
				cardLabel(cs), cs.Total.USD(), cs.TxnCount))
			lines = append(lines, merchantLines(cs.TopMerchants, "    ")...)
		}
		lines = append(lines, "")
	}

	if len(s.OverallTopMerchants) > 0 {
		lines = append(lines, "Top Merchants (All):")
		for _, m := range s.OverallTopMerchants {
			lines = append(lines, fmt.Sprintf("  %s: %s", m.Merchant, m.Total.USD()))
		}
	}

	return strings.TrimRight(strings.Join(lines, "\n"), " \n")
}

// FormatDaily renders a flat transaction listing grouped by card. The cards
// map supplies display names and category annotations; unknown cards fall
// back to their raw id. Zero transactions render the fixed empty-report
// sentence.
func FormatDaily(title string, txns []core.Transaction, cards map[string]CardInfo) string {
	if len(txns) == 0 {
		return EmptyReportLine
	}

	lines := []string{
		title,
		strings.Repeat("=", len(title)),
		fmt.Sprintf("%d transaction(s)", len(txns)),
		"",
	}

	byCard := make(map[string][]core.Transaction)
	for _, t := range txns {
		byCard[t.Card] = append(byCard[t.Card], t)
	}
	order := make([]string, 0, len(byCard))
	for card := range byCard {
		order = append(order, card)
	}
	sort.Strings(order)

	for _, card := range order {
		display := card
		var categories []string
		if info, ok := cards[card]; ok {
			display = info.Display
			categories = info.Categories
		}
		catStr := ""
		if len(categories) > 0 {
			catStr = " [" + strings.Join(categories, ", ") + "]"
		}
		lines = append(lines, display+catStr+":")
		for _, t := range byCard[card] {
			lines = append(lines, fmt.Sprintf("  %-30s %s  (%s)",
				strings.TrimSpace(t.Description), t.Amount.USDAligned(10), capitalize(t.Status)))
		}
		lines = append(lines, "")
	}

	return strings.TrimRight(strings.Join(lines, "\n"), " \n")
}

func cardLabel(cs core.CardSummary) string {
	if cs.DisplayName != cs.Card {
		return cs.DisplayName + " (" + cs.Card + ")"
	}
	return cs.Card
}

func otherCategories(categories []string, current string) []string {
	var others []string
	for _, c := range categories {
		if c != current {
			others = append(others, c)
		}
	}
	return others
}

func merchantLines(merchants []core.MerchantTotal, indent string) []string {
	if len(merchants) == 0 {
		return nil
	}
	lines := []string{indent + "Top:"}
	for _, m := range merchants {
		lines = append(lines, fmt.Sprintf("%s  - %s: %s", indent, m.Merchant, m.Total.USD()))
	}
	return lines
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
