package core

// MerchantTotal is one row of a top-merchant ranking.
type MerchantTotal struct {
	Merchant string
	Total    Money
}

// CardTotal is one row of the per-card monthly rollup.
type CardTotal struct {
	Card        string
	DisplayName string
	Total       Money
	TxnCount    int
}

// CardSummary embeds a card's monthly rollup with its category memberships
// and its own merchant ranking.
type CardSummary struct {
	Card         string
	DisplayName  string
	Categories   []string
	Total        Money
	TxnCount     int
	TopMerchants []MerchantTotal
}

// CategorySummary groups the member cards of one category. Total is the sum
// of the member cards' totals; a card in several categories contributes its
// full total to each of them.
type CategorySummary struct {
	Name  string
	Total Money
	Cards []CardSummary
}

// MonthlySummary is the point-in-time monthly report view. GrandTotal counts
// every card exactly once, independent of category membership, so it is not
// in general the sum of the category totals.
type MonthlySummary struct {
	Year                int
	Month               int
	GrandTotal          Money
	Categories          []CategorySummary
	UncategorizedCards  []CardSummary
	OverallTopMerchants []MerchantTotal
}
