// Package core holds the ledger domain: transactions, cards, categories,
// money parsing and the fingerprint identity hash.
package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Money is a USD amount in integer cents.
type Money struct {
	Cents int64
}

var usd = message.NewPrinter(language.AmericanEnglish)

// ParseAmount converts a decimal string to Money with half-up rounding past
// two decimal places. A leading dollar sign is tolerated.
//
// Examples:
//
//	ParseAmount("12.50") -> 1250 cents
//	ParseAmount("$1,234") -> error (grouped input is not accepted)
//	ParseAmount("-3.99") -> -399 cents
func ParseAmount(s string) (Money, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "$")
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: d.Shift(2).Round(0).IntPart()}, nil
}

// ParseOptionalDecimal parses a free-form decimal field. Blank or
// unparseable input yields the null value rather than an error; optional
// fields are dropped silently, never rejected.
func ParseOptionalDecimal(s string) decimal.NullDecimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// USD formats the amount as a grouped en-US dollar string: $1,234.50.
func (m Money) USD() string {
	return "$" + usd.Sprintf("%.2f", float64(m.Cents)/100)
}

// USDAligned right-aligns the grouped amount to width after the dollar
// sign, for fixed-width report columns.
func (m Money) USDAligned(width int) string {
	return "$" + fmt.Sprintf("%*s", width, usd.Sprintf("%.2f", float64(m.Cents)/100))
}

// Add returns the sum of two amounts.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}
