package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// StatusCancelled is the terminal status; cancelled rows are excluded
	// from every report query.
	StatusCancelled = "CANCELLED"

	// TypeCardSpend marks merchant charges, the only type counted by
	// merchant rankings.
	TypeCardSpend = "card_spend"
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyDescription   = errors.New("empty description")
	ErrEmptyCard          = errors.New("empty card")
	ErrMissingFingerprint = errors.New("missing fingerprint")
)

// TransactionInput is one record presented for ingestion. Callers parse and
// normalize the raw source fields before building it; the ledger never sees
// a malformed amount.
type TransactionInput struct {
	Timestamp        time.Time
	Type             string
	Description      string
	Status           string
	Amount           Money
	Card             string
	CardHolder       string
	OriginalAmount   decimal.NullDecimal
	OriginalCurrency string
	Cashback         decimal.NullDecimal
	Category         string // legacy single label, superseded by card categories
	Fingerprint      string
}

func (in TransactionInput) Validate() error {
	if strings.TrimSpace(in.Description) == "" {
		return ErrEmptyDescription
	}
	if strings.TrimSpace(in.Card) == "" {
		return ErrEmptyCard
	}
	if in.Fingerprint == "" {
		return ErrMissingFingerprint
	}
	return nil
}

// Transaction is a stored ledger row. Status, Amount, OriginalAmount and
// Cashback are the only fields re-ingestion may change; CreatedAt never
// moves and UpdatedAt advances only on a real change.
type Transaction struct {
	ID               int64
	Timestamp        time.Time
	Type             string
	Description      string
	Status           string
	Amount           Money
	Card             string
	CardHolder       string
	OriginalAmount   decimal.NullDecimal
	OriginalCurrency string
	Cashback         decimal.NullDecimal
	Category         string
	Fingerprint      string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	ReportedAt       *time.Time
}

// Card is a payment instrument identifier with an optional nickname.
// Cards are auto-created on first ingestion and never auto-deleted.
type Card struct {
	Card     string
	Nickname string
}

// Display returns the human label for the card.
func (c Card) Display() string {
	if c.Nickname != "" {
		return c.Nickname + " (" + c.Card + ")"
	}
	return c.Card
}

// Category is an operator-defined label, many-to-many with cards.
type Category struct {
	Name      string
	CreatedAt time.Time
}
