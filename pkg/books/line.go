package books

import (
	"github.com/shopspring/decimal"
)

// LineItem is one row of a parent document. A persisted line carries a
// backend-assigned ID; a line pending creation has an empty ID.
type LineItem struct {
	ID          string          `json:"id,omitempty" yaml:"id,omitempty"`
	DocumentID  string          `json:"document_id,omitempty" yaml:"document_id,omitempty"`
	Name        string          `json:"name" yaml:"name" validate:"required"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	AccountID   string          `json:"account_id,omitempty" yaml:"account_id,omitempty"`
	Quantity    decimal.Decimal `json:"quantity" yaml:"quantity"`
	UnitRate    decimal.Decimal `json:"unit_rate" yaml:"unit_rate"`
	Amount      decimal.Decimal `json:"amount" yaml:"amount"`
}

// RecordID returns the line's identifier, empty for lines pending creation.
func (l LineItem) RecordID() string { return l.ID }

// ExtendedAmount returns the line amount, deriving quantity times unit rate
// when no explicit amount is set.
func (l LineItem) ExtendedAmount() decimal.Decimal {
	if !l.Amount.IsZero() {
		return l.Amount
	}
	return l.Quantity.Mul(l.UnitRate)
}

// JournalLine is one row of a journal entry. Exactly one of Debit or Credit
// is expected to be non-zero.
type JournalLine struct {
	ID          string          `json:"id,omitempty" yaml:"id,omitempty"`
	EntryID     string          `json:"entry_id,omitempty" yaml:"entry_id,omitempty"`
	AccountID   string          `json:"account_id" yaml:"account_id" validate:"required"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	Debit       decimal.Decimal `json:"debit" yaml:"debit"`
	Credit      decimal.Decimal `json:"credit" yaml:"credit"`
}

// RecordID returns the line's identifier, empty for lines pending creation.
func (l JournalLine) RecordID() string { return l.ID }
