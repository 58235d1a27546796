package books

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/ledgersync/ledgersync/pkg/errors"
)

// validate is the shared validator instance for domain structs.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Document is a top-level business record owning a list of line items. The
// parent is saved independently of its children; the line collection is
// brought into agreement by reconciliation.
type Document struct {
	ID           string          `json:"id,omitempty" yaml:"id,omitempty"`
	Type         DocumentType    `json:"type" yaml:"type" validate:"required"`
	Number       string          `json:"number" yaml:"number" validate:"required"`
	ContactID    string          `json:"contact_id" yaml:"contact_id" validate:"required"`
	Date         time.Time       `json:"date" yaml:"date"`
	Status       Status          `json:"status" yaml:"status"`
	CurrencyCode string          `json:"currency_code" yaml:"currency_code"`
	ExchangeRate decimal.Decimal `json:"exchange_rate" yaml:"exchange_rate"`
	Notes        string          `json:"notes,omitempty" yaml:"notes,omitempty"`
	Lines        []LineItem      `json:"lines" yaml:"lines" validate:"required,min=1,dive"`
	Subtotal     decimal.Decimal `json:"subtotal" yaml:"subtotal"`
	Total        decimal.Decimal `json:"total" yaml:"total"`
	CreatedAt    time.Time       `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt    time.Time       `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// Validate checks the document against its struct tags and enum fields.
// Document forms enforce a minimum of one line before allowing a save; the
// reconciliation protocol itself accepts an empty desired set.
func (d *Document) Validate() error {
	if !d.Type.Valid() {
		return errors.NewValidationError("type", string(d.Type), "unknown document type")
	}
	if d.Status != "" && !d.Status.Valid() {
		return errors.NewValidationError("status", string(d.Status), "unknown status")
	}
	if err := validate.Struct(d); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			v := verrs[0]
			return errors.NewValidationError(v.Namespace(), v.Value(), "failed on "+v.Tag())
		}
		return errors.WrapValidation("", err)
	}
	return nil
}

// RecomputeTotals sets the stored subtotal and total from the line amounts.
// Totals are plain sums of line items.
func (d *Document) RecomputeTotals() {
	subtotal := decimal.Zero
	for _, line := range d.Lines {
		subtotal = subtotal.Add(line.ExtendedAmount())
	}
	d.Subtotal = subtotal
	d.Total = subtotal
}

// JournalEntry is a manual ledger entry with debit/credit lines.
type JournalEntry struct {
	ID        string          `json:"id,omitempty" yaml:"id,omitempty"`
	Number    string          `json:"number" yaml:"number" validate:"required"`
	Date      time.Time       `json:"date" yaml:"date"`
	Notes     string          `json:"notes,omitempty" yaml:"notes,omitempty"`
	Lines     []JournalLine   `json:"lines" yaml:"lines" validate:"required,min=2,dive"`
	Total     decimal.Decimal `json:"total" yaml:"total"`
	CreatedAt time.Time       `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt time.Time       `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// Collection returns the backend collection name for journal entries.
func (e *JournalEntry) Collection() string { return "journal_entries" }

// LineCollection returns the backend collection name for journal lines.
func (e *JournalEntry) LineCollection() string { return "journal_lines" }

// Balanced reports whether total debits equal total credits.
func (e *JournalEntry) Balanced() bool {
	debit := decimal.Zero
	credit := decimal.Zero
	for _, line := range e.Lines {
		debit = debit.Add(line.Debit)
		credit = credit.Add(line.Credit)
	}
	return debit.Equal(credit)
}

// Validate checks the entry against its struct tags and the balance rule.
func (e *JournalEntry) Validate() error {
	if err := validate.Struct(e); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			v := verrs[0]
			return errors.NewValidationError(v.Namespace(), v.Value(), "failed on "+v.Tag())
		}
		return errors.WrapValidation("", err)
	}
	if !e.Balanced() {
		return errors.NewValidationError("lines", nil, "debits do not equal credits")
	}
	return nil
}
