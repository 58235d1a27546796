package books_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgersync/ledgersync/pkg/books"
	"github.com/ledgersync/ledgersync/pkg/errors"
)

func TestDocumentTypeCollections(t *testing.T) {
	for _, dt := range books.DocumentTypes() {
		assert.True(t, dt.Valid())
		assert.NotEmpty(t, dt.Collection())
		assert.NotEmpty(t, dt.LineCollection())
	}

	assert.False(t, books.DocumentType("payslip").Valid())
	assert.Equal(t, "invoices", books.DocumentInvoice.Collection())
	assert.Equal(t, "invoice_lines", books.DocumentInvoice.LineCollection())
}

func TestStatusValid(t *testing.T) {
	assert.True(t, books.StatusDraft.Valid())
	assert.True(t, books.StatusVoid.Valid())
	assert.False(t, books.Status("archived").Valid())
}

func TestLineExtendedAmount(t *testing.T) {
	t.Run("explicit amount wins", func(t *testing.T) {
		line := books.LineItem{
			Quantity: decimal.NewFromInt(2),
			UnitRate: decimal.NewFromInt(10),
			Amount:   decimal.NewFromInt(15),
		}
		assert.True(t, line.ExtendedAmount().Equal(decimal.NewFromInt(15)))
	})

	t.Run("derived from quantity and rate", func(t *testing.T) {
		line := books.LineItem{
			Quantity: decimal.NewFromInt(3),
			UnitRate: decimal.NewFromFloat(2.5),
		}
		assert.True(t, line.ExtendedAmount().Equal(decimal.NewFromFloat(7.5)))
	})
}

func TestDocumentRecomputeTotals(t *testing.T) {
	doc := &books.Document{
		Type:   books.DocumentInvoice,
		Number: "INV-001",
		Lines: []books.LineItem{
			{Name: "consulting", Amount: decimal.NewFromInt(10)},
			{Name: "hosting", Quantity: decimal.NewFromInt(4), UnitRate: decimal.NewFromInt(5)},
		},
	}

	doc.RecomputeTotals()
	assert.True(t, doc.Subtotal.Equal(decimal.NewFromInt(30)))
	assert.True(t, doc.Total.Equal(decimal.NewFromInt(30)))
}

func TestDocumentValidate(t *testing.T) {
	valid := func() *books.Document {
		return &books.Document{
			Type:      books.DocumentInvoice,
			Number:    "INV-001",
			ContactID: "cust-1",
			Status:    books.StatusDraft,
			Lines: []books.LineItem{
				{Name: "consulting", Amount: decimal.NewFromInt(10)},
			},
		}
	}

	t.Run("valid document", func(t *testing.T) {
		require.NoError(t, valid().Validate())
	})

	t.Run("unknown type", func(t *testing.T) {
		doc := valid()
		doc.Type = "payslip"
		err := doc.Validate()
		assert.True(t, errors.IsValidationError(err))
	})

	t.Run("unknown status", func(t *testing.T) {
		doc := valid()
		doc.Status = "archived"
		assert.True(t, errors.IsValidationError(doc.Validate()))
	})

	t.Run("missing number", func(t *testing.T) {
		doc := valid()
		doc.Number = ""
		assert.True(t, errors.IsValidationError(doc.Validate()))
	})

	t.Run("no lines", func(t *testing.T) {
		doc := valid()
		doc.Lines = nil
		assert.True(t, errors.IsValidationError(doc.Validate()))
	})

	t.Run("line missing name", func(t *testing.T) {
		doc := valid()
		doc.Lines[0].Name = ""
		assert.True(t, errors.IsValidationError(doc.Validate()))
	})
}

func TestJournalEntryValidate(t *testing.T) {
	valid := func() *books.JournalEntry {
		return &books.JournalEntry{
			Number: "JE-001",
			Lines: []books.JournalLine{
				{AccountID: "acc-cash", Debit: decimal.NewFromInt(100)},
				{AccountID: "acc-revenue", Credit: decimal.NewFromInt(100)},
			},
		}
	}

	t.Run("balanced entry", func(t *testing.T) {
		entry := valid()
		assert.True(t, entry.Balanced())
		require.NoError(t, entry.Validate())
	})

	t.Run("unbalanced entry", func(t *testing.T) {
		entry := valid()
		entry.Lines[1].Credit = decimal.NewFromInt(90)
		assert.False(t, entry.Balanced())
		assert.True(t, errors.IsValidationError(entry.Validate()))
	})

	t.Run("single line rejected", func(t *testing.T) {
		entry := valid()
		entry.Lines = entry.Lines[:1]
		assert.True(t, errors.IsValidationError(entry.Validate()))
	})
}
