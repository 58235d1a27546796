package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgersync/ledgersync/pkg/books"
	"github.com/ledgersync/ledgersync/pkg/errors"
)

func TestDetermineLogLevel(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		want   string
	}{
		{"default", Config{}, "info"},
		{"verbose", Config{Verbose: true}, "debug"},
		{"quiet", Config{Quiet: true}, "warn"},
		{"both prefers quiet", Config{Verbose: true, Quiet: true}, "warn"},
		{"explicit wins", Config{LogLevel: "error", Verbose: true}, "error"},
		{"invalid falls back", Config{LogLevel: "shout"}, "info"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, determineLogLevel(&tt.config))
		})
	}
}

func TestLoadDraft(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invoice.yaml")
	draft := `
type: invoice
number: INV-42
contact_id: cust-1
lines:
  - name: consulting
    quantity: "2"
    unit_rate: "75.50"
  - id: line-9
    name: hosting
    amount: "20"
`
	require.NoError(t, os.WriteFile(path, []byte(draft), 0o644))

	doc, err := loadDraft(path)
	require.NoError(t, err)

	assert.Equal(t, books.DocumentInvoice, doc.Type)
	assert.Equal(t, "INV-42", doc.Number)
	require.Len(t, doc.Lines, 2)
	assert.Empty(t, doc.Lines[0].ID)
	assert.True(t, doc.Lines[0].UnitRate.Equal(decimal.RequireFromString("75.50")))
	assert.Equal(t, "line-9", doc.Lines[1].ID)
}

func TestLoadDraftUnknownType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "draft.yaml")
	require.NoError(t, os.WriteFile(path, []byte("type: timesheet\nnumber: T-1\n"), 0o644))

	_, err := loadDraft(path)
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestLoadDraftMissingFile(t *testing.T) {
	_, err := loadDraft(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestTypeTitle(t *testing.T) {
	assert.Equal(t, "Purchase Order", typeTitle(books.DocumentPurchaseOrder))
	assert.Equal(t, "Invoice", typeTitle(books.DocumentInvoice))
}
