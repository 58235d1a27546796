// Package ledgersync is a client library for a small-business accounting
// backend. Parent documents (invoices, bills, estimates, purchase orders,
// vendor credits, sales receipts) and journal entries are saved as a whole:
// the parent record is created or patched first, then the backend's child
// line collection is reconciled against the document's desired lines —
// creates for lines without identifiers, updates for lines whose identifiers
// are persisted, deletes for persisted lines the document no longer carries.
//
// There is no transaction across a save. Line operations that succeed stay
// applied even when siblings fail; the aggregate error reports every failure
// and a retry of the same save converges on the desired state.
package ledgersync

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/ledgersync/ledgersync/internal/transport"
	"github.com/ledgersync/ledgersync/pkg/books"
	"github.com/ledgersync/ledgersync/pkg/differ"
	"github.com/ledgersync/ledgersync/pkg/logging"
	"github.com/ledgersync/ledgersync/pkg/reconcile"
)

// Client is the accounting backend client.
type Client interface {
	// SaveDocument creates or updates the document and reconciles its lines
	SaveDocument(ctx context.Context, doc *books.Document) (*reconcile.Result[books.LineItem], error)

	// Document fetches a document with its lines attached
	Document(ctx context.Context, docType books.DocumentType, id string) (*books.Document, error)

	// Documents lists documents of a type, optionally filtered by contact
	Documents(ctx context.Context, docType books.DocumentType, filter DocumentFilter) ([]books.Document, error)

	// DeleteDocument removes the document's lines and then the document
	DeleteDocument(ctx context.Context, docType books.DocumentType, id string) error

	// SaveJournalEntry creates or updates the entry and reconciles its lines
	SaveJournalEntry(ctx context.Context, entry *books.JournalEntry) (*reconcile.Result[books.JournalLine], error)

	// JournalEntry fetches a journal entry with its lines attached
	JournalEntry(ctx context.Context, id string) (*books.JournalEntry, error)

	// DeleteJournalEntry removes the entry's lines and then the entry
	DeleteJournalEntry(ctx context.Context, id string) error

	// OnLineAdded registers a callback for lines created by a save
	OnLineAdded(LineAddedHook)

	// OnLineUpdated registers a callback for lines whose fields changed
	OnLineUpdated(LineUpdatedHook)

	// OnLineRemoved registers a callback for lines deleted by a save
	OnLineRemoved(LineRemovedHook)
}

// client is the internal implementation of the Client interface.
type client struct {
	config    *config
	transport *transport.Client
	differ    differ.Differ
	logger    *zerolog.Logger

	// Event hooks
	hooks *hooks
}

// New creates a new Client with the given options.
func New(opts ...Option) (Client, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	logger := cfg.logger
	if logger == nil {
		logger = logging.Default()
	}

	return &client{
		config:    cfg,
		transport: transport.New(cfg.baseURL, cfg.apiKey, cfg.timeout),
		differ:    differ.New(),
		logger:    logger,
		hooks:     newHooks(),
	}, nil
}

// lineOptions translates the client configuration into per-collection
// reconciler options.
func lineOptions[T reconcile.Record](cfg *config) []reconcile.Option[T] {
	opts := []reconcile.Option[T]{
		reconcile.WithStalePolicy[T](cfg.stalePolicy),
	}
	if cfg.maxInFlight > 0 {
		opts = append(opts, reconcile.WithMaxInFlight[T](cfg.maxInFlight))
	}
	return opts
}
