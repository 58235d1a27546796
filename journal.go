package ledgersync

import (
	"context"
	"net/http"

	"github.com/ledgersync/ledgersync/internal/collections"
	"github.com/ledgersync/ledgersync/internal/transport"
	"github.com/ledgersync/ledgersync/pkg/books"
	"github.com/ledgersync/ledgersync/pkg/errors"
	"github.com/ledgersync/ledgersync/pkg/logging"
	"github.com/ledgersync/ledgersync/pkg/reconcile"
)

type entryEnvelope struct {
	Data books.JournalEntry `json:"data"`
}

// SaveJournalEntry creates or updates the journal entry and reconciles its
// debit/credit lines. The entry must balance before anything is sent; the
// line batch then follows the same save-parent-then-reconcile flow documents
// use.
func (c *client) SaveJournalEntry(ctx context.Context, entry *books.JournalEntry) (*reconcile.Result[books.JournalLine], error) {
	if err := entry.Validate(); err != nil {
		return nil, err
	}

	ctx = logging.WithLogger(ctx, c.logger)

	saved, err := c.saveEntry(ctx, entry)
	if err != nil {
		return nil, err
	}
	if entry.ID == "" {
		entry.ID = saved.ID
		entry.CreatedAt = saved.CreatedAt
	}

	coll := collections.NewREST[books.JournalLine](c.transport, entry.LineCollection(), "entry_id")
	reconciler := reconcile.New[books.JournalLine](entry.LineCollection(), coll, lineOptions[books.JournalLine](c.config)...)

	result, err := reconciler.Reconcile(ctx, entry.ID, entry.Lines)
	if err != nil {
		return result, err
	}

	refreshed, err := coll.List(ctx, entry.ID)
	if err != nil {
		return result, errors.WrapResource("list", entry.LineCollection(), entry.ID, err)
	}
	entry.Lines = refreshed

	return result, nil
}

// JournalEntry fetches a journal entry with its lines attached.
func (c *client) JournalEntry(ctx context.Context, id string) (*books.JournalEntry, error) {
	if id == "" {
		return nil, errors.NewValidationError("id", id, "cannot be empty")
	}

	entry := &books.JournalEntry{}

	resp, err := c.transport.Get(ctx, c.transport.URL("/v1/"+entry.Collection()+"/"+id, nil))
	if err != nil {
		return nil, err
	}
	var envelope entryEnvelope
	if err := transport.DecodeResponse(resp, entry.Collection(), &envelope); err != nil {
		return nil, err
	}
	*entry = envelope.Data

	coll := collections.NewREST[books.JournalLine](c.transport, entry.LineCollection(), "entry_id")
	lines, err := coll.List(ctx, entry.ID)
	if err != nil {
		return nil, errors.WrapResource("list", entry.LineCollection(), entry.ID, err)
	}
	entry.Lines = lines

	return entry, nil
}

// DeleteJournalEntry removes every persisted line for the entry, then the
// entry itself.
func (c *client) DeleteJournalEntry(ctx context.Context, id string) error {
	if id == "" {
		return errors.NewValidationError("id", id, "cannot be empty")
	}

	ctx = logging.WithLogger(ctx, c.logger)

	entry := &books.JournalEntry{ID: id}
	coll := collections.NewREST[books.JournalLine](c.transport, entry.LineCollection(), "entry_id")
	reconciler := reconcile.New[books.JournalLine](entry.LineCollection(), coll, lineOptions[books.JournalLine](c.config)...)
	if _, err := reconciler.Reconcile(ctx, id, nil); err != nil {
		return err
	}

	resp, err := c.transport.Do(ctx, http.MethodDelete, c.transport.URL("/v1/"+entry.Collection()+"/"+id, nil), nil)
	if err != nil {
		return err
	}
	return transport.DecodeResponse(resp, entry.Collection(), nil)
}

// saveEntry creates the entry when it has no identifier, or patches it when
// it does. Lines never travel with the entry payload.
func (c *client) saveEntry(ctx context.Context, entry *books.JournalEntry) (*books.JournalEntry, error) {
	fields, err := recordFields(entry.Collection(), entry)
	if err != nil {
		return nil, err
	}
	delete(fields, "id")
	delete(fields, "lines")

	if entry.ID == "" {
		resp, err := c.transport.Do(ctx, http.MethodPost, c.transport.URL("/v1/"+entry.Collection(), nil), fields)
		if err != nil {
			return nil, err
		}
		var envelope entryEnvelope
		if err := transport.DecodeResponse(resp, entry.Collection(), &envelope); err != nil {
			return nil, err
		}
		return &envelope.Data, nil
	}

	resp, err := c.transport.Do(ctx, http.MethodPatch, c.transport.URL("/v1/"+entry.Collection()+"/"+entry.ID, nil), fields)
	if err != nil {
		return nil, err
	}
	if err := transport.DecodeResponse(resp, entry.Collection(), nil); err != nil {
		return nil, err
	}
	return &books.JournalEntry{ID: entry.ID}, nil
}
