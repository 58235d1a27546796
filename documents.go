package ledgersync

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/ledgersync/ledgersync/internal/collections"
	"github.com/ledgersync/ledgersync/internal/transport"
	"github.com/ledgersync/ledgersync/pkg/books"
	"github.com/ledgersync/ledgersync/pkg/errors"
	"github.com/ledgersync/ledgersync/pkg/logging"
	"github.com/ledgersync/ledgersync/pkg/reconcile"
)

// DocumentFilter narrows a document listing. Zero values are not sent.
type DocumentFilter struct {
	ContactID string
	Status    books.Status
}

// values renders the filter as backend query parameters.
func (f DocumentFilter) values() url.Values {
	query := url.Values{}
	if f.ContactID != "" {
		query.Set("contact_id", f.ContactID)
	}
	if f.Status != "" {
		query.Set("status", string(f.Status))
	}
	return query
}

type documentEnvelope struct {
	Data books.Document `json:"data"`
}

type documentListEnvelope struct {
	Data []books.Document `json:"data"`
}

// SaveDocument creates or updates the parent document and reconciles its
// child lines. The parent is saved first so created lines have a stable
// parent identifier to attach to. Line operations dispatch concurrently with
// no atomicity across the batch; on partial failure the returned result
// reports what was applied and the error aggregates every failed operation.
// Re-running the same save converges on the document's lines.
func (c *client) SaveDocument(ctx context.Context, doc *books.Document) (*reconcile.Result[books.LineItem], error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	doc.RecomputeTotals()

	ctx = logging.WithLogger(ctx, c.logger)

	saved, err := c.saveParent(ctx, doc.Type.Collection(), doc.ID, doc)
	if err != nil {
		return nil, err
	}
	if doc.ID == "" {
		doc.ID = saved.ID
		doc.CreatedAt = saved.CreatedAt
	}

	coll := collections.NewREST[books.LineItem](c.transport, doc.Type.LineCollection(), "document_id")
	reconciler := reconcile.New[books.LineItem](doc.Type.LineCollection(), coll, lineOptions[books.LineItem](c.config)...)

	result, err := reconciler.Reconcile(ctx, doc.ID, doc.Lines)
	if err != nil {
		return result, err
	}

	// Refresh from the backend so the document carries server-assigned line
	// identifiers, then fire hooks off the persisted before/after states.
	refreshed, err := coll.List(ctx, doc.ID)
	if err != nil {
		return result, errors.WrapResource("list", doc.Type.LineCollection(), doc.ID, err)
	}
	c.hooks.trigger(c.differ.Lines(result.Previous, refreshed))
	doc.Lines = refreshed

	return result, nil
}

// Document fetches a document with its lines attached.
func (c *client) Document(ctx context.Context, docType books.DocumentType, id string) (*books.Document, error) {
	if !docType.Valid() {
		return nil, errors.NewValidationError("type", string(docType), "unknown document type")
	}
	if id == "" {
		return nil, errors.NewValidationError("id", id, "cannot be empty")
	}

	resp, err := c.transport.Get(ctx, c.transport.URL("/v1/"+docType.Collection()+"/"+id, nil))
	if err != nil {
		return nil, err
	}
	var envelope documentEnvelope
	if err := transport.DecodeResponse(resp, docType.Collection(), &envelope); err != nil {
		return nil, err
	}
	doc := envelope.Data

	coll := collections.NewREST[books.LineItem](c.transport, docType.LineCollection(), "document_id")
	lines, err := coll.List(ctx, doc.ID)
	if err != nil {
		return nil, errors.WrapResource("list", docType.LineCollection(), doc.ID, err)
	}
	doc.Lines = lines

	return &doc, nil
}

// Documents lists documents of a type with their lines attached.
func (c *client) Documents(ctx context.Context, docType books.DocumentType, filter DocumentFilter) ([]books.Document, error) {
	if !docType.Valid() {
		return nil, errors.NewValidationError("type", string(docType), "unknown document type")
	}

	resp, err := c.transport.Get(ctx, c.transport.URL("/v1/"+docType.Collection(), filter.values()))
	if err != nil {
		return nil, err
	}
	var envelope documentListEnvelope
	if err := transport.DecodeResponse(resp, docType.Collection(), &envelope); err != nil {
		return nil, err
	}

	coll := collections.NewREST[books.LineItem](c.transport, docType.LineCollection(), "document_id")
	docs := envelope.Data
	for i := range docs {
		lines, err := coll.List(ctx, docs[i].ID)
		if err != nil {
			return nil, errors.WrapResource("list", docType.LineCollection(), docs[i].ID, err)
		}
		docs[i].Lines = lines
	}

	return docs, nil
}

// DeleteDocument removes every persisted line for the document, then the
// document itself. Reconciling against an empty desired set reuses the same
// batch dispatch the save path uses.
func (c *client) DeleteDocument(ctx context.Context, docType books.DocumentType, id string) error {
	if !docType.Valid() {
		return errors.NewValidationError("type", string(docType), "unknown document type")
	}
	if id == "" {
		return errors.NewValidationError("id", id, "cannot be empty")
	}

	ctx = logging.WithLogger(ctx, c.logger)

	coll := collections.NewREST[books.LineItem](c.transport, docType.LineCollection(), "document_id")
	reconciler := reconcile.New[books.LineItem](docType.LineCollection(), coll, lineOptions[books.LineItem](c.config)...)
	result, err := reconciler.Reconcile(ctx, id, nil)
	if err != nil {
		return err
	}
	c.hooks.trigger(c.differ.Lines(result.Previous, nil))

	resp, err := c.transport.Do(ctx, http.MethodDelete, c.transport.URL("/v1/"+docType.Collection()+"/"+id, nil), nil)
	if err != nil {
		return err
	}
	return transport.DecodeResponse(resp, docType.Collection(), nil)
}

// saveParent creates the parent record when it has no identifier, or patches
// it when it does. Child lines never travel with the parent payload; the
// reconciliation pass owns them.
func (c *client) saveParent(ctx context.Context, collection, id string, record any) (*books.Document, error) {
	fields, err := recordFields(collection, record)
	if err != nil {
		return nil, err
	}
	delete(fields, "id")
	delete(fields, "lines")

	if id == "" {
		resp, err := c.transport.Do(ctx, http.MethodPost, c.transport.URL("/v1/"+collection, nil), fields)
		if err != nil {
			return nil, err
		}
		var envelope documentEnvelope
		if err := transport.DecodeResponse(resp, collection, &envelope); err != nil {
			return nil, err
		}
		return &envelope.Data, nil
	}

	resp, err := c.transport.Do(ctx, http.MethodPatch, c.transport.URL("/v1/"+collection+"/"+id, nil), fields)
	if err != nil {
		return nil, err
	}
	if err := transport.DecodeResponse(resp, collection, nil); err != nil {
		return nil, err
	}
	return &books.Document{ID: id}, nil
}

// recordFields flattens a record into its wire representation.
func recordFields(collection string, record any) (map[string]any, error) {
	encoded, err := json.Marshal(record)
	if err != nil {
		return nil, errors.WrapParse("json", collection, err)
	}
	var fields map[string]any
	if err := json.Unmarshal(encoded, &fields); err != nil {
		return nil, errors.WrapParse("json", collection, err)
	}
	return fields, nil
}
