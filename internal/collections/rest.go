// Package collections implements the remote-collection interface against the
// backend's REST conventions: named collections under /v1 with a JSON "data"
// envelope, filterable by parent identifier. One generic implementation
// serves every child entity — invoice lines, bill lines, journal lines —
// instead of one hand-rolled client per document type.
package collections

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/ledgersync/ledgersync/internal/transport"
	"github.com/ledgersync/ledgersync/pkg/errors"
	"github.com/ledgersync/ledgersync/pkg/reconcile"
)

// listEnvelope is the backend's response shape for collection reads.
type listEnvelope[T any] struct {
	Data []T `json:"data"`
}

// itemEnvelope is the backend's response shape for single-record operations.
type itemEnvelope[T any] struct {
	Data T `json:"data"`
}

// REST is a remote collection backed by the REST API. The parent field name
// is the foreign-key attribute the backend filters and assigns on, e.g.
// "document_id" for document lines and "entry_id" for journal lines.
type REST[T reconcile.Record] struct {
	client      *transport.Client
	name        string
	parentField string
}

// Compile-time interface check.
var _ reconcile.Collection[reconcile.Record] = (*REST[reconcile.Record])(nil)

// NewREST creates a REST collection for the named backend collection.
func NewREST[T reconcile.Record](client *transport.Client, name, parentField string) *REST[T] {
	return &REST[T]{
		client:      client,
		name:        name,
		parentField: parentField,
	}
}

// Name returns the backend collection name.
func (c *REST[T]) Name() string { return c.name }

// List returns the currently persisted records for a parent.
func (c *REST[T]) List(ctx context.Context, parentID string) ([]T, error) {
	query := url.Values{}
	query.Set(c.parentField, parentID)

	resp, err := c.client.Get(ctx, c.client.URL("/v1/"+c.name, query))
	if err != nil {
		return nil, err
	}

	var envelope listEnvelope[T]
	if err := transport.DecodeResponse(resp, c.name, &envelope); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}

// Create persists a new record under the parent. Any client-side identifier
// is stripped from the payload; the backend assigns one and the created
// record comes back with it.
func (c *REST[T]) Create(ctx context.Context, parentID string, record T) (T, error) {
	var zero T

	fields, err := c.fields(record)
	if err != nil {
		return zero, err
	}
	delete(fields, "id")
	fields[c.parentField] = parentID

	resp, err := c.client.Do(ctx, http.MethodPost, c.client.URL("/v1/"+c.name, nil), fields)
	if err != nil {
		return zero, err
	}

	var envelope itemEnvelope[T]
	if err := transport.DecodeResponse(resp, c.name, &envelope); err != nil {
		return zero, err
	}
	return envelope.Data, nil
}

// Update replaces the fields of the record with the given identifier.
func (c *REST[T]) Update(ctx context.Context, id string, record T) error {
	fields, err := c.fields(record)
	if err != nil {
		return err
	}
	delete(fields, "id")

	resp, err := c.client.Do(ctx, http.MethodPatch, c.client.URL("/v1/"+c.name+"/"+id, nil), fields)
	if err != nil {
		return err
	}
	return transport.DecodeResponse(resp, c.name, nil)
}

// Delete removes the record with the given identifier.
func (c *REST[T]) Delete(ctx context.Context, id string) error {
	resp, err := c.client.Do(ctx, http.MethodDelete, c.client.URL("/v1/"+c.name+"/"+id, nil), nil)
	if err != nil {
		return err
	}
	return transport.DecodeResponse(resp, c.name, nil)
}

// fields flattens a record into its wire representation.
func (c *REST[T]) fields(record T) (map[string]any, error) {
	encoded, err := json.Marshal(record)
	if err != nil {
		return nil, errors.WrapParse("json", c.name, err)
	}
	var fields map[string]any
	if err := json.Unmarshal(encoded, &fields); err != nil {
		return nil, errors.WrapParse("json", c.name, err)
	}
	return fields, nil
}
