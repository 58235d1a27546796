package reconcile

import (
	"context"
)

// Record is the minimal structural requirement for a reconcilable child
// record: an identifier that is empty until the backend assigns one. Domain
// fields are free-form; the protocol only cares about identity.
type Record interface {
	RecordID() string
}

// Collection is the remote-collection interface the reconciler drives. A
// collection holds the persisted child records of parent documents, keyed by
// the parent identifier.
//
// Create must not transmit a client-supplied identifier; the backend assigns
// one and the created record is returned with it.
type Collection[T Record] interface {
	// List returns the currently persisted records for a parent.
	List(ctx context.Context, parentID string) ([]T, error)

	// Create persists a new record under the parent and returns it with its
	// backend-assigned identifier.
	Create(ctx context.Context, parentID string, record T) (T, error)

	// Update replaces the fields of the record with the given identifier.
	Update(ctx context.Context, id string, record T) error

	// Delete removes the record with the given identifier.
	Delete(ctx context.Context, id string) error
}
