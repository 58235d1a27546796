// Package reconcile synchronizes a backend-held collection of child records
// with a client-edited desired list. It computes the minimal set of
// create/update/delete operations keyed by record identity and dispatches
// them concurrently against the remote collection.
//
// The protocol deliberately does not diff field values: every desired record
// whose identifier is persisted gets an update call, trading redundant no-op
// writes for a single layer of change detection. There is no atomicity
// across the batch — operations that succeed stay applied even when siblings
// fail, and the caller receives one aggregate error describing every
// failure. Re-running the reconciliation from freshly listed state converges
// on the desired set.
package reconcile

import (
	"context"
	"sync"

	"github.com/ledgersync/ledgersync/pkg/errors"
	"github.com/ledgersync/ledgersync/pkg/logging"
)

// Reconciler drives a remote collection toward a desired record set.
type Reconciler[T Record] struct {
	name        string // collection name, used in errors and logs
	collection  Collection[T]
	stalePolicy StalePolicy
	maxInFlight int
}

// New creates a Reconciler for the named remote collection.
func New[T Record](name string, collection Collection[T], opts ...Option[T]) *Reconciler[T] {
	r := &Reconciler[T]{
		name:        name,
		collection:  collection,
		stalePolicy: StaleReject,
		maxInFlight: 0,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Plan lists the persisted records for the parent and computes the operation
// sets without applying anything.
func (r *Reconciler[T]) Plan(ctx context.Context, parentID string, desired []T) (*Plan[T], error) {
	if parentID == "" {
		return nil, errors.NewValidationError("parent_id", parentID, "cannot be empty")
	}

	current, err := r.collection.List(ctx, parentID)
	if err != nil {
		return nil, errors.WrapResource("list", r.name, parentID, err)
	}

	return r.plan(current, desired), nil
}

// Reconcile brings the backend's child collection for the parent into
// agreement with the desired records. All scheduled operations dispatch
// concurrently; the call returns once every operation has completed or
// failed. On aggregate failure the returned Result still reports what was
// applied.
func (r *Reconciler[T]) Reconcile(ctx context.Context, parentID string, desired []T) (*Result[T], error) {
	if parentID == "" {
		return nil, errors.NewValidationError("parent_id", parentID, "cannot be empty")
	}

	current, err := r.collection.List(ctx, parentID)
	if err != nil {
		return nil, errors.WrapResource("list", r.name, parentID, err)
	}

	plan := r.plan(current, desired)

	// Stale identifiers are settled before anything dispatches, so a rejected
	// batch leaves the backend untouched.
	if len(plan.Stale) > 0 {
		switch r.stalePolicy {
		case StaleRecreate:
			plan.Creates = append(plan.Creates, plan.Stale...)
			plan.Stale = nil
		default:
			ids := make([]string, len(plan.Stale))
			for i, record := range plan.Stale {
				ids[i] = record.RecordID()
			}
			return nil, errors.NewStaleRecordError(r.name, ids)
		}
	}

	logging.Ctx(ctx).Debug().
		Str("collection", r.name).
		Str("parent_id", parentID).
		Int("creates", len(plan.Creates)).
		Int("updates", len(plan.Updates)).
		Int("deletes", len(plan.Deletes)).
		Msg("Dispatching reconciliation batch")

	result := &Result[T]{ParentID: parentID, Previous: current}
	opErrs := r.apply(ctx, parentID, plan, result)

	if len(opErrs) > 0 {
		result.Failed = len(opErrs)
		return result, errors.NewReconcileError(r.name, parentID, opErrs)
	}

	logging.Ctx(ctx).Info().
		Str("collection", r.name).
		Str("parent_id", parentID).
		Int("applied", result.Applied()).
		Msg("Reconciliation applied")

	return result, nil
}

// plan computes the three operation sets from identity alone.
func (r *Reconciler[T]) plan(current, desired []T) *Plan[T] {
	plan := &Plan[T]{}

	currentIDs := make(map[string]bool, len(current))
	for _, record := range current {
		currentIDs[record.RecordID()] = true
	}

	desiredIDs := make(map[string]bool, len(desired))
	for _, record := range desired {
		if id := record.RecordID(); id != "" {
			desiredIDs[id] = true
		}
	}

	for _, record := range desired {
		id := record.RecordID()
		switch {
		case id == "":
			plan.Creates = append(plan.Creates, record)
		case currentIDs[id]:
			plan.Updates = append(plan.Updates, record)
		default:
			plan.Stale = append(plan.Stale, record)
		}
	}

	for _, record := range current {
		if !desiredIDs[record.RecordID()] {
			plan.Deletes = append(plan.Deletes, record)
		}
	}

	return plan
}

// opOutcome carries the result of one dispatched operation back to the
// collecting goroutine.
type opOutcome[T Record] struct {
	op      string
	id      string
	created *T
	err     error
}

// apply dispatches every planned operation concurrently and collects the
// outcomes. Individual failures never halt siblings.
func (r *Reconciler[T]) apply(ctx context.Context, parentID string, plan *Plan[T], result *Result[T]) []*errors.OpError {
	total := len(plan.Creates) + len(plan.Updates) + len(plan.Deletes)
	if total == 0 {
		return nil
	}

	var wg sync.WaitGroup
	outcomes := make(chan opOutcome[T], total)

	// Bounded dispatch when configured; nil channel means unbounded.
	var sem chan struct{}
	if r.maxInFlight > 0 {
		sem = make(chan struct{}, r.maxInFlight)
	}

	dispatch := func(fn func() opOutcome[T]) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if sem != nil {
				sem <- struct{}{}
				defer func() { <-sem }()
			}
			outcomes <- fn()
		}()
	}

	for _, record := range plan.Creates {
		record := record
		dispatch(func() opOutcome[T] {
			created, err := r.collection.Create(ctx, parentID, record)
			if err != nil {
				return opOutcome[T]{op: "create", err: err}
			}
			return opOutcome[T]{op: "create", id: created.RecordID(), created: &created}
		})
	}

	for _, record := range plan.Updates {
		record := record
		dispatch(func() opOutcome[T] {
			id := record.RecordID()
			if err := r.collection.Update(ctx, id, record); err != nil {
				return opOutcome[T]{op: "update", id: id, err: err}
			}
			return opOutcome[T]{op: "update", id: id}
		})
	}

	for _, record := range plan.Deletes {
		record := record
		dispatch(func() opOutcome[T] {
			id := record.RecordID()
			if err := r.collection.Delete(ctx, id); err != nil {
				return opOutcome[T]{op: "delete", id: id, err: err}
			}
			return opOutcome[T]{op: "delete", id: id}
		})
	}

	wg.Wait()
	close(outcomes)

	var opErrs []*errors.OpError
	for outcome := range outcomes {
		if outcome.err != nil {
			opErrs = append(opErrs, &errors.OpError{
				Op:       outcome.op,
				RecordID: outcome.id,
				Err:      outcome.err,
			})
			continue
		}
		switch outcome.op {
		case "create":
			result.Created = append(result.Created, *outcome.created)
		case "update":
			result.Updated = append(result.Updated, outcome.id)
		case "delete":
			result.Deleted = append(result.Deleted, outcome.id)
		}
	}

	return opErrs
}
