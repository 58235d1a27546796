package reconcile

import (
	"fmt"
)

// Plan is the computed set of operations that would bring the persisted
// collection into agreement with the desired records. Creates and Updates
// preserve the desired order; Deletes preserve the persisted order.
type Plan[T Record] struct {
	Creates []T // desired records without an identifier
	Updates []T // desired records whose identifier is persisted
	Deletes []T // persisted records absent from the desired set
	Stale   []T // desired records with an identifier unknown to the backend
}

// IsEmpty reports whether the plan schedules no operations.
func (p *Plan[T]) IsEmpty() bool {
	return len(p.Creates) == 0 && len(p.Updates) == 0 && len(p.Deletes) == 0 && len(p.Stale) == 0
}

// Summary returns a one-line description of the plan.
func (p *Plan[T]) Summary() string {
	return fmt.Sprintf("%d create(s), %d update(s), %d delete(s)",
		len(p.Creates), len(p.Updates), len(p.Deletes))
}

// Result reports what a reconciliation actually applied. On aggregate
// failure the counts still reflect the operations that succeeded; there is
// no rollback of applied siblings.
type Result[T Record] struct {
	ParentID string

	// Previous is the persisted state fetched before reconciliation began.
	Previous []T

	// Created holds successfully created records with their backend-assigned
	// identifiers.
	Created []T

	// Updated and Deleted hold the identifiers of applied operations.
	Updated []string
	Deleted []string

	// Failed is the number of operations that did not apply.
	Failed int
}

// Applied returns the total number of successfully applied operations.
func (r *Result[T]) Applied() int {
	return len(r.Created) + len(r.Updated) + len(r.Deleted)
}

// Summary returns a one-line description of the result.
func (r *Result[T]) Summary() string {
	s := fmt.Sprintf("%d created, %d updated, %d deleted",
		len(r.Created), len(r.Updated), len(r.Deleted))
	if r.Failed > 0 {
		s += fmt.Sprintf(", %d failed", r.Failed)
	}
	return s
}
