package reconcile

// StalePolicy controls what happens when a desired record carries an
// identifier unknown to the currently persisted set, e.g. a line deleted
// concurrently by another session.
type StalePolicy string

const (
	// StaleReject refuses the whole batch before dispatching any operation.
	// This is the default: issuing an update against a vanished identifier
	// would only surface later as a backend not-found.
	StaleReject StalePolicy = "reject"

	// StaleRecreate treats the record as a create; the stale identifier is
	// discarded and the backend assigns a fresh one.
	StaleRecreate StalePolicy = "recreate"
)

// Option is a functional option for configuring a Reconciler.
type Option[T Record] func(*Reconciler[T])

// WithStalePolicy sets the handling for desired records whose identifier is
// unknown to the persisted set.
func WithStalePolicy[T Record](policy StalePolicy) Option[T] {
	return func(r *Reconciler[T]) {
		r.stalePolicy = policy
	}
}

// WithMaxInFlight bounds the number of concurrently dispatched operations.
// Zero or negative means unbounded, which matches the protocol's default of
// issuing the whole batch at once.
func WithMaxInFlight[T Record](n int) Option[T] {
	return func(r *Reconciler[T]) {
		r.maxInFlight = n
	}
}
