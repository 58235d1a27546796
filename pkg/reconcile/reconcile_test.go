package reconcile_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgersync/ledgersync/pkg/errors"
	"github.com/ledgersync/ledgersync/pkg/reconcile"
)

// testRecord is a minimal child record: identity plus one domain field.
type testRecord struct {
	ID     string
	Amount int
}

func (r testRecord) RecordID() string { return r.ID }

// fakeCollection is an in-memory backend collection with per-operation
// failure injection.
type fakeCollection struct {
	mu      sync.Mutex
	records map[string]testRecord // id -> record
	parents map[string]string     // id -> parent id
	nextID  int

	failOn map[string]error // e.g. "update:A", "create", "delete:B"

	listCalls, createCalls, updateCalls, deleteCalls int
}

func newFakeCollection() *fakeCollection {
	return &fakeCollection{
		records: make(map[string]testRecord),
		parents: make(map[string]string),
		failOn:  make(map[string]error),
	}
}

func (c *fakeCollection) seed(parentID string, records ...testRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range records {
		c.records[r.ID] = r
		c.parents[r.ID] = parentID
	}
}

func (c *fakeCollection) state(parentID string) map[string]testRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]testRecord)
	for id, r := range c.records {
		if c.parents[id] == parentID {
			out[id] = r
		}
	}
	return out
}

func (c *fakeCollection) List(_ context.Context, parentID string) ([]testRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listCalls++
	if err := c.failOn["list"]; err != nil {
		return nil, err
	}
	var out []testRecord
	for id, r := range c.records {
		if c.parents[id] == parentID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (c *fakeCollection) Create(_ context.Context, parentID string, record testRecord) (testRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.createCalls++
	if err := c.failOn["create"]; err != nil {
		return testRecord{}, err
	}
	c.nextID++
	record.ID = fmt.Sprintf("n%d", c.nextID)
	c.records[record.ID] = record
	c.parents[record.ID] = parentID
	return record, nil
}

func (c *fakeCollection) Update(_ context.Context, id string, record testRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updateCalls++
	if err := c.failOn["update:"+id]; err != nil {
		return err
	}
	if _, ok := c.records[id]; !ok {
		return errors.NewNotFoundError("record", id)
	}
	record.ID = id
	c.records[id] = record
	return nil
}

func (c *fakeCollection) Delete(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleteCalls++
	if err := c.failOn["delete:"+id]; err != nil {
		return err
	}
	if _, ok := c.records[id]; !ok {
		return errors.NewNotFoundError("record", id)
	}
	delete(c.records, id)
	delete(c.parents, id)
	return nil
}

func TestReconcileMixedBatch(t *testing.T) {
	// currentRecords = [{A,10},{B,20}]; desired = [{A,15},{_,30}]
	// Expected: delete B, update A to 15, create one record with 30.
	coll := newFakeCollection()
	coll.seed("p1", testRecord{ID: "A", Amount: 10}, testRecord{ID: "B", Amount: 20})

	r := reconcile.New[testRecord]("lines", coll)
	result, err := r.Reconcile(context.Background(), "p1",
		[]testRecord{{ID: "A", Amount: 15}, {Amount: 30}})
	require.NoError(t, err)

	assert.Equal(t, []string{"A"}, result.Updated)
	assert.Equal(t, []string{"B"}, result.Deleted)
	require.Len(t, result.Created, 1)
	assert.Equal(t, 30, result.Created[0].Amount)
	assert.NotEmpty(t, result.Created[0].ID)
	assert.Equal(t, 3, result.Applied())

	state := coll.state("p1")
	require.Len(t, state, 2)
	assert.Equal(t, 15, state["A"].Amount)
	assert.Equal(t, 30, state[result.Created[0].ID].Amount)
}

func TestReconcilePureCreates(t *testing.T) {
	coll := newFakeCollection()

	r := reconcile.New[testRecord]("lines", coll)
	result, err := r.Reconcile(context.Background(), "p1",
		[]testRecord{{Amount: 5}, {Amount: 7}})
	require.NoError(t, err)

	assert.Len(t, result.Created, 2)
	assert.Empty(t, result.Updated)
	assert.Empty(t, result.Deleted)
	assert.Len(t, coll.state("p1"), 2)
}

func TestReconcilePureDeletes(t *testing.T) {
	coll := newFakeCollection()
	coll.seed("p1", testRecord{ID: "X", Amount: 1})

	r := reconcile.New[testRecord]("lines", coll)
	result, err := r.Reconcile(context.Background(), "p1", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"X"}, result.Deleted)
	assert.Empty(t, result.Created)
	assert.Empty(t, result.Updated)
	assert.Empty(t, coll.state("p1"))
}

func TestReconcileMinimality(t *testing.T) {
	// |C.ids - D.ids| deletes, |C.ids ∩ D.ids| updates, id-less creates.
	coll := newFakeCollection()
	coll.seed("p1",
		testRecord{ID: "A", Amount: 1},
		testRecord{ID: "B", Amount: 2},
		testRecord{ID: "C", Amount: 3},
	)

	r := reconcile.New[testRecord]("lines", coll)
	_, err := r.Reconcile(context.Background(), "p1", []testRecord{
		{ID: "A", Amount: 1}, // unchanged, still updated: identity-only diffing
		{ID: "B", Amount: 20},
		{Amount: 4},
		{Amount: 5},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, coll.createCalls)
	assert.Equal(t, 2, coll.updateCalls)
	assert.Equal(t, 1, coll.deleteCalls)
}

func TestReconcileIdempotence(t *testing.T) {
	coll := newFakeCollection()
	coll.seed("p1", testRecord{ID: "A", Amount: 10})

	r := reconcile.New[testRecord]("lines", coll)

	desired := []testRecord{{ID: "A", Amount: 15}, {Amount: 30}}
	first, err := r.Reconcile(context.Background(), "p1", desired)
	require.NoError(t, err)
	require.Len(t, first.Created, 1)

	// Second run with the converged state: only redundant updates.
	converged := []testRecord{
		{ID: "A", Amount: 15},
		{ID: first.Created[0].ID, Amount: 30},
	}
	createsBefore, deletesBefore := coll.createCalls, coll.deleteCalls

	second, err := r.Reconcile(context.Background(), "p1", converged)
	require.NoError(t, err)

	assert.Empty(t, second.Created)
	assert.Empty(t, second.Deleted)
	assert.Len(t, second.Updated, 2)
	assert.Equal(t, createsBefore, coll.createCalls)
	assert.Equal(t, deletesBefore, coll.deleteCalls)

	state := coll.state("p1")
	require.Len(t, state, 2)
	assert.Equal(t, 15, state["A"].Amount)
}

func TestReconcilePartialFailureContainment(t *testing.T) {
	// One engineered failure in a batch of four; the other three apply.
	coll := newFakeCollection()
	coll.seed("p1",
		testRecord{ID: "A", Amount: 1},
		testRecord{ID: "B", Amount: 2},
		testRecord{ID: "C", Amount: 3},
	)
	coll.failOn["update:B"] = errors.NewAPIError("lines", 500, "backend exploded")

	r := reconcile.New[testRecord]("lines", coll)
	result, err := r.Reconcile(context.Background(), "p1", []testRecord{
		{ID: "A", Amount: 10},
		{ID: "B", Amount: 20},
		{Amount: 40},
	})

	require.Error(t, err)
	assert.True(t, errors.IsPartialApply(err))

	var recErr *errors.ReconcileError
	require.ErrorAs(t, err, &recErr)
	require.Len(t, recErr.Ops, 1)
	assert.Equal(t, "update", recErr.Ops[0].Op)
	assert.Equal(t, "B", recErr.Ops[0].RecordID)

	// Siblings applied despite the failure.
	require.NotNil(t, result)
	assert.Equal(t, 3, result.Applied())
	assert.Equal(t, 1, result.Failed)

	state := coll.state("p1")
	assert.Equal(t, 10, state["A"].Amount)
	assert.Equal(t, 2, state["B"].Amount) // untouched by the failed update
	assert.NotContains(t, state, "C")

	// Retrying from fresh state converges.
	delete(coll.failOn, "update:B")
	retryDesired := []testRecord{
		{ID: "A", Amount: 10},
		{ID: "B", Amount: 20},
	}
	for _, rec := range result.Created {
		retryDesired = append(retryDesired, testRecord{ID: rec.ID, Amount: rec.Amount})
	}
	_, err = r.Reconcile(context.Background(), "p1", retryDesired)
	require.NoError(t, err)
	assert.Equal(t, 20, coll.state("p1")["B"].Amount)
}

func TestReconcileStaleReject(t *testing.T) {
	coll := newFakeCollection()
	coll.seed("p1", testRecord{ID: "A", Amount: 1})

	r := reconcile.New[testRecord]("lines", coll)
	result, err := r.Reconcile(context.Background(), "p1", []testRecord{
		{ID: "A", Amount: 2},
		{ID: "ghost", Amount: 9},
	})

	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.IsStaleRecord(err))

	// Rejected before dispatch: nothing touched.
	assert.Equal(t, 0, coll.updateCalls)
	assert.Equal(t, 0, coll.deleteCalls)
	assert.Equal(t, 1, coll.state("p1")["A"].Amount)
}

func TestReconcileStaleRecreate(t *testing.T) {
	coll := newFakeCollection()
	coll.seed("p1", testRecord{ID: "A", Amount: 1})

	r := reconcile.New[testRecord]("lines", coll,
		reconcile.WithStalePolicy[testRecord](reconcile.StaleRecreate))
	result, err := r.Reconcile(context.Background(), "p1", []testRecord{
		{ID: "A", Amount: 2},
		{ID: "ghost", Amount: 9},
	})
	require.NoError(t, err)

	// The stale record came back as a create with a fresh identifier.
	require.Len(t, result.Created, 1)
	assert.NotEqual(t, "ghost", result.Created[0].ID)
	assert.Equal(t, 9, result.Created[0].Amount)
}

func TestReconcileEmptyParentID(t *testing.T) {
	coll := newFakeCollection()
	r := reconcile.New[testRecord]("lines", coll)

	_, err := r.Reconcile(context.Background(), "", []testRecord{{Amount: 1}})
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
	assert.Equal(t, 0, coll.listCalls)

	_, err = r.Plan(context.Background(), "", nil)
	assert.True(t, errors.IsValidationError(err))
}

func TestReconcileListFailure(t *testing.T) {
	coll := newFakeCollection()
	coll.failOn["list"] = errors.NewAPIError("lines", 503, "maintenance")

	r := reconcile.New[testRecord]("lines", coll)
	_, err := r.Reconcile(context.Background(), "p1", nil)
	require.Error(t, err)
	assert.True(t, errors.IsBackendUnavailable(err))
}

func TestPlanDoesNotApply(t *testing.T) {
	coll := newFakeCollection()
	coll.seed("p1", testRecord{ID: "A", Amount: 1}, testRecord{ID: "B", Amount: 2})

	r := reconcile.New[testRecord]("lines", coll)
	plan, err := r.Plan(context.Background(), "p1", []testRecord{
		{ID: "A", Amount: 5},
		{Amount: 6},
	})
	require.NoError(t, err)

	assert.Len(t, plan.Creates, 1)
	assert.Len(t, plan.Updates, 1)
	assert.Len(t, plan.Deletes, 1)
	assert.False(t, plan.IsEmpty())
	assert.Equal(t, "1 create(s), 1 update(s), 1 delete(s)", plan.Summary())

	// Nothing dispatched.
	assert.Equal(t, 0, coll.createCalls+coll.updateCalls+coll.deleteCalls)
}

func TestReconcileBoundedConcurrency(t *testing.T) {
	coll := newFakeCollection()

	desired := make([]testRecord, 50)
	for i := range desired {
		desired[i] = testRecord{Amount: i}
	}

	r := reconcile.New[testRecord]("lines", coll,
		reconcile.WithMaxInFlight[testRecord](4))
	result, err := r.Reconcile(context.Background(), "p1", desired)
	require.NoError(t, err)

	assert.Len(t, result.Created, 50)
	assert.Len(t, coll.state("p1"), 50)
}
