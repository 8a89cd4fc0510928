package resolve

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/model"
	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/store"
)

// countingStore counts calls and can delay creates.
type countingStore struct {
	store.EntityStore
	finds   atomic.Int32
	creates atomic.Int32
	delay   time.Duration
}

func (c *countingStore) Find(ctx context.Context, kind model.Kind, name string) (*store.Entity, error) {
	c.finds.Add(1)
	return c.EntityStore.Find(ctx, kind, name)
}

func (c *countingStore) Create(ctx context.Context, kind model.Kind, fields map[string]any) (*store.Entity, error) {
	c.creates.Add(1)
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
	return c.EntityStore.Create(ctx, kind, fields)
}

func TestIDTakesPrecedence(t *testing.T) {
	mem := store.NewMemory()
	mem.Put(store.Entity{Kind: model.KindItemType, ID: 3, Fields: map[string]any{"name": "Furniture"}})
	cs := &countingStore{EntityStore: mem}
	r := New(cs, nil)

	res, err := r.Resolve(context.Background(), Request{Kind: model.KindItemType, ID: 3, HasID: true, Name: "Electronics"})
	require.NoError(t, err)
	assert.Equal(t, Result{ID: 3}, res)
	assert.Zero(t, cs.finds.Load())
	assert.Zero(t, cs.creates.Load())
}

func TestCreateIfMissingIsIdempotent(t *testing.T) {
	mem := store.NewMemory()
	r := New(mem, nil)
	ctx := context.Background()

	first, err := r.ResolveReference(ctx, model.KindItemType, "Consumables")
	require.NoError(t, err)
	assert.True(t, first.Created)

	second, err := r.ResolveReference(ctx, model.KindItemType, "Consumables")
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.ID, second.ID)

	all, _ := mem.List(ctx, model.KindItemType)
	assert.Len(t, all, 1)
}

func TestNameMatchIgnoresCase(t *testing.T) {
	mem := store.NewMemory()
	mem.Put(store.Entity{Kind: model.KindItemType, ID: 5, Fields: map[string]any{"name": "Electronics"}})
	r := New(mem, NewCache(0, 0))

	res, err := r.ResolveReference(context.Background(), model.KindItemType, "electronics")
	require.NoError(t, err)
	assert.Equal(t, Result{ID: 5}, res)

	all, _ := mem.List(context.Background(), model.KindItemType)
	assert.Len(t, all, 1)
}

func TestNumericReferenceIsAnID(t *testing.T) {
	cs := &countingStore{EntityStore: store.NewMemory()}
	r := New(cs, nil)

	res, err := r.ResolveReference(context.Background(), model.KindDepartment, " 7 ")
	require.NoError(t, err)
	assert.Equal(t, int64(7), res.ID)
	assert.Zero(t, cs.finds.Load())

	_, err = r.ResolveReference(context.Background(), model.KindDepartment, 2.5)
	assert.Error(t, err)
}

func TestMissingReferences(t *testing.T) {
	r := New(store.NewMemory(), nil)
	ctx := context.Background()

	_, err := r.Resolve(ctx, Request{Kind: model.KindDepartment, Field: "departmentId", Name: "   "})
	var missing *MissingReferenceError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "departmentId", missing.Field)

	// Users are never created.
	_, err = r.Resolve(ctx, Request{Kind: model.KindUser, Field: "employeeId", Name: "Nobody"})
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "Nobody", missing.Name)
	assert.Equal(t, "employeeId", missing.Field)
}

func TestUserFoundByName(t *testing.T) {
	mem := store.NewMemory()
	mem.Put(*store.UserEntity(&model.User{ID: 11, FullName: "Maria Santos", IsActive: true}))
	r := New(mem, nil)

	res, err := r.Resolve(context.Background(), Request{Kind: model.KindUser, Name: "maria santos"})
	require.NoError(t, err)
	assert.Equal(t, Result{ID: 11}, res)
}

// racyStore hides existing rows from the first n lookups, as if another
// writer inserted them in between.
type racyStore struct {
	store.EntityStore
	blind atomic.Int32
}

func (s *racyStore) Find(ctx context.Context, kind model.Kind, name string) (*store.Entity, error) {
	if s.blind.Add(-1) >= 0 {
		return nil, nil
	}
	return s.EntityStore.Find(ctx, kind, name)
}

func TestDuplicateRetriesFind(t *testing.T) {
	mem := store.NewMemory()
	mem.Put(store.Entity{Kind: model.KindClassification, ID: 9, Fields: map[string]any{"name": "Consumables"}})
	rs := &racyStore{EntityStore: mem}
	rs.blind.Store(1)

	res, err := New(rs, nil).ResolveReference(context.Background(), model.KindClassification, "Consumables")
	require.NoError(t, err)
	assert.Equal(t, Result{ID: 9}, res)
}

func TestDuplicateRace(t *testing.T) {
	mem := store.NewMemory()
	mem.Put(store.Entity{Kind: model.KindClassification, ID: 9, Fields: map[string]any{"name": "Consumables"}})
	rs := &racyStore{EntityStore: mem}
	rs.blind.Store(2)

	_, err := New(rs, nil).ResolveReference(context.Background(), model.KindClassification, "Consumables")
	var race *DuplicateRaceError
	require.ErrorAs(t, err, &race)
	assert.ErrorIs(t, err, store.ErrDuplicate)
}

func TestConcurrentResolutionCreatesOnce(t *testing.T) {
	mem := store.NewMemory()
	cs := &countingStore{EntityStore: mem, delay: 20 * time.Millisecond}
	r := New(cs, NewCache(16, time.Minute))

	const n = 8
	results := make([]Result, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = r.ResolveReference(context.Background(), model.KindItemType, "Medical Supplies")
		}()
	}
	wg.Wait()

	created := 0
	for i := range n {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0].ID, results[i].ID)
		if results[i].Created {
			created++
		}
	}
	assert.Equal(t, 1, created, "exactly one caller reports the create")

	all, _ := mem.List(context.Background(), model.KindItemType)
	assert.Len(t, all, 1)
}

func TestCacheInvalidatedOnDelete(t *testing.T) {
	mem := store.NewMemory()
	cs := &countingStore{EntityStore: mem}
	cache := NewCache(16, time.Minute)
	r := New(cs, cache)
	ctx := context.Background()

	first, err := r.ResolveReference(ctx, model.KindItemType, "Tools")
	require.NoError(t, err)
	_, err = r.ResolveReference(ctx, model.KindItemType, "TOOLS")
	require.NoError(t, err)
	assert.Equal(t, int32(1), cs.finds.Load(), "second lookup is served from cache")

	require.NoError(t, r.Store().Delete(ctx, model.KindItemType, first.ID))
	assert.Zero(t, cache.Len())

	again, err := r.ResolveReference(ctx, model.KindItemType, "Tools")
	require.NoError(t, err)
	assert.True(t, again.Created)
	assert.NotEqual(t, first.ID, again.ID)
}

func TestCacheInvalidateIsPerKind(t *testing.T) {
	c := NewCache(16, time.Minute)
	c.Add(model.KindItemType, "Tools", 1)
	c.Add(model.KindDepartment, "IT", 2)

	c.Invalidate(model.KindItemType)

	_, ok := c.Get(model.KindItemType, "tools")
	assert.False(t, ok)
	id, ok := c.Get(model.KindDepartment, " it ")
	assert.True(t, ok)
	assert.Equal(t, int64(2), id)
}

// gatedStore holds every Find until release is closed or the caller's
// context ends.
type gatedStore struct {
	store.EntityStore
	entered chan struct{}
	once    sync.Once
	release chan struct{}
}

func (g *gatedStore) Find(ctx context.Context, kind model.Kind, name string) (*store.Entity, error) {
	g.once.Do(func() { close(g.entered) })
	select {
	case <-g.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return g.EntityStore.Find(ctx, kind, name)
}

func TestSharedResolutionSurvivesCallerCancel(t *testing.T) {
	gs := &gatedStore{EntityStore: store.NewMemory(), entered: make(chan struct{}), release: make(chan struct{})}
	r := New(gs, nil)

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := r.ResolveReference(ctxA, model.KindItemType, "Tools")
		errA <- err
	}()
	<-gs.entered

	type outcome struct {
		res Result
		err error
	}
	doneB := make(chan outcome, 1)
	go func() {
		res, err := r.ResolveReference(context.Background(), model.KindItemType, "Tools")
		doneB <- outcome{res, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelA()
	assert.ErrorIs(t, <-errA, context.Canceled)

	close(gs.release)
	select {
	case b := <-doneB:
		require.NoError(t, b.err)
		assert.Positive(t, b.res.ID)
		assert.True(t, b.res.Created, "the create is reported to the caller still waiting")
	case <-time.After(5 * time.Second):
		t.Fatal("second caller never finished")
	}
}
