package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/model"
)

// Default per-call deadlines.
const (
	DefaultReadTimeout  = 15 * time.Second
	DefaultWriteTimeout = 20 * time.Second
)

type timeoutStore struct {
	next  EntityStore
	read  time.Duration
	write time.Duration
}

// WithTimeouts bounds every call to s: reads by read, writes by write. A
// call that runs out of time fails with ErrTimeout. Zero durations use the
// defaults.
func WithTimeouts(s EntityStore, read, write time.Duration) EntityStore {
	if read <= 0 {
		read = DefaultReadTimeout
	}
	if write <= 0 {
		write = DefaultWriteTimeout
	}
	return &timeoutStore{next: s, read: read, write: write}
}

// call runs fn under a deadline of d and maps an expired deadline to
// ErrTimeout, unless the caller's own context ended first.
func call[T any](ctx context.Context, d time.Duration, op string, kind model.Kind, name string,
	fn func(context.Context) (T, error)) (T, error) {
	ctx2, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	v, err := fn(ctx2)
	if err != nil && ctx.Err() == nil && errors.Is(ctx2.Err(), context.DeadlineExceeded) && !errors.Is(err, ErrTimeout) {
		err = &UpstreamError{Op: op, Kind: kind, Name: name, Err: fmt.Errorf("%w after %s: %w", ErrTimeout, d, err)}
	}
	return v, err
}

func (t *timeoutStore) Find(ctx context.Context, kind model.Kind, name string) (*Entity, error) {
	return call(ctx, t.read, "find", kind, name, func(ctx context.Context) (*Entity, error) {
		return t.next.Find(ctx, kind, name)
	})
}

func (t *timeoutStore) Get(ctx context.Context, kind model.Kind, id int64) (*Entity, error) {
	return call(ctx, t.read, "get", kind, "", func(ctx context.Context) (*Entity, error) {
		return t.next.Get(ctx, kind, id)
	})
}

func (t *timeoutStore) List(ctx context.Context, kind model.Kind) ([]Entity, error) {
	return call(ctx, t.read, "list", kind, "", func(ctx context.Context) ([]Entity, error) {
		return t.next.List(ctx, kind)
	})
}

func (t *timeoutStore) Create(ctx context.Context, kind model.Kind, fields map[string]any) (*Entity, error) {
	return call(ctx, t.write, "create", kind, "", func(ctx context.Context) (*Entity, error) {
		return t.next.Create(ctx, kind, fields)
	})
}

func (t *timeoutStore) Update(ctx context.Context, kind model.Kind, id int64, fields map[string]any) (*Entity, error) {
	return call(ctx, t.write, "update", kind, "", func(ctx context.Context) (*Entity, error) {
		return t.next.Update(ctx, kind, id, fields)
	})
}

func (t *timeoutStore) Delete(ctx context.Context, kind model.Kind, id int64) error {
	_, err := call(ctx, t.write, "delete", kind, "", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, t.next.Delete(ctx, kind, id)
	})
	return err
}
