// Package resolve turns reference names into ids, creating missing
// reference entities on demand.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/model"
	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/store"
)

// Request names one reference to resolve. An id, when present, always wins
// over the name.
type Request struct {
	Kind  model.Kind
	Field string
	ID    int64
	HasID bool
	Name  string
}

// Result is a resolved reference. Created is true only for the caller whose
// resolution inserted the row.
type Result struct {
	ID      int64 `json:"id"`
	Created bool  `json:"created"`
}

// Resolver resolves names against a store. Concurrent resolutions of the
// same kind and name within the process share one store round trip.
type Resolver struct {
	store store.EntityStore
	cache *Cache
	group singleflight.Group
}

// New returns a Resolver. A nil cache disables caching. When a cache is
// given, writes through Store invalidate it.
func New(s store.EntityStore, cache *Cache) *Resolver {
	if cache != nil {
		s = Invalidating(s, cache)
	}
	return &Resolver{store: s, cache: cache}
}

// Store returns the store the resolver reads and writes through.
func (r *Resolver) Store() store.EntityStore {
	return r.store
}

// Invalidate drops cached names of kind.
func (r *Resolver) Invalidate(kind model.Kind) {
	if r.cache != nil {
		r.cache.Invalidate(kind)
	}
}

// flightTimeout bounds one shared find-or-create: a lookup, a create and a
// second lookup after a lost race.
const flightTimeout = 2*store.DefaultReadTimeout + store.DefaultWriteTimeout

// flight is the shared result of one find-or-create. claimed hands Created
// to the first caller that takes the result, so a create is reported once
// even when the caller that started the flight has gone.
type flight struct {
	res     Result
	claimed *atomic.Bool
}

// Resolve returns the id of the referenced entity:
//  1. a given id is returned as is, without a lookup;
//  2. otherwise a name match, ignoring case and spacing;
//  3. otherwise, for creatable kinds, a newly created entity.
//
// A create that loses a uniqueness race is followed by one more lookup.
func (r *Resolver) Resolve(ctx context.Context, req Request) (Result, error) {
	if req.HasID {
		return Result{ID: req.ID}, nil
	}
	name := strings.Join(strings.Fields(req.Name), " ")
	if name == "" {
		return Result{}, &MissingReferenceError{Kind: req.Kind, Field: req.Field}
	}

	if r.cache != nil {
		if id, ok := r.cache.Get(req.Kind, name); ok {
			return Result{ID: id}, nil
		}
	}

	ch := r.group.DoChan(cacheKey(req.Kind, name), func() (any, error) {
		// The flight is shared, so it outlives the caller that started it.
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flightTimeout)
		defer cancel()
		res, err := r.findOrCreate(fctx, req.Kind, name)
		if err != nil {
			return nil, err
		}
		if r.cache != nil {
			r.cache.Add(req.Kind, name, res.ID)
		}
		return flight{res: res, claimed: new(atomic.Bool)}, nil
	})

	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case out := <-ch:
		if out.Err != nil {
			var missing *MissingReferenceError
			if errors.As(out.Err, &missing) && req.Field != "" {
				return Result{}, &MissingReferenceError{Kind: req.Kind, Field: req.Field, Name: missing.Name}
			}
			return Result{}, out.Err
		}
		f := out.Val.(flight)
		return Result{ID: f.res.ID, Created: f.res.Created && f.claimed.CompareAndSwap(false, true)}, nil
	}
}

func (r *Resolver) findOrCreate(ctx context.Context, kind model.Kind, name string) (Result, error) {
	found, err := r.store.Find(ctx, kind, name)
	if err != nil {
		return Result{}, err
	}
	if found != nil {
		return Result{ID: found.ID}, nil
	}

	if !kind.Creatable() {
		return Result{}, &MissingReferenceError{Kind: kind, Name: name}
	}

	created, err := r.store.Create(ctx, kind, map[string]any{kind.NameField(): name})
	if err == nil {
		slog.Info("reference created", "kind", kind, "name", name, "id", created.ID)
		return Result{ID: created.ID, Created: true}, nil
	}
	if !errors.Is(err, store.ErrDuplicate) {
		return Result{}, err
	}

	// Someone else created it between our lookup and insert.
	found, ferr := r.store.Find(ctx, kind, name)
	if ferr != nil {
		return Result{}, ferr
	}
	if found == nil {
		return Result{}, &DuplicateRaceError{Kind: kind, Name: name, Err: err}
	}
	slog.Debug("reference created concurrently", "kind", kind, "name", name, "id", found.ID)
	return Result{ID: found.ID}, nil
}

// ResolveReference resolves a value that is either an id or a name. Numbers
// and numeric strings are ids.
func (r *Resolver) ResolveReference(ctx context.Context, kind model.Kind, nameOrID any) (Result, error) {
	req := Request{Kind: kind}
	switch v := nameOrID.(type) {
	case nil:
	case int:
		req.ID, req.HasID = int64(v), true
	case int64:
		req.ID, req.HasID = v, true
	case float64:
		if v != float64(int64(v)) {
			return Result{}, fmt.Errorf("%s id %v is not a whole number", kind, v)
		}
		req.ID, req.HasID = int64(v), true
	case string:
		s := strings.TrimSpace(v)
		if id, err := strconv.ParseInt(s, 10, 64); err == nil {
			req.ID, req.HasID = id, true
		} else {
			req.Name = s
		}
	default:
		return Result{}, fmt.Errorf("%s reference must be an id or a name, got %T", kind, nameOrID)
	}
	if req.HasID && req.ID <= 0 {
		return Result{}, &MissingReferenceError{Kind: kind}
	}
	return r.Resolve(ctx, req)
}
