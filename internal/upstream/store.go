package upstream

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/http"

	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/model"
	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/store"
)

// List fetches the whole collection. The API has no name filter, so Find
// goes through List too.
func (c *Client) List(ctx context.Context, kind model.Kind) ([]store.Entity, error) {
	url, err := c.path(kind, 0)
	if err != nil {
		return nil, err
	}
	var body any
	if err := c.do(ctx, http.MethodGet, url, nil, &body); err != nil {
		return nil, upstreamErr("list", kind, "", err)
	}
	var out []store.Entity
	for _, row := range rows(body) {
		if e := c.entity(kind, row); e != nil {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (c *Client) Find(ctx context.Context, kind model.Kind, name string) (*store.Entity, error) {
	field := kind.NameField()
	if field == "" {
		return nil, nil
	}
	all, err := c.List(ctx, kind)
	if err != nil {
		return nil, err
	}
	key := model.NameKey(name)
	var found *store.Entity
	for i := range all {
		if model.NameKey(all[i].String(field)) != key {
			continue
		}
		if found == nil || all[i].ID < found.ID {
			found = &all[i]
		}
	}
	return found, nil
}

func (c *Client) Get(ctx context.Context, kind model.Kind, id int64) (*store.Entity, error) {
	url, err := c.path(kind, id)
	if err != nil {
		return nil, err
	}
	var body any
	err = c.do(ctx, http.MethodGet, url, nil, &body)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, upstreamErr("get", kind, "", err)
	}
	return c.entity(kind, unwrap(kind, body)), nil
}

func (c *Client) Create(ctx context.Context, kind model.Kind, fields map[string]any) (*store.Entity, error) {
	if kind.ReadOnly() {
		return nil, fmt.Errorf("creating %s: %w", kind, store.ErrReadOnly)
	}
	url, err := c.path(kind, 0)
	if err != nil {
		return nil, err
	}
	name, _ := fields[kind.NameField()].(string)

	var body any
	if err := c.do(ctx, http.MethodPost, url, payload(kind, fields), &body); err != nil {
		return nil, upstreamErr("create", kind, name, err)
	}
	created := c.entity(kind, unwrap(kind, body))
	if created == nil {
		return nil, upstreamErr("create", kind, name, errors.New("response carries no id"))
	}
	// The API echoes back what it likes; fill in what was sent.
	for k, v := range fields {
		if _, ok := created.Fields[k]; !ok && v != nil && k != "id" {
			created.Fields[k] = v
		}
	}
	slog.Debug("upstream create", "kind", kind, "id", created.ID)
	return created, nil
}

// Update merges fields into the stored row and sends the whole row, since
// the API replaces on PUT.
func (c *Client) Update(ctx context.Context, kind model.Kind, id int64, fields map[string]any) (*store.Entity, error) {
	if kind.ReadOnly() {
		return nil, fmt.Errorf("updating %s: %w", kind, store.ErrReadOnly)
	}
	cur, err := c.Get(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if cur == nil {
		return nil, fmt.Errorf("updating %s %d: %w", kind, id, store.ErrNotFound)
	}
	merged := maps.Clone(cur.Fields)
	for k, v := range fields {
		if v == nil {
			delete(merged, k)
			continue
		}
		merged[k] = v
	}

	url, _ := c.path(kind, id)
	var body any
	if err := c.do(ctx, http.MethodPut, url, payload(kind, merged), &body); err != nil {
		return nil, upstreamErr("update", kind, "", err)
	}
	if e := c.entity(kind, unwrap(kind, body)); e != nil {
		return e, nil
	}
	return &store.Entity{Kind: kind, ID: id, Fields: merged}, nil
}

func (c *Client) Delete(ctx context.Context, kind model.Kind, id int64) error {
	if kind.ReadOnly() {
		return fmt.Errorf("deleting %s: %w", kind, store.ErrReadOnly)
	}
	url, err := c.path(kind, id)
	if err != nil {
		return err
	}
	if err := c.do(ctx, http.MethodDelete, url, nil, nil); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("deleting %s %d: %w", kind, id, store.ErrNotFound)
		}
		return upstreamErr("delete", kind, "", err)
	}
	return nil
}
