package store

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/model"
)

// Memory is an in-process EntityStore. Names of reference kinds and items
// are unique, ignoring case and spacing, as in the SQL mirror.
type Memory struct {
	mu     sync.RWMutex
	rows   map[model.Kind]map[int64]*Entity
	nextID map[model.Kind]int64
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{
		rows:   make(map[model.Kind]map[int64]*Entity),
		nextID: make(map[model.Kind]int64),
	}
}

var _ EntityStore = (*Memory)(nil)

// Put stores e as is, bypassing read-only and uniqueness checks. It seeds
// users and fixtures.
func (m *Memory) Put(e Entity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(e.Kind, e.ID, maps.Clone(e.Fields))
}

func (m *Memory) put(kind model.Kind, id int64, fields map[string]any) *Entity {
	if m.rows[kind] == nil {
		m.rows[kind] = make(map[int64]*Entity)
	}
	e := &Entity{Kind: kind, ID: id, Fields: fields}
	m.rows[kind][id] = e
	if id > m.nextID[kind] {
		m.nextID[kind] = id
	}
	return e
}

func copyEntity(e *Entity) *Entity {
	return &Entity{Kind: e.Kind, ID: e.ID, Fields: maps.Clone(e.Fields)}
}

func uniqueNames(kind model.Kind) bool {
	return kind.IsReference() || kind == model.KindItem
}

// findLocked must be called with m.mu held.
func (m *Memory) findLocked(kind model.Kind, name string, skip int64) *Entity {
	field := kind.NameField()
	if field == "" {
		return nil
	}
	key := model.NameKey(name)
	var found *Entity
	for id, e := range m.rows[kind] {
		if id == skip {
			continue
		}
		s, _ := e.Fields[field].(string)
		if model.NameKey(s) == key && (found == nil || id < found.ID) {
			found = e
		}
	}
	return found
}

func (m *Memory) Find(ctx context.Context, kind model.Kind, name string) (*Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, wrap("find", kind, name, err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e := m.findLocked(kind, name, 0); e != nil {
		return copyEntity(e), nil
	}
	return nil, nil
}

func (m *Memory) Get(ctx context.Context, kind model.Kind, id int64) (*Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, wrap("get", kind, "", err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.rows[kind][id]; ok {
		return copyEntity(e), nil
	}
	return nil, nil
}

func (m *Memory) List(ctx context.Context, kind model.Kind) ([]Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, wrap("list", kind, "", err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := slices.Sorted(maps.Keys(m.rows[kind]))
	out := make([]Entity, 0, len(ids))
	for _, id := range ids {
		out = append(out, *copyEntity(m.rows[kind][id]))
	}
	return out, nil
}

func (m *Memory) Create(ctx context.Context, kind model.Kind, fields map[string]any) (*Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, wrap("create", kind, "", err)
	}
	if kind.ReadOnly() {
		return nil, wrap("create", kind, "", ErrReadOnly)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make(map[string]any, len(fields))
	for k, v := range fields {
		if v != nil && k != "id" {
			stored[k] = v
		}
	}
	if uniqueNames(kind) {
		name, _ := stored[kind.NameField()].(string)
		if m.findLocked(kind, name, 0) != nil {
			return nil, wrap("create", kind, name, ErrDuplicate)
		}
	}
	if kind == model.KindAsset {
		if err := m.checkItemLocked(stored); err != nil {
			return nil, wrap("create", kind, "", err)
		}
		if _, ok := stored["quantity"]; !ok {
			stored["quantity"] = int64(1)
		}
	}

	id := m.nextID[kind] + 1
	return copyEntity(m.put(kind, id, stored)), nil
}

func (m *Memory) checkItemLocked(fields map[string]any) error {
	itemID, _ := asInt(fields["itemId"])
	if _, ok := m.rows[model.KindItem][itemID]; !ok {
		return ErrNotFound
	}
	return nil
}

func (m *Memory) Update(ctx context.Context, kind model.Kind, id int64, fields map[string]any) (*Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, wrap("update", kind, "", err)
	}
	if kind.ReadOnly() {
		return nil, wrap("update", kind, "", ErrReadOnly)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.rows[kind][id]
	if !ok {
		return nil, wrap("update", kind, "", ErrNotFound)
	}

	next := maps.Clone(current.Fields)
	for k, v := range fields {
		switch {
		case k == "id":
		case v == nil:
			delete(next, k)
		default:
			next[k] = v
		}
	}
	if uniqueNames(kind) {
		name, _ := next[kind.NameField()].(string)
		if m.findLocked(kind, name, id) != nil {
			return nil, wrap("update", kind, name, ErrDuplicate)
		}
	}
	if kind == model.KindAsset {
		if err := m.checkItemLocked(next); err != nil {
			return nil, wrap("update", kind, "", err)
		}
	}

	current.Fields = next
	return copyEntity(current), nil
}

func (m *Memory) Delete(ctx context.Context, kind model.Kind, id int64) error {
	if err := ctx.Err(); err != nil {
		return wrap("delete", kind, "", err)
	}
	if kind.ReadOnly() {
		return wrap("delete", kind, "", ErrReadOnly)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rows[kind][id]; !ok {
		return wrap("delete", kind, "", ErrNotFound)
	}
	if kind == model.KindItem {
		for _, a := range m.rows[model.KindAsset] {
			if itemID, _ := asInt(a.Fields["itemId"]); itemID == id {
				return wrap("delete", kind, "", ErrInUse)
			}
		}
	}
	delete(m.rows[kind], id)
	return nil
}
