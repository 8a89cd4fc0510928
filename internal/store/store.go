// Package store abstracts the place entity records live: a SQL mirror, an
// in-process map, or the upstream REST API.
package store

import (
	"context"

	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/model"
)

// EntityStore is the persistence contract of the resolution engine. Fields
// are keyed by logical field name and carry canonical values: int64 for ids
// and counts, string, bool, decimal.Decimal, model.Date. A nil value clears
// a field on Update.
type EntityStore interface {
	// Find returns the entity whose name equals name, ignoring case and
	// repeated whitespace. It returns nil, nil when there is none.
	Find(ctx context.Context, kind model.Kind, name string) (*Entity, error)
	// Get returns nil, nil when no entity has id.
	Get(ctx context.Context, kind model.Kind, id int64) (*Entity, error)
	List(ctx context.Context, kind model.Kind) ([]Entity, error)
	Create(ctx context.Context, kind model.Kind, fields map[string]any) (*Entity, error)
	Update(ctx context.Context, kind model.Kind, id int64, fields map[string]any) (*Entity, error)
	Delete(ctx context.Context, kind model.Kind, id int64) error
}

// Ref identifies one entity.
type Ref struct {
	Kind model.Kind `json:"kind"`
	ID   int64      `json:"id"`
}

// Entity is a stored record.
type Entity struct {
	Kind   model.Kind     `json:"kind"`
	ID     int64          `json:"id"`
	Fields map[string]any `json:"fields"`
}

// Ref returns the entity's identity.
func (e *Entity) Ref() Ref {
	return Ref{Kind: e.Kind, ID: e.ID}
}

// Name returns the display name, or "" for kinds without one.
func (e *Entity) Name() string {
	s, _ := e.Fields[e.Kind.NameField()].(string)
	return s
}

// Int returns an integer field.
func (e *Entity) Int(field string) (int64, bool) {
	return asInt(e.Fields[field])
}

// String returns a string field, or "".
func (e *Entity) String(field string) string {
	s, _ := e.Fields[field].(string)
	return s
}

// Map flattens the entity for JSON output with its id alongside the fields.
func (e *Entity) Map() map[string]any {
	out := make(map[string]any, len(e.Fields)+1)
	for k, v := range e.Fields {
		out[k] = jsonValue(v)
	}
	out["id"] = e.ID
	return out
}

func asInt(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	case float64:
		if x == float64(int64(x)) {
			return int64(x), true
		}
	}
	return 0, false
}
