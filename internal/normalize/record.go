package normalize

import (
	"maps"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/model"
)

// Conflict reports two or more aliases of one field carrying different
// values. Values[0] came from Aliases[0] and is the one kept.
type Conflict struct {
	Field   string   `json:"field"`
	Aliases []string `json:"aliases"`
	Values  []any    `json:"values"`
}

// Rejection reports a value that could not be coerced to its field's type.
type Rejection struct {
	Field  string `json:"field"`
	Alias  string `json:"alias"`
	Value  any    `json:"value"`
	Reason string `json:"reason"`
}

// Record is a canonical record: at most one value per logical field. A field
// is either set, explicitly cleared (JSON null), or absent.
type Record struct {
	Kind      model.Kind
	Conflicts []Conflict
	Rejected  []Rejection

	values  map[string]any
	cleared map[string]bool
}

// NewRecord returns an empty record of kind.
func NewRecord(kind model.Kind) *Record {
	return &Record{Kind: kind, values: make(map[string]any), cleared: make(map[string]bool)}
}

// Set stores a canonical value and lifts any clear marker.
func (r *Record) Set(field string, v any) {
	r.values[field] = v
	delete(r.cleared, field)
}

// Clear marks a field as explicitly cleared.
func (r *Record) Clear(field string) {
	delete(r.values, field)
	r.cleared[field] = true
}

// Unset makes a field absent.
func (r *Record) Unset(field string) {
	delete(r.values, field)
	delete(r.cleared, field)
}

// Get returns the value of a set field.
func (r *Record) Get(field string) (any, bool) {
	v, ok := r.values[field]
	return v, ok
}

// Has reports whether field holds a value.
func (r *Record) Has(field string) bool {
	_, ok := r.values[field]
	return ok
}

// Cleared reports whether field was explicitly cleared.
func (r *Record) Cleared(field string) bool {
	return r.cleared[field]
}

// Int returns an id or integer field.
func (r *Record) Int(field string) (int64, bool) {
	v, ok := r.values[field].(int64)
	return v, ok
}

// String returns a string field, or "".
func (r *Record) String(field string) string {
	s, _ := r.values[field].(string)
	return s
}

// Decimal returns a money field.
func (r *Record) Decimal(field string) (decimal.Decimal, bool) {
	d, ok := r.values[field].(decimal.Decimal)
	return d, ok
}

// Date returns a date field.
func (r *Record) Date(field string) (model.Date, bool) {
	d, ok := r.values[field].(model.Date)
	return d, ok
}

// Bool returns a boolean field.
func (r *Record) Bool(field string) (bool, bool) {
	b, ok := r.values[field].(bool)
	return b, ok
}

// Fields returns the names of set fields, sorted.
func (r *Record) Fields() []string {
	return slices.Sorted(maps.Keys(r.values))
}

// Values returns a copy of the set fields. Cleared fields map to nil.
func (r *Record) Values() map[string]any {
	out := make(map[string]any, len(r.values)+len(r.cleared))
	for f := range r.cleared {
		out[f] = nil
	}
	maps.Copy(out, r.values)
	return out
}

// MarshalMap renders the record for JSON output: dates become YYYY-MM-DD,
// money a decimal string, cleared fields null.
func (r *Record) MarshalMap() map[string]any {
	out := r.Values()
	for f, v := range out {
		switch x := v.(type) {
		case model.Date:
			out[f] = x.String()
		case decimal.Decimal:
			out[f] = x.StringFixed(2)
		}
	}
	return out
}

// Clone returns a deep copy of the value maps.
func (r *Record) Clone() *Record {
	c := &Record{
		Kind:      r.Kind,
		Conflicts: slices.Clone(r.Conflicts),
		Rejected:  slices.Clone(r.Rejected),
		values:    maps.Clone(r.values),
		cleared:   maps.Clone(r.cleared),
	}
	return c
}
