// Package alias declares, per entity kind, the logical fields and the ordered
// surface spellings clients use for each of them.
package alias

import (
	"fmt"
	"slices"
	"sync"

	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/model"
)

// Type is the value type a logical field is coerced to.
type Type int

const (
	String Type = iota
	ID
	Int
	Decimal
	Date
	Bool
)

func (t Type) String() string {
	switch t {
	case String:
		return "string"
	case ID:
		return "id"
	case Int:
		return "int"
	case Decimal:
		return "decimal"
	case Date:
		return "date"
	case Bool:
		return "bool"
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Alias is one surface spelling of a logical field. Path may be dotted to
// reach into nested objects ("itemType.id"). A Scale above 1 multiplies the
// coerced value, so a value given in years lands in a months field.
type Alias struct {
	Path  string `yaml:"path"`
	Scale int64  `yaml:"scale,omitempty"`
}

// Factor returns the multiplier to apply, never less than 1.
func (a Alias) Factor() int64 {
	if a.Scale < 1 {
		return 1
	}
	return a.Scale
}

// Field is a logical field of a kind.
type Field struct {
	Name string
	Type Type
}

// Link declares a foreign key: the id field, the companion field carrying
// the referenced entity's name, and the kind it points to.
type Link struct {
	IDField   string
	NameField string
	Target    model.Kind
}

type kindDef struct {
	fields   []Field
	aliases  map[string][]Alias
	links    []Link
	required []string
}

// Table maps logical fields to their aliases. It is safe for concurrent use.
type Table struct {
	mu    sync.RWMutex
	kinds map[model.Kind]*kindDef
}

// AliasesFor returns the aliases of a field in priority order. An unknown
// field yields nil.
func (t *Table) AliasesFor(kind model.Kind, field string) []Alias {
	t.mu.RLock()
	defer t.mu.RUnlock()
	def := t.kinds[kind]
	if def == nil {
		return nil
	}
	return slices.Clone(def.aliases[field])
}

// Fields returns the logical fields of kind in declaration order.
func (t *Table) Fields(kind model.Kind) []Field {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if def := t.kinds[kind]; def != nil {
		return slices.Clone(def.fields)
	}
	return nil
}

// Field looks up a single logical field.
func (t *Table) Field(kind model.Kind, name string) (Field, bool) {
	for _, f := range t.Fields(kind) {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Links returns the foreign keys of kind in declaration order.
func (t *Table) Links(kind model.Kind) []Link {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if def := t.kinds[kind]; def != nil {
		return slices.Clone(def.links)
	}
	return nil
}

// LinkFor returns the link whose id field is field.
func (t *Table) LinkFor(kind model.Kind, field string) (Link, bool) {
	for _, l := range t.Links(kind) {
		if l.IDField == field {
			return l, true
		}
	}
	return Link{}, false
}

// Required returns the required logical fields of kind in declaration order.
func (t *Table) Required(kind model.Kind) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if def := t.kinds[kind]; def != nil {
		return slices.Clone(def.required)
	}
	return nil
}

// Add appends aliases to an existing field. Paths already listed for the
// field are skipped so repeated loads are harmless.
func (t *Table) Add(kind model.Kind, field string, aliases ...Alias) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	def := t.kinds[kind]
	if def == nil {
		return fmt.Errorf("unknown kind %q", kind)
	}
	if _, ok := def.aliases[field]; !ok {
		return fmt.Errorf("unknown field %s.%s", kind, field)
	}
	for _, a := range aliases {
		if a.Path == "" {
			return fmt.Errorf("empty alias path for %s.%s", kind, field)
		}
		if slices.ContainsFunc(def.aliases[field], func(x Alias) bool { return x.Path == a.Path }) {
			continue
		}
		def.aliases[field] = append(def.aliases[field], a)
	}
	return nil
}

// Default returns a fresh table holding the built-in aliases.
func Default() *Table {
	t := &Table{kinds: make(map[model.Kind]*kindDef)}
	for _, k := range builtin {
		def := &kindDef{
			aliases:  make(map[string][]Alias),
			links:    slices.Clone(k.links),
			required: slices.Clone(k.required),
		}
		for _, f := range k.fields {
			def.fields = append(def.fields, Field{Name: f.name, Type: f.typ})
			for _, p := range f.paths {
				def.aliases[f.name] = append(def.aliases[f.name], parsePath(p))
			}
		}
		t.kinds[k.kind] = def
	}
	return t
}
