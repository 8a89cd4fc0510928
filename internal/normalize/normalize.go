// Package normalize collapses loosely keyed input records into canonical
// records with one typed value per logical field.
package normalize

import (
	"strings"

	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/alias"
	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/model"
)

// Normalizer reads raw records through an alias table.
type Normalizer struct {
	table *alias.Table
}

// New returns a Normalizer over table.
func New(table *alias.Table) *Normalizer {
	return &Normalizer{table: table}
}

// Table returns the alias table in use.
func (n *Normalizer) Table() *alias.Table {
	return n.table
}

var defaultNormalizer = New(alias.Default())

// Normalize uses the built-in alias table.
func Normalize(kind model.Kind, raw map[string]any) *Record {
	return defaultNormalizer.Normalize(kind, raw)
}

type candidate struct {
	alias string
	value any
}

// Normalize checks every alias of every field of kind in priority order. The
// first value that is neither missing nor blank wins; later aliases carrying
// a different value are reported as conflicts. A null with no value behind
// it clears the field. Values that cannot be coerced are rejected and leave
// the field unset.
//
// A non-numeric string in a link's id field is taken as the referenced
// entity's name when the companion name field is otherwise empty.
func (n *Normalizer) Normalize(kind model.Kind, raw map[string]any) *Record {
	r := NewRecord(kind)
	var nameHints []Rejection

	for _, f := range n.table.Fields(kind) {
		var (
			winner    *candidate
			seenNull  bool
			conflict  *Conflict
			rejection *Rejection
		)

		for _, a := range n.table.AliasesFor(kind, f.Name) {
			v, ok := lookup(raw, a.Path)
			if !ok {
				continue
			}
			if v == nil {
				seenNull = true
				continue
			}
			switch x := v.(type) {
			case string:
				if strings.TrimSpace(x) == "" {
					continue
				}
			case map[string]any, []any:
				// A container reached through its nested aliases.
				continue
			}

			cv, err := coerce(f.Type, v, a.Factor())
			if winner == nil {
				if err != nil {
					if rejection == nil {
						rejection = &Rejection{Field: f.Name, Alias: a.Path, Value: v, Reason: err.Error()}
					}
					break
				}
				winner = &candidate{alias: a.Path, value: cv}
				continue
			}
			if err != nil || equal(winner.value, cv) {
				continue
			}
			if conflict == nil {
				conflict = &Conflict{Field: f.Name, Aliases: []string{winner.alias}, Values: []any{winner.value}}
			}
			conflict.Aliases = append(conflict.Aliases, a.Path)
			conflict.Values = append(conflict.Values, cv)
		}

		switch {
		case winner != nil:
			r.Set(f.Name, winner.value)
		case rejection != nil:
			if _, isLink := n.table.LinkFor(kind, f.Name); isLink && f.Type == alias.ID {
				if s, isStr := rejection.Value.(string); isStr && rejection.Reason == errNotNumeric.Error() {
					nameHints = append(nameHints, Rejection{Field: f.Name, Alias: rejection.Alias, Value: strings.TrimSpace(s)})
					break
				}
			}
			r.Rejected = append(r.Rejected, *rejection)
		case seenNull:
			r.Clear(f.Name)
		}
		if conflict != nil {
			r.Conflicts = append(r.Conflicts, *conflict)
		}
	}

	for _, h := range nameHints {
		link, _ := n.table.LinkFor(kind, h.Field)
		if r.Has(link.NameField) {
			h.Reason = "not a number and a name is already given"
			r.Rejected = append(r.Rejected, h)
			continue
		}
		r.Set(link.NameField, h.Value)
	}

	return r
}

// lookup finds path in raw. A literal key wins over a dotted descent.
func lookup(raw map[string]any, path string) (any, bool) {
	if v, ok := raw[path]; ok {
		return v, true
	}
	if !strings.Contains(path, ".") {
		return nil, false
	}
	var cur any = raw
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}
