package alias

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/model"
)

// UnmarshalYAML accepts either a bare path ("cost.amount", "years*12") or a
// mapping with path and scale keys.
func (a *Alias) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*a = parsePath(value.Value)
		return nil
	case yaml.MappingNode:
		type plain Alias
		var p plain
		if err := value.Decode(&p); err != nil {
			return err
		}
		*a = Alias(p)
		return nil
	}
	return fmt.Errorf("line %d: alias must be a string or a mapping", value.Line)
}

// overrides is the file layout: kind -> logical field -> extra aliases.
//
//	Asset:
//	  totalCost: [amount, {path: pricing.total}]
//	  lifeSpanMonths: ["warrantyYears*12"]
type overrides map[string]map[string][]Alias

// Merge appends the aliases in a YAML document to the table. Appended
// aliases rank below every built-in spelling of the field.
func (t *Table) Merge(data []byte) error {
	var o overrides
	if err := yaml.Unmarshal(data, &o); err != nil {
		return fmt.Errorf("parsing aliases: %w", err)
	}
	for name, fields := range o {
		kind, ok := model.ParseKind(name)
		if !ok {
			return fmt.Errorf("parsing aliases: unknown kind %q", name)
		}
		for field, aliases := range fields {
			if err := t.Add(kind, field, aliases...); err != nil {
				return fmt.Errorf("parsing aliases: %w", err)
			}
		}
	}
	return nil
}

// LoadFile returns the default table extended with the aliases in path.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading alias file: %w", err)
	}
	t := Default()
	if err := t.Merge(data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}
