package assemble

import (
	"fmt"
	"strings"

	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/model"
	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/normalize"
	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/resolve"
	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/store"
)

// ValidationError lists every problem found in one record. Reference
// entities already created while resolving are listed in Created so the
// caller can discard them.
type ValidationError struct {
	Kind          model.Kind                       `json:"kind"`
	MissingFields []string                         `json:"missingFields,omitempty"`
	References    []*resolve.MissingReferenceError `json:"references,omitempty"`
	Invalid       []normalize.Rejection            `json:"invalid,omitempty"`
	Created       []store.Ref                      `json:"created,omitempty"`
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.MissingFields) > 0 {
		parts = append(parts, "missing required fields "+strings.Join(e.MissingFields, ", "))
	}
	for _, r := range e.References {
		parts = append(parts, r.Error())
	}
	for _, r := range e.Invalid {
		parts = append(parts, fmt.Sprintf("%s: %s", r.Field, r.Reason))
	}
	return fmt.Sprintf("invalid %s: %s", e.Kind, strings.Join(parts, "; "))
}

func (e *ValidationError) empty() bool {
	return len(e.MissingFields) == 0 && len(e.References) == 0 && len(e.Invalid) == 0
}
