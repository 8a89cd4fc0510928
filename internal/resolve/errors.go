package resolve

import (
	"fmt"

	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/model"
)

// MissingReferenceError reports a foreign key with neither an id nor a name
// that resolves, or with an id that points nowhere.
type MissingReferenceError struct {
	Kind  model.Kind `json:"kind"`
	Field string     `json:"field,omitempty"`
	Name  string     `json:"name,omitempty"`
	ID    int64      `json:"id,omitempty"`
}

func (e *MissingReferenceError) Error() string {
	subject := string(e.Kind)
	if e.Field != "" {
		subject = e.Field
	}
	switch {
	case e.ID != 0:
		return fmt.Sprintf("%s: no %s with id %d", subject, e.Kind, e.ID)
	case e.Name != "":
		return fmt.Sprintf("%s: no %s named %q", subject, e.Kind, e.Name)
	}
	return fmt.Sprintf("%s: no id or name given", subject)
}

// DuplicateRaceError reports a create that collided with another writer
// whose row could then not be found.
type DuplicateRaceError struct {
	Kind model.Kind
	Name string
	Err  error
}

func (e *DuplicateRaceError) Error() string {
	return fmt.Sprintf("%s %q was created concurrently but cannot be found: %v", e.Kind, e.Name, e.Err)
}

func (e *DuplicateRaceError) Unwrap() error { return e.Err }
