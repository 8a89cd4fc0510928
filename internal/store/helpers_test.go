package store

import (
	"testing"
	"time"

	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/model"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(model.DateLayout, s)
	if err != nil {
		t.Fatalf("parsing %q: %v", s, err)
	}
	return d
}
