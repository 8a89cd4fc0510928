package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/model"
)

var (
	// ErrNotFound is returned when an update or delete targets a missing row.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a create or rename collides with an
	// existing name.
	ErrDuplicate = errors.New("duplicate")
	// ErrReadOnly is returned for writes to kinds this service never writes.
	ErrReadOnly = errors.New("read-only")
	// ErrTimeout is returned when a store call runs past its deadline.
	ErrTimeout = errors.New("store timeout")
	// ErrInUse is returned when deleting a row other rows still point at.
	ErrInUse = errors.New("still referenced")
)

// UpstreamError records which store call failed and on what.
type UpstreamError struct {
	Op   string
	Kind model.Kind
	Name string
	Err  error
}

func (e *UpstreamError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteByte(' ')
	b.WriteString(string(e.Kind))
	if e.Name != "" {
		fmt.Fprintf(&b, " %q", e.Name)
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// wrap decorates err with its call site. Errors already carrying one are
// returned as is.
func wrap(op string, kind model.Kind, name string, err error) error {
	if err == nil {
		return nil
	}
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, ErrTimeout) {
		err = fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return &UpstreamError{Op: op, Kind: kind, Name: name, Err: err}
}

// isUniqueViolation matches unique constraint failures of both SQL dialects.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
