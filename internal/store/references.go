package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/db"
	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/model"
)

// referenceTables maps each lookup kind to its table.
var referenceTables = map[model.Kind]string{
	model.KindItemType:       "item_types",
	model.KindClassification: "classifications",
	model.KindDepartment:     "departments",
}

func referenceTable(kind model.Kind) (string, error) {
	t, ok := referenceTables[kind]
	if !ok {
		return "", fmt.Errorf("%s is not a reference kind", kind)
	}
	return t, nil
}

// CreateReference creates a lookup row. A name already taken, ignoring case
// and spacing, yields ErrDuplicate.
func CreateReference(ctx context.Context, conn *db.Conn, kind model.Kind, name string) (*model.Reference, error) {
	table, err := referenceTable(kind)
	if err != nil {
		return nil, err
	}

	id, err := conn.Insert(ctx,
		`INSERT INTO `+table+` (name, name_key) VALUES (?, ?)`,
		name, model.NameKey(name),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("creating %s %q: %w", kind, name, ErrDuplicate)
		}
		return nil, fmt.Errorf("creating %s: %w", kind, err)
	}

	return GetReference(ctx, conn, kind, id)
}

// GetReference returns a lookup row by ID.
func GetReference(ctx context.Context, conn *db.Conn, kind model.Kind, id int64) (*model.Reference, error) {
	table, err := referenceTable(kind)
	if err != nil {
		return nil, err
	}

	r := &model.Reference{}
	err = conn.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM `+table+` WHERE id = ?`, id,
	).Scan(&r.ID, &r.Name, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", kind, err)
	}
	return r, nil
}

// FindReference returns the lookup row named name, ignoring case and spacing.
func FindReference(ctx context.Context, conn *db.Conn, kind model.Kind, name string) (*model.Reference, error) {
	table, err := referenceTable(kind)
	if err != nil {
		return nil, err
	}

	r := &model.Reference{}
	err = conn.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM `+table+` WHERE name_key = ?`, model.NameKey(name),
	).Scan(&r.ID, &r.Name, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding %s: %w", kind, err)
	}
	return r, nil
}

// ListReferences returns all lookup rows of kind ordered by name.
func ListReferences(ctx context.Context, conn *db.Conn, kind model.Kind) ([]model.Reference, error) {
	table, err := referenceTable(kind)
	if err != nil {
		return nil, err
	}

	rows, err := conn.QueryContext(ctx,
		`SELECT id, name, created_at FROM `+table+` ORDER BY name_key`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", kind, err)
	}
	defer rows.Close()

	var refs []model.Reference
	for rows.Next() {
		var r model.Reference
		if err := rows.Scan(&r.ID, &r.Name, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", kind, err)
		}
		refs = append(refs, r)
	}
	return refs, rows.Err()
}

// RenameReference changes a lookup row's name.
func RenameReference(ctx context.Context, conn *db.Conn, kind model.Kind, id int64, name string) error {
	table, err := referenceTable(kind)
	if err != nil {
		return err
	}

	result, err := conn.ExecContext(ctx,
		`UPDATE `+table+` SET name = ?, name_key = ? WHERE id = ?`,
		name, model.NameKey(name), id,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("renaming %s to %q: %w", kind, name, ErrDuplicate)
		}
		return fmt.Errorf("renaming %s: %w", kind, err)
	}
	return expectRow(result, kind)
}

// DeleteReference removes a lookup row. Items pointing at it are left as
// they are.
func DeleteReference(ctx context.Context, conn *db.Conn, kind model.Kind, id int64) error {
	table, err := referenceTable(kind)
	if err != nil {
		return err
	}

	result, err := conn.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting %s: %w", kind, err)
	}
	return expectRow(result, kind)
}

// expectRow turns "no rows affected" into ErrNotFound.
func expectRow(result sql.Result, kind model.Kind) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking %s rows: %w", kind, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", kind, ErrNotFound)
	}
	return nil
}
