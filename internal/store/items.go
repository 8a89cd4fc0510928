package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/db"
	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/model"
)

const itemColumns = `i.id, i.item_name, i.item_type_id, i.item_classification_id,
	i.created_at, i.updated_at, COALESCE(t.name, ''), COALESCE(c.name, '')`

const itemFrom = ` FROM items i
	LEFT JOIN item_types t ON t.id = i.item_type_id
	LEFT JOIN classifications c ON c.id = i.item_classification_id`

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner, it *model.Item) error {
	return s.Scan(&it.ID, &it.ItemName, &it.ItemTypeID, &it.ItemClassificationID,
		&it.CreatedAt, &it.UpdatedAt, &it.ItemTypeName, &it.ClassificationName)
}

// CreateItem creates a new item.
func CreateItem(ctx context.Context, conn *db.Conn, it *model.Item) (*model.Item, error) {
	id, err := conn.Insert(ctx,
		`INSERT INTO items (item_name, name_key, item_type_id, item_classification_id)
		 VALUES (?, ?, ?, ?)`,
		it.ItemName, model.NameKey(it.ItemName), it.ItemTypeID, it.ItemClassificationID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("creating item %q: %w", it.ItemName, ErrDuplicate)
		}
		return nil, fmt.Errorf("creating item: %w", err)
	}

	return GetItem(ctx, conn, id)
}

// GetItem returns an item by ID with its type and classification names.
func GetItem(ctx context.Context, conn *db.Conn, id int64) (*model.Item, error) {
	it := &model.Item{}
	err := scanItem(conn.QueryRowContext(ctx,
		`SELECT `+itemColumns+itemFrom+` WHERE i.id = ?`, id,
	), it)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return it, nil
}

// FindItem returns the item named name, ignoring case and spacing.
func FindItem(ctx context.Context, conn *db.Conn, name string) (*model.Item, error) {
	it := &model.Item{}
	err := scanItem(conn.QueryRowContext(ctx,
		`SELECT `+itemColumns+itemFrom+` WHERE i.name_key = ?`, model.NameKey(name),
	), it)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding item: %w", err)
	}
	return it, nil
}

// ListItems returns all items ordered by name.
func ListItems(ctx context.Context, conn *db.Conn) ([]model.Item, error) {
	rows, err := conn.QueryContext(ctx,
		`SELECT `+itemColumns+itemFrom+` ORDER BY i.name_key`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		var it model.Item
		if err := scanItem(rows, &it); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// UpdateItem writes an item's name and links.
func UpdateItem(ctx context.Context, conn *db.Conn, it *model.Item) error {
	result, err := conn.ExecContext(ctx,
		`UPDATE items SET item_name = ?, name_key = ?, item_type_id = ?, item_classification_id = ?,
		        updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		it.ItemName, model.NameKey(it.ItemName), it.ItemTypeID, it.ItemClassificationID, it.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("updating item %q: %w", it.ItemName, ErrDuplicate)
		}
		return fmt.Errorf("updating item: %w", err)
	}
	return expectRow(result, model.KindItem)
}

// DeleteItem removes an item. Items with assets cannot be deleted.
func DeleteItem(ctx context.Context, conn *db.Conn, id int64) error {
	result, err := conn.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("deleting item %d: %w", id, ErrInUse)
		}
		return fmt.Errorf("deleting item: %w", err)
	}
	return expectRow(result, model.KindItem)
}
