package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/db"
	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/model"
)

const assetColumns = `id, item_id, item_type_id, item_classification_id, department_id,
	employee_id, encoder_id, purchase_date, total_cost, quantity, life_span_months,
	condition, image_ref, created_at, updated_at`

func scanAsset(s scanner, a *model.Asset) error {
	var lifeSpan sql.NullInt64
	err := s.Scan(&a.ID, &a.ItemID, &a.ItemTypeID, &a.ItemClassificationID, &a.DepartmentID,
		&a.EmployeeID, &a.EncoderID, &a.PurchaseDate, &a.TotalCost, &a.Quantity, &lifeSpan,
		&a.Condition, &a.ImageRef, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return err
	}
	a.LifeSpanMonths = nil
	if lifeSpan.Valid {
		n := int(lifeSpan.Int64)
		a.LifeSpanMonths = &n
	}
	return nil
}

func lifeSpanArg(a *model.Asset) any {
	if a.LifeSpanMonths == nil {
		return nil
	}
	return int64(*a.LifeSpanMonths)
}

// CreateAsset creates a new asset. The referenced item must exist.
func CreateAsset(ctx context.Context, conn *db.Conn, a *model.Asset) (*model.Asset, error) {
	id, err := conn.Insert(ctx,
		`INSERT INTO assets (item_id, item_type_id, item_classification_id, department_id,
		     employee_id, encoder_id, purchase_date, total_cost, quantity, life_span_months,
		     condition, image_ref)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ItemID, a.ItemTypeID, a.ItemClassificationID, a.DepartmentID,
		a.EmployeeID, a.EncoderID, a.PurchaseDate, a.TotalCost, a.Quantity, lifeSpanArg(a),
		a.Condition, a.ImageRef,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("creating asset: item %d: %w", a.ItemID, ErrNotFound)
		}
		return nil, fmt.Errorf("creating asset: %w", err)
	}

	return GetAsset(ctx, conn, id)
}

// GetAsset returns an asset by ID.
func GetAsset(ctx context.Context, conn *db.Conn, id int64) (*model.Asset, error) {
	a := &model.Asset{}
	err := scanAsset(conn.QueryRowContext(ctx,
		`SELECT `+assetColumns+` FROM assets WHERE id = ?`, id,
	), a)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting asset: %w", err)
	}
	return a, nil
}

// ListAssets returns all assets, newest first.
func ListAssets(ctx context.Context, conn *db.Conn) ([]model.Asset, error) {
	rows, err := conn.QueryContext(ctx,
		`SELECT `+assetColumns+` FROM assets ORDER BY id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing assets: %w", err)
	}
	defer rows.Close()

	var assets []model.Asset
	for rows.Next() {
		var a model.Asset
		if err := scanAsset(rows, &a); err != nil {
			return nil, fmt.Errorf("scanning asset: %w", err)
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

// UpdateAsset writes every column of an asset.
func UpdateAsset(ctx context.Context, conn *db.Conn, a *model.Asset) error {
	result, err := conn.ExecContext(ctx,
		`UPDATE assets SET item_id = ?, item_type_id = ?, item_classification_id = ?,
		     department_id = ?, employee_id = ?, encoder_id = ?, purchase_date = ?,
		     total_cost = ?, quantity = ?, life_span_months = ?, condition = ?, image_ref = ?,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		a.ItemID, a.ItemTypeID, a.ItemClassificationID, a.DepartmentID, a.EmployeeID,
		a.EncoderID, a.PurchaseDate, a.TotalCost, a.Quantity, lifeSpanArg(a), a.Condition,
		a.ImageRef, a.ID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("updating asset: item %d: %w", a.ItemID, ErrNotFound)
		}
		return fmt.Errorf("updating asset: %w", err)
	}
	return expectRow(result, model.KindAsset)
}

// DeleteAsset removes an asset. Its item is kept.
func DeleteAsset(ctx context.Context, conn *db.Conn, id int64) error {
	result, err := conn.ExecContext(ctx, `DELETE FROM assets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting asset: %w", err)
	}
	return expectRow(result, model.KindAsset)
}
