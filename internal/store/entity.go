package store

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/model"
)

func jsonValue(v any) any {
	switch x := v.(type) {
	case model.Date:
		if x.IsZero() {
			return nil
		}
		return x.String()
	case decimal.Decimal:
		return x.StringFixed(2)
	}
	return v
}

// ReferenceEntity converts a lookup row.
func ReferenceEntity(kind model.Kind, r *model.Reference) *Entity {
	return &Entity{Kind: kind, ID: r.ID, Fields: map[string]any{"name": r.Name}}
}

// ItemEntity converts an item.
func ItemEntity(it *model.Item) *Entity {
	f := map[string]any{
		"itemName":             it.ItemName,
		"itemTypeId":           it.ItemTypeID,
		"itemClassificationId": it.ItemClassificationID,
	}
	if it.ItemTypeName != "" {
		f["itemTypeName"] = it.ItemTypeName
	}
	if it.ClassificationName != "" {
		f["classificationName"] = it.ClassificationName
	}
	return &Entity{Kind: model.KindItem, ID: it.ID, Fields: f}
}

// UserEntity converts a user.
func UserEntity(u *model.User) *Entity {
	return &Entity{Kind: model.KindUser, ID: u.ID, Fields: map[string]any{
		"fullName": u.FullName,
		"email":    u.Email,
		"isActive": u.IsActive,
	}}
}

// AssetEntity converts an asset.
func AssetEntity(a *model.Asset) *Entity {
	f := map[string]any{
		"itemId":               a.ItemID,
		"itemTypeId":           a.ItemTypeID,
		"itemClassificationId": a.ItemClassificationID,
		"departmentId":         a.DepartmentID,
		"employeeId":           a.EmployeeID,
		"encoderId":            a.EncoderID,
		"purchaseDate":         a.PurchaseDate,
		"totalCost":            a.TotalCost,
		"quantity":             int64(a.Quantity),
	}
	if a.LifeSpanMonths != nil {
		f["lifeSpanMonths"] = int64(*a.LifeSpanMonths)
	}
	if a.Condition != "" {
		f["condition"] = a.Condition
	}
	if a.ImageRef != "" {
		f["imageRef"] = a.ImageRef
	}
	return &Entity{Kind: model.KindAsset, ID: a.ID, Fields: f}
}

// fieldReader pulls typed values out of a field map, remembering the first
// type mismatch.
type fieldReader struct {
	fields map[string]any
	err    error
}

func (r *fieldReader) fail(field string, v any, want string) {
	if r.err == nil {
		r.err = fmt.Errorf("field %s: cannot use %T as %s", field, v, want)
	}
}

// str sets *dst when field is present. A nil value clears it.
func (r *fieldReader) str(field string, dst *string) {
	v, ok := r.fields[field]
	if !ok {
		return
	}
	switch x := v.(type) {
	case nil:
		*dst = ""
	case string:
		*dst = x
	default:
		r.fail(field, v, "string")
	}
}

func (r *fieldReader) integer(field string, dst *int64) {
	v, ok := r.fields[field]
	if !ok {
		return
	}
	if v == nil {
		*dst = 0
		return
	}
	n, ok := asInt(v)
	if !ok {
		r.fail(field, v, "integer")
		return
	}
	*dst = n
}

func (r *fieldReader) optInt(field string, dst **int) {
	v, ok := r.fields[field]
	if !ok {
		return
	}
	if v == nil {
		*dst = nil
		return
	}
	n, ok := asInt(v)
	if !ok {
		r.fail(field, v, "integer")
		return
	}
	i := int(n)
	*dst = &i
}

func (r *fieldReader) boolean(field string, dst *bool) {
	v, ok := r.fields[field]
	if !ok {
		return
	}
	b, ok := v.(bool)
	if !ok {
		r.fail(field, v, "bool")
		return
	}
	*dst = b
}

func (r *fieldReader) date(field string, dst *model.Date) {
	v, ok := r.fields[field]
	if !ok {
		return
	}
	switch x := v.(type) {
	case nil:
		*dst = model.Date{}
	case model.Date:
		*dst = x
	case time.Time:
		*dst = model.NewDate(x)
	case string:
		t, err := time.Parse(model.DateLayout, x)
		if err != nil {
			r.fail(field, v, "date")
			return
		}
		*dst = model.NewDate(t)
	default:
		r.fail(field, v, "date")
	}
}

func (r *fieldReader) money(field string, dst *decimal.Decimal) {
	v, ok := r.fields[field]
	if !ok {
		return
	}
	switch x := v.(type) {
	case nil:
		*dst = decimal.Zero
	case decimal.Decimal:
		*dst = x
	case string:
		d, err := decimal.NewFromString(x)
		if err != nil {
			r.fail(field, v, "decimal")
			return
		}
		*dst = d
	default:
		if n, ok := asInt(v); ok {
			*dst = decimal.NewFromInt(n)
			return
		}
		if f, ok := v.(float64); ok {
			*dst = decimal.NewFromFloat(f)
			return
		}
		r.fail(field, v, "decimal")
	}
}

// applyReference copies fields onto a lookup row.
func applyReference(ref *model.Reference, fields map[string]any) error {
	r := fieldReader{fields: fields}
	r.str("name", &ref.Name)
	return r.err
}

func applyItem(it *model.Item, fields map[string]any) error {
	r := fieldReader{fields: fields}
	r.str("itemName", &it.ItemName)
	r.integer("itemTypeId", &it.ItemTypeID)
	r.integer("itemClassificationId", &it.ItemClassificationID)
	return r.err
}

func applyUser(u *model.User, fields map[string]any) error {
	r := fieldReader{fields: fields}
	r.integer("id", &u.ID)
	r.str("fullName", &u.FullName)
	r.str("email", &u.Email)
	r.boolean("isActive", &u.IsActive)
	return r.err
}

func applyAsset(a *model.Asset, fields map[string]any) error {
	r := fieldReader{fields: fields}
	r.integer("itemId", &a.ItemID)
	r.integer("itemTypeId", &a.ItemTypeID)
	r.integer("itemClassificationId", &a.ItemClassificationID)
	r.integer("departmentId", &a.DepartmentID)
	r.integer("employeeId", &a.EmployeeID)
	r.integer("encoderId", &a.EncoderID)
	r.date("purchaseDate", &a.PurchaseDate)
	r.money("totalCost", &a.TotalCost)
	qty := int64(a.Quantity)
	r.integer("quantity", &qty)
	a.Quantity = int(qty)
	r.optInt("lifeSpanMonths", &a.LifeSpanMonths)
	r.str("condition", &a.Condition)
	r.str("imageRef", &a.ImageRef)
	return r.err
}
