package upstream

import (
	"github.com/shopspring/decimal"

	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/model"
	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/store"
)

// listKeys are the wrappers the API has been seen to put around lists.
var listKeys = []string{"content", "data", "items", "rows"}

// rows extracts the list of objects from a list response.
func rows(v any) []map[string]any {
	var list []any
	switch x := v.(type) {
	case []any:
		list = x
	case map[string]any:
		for _, k := range listKeys {
			if l, ok := x[k].([]any); ok {
				list = l
				break
			}
		}
	}
	out := make([]map[string]any, 0, len(list))
	for _, e := range list {
		if m, ok := e.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// wrapperKeys are the keys single objects may come wrapped in.
var wrapperKeys = map[model.Kind][]string{
	model.KindItemType:       {"type", "itemType", "data"},
	model.KindClassification: {"classification", "itemClassification", "data"},
	model.KindDepartment:     {"department", "data"},
	model.KindItem:           {"item", "data"},
	model.KindAsset:          {"asset", "data"},
	model.KindUser:           {"user", "data"},
}

func unwrap(kind model.Kind, v any) map[string]any {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	for _, k := range wrapperKeys[kind] {
		if inner, ok := m[k].(map[string]any); ok {
			return inner
		}
	}
	return m
}

// fromWire adapts the API's own column names before normalising. The asset
// table keeps life_span in months while user input gives years.
func fromWire(kind model.Kind, row map[string]any) map[string]any {
	if kind != model.KindAsset {
		return row
	}
	out := make(map[string]any, len(row))
	for k, v := range row {
		switch k {
		case "lifeSpan", "life_span":
			if _, ok := row["lifeSpanMonths"]; !ok {
				out["lifeSpanMonths"] = v
			}
		default:
			out[k] = v
		}
	}
	return out
}

// entity normalises one API row. Rows without a usable id are dropped.
func (c *Client) entity(kind model.Kind, row map[string]any) *store.Entity {
	if row == nil {
		return nil
	}
	rec := c.norm.Normalize(kind, fromWire(kind, row))
	id, ok := rec.Int("id")
	if !ok || id <= 0 {
		return nil
	}
	fields := rec.Values()
	delete(fields, "id")
	return &store.Entity{Kind: kind, ID: id, Fields: fields}
}

var nameSpellings = map[model.Kind]string{
	model.KindItemType:       "typeName",
	model.KindClassification: "classificationName",
	model.KindDepartment:     "departmentName",
}

// payload renders canonical fields as the API expects them: camelCase keys
// plus the snake_case and legacy column names its tables use.
func payload(kind model.Kind, f map[string]any) map[string]any {
	switch {
	case kind.IsReference():
		name, _ := f["name"].(string)
		return map[string]any{"name": name, nameSpellings[kind]: name}
	case kind == model.KindItem:
		name, _ := f["itemName"].(string)
		return map[string]any{
			"itemName":             name,
			"itemTypeId":           f["itemTypeId"],
			"itemClassificationId": f["itemClassificationId"],
			"item_name":            name,
			"item_type":            f["itemTypeId"],
			"item_classification":  f["itemClassificationId"],
		}
	case kind == model.KindAsset:
		return assetPayload(f)
	}
	return f
}

func assetPayload(f map[string]any) map[string]any {
	qty, ok := f["quantity"].(int64)
	if !ok || qty < 1 {
		qty = 1
	}
	var cost, total any
	if d, ok := f["totalCost"].(decimal.Decimal); ok {
		cost = d.Round(2).InexactFloat64()
		total = d.Mul(decimal.NewFromInt(qty)).Round(2).InexactFloat64()
	}
	var acquired any
	if d, ok := f["purchaseDate"].(model.Date); ok && !d.IsZero() {
		acquired = d.Timestamp()
	}
	image := nullable(f["imageRef"])

	return map[string]any{
		"itemId":               f["itemId"],
		"itemTypeId":           f["itemTypeId"],
		"itemClassificationId": f["itemClassificationId"],
		"item_type":            f["itemTypeId"],
		"item_classification":  f["itemClassificationId"],

		"costPerItem":   cost,
		"cost_per_item": cost,
		"total":         total,

		"dateAcquired":  acquired,
		"date_acquired": acquired,
		"dateCreated":   acquired,
		"date_created":  acquired,

		"lifeSpan":  f["lifeSpanMonths"],
		"life_span": f["lifeSpanMonths"],

		"condition": nullable(f["condition"]),

		"employeeId": f["employeeId"],
		"employee":   f["employeeId"],
		"encoderId":  f["encoderId"],
		"encoder":    f["encoderId"],

		"itemImage":  image,
		"item_image": image,

		"quantity":     qty,
		"departmentId": f["departmentId"],
	}
}

func nullable(v any) any {
	if s, ok := v.(string); ok && s == "" {
		return nil
	}
	return v
}
