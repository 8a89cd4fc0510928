package alias

import (
	"strconv"
	"strings"

	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/model"
)

type fieldSpec struct {
	name  string
	typ   Type
	paths []string
}

type kindSpec struct {
	kind     model.Kind
	fields   []fieldSpec
	links    []Link
	required []string
}

// parsePath reads "path" or "path*N", the latter carrying a scale factor.
func parsePath(s string) Alias {
	if i := strings.LastIndexByte(s, '*'); i > 0 {
		if n, err := strconv.ParseInt(s[i+1:], 10, 64); err == nil {
			return Alias{Path: s[:i], Scale: n}
		}
	}
	return Alias{Path: s}
}

// Alias priority within every list: canonical camelCase, other camelCase,
// snake_case, legacy single words, nested paths.

var (
	itemTypeID = fieldSpec{"itemTypeId", ID, []string{
		"itemTypeId", "typeId", "item_type_id", "type_id", "item_type", "itemType.id", "type.id",
	}}
	itemTypeName = fieldSpec{"itemTypeName", String, []string{
		"itemTypeName", "typeName", "item_type_name", "type_name", "itemType.typeName",
		"itemType.itemTypeName", "itemType.name", "type.name",
	}}
	classificationID = fieldSpec{"itemClassificationId", ID, []string{
		"itemClassificationId", "classificationId", "item_classification_id", "classification_id",
		"item_classification", "itemClassification.id", "classification.id",
	}}
	classificationName = fieldSpec{"classificationName", String, []string{
		"classificationName", "itemClassificationName", "item_classification_name",
		"classification_name", "class_name", "itemClassification.classificationName",
		"itemClassification.name", "classification.name",
	}}
)

var builtin = []kindSpec{
	{
		kind: model.KindItemType,
		fields: []fieldSpec{
			{"id", ID, []string{"id", "itemTypeId", "typeId", "item_type_id", "type_id"}},
			{"name", String, []string{"name", "typeName", "itemTypeName", "type_name", "item_type_name"}},
		},
		required: []string{"name"},
	},
	{
		kind: model.KindClassification,
		fields: []fieldSpec{
			{"id", ID, []string{"id", "classificationId", "itemClassificationId", "classification_id", "item_classification_id"}},
			{"name", String, []string{"name", "classificationName", "itemClassificationName", "classification_name", "item_classification_name", "class_name"}},
		},
		required: []string{"name"},
	},
	{
		kind: model.KindDepartment,
		fields: []fieldSpec{
			{"id", ID, []string{"id", "departmentId", "department_id", "deptId", "dept_id"}},
			{"name", String, []string{"name", "departmentName", "deptName", "department_name", "dept_name"}},
		},
		required: []string{"name"},
	},
	{
		kind: model.KindUser,
		fields: []fieldSpec{
			{"id", ID, []string{"id", "userId", "user_id"}},
			{"fullName", String, []string{"fullName", "full_name", "name", "username"}},
			{"email", String, []string{"email", "emailAddress", "email_address"}},
			{"isActive", Bool, []string{"isActive", "is_active", "active", "status"}},
		},
		required: []string{"fullName"},
	},
	{
		kind: model.KindItem,
		fields: []fieldSpec{
			{"id", ID, []string{"id", "itemId", "item_id"}},
			{"itemName", String, []string{"itemName", "item_name", "name"}},
			itemTypeID,
			itemTypeName,
			classificationID,
			classificationName,
		},
		links: []Link{
			{IDField: "itemTypeId", NameField: "itemTypeName", Target: model.KindItemType},
			{IDField: "itemClassificationId", NameField: "classificationName", Target: model.KindClassification},
		},
		required: []string{"itemName", "itemTypeId", "itemClassificationId"},
	},
	{
		kind: model.KindAsset,
		fields: []fieldSpec{
			{"id", ID, []string{"id", "assetId", "asset_id"}},
			{"itemId", ID, []string{"itemId", "assetItemId", "item_id", "asset_item_id", "item.id"}},
			{"itemName", String, []string{"itemName", "assetName", "item_name", "asset_name", "item.itemName", "item.name"}},
			itemTypeID,
			itemTypeName,
			classificationID,
			classificationName,
			{"departmentId", ID, []string{"departmentId", "deptId", "department_id", "dept_id", "department", "department.id"}},
			{"departmentName", String, []string{"departmentName", "deptName", "department_name", "dept_name", "department.name", "department.departmentName"}},
			{"employeeId", ID, []string{"employeeId", "assignedToId", "employee_id", "assigned_to_id", "employee", "employee.id"}},
			{"employeeName", String, []string{"employeeName", "assignedTo", "employee_name", "assigned_to", "employee.fullName", "employee.name"}},
			{"encoderId", ID, []string{"encoderId", "encodedById", "encoder_id", "encoded_by", "encoder", "encoder.id"}},
			{"encoderName", String, []string{"encoderName", "encoder_name", "encoder.fullName", "encoder.name"}},
			{"purchaseDate", Date, []string{"purchaseDate", "dateAcquired", "acquiredDate", "dateCreated", "purchase_date", "date_acquired", "date_created"}},
			{"totalCost", Decimal, []string{"totalCost", "costPerItem", "unitCost", "total_cost", "cost_per_item", "unit_cost", "cost", "price"}},
			{"quantity", Int, []string{"quantity", "qty", "count"}},
			{"lifeSpanMonths", Int, []string{"lifeSpanMonths", "lifeSpanYears*12", "lifeSpan*12", "life_span_months", "life_span_years*12", "life_span*12", "lifespan*12"}},
			{"condition", String, []string{"condition", "assetCondition", "asset_condition", "status"}},
			{"imageRef", String, []string{"imageRef", "imageUrl", "itemImage", "imageData", "photoUrl", "image_url", "item_image", "photo_url", "image"}},
		},
		links: []Link{
			{IDField: "itemId", NameField: "itemName", Target: model.KindItem},
			{IDField: "itemTypeId", NameField: "itemTypeName", Target: model.KindItemType},
			{IDField: "itemClassificationId", NameField: "classificationName", Target: model.KindClassification},
			{IDField: "departmentId", NameField: "departmentName", Target: model.KindDepartment},
			{IDField: "employeeId", NameField: "employeeName", Target: model.KindUser},
			{IDField: "encoderId", NameField: "encoderName", Target: model.KindUser},
		},
		required: []string{
			"itemId", "itemTypeId", "itemClassificationId", "departmentId",
			"employeeId", "encoderId", "purchaseDate", "totalCost",
		},
	},
}
