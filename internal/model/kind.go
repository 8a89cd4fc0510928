package model

import "strings"

// Kind names an entity collection.
type Kind string

// Entity kinds.
const (
	KindItem           Kind = "Item"
	KindItemType       Kind = "ItemType"
	KindClassification Kind = "Classification"
	KindDepartment     Kind = "Department"
	KindUser           Kind = "User"
	KindAsset          Kind = "Asset"
)

// Kinds lists every known kind in dependency order (referenced kinds first).
var Kinds = []Kind{
	KindItemType,
	KindClassification,
	KindDepartment,
	KindUser,
	KindItem,
	KindAsset,
}

// ParseKind resolves a kind name case-insensitively. Collection spellings used
// by the HTTP surface ("item-types", "classifications") are accepted too.
func ParseKind(s string) (Kind, bool) {
	key := strings.ToLower(strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.TrimSpace(s)))
	switch key {
	case "item", "items":
		return KindItem, true
	case "itemtype", "itemtypes", "type", "types":
		return KindItemType, true
	case "classification", "classifications", "itemclassification", "itemclassifications":
		return KindClassification, true
	case "department", "departments":
		return KindDepartment, true
	case "user", "users":
		return KindUser, true
	case "asset", "assets":
		return KindAsset, true
	}
	return "", false
}

// IsReference reports whether entities of this kind are small lookup rows
// identified by a unique display name.
func (k Kind) IsReference() bool {
	return k == KindItemType || k == KindClassification || k == KindDepartment
}

// Creatable reports whether a missing entity of this kind may be created on
// demand while resolving a name.
func (k Kind) Creatable() bool {
	return k.IsReference()
}

// ReadOnly reports whether the kind is reference data this service never writes.
func (k Kind) ReadOnly() bool {
	return k == KindUser
}

// NameField returns the logical field holding the display name used for
// name lookups, or "" if the kind is not looked up by name.
func (k Kind) NameField() string {
	switch k {
	case KindItemType, KindClassification, KindDepartment:
		return "name"
	case KindItem:
		return "itemName"
	case KindUser:
		return "fullName"
	}
	return ""
}

// NameKey normalizes a display name for comparison: lower case with runs of
// whitespace collapsed to a single space. Unicode variants are not folded.
func NameKey(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}
