package alias

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/model"
)

func paths(aliases []Alias) []string {
	out := make([]string, len(aliases))
	for i, a := range aliases {
		out[i] = a.Path
	}
	return out
}

func TestDefaultPriorityOrder(t *testing.T) {
	tbl := Default()

	got := paths(tbl.AliasesFor(model.KindItem, "itemTypeId"))
	require.NotEmpty(t, got)
	assert.Equal(t, "itemTypeId", got[0], "canonical spelling comes first")
	assert.Less(t, indexOf(got, "typeId"), indexOf(got, "item_type_id"))
	assert.Less(t, indexOf(got, "item_type_id"), indexOf(got, "item_type"))
	assert.Less(t, indexOf(got, "item_type"), indexOf(got, "itemType.id"))
}

func indexOf(s []string, v string) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}

func TestEveryFieldListsItsOwnName(t *testing.T) {
	tbl := Default()
	for _, k := range model.Kinds {
		fields := tbl.Fields(k)
		require.NotEmpty(t, fields, "kind %s", k)
		for _, f := range fields {
			aliases := tbl.AliasesFor(k, f.Name)
			require.NotEmpty(t, aliases, "%s.%s", k, f.Name)
			assert.Equal(t, f.Name, aliases[0].Path, "%s.%s", k, f.Name)
		}
		for _, r := range tbl.Required(k) {
			_, ok := tbl.Field(k, r)
			assert.True(t, ok, "required field %s.%s is declared", k, r)
		}
		for _, l := range tbl.Links(k) {
			_, ok := tbl.Field(k, l.IDField)
			assert.True(t, ok, "link id %s.%s is declared", k, l.IDField)
			_, ok = tbl.Field(k, l.NameField)
			assert.True(t, ok, "link name %s.%s is declared", k, l.NameField)
		}
	}
}

func TestRequiredAssetFieldsOrder(t *testing.T) {
	assert.Equal(t, []string{
		"itemId", "itemTypeId", "itemClassificationId", "departmentId",
		"employeeId", "encoderId", "purchaseDate", "totalCost",
	}, Default().Required(model.KindAsset))
}

func TestScaledAlias(t *testing.T) {
	aliases := Default().AliasesFor(model.KindAsset, "lifeSpanMonths")
	require.NotEmpty(t, aliases)
	assert.Equal(t, int64(1), aliases[0].Factor())

	var years Alias
	for _, a := range aliases {
		if a.Path == "lifeSpanYears" {
			years = a
		}
	}
	assert.Equal(t, int64(12), years.Factor())
}

func TestAliasesForReturnsCopy(t *testing.T) {
	tbl := Default()
	got := tbl.AliasesFor(model.KindDepartment, "name")
	got[0].Path = "mutated"
	assert.Equal(t, "name", tbl.AliasesFor(model.KindDepartment, "name")[0].Path)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "aliases.yaml")
	content := `
Asset:
  totalCost:
    - amount
    - path: pricing.total
  lifeSpanMonths: ["warrantyYears*12"]
item-types:
  name: [label]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	tbl, err := LoadFile(path)
	require.NoError(t, err)

	cost := paths(tbl.AliasesFor(model.KindAsset, "totalCost"))
	assert.Equal(t, "totalCost", cost[0])
	assert.Equal(t, []string{"amount", "pricing.total"}, cost[len(cost)-2:])

	life := tbl.AliasesFor(model.KindAsset, "lifeSpanMonths")
	last := life[len(life)-1]
	assert.Equal(t, "warrantyYears", last.Path)
	assert.Equal(t, int64(12), last.Factor())

	assert.Contains(t, paths(tbl.AliasesFor(model.KindItemType, "name")), "label")

	// The default table is unaffected.
	assert.NotContains(t, paths(Default().AliasesFor(model.KindAsset, "totalCost")), "amount")
}

func TestLoadFileRejectsUnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aliases.yaml")
	require.NoError(t, os.WriteFile(path, []byte("Asset:\n  colour: [color]\n"), 0o644))

	_, err := LoadFile(path)
	assert.ErrorContains(t, err, "unknown field Asset.colour")
}

func TestMergeIsIdempotent(t *testing.T) {
	tbl := Default()
	doc := []byte("Department:\n  name: [division]\n")
	require.NoError(t, tbl.Merge(doc))
	require.NoError(t, tbl.Merge(doc))

	got := paths(tbl.AliasesFor(model.KindDepartment, "name"))
	assert.Equal(t, 1, countOf(got, "division"))
}

func countOf(s []string, v string) int {
	n := 0
	for _, x := range s {
		if x == v {
			n++
		}
	}
	return n
}
