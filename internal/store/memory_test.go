package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/model"
)

func TestMemoryFindIgnoresCaseAndSpacing(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	created, err := m.Create(ctx, model.KindItemType, map[string]any{"name": "Electronics"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)

	found, err := m.Find(ctx, model.KindItemType, " ELECTRONICS ")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)

	missing, err := m.Find(ctx, model.KindItemType, "Furniture")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemoryUniqueNames(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	_, err := m.Create(ctx, model.KindDepartment, map[string]any{"name": "IT"})
	require.NoError(t, err)
	_, err = m.Create(ctx, model.KindDepartment, map[string]any{"name": "it"})
	assert.ErrorIs(t, err, ErrDuplicate)

	hr, err := m.Create(ctx, model.KindDepartment, map[string]any{"name": "HR"})
	require.NoError(t, err)
	_, err = m.Update(ctx, model.KindDepartment, hr.ID, map[string]any{"name": "It"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestMemoryReturnsCopies(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	e, _ := m.Create(ctx, model.KindItemType, map[string]any{"name": "Tools"})
	e.Fields["name"] = "Changed"

	got, _ := m.Get(ctx, model.KindItemType, e.ID)
	assert.Equal(t, "Tools", got.Name())
}

func TestMemoryUpdateClearsNil(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	item, _ := m.Create(ctx, model.KindItem, map[string]any{"itemName": "Desk", "itemTypeId": int64(1), "itemClassificationId": int64(1)})
	asset, err := m.Create(ctx, model.KindAsset, map[string]any{"itemId": item.ID, "imageRef": "/uploads/a.jpg"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), asset.Fields["quantity"], "quantity defaults to one")

	updated, err := m.Update(ctx, model.KindAsset, asset.ID, map[string]any{"imageRef": nil, "condition": "Good"})
	require.NoError(t, err)
	assert.NotContains(t, updated.Fields, "imageRef")
	assert.Equal(t, "Good", updated.String("condition"))
}

func TestMemoryAssetItemInvariant(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	_, err := m.Create(ctx, model.KindAsset, map[string]any{"itemId": int64(7)})
	assert.ErrorIs(t, err, ErrNotFound)

	item, _ := m.Create(ctx, model.KindItem, map[string]any{"itemName": "Chair"})
	asset, err := m.Create(ctx, model.KindAsset, map[string]any{"itemId": item.ID})
	require.NoError(t, err)

	assert.ErrorIs(t, m.Delete(ctx, model.KindItem, item.ID), ErrInUse)
	require.NoError(t, m.Delete(ctx, model.KindAsset, asset.ID))
	require.NoError(t, m.Delete(ctx, model.KindItem, item.ID))
	assert.ErrorIs(t, m.Delete(ctx, model.KindItem, item.ID), ErrNotFound)
}

func TestMemoryUsersReadOnly(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	m.Put(*UserEntity(&model.User{ID: 11, FullName: "Maria Santos", IsActive: true}))

	_, err := m.Create(ctx, model.KindUser, map[string]any{"fullName": "Someone"})
	assert.ErrorIs(t, err, ErrReadOnly)
	assert.ErrorIs(t, m.Delete(ctx, model.KindUser, 11), ErrReadOnly)

	u, err := m.Find(ctx, model.KindUser, "maria santos")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, int64(11), u.ID)
}

func TestMemoryHonoursCancellation(t *testing.T) {
	m := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Create(ctx, model.KindItemType, map[string]any{"name": "Tools"})
	assert.ErrorIs(t, err, context.Canceled)

	var ue *UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "create", ue.Op)
	assert.Equal(t, model.KindItemType, ue.Kind)
}
