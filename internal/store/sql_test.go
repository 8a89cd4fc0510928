package store

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/db"
	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/model"
)

func TestCreateAndFindReference(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	ref, err := CreateReference(ctx, database, model.KindItemType, "Electronics")
	if err != nil {
		t.Fatalf("CreateReference: %v", err)
	}
	if ref.Name != "Electronics" {
		t.Errorf("expected name 'Electronics', got %q", ref.Name)
	}

	got, err := FindReference(ctx, database, model.KindItemType, "  electronics ")
	if err != nil {
		t.Fatalf("FindReference: %v", err)
	}
	if got == nil || got.ID != ref.ID {
		t.Fatalf("expected case-insensitive match on id %d, got %+v", ref.ID, got)
	}

	// Same name in another kind is fine.
	if _, err := CreateReference(ctx, database, model.KindDepartment, "Electronics"); err != nil {
		t.Errorf("CreateReference in another table: %v", err)
	}
}

func TestCreateReferenceDuplicate(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateReference(ctx, database, model.KindClassification, "Consumables")
	_, err := CreateReference(ctx, database, model.KindClassification, "CONSUMABLES")
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
}

func TestGetMissingReference(t *testing.T) {
	database := db.NewTestDB(t)

	got, err := GetReference(context.Background(), database, model.KindDepartment, 42)
	if err != nil {
		t.Fatalf("GetReference: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing row, got %+v", got)
	}
}

func TestDeleteReference(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	ref, _ := CreateReference(ctx, database, model.KindItemType, "Tools")
	if err := DeleteReference(ctx, database, model.KindItemType, ref.ID); err != nil {
		t.Fatalf("DeleteReference: %v", err)
	}
	if err := DeleteReference(ctx, database, model.KindItemType, ref.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestItemJoinsNames(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	typ, _ := CreateReference(ctx, database, model.KindItemType, "Medical Supplies")
	class, _ := CreateReference(ctx, database, model.KindClassification, "Consumables")

	item, err := CreateItem(ctx, database, &model.Item{
		ItemName: "First Aid Kit", ItemTypeID: typ.ID, ItemClassificationID: class.ID,
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if item.ItemTypeName != "Medical Supplies" || item.ClassificationName != "Consumables" {
		t.Errorf("expected joined names, got %q / %q", item.ItemTypeName, item.ClassificationName)
	}

	found, _ := FindItem(ctx, database, "first aid kit")
	if found == nil || found.ID != item.ID {
		t.Errorf("expected FindItem to match %d, got %+v", item.ID, found)
	}

	items, _ := ListItems(ctx, database)
	if len(items) != 1 {
		t.Errorf("expected 1 item, got %d", len(items))
	}
}

func TestAssetNeedsItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	_, err := CreateAsset(ctx, database, &model.Asset{
		ItemID: 99, ItemTypeID: 1, ItemClassificationID: 1, DepartmentID: 1,
		EmployeeID: 1, EncoderID: 1, Quantity: 1,
		PurchaseDate: model.NewDate(mustDate(t, "2024-03-01")), TotalCost: decimal.NewFromInt(10),
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for dangling item, got %v", err)
	}
}

func TestAssetRoundTripAndItemInUse(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := CreateItem(ctx, database, &model.Item{ItemName: "Projector", ItemTypeID: 1, ItemClassificationID: 2})
	months := 36
	created, err := CreateAsset(ctx, database, &model.Asset{
		ItemID: item.ID, ItemTypeID: 1, ItemClassificationID: 2, DepartmentID: 4,
		EmployeeID: 11, EncoderID: 12, Quantity: 2, LifeSpanMonths: &months,
		PurchaseDate: model.NewDate(mustDate(t, "2024-03-01")),
		TotalCost:    decimal.RequireFromString("1250.50"),
		Condition:    "Good",
	})
	if err != nil {
		t.Fatalf("CreateAsset: %v", err)
	}
	if created.PurchaseDate.String() != "2024-03-01" {
		t.Errorf("expected purchase date 2024-03-01, got %s", created.PurchaseDate)
	}
	if !created.TotalCost.Equal(decimal.RequireFromString("1250.5")) {
		t.Errorf("expected total cost 1250.50, got %s", created.TotalCost)
	}
	if created.LifeSpanMonths == nil || *created.LifeSpanMonths != 36 {
		t.Errorf("expected 36 month life span, got %v", created.LifeSpanMonths)
	}

	if err := DeleteItem(ctx, database, item.ID); !errors.Is(err, ErrInUse) {
		t.Errorf("expected ErrInUse deleting an item with assets, got %v", err)
	}

	if err := DeleteAsset(ctx, database, created.ID); err != nil {
		t.Fatalf("DeleteAsset: %v", err)
	}
	if got, _ := GetItem(ctx, database, item.ID); got == nil {
		t.Error("deleting an asset must keep its item")
	}
}

func TestUsers(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	UpsertUser(ctx, database, &model.User{ID: 11, FullName: "Maria Santos", IsActive: true})
	UpsertUser(ctx, database, &model.User{ID: 12, FullName: "Ana Cruz", IsActive: false})
	if err := UpsertUser(ctx, database, &model.User{ID: 12, FullName: "Ana Cruz", Email: "ana@example.com", IsActive: true}); err != nil {
		t.Fatalf("UpsertUser: %v", err)
	}

	u, _ := FindUser(ctx, database, "maria  santos")
	if u == nil || u.ID != 11 {
		t.Fatalf("expected user 11, got %+v", u)
	}

	users, _ := ListUsers(ctx, database)
	if len(users) != 2 || users[0].FullName != "Ana Cruz" || users[0].Email != "ana@example.com" {
		t.Errorf("unexpected users %+v", users)
	}
}

func TestSQLStoreUsersReadOnly(t *testing.T) {
	s := NewSQL(db.NewTestDB(t))
	_, err := s.Create(context.Background(), model.KindUser, map[string]any{"fullName": "X"})
	if !errors.Is(err, ErrReadOnly) {
		t.Errorf("expected ErrReadOnly, got %v", err)
	}
}

func TestSQLStoreUpdateMerges(t *testing.T) {
	s := NewSQL(db.NewTestDB(t))
	ctx := context.Background()

	item, err := s.Create(ctx, model.KindItem, map[string]any{
		"itemName": "Laptop", "itemTypeId": int64(1), "itemClassificationId": int64(2),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := s.Update(ctx, model.KindItem, item.ID, map[string]any{"itemTypeId": int64(5)})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if id, _ := updated.Int("itemTypeId"); id != 5 {
		t.Errorf("expected itemTypeId 5, got %d", id)
	}
	if updated.Name() != "Laptop" {
		t.Errorf("expected name kept, got %q", updated.Name())
	}

	_, err = s.Update(ctx, model.KindItem, 999, map[string]any{"itemTypeId": int64(5)})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
