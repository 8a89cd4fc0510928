package store

import (
	"context"
	"fmt"

	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/db"
	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/model"
)

// SQL is an EntityStore over the local SQL mirror.
type SQL struct {
	conn *db.Conn
}

// NewSQL returns an EntityStore backed by conn.
func NewSQL(conn *db.Conn) *SQL {
	return &SQL{conn: conn}
}

var _ EntityStore = (*SQL)(nil)

func (s *SQL) Find(ctx context.Context, kind model.Kind, name string) (*Entity, error) {
	switch {
	case kind.IsReference():
		r, err := FindReference(ctx, s.conn, kind, name)
		if err != nil || r == nil {
			return nil, wrap("find", kind, name, err)
		}
		return ReferenceEntity(kind, r), nil
	case kind == model.KindItem:
		it, err := FindItem(ctx, s.conn, name)
		if err != nil || it == nil {
			return nil, wrap("find", kind, name, err)
		}
		return ItemEntity(it), nil
	case kind == model.KindUser:
		u, err := FindUser(ctx, s.conn, name)
		if err != nil || u == nil {
			return nil, wrap("find", kind, name, err)
		}
		return UserEntity(u), nil
	}
	return nil, nil
}

func (s *SQL) Get(ctx context.Context, kind model.Kind, id int64) (*Entity, error) {
	var (
		e   *Entity
		err error
	)
	switch {
	case kind.IsReference():
		var r *model.Reference
		if r, err = GetReference(ctx, s.conn, kind, id); r != nil {
			e = ReferenceEntity(kind, r)
		}
	case kind == model.KindItem:
		var it *model.Item
		if it, err = GetItem(ctx, s.conn, id); it != nil {
			e = ItemEntity(it)
		}
	case kind == model.KindUser:
		var u *model.User
		if u, err = GetUser(ctx, s.conn, id); u != nil {
			e = UserEntity(u)
		}
	case kind == model.KindAsset:
		var a *model.Asset
		if a, err = GetAsset(ctx, s.conn, id); a != nil {
			e = AssetEntity(a)
		}
	default:
		err = fmt.Errorf("unknown kind %q", kind)
	}
	if err != nil {
		return nil, wrap("get", kind, "", err)
	}
	return e, nil
}

func (s *SQL) List(ctx context.Context, kind model.Kind) ([]Entity, error) {
	var out []Entity
	switch {
	case kind.IsReference():
		refs, err := ListReferences(ctx, s.conn, kind)
		if err != nil {
			return nil, wrap("list", kind, "", err)
		}
		for i := range refs {
			out = append(out, *ReferenceEntity(kind, &refs[i]))
		}
	case kind == model.KindItem:
		items, err := ListItems(ctx, s.conn)
		if err != nil {
			return nil, wrap("list", kind, "", err)
		}
		for i := range items {
			out = append(out, *ItemEntity(&items[i]))
		}
	case kind == model.KindUser:
		users, err := ListUsers(ctx, s.conn)
		if err != nil {
			return nil, wrap("list", kind, "", err)
		}
		for i := range users {
			out = append(out, *UserEntity(&users[i]))
		}
	case kind == model.KindAsset:
		assets, err := ListAssets(ctx, s.conn)
		if err != nil {
			return nil, wrap("list", kind, "", err)
		}
		for i := range assets {
			out = append(out, *AssetEntity(&assets[i]))
		}
	default:
		return nil, wrap("list", kind, "", fmt.Errorf("unknown kind %q", kind))
	}
	return out, nil
}

func (s *SQL) Create(ctx context.Context, kind model.Kind, fields map[string]any) (*Entity, error) {
	switch {
	case kind.ReadOnly():
		return nil, wrap("create", kind, "", ErrReadOnly)
	case kind.IsReference():
		var r model.Reference
		if err := applyReference(&r, fields); err != nil {
			return nil, wrap("create", kind, "", err)
		}
		created, err := CreateReference(ctx, s.conn, kind, r.Name)
		if err != nil {
			return nil, wrap("create", kind, r.Name, err)
		}
		return ReferenceEntity(kind, created), nil
	case kind == model.KindItem:
		var it model.Item
		if err := applyItem(&it, fields); err != nil {
			return nil, wrap("create", kind, "", err)
		}
		created, err := CreateItem(ctx, s.conn, &it)
		if err != nil {
			return nil, wrap("create", kind, it.ItemName, err)
		}
		return ItemEntity(created), nil
	case kind == model.KindAsset:
		a := model.Asset{Quantity: 1}
		if err := applyAsset(&a, fields); err != nil {
			return nil, wrap("create", kind, "", err)
		}
		created, err := CreateAsset(ctx, s.conn, &a)
		if err != nil {
			return nil, wrap("create", kind, "", err)
		}
		return AssetEntity(created), nil
	}
	return nil, wrap("create", kind, "", fmt.Errorf("unknown kind %q", kind))
}

// Update loads the row, applies the given fields and writes it back.
func (s *SQL) Update(ctx context.Context, kind model.Kind, id int64, fields map[string]any) (*Entity, error) {
	if kind.ReadOnly() {
		return nil, wrap("update", kind, "", ErrReadOnly)
	}

	current, err := s.Get(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, wrap("update", kind, "", ErrNotFound)
	}

	switch {
	case kind.IsReference():
		r := model.Reference{ID: id, Name: current.Name()}
		if err := applyReference(&r, fields); err != nil {
			return nil, wrap("update", kind, "", err)
		}
		if err := RenameReference(ctx, s.conn, kind, id, r.Name); err != nil {
			return nil, wrap("update", kind, r.Name, err)
		}
	case kind == model.KindItem:
		it := model.Item{ID: id}
		if err := applyItem(&it, current.Fields); err != nil {
			return nil, wrap("update", kind, "", err)
		}
		if err := applyItem(&it, fields); err != nil {
			return nil, wrap("update", kind, "", err)
		}
		if err := UpdateItem(ctx, s.conn, &it); err != nil {
			return nil, wrap("update", kind, it.ItemName, err)
		}
	case kind == model.KindAsset:
		a := model.Asset{ID: id}
		if err := applyAsset(&a, current.Fields); err != nil {
			return nil, wrap("update", kind, "", err)
		}
		if err := applyAsset(&a, fields); err != nil {
			return nil, wrap("update", kind, "", err)
		}
		if err := UpdateAsset(ctx, s.conn, &a); err != nil {
			return nil, wrap("update", kind, "", err)
		}
	}

	return s.Get(ctx, kind, id)
}

func (s *SQL) Delete(ctx context.Context, kind model.Kind, id int64) error {
	var err error
	switch {
	case kind.ReadOnly():
		err = ErrReadOnly
	case kind.IsReference():
		err = DeleteReference(ctx, s.conn, kind, id)
	case kind == model.KindItem:
		err = DeleteItem(ctx, s.conn, id)
	case kind == model.KindAsset:
		err = DeleteAsset(ctx, s.conn, id)
	default:
		err = fmt.Errorf("unknown kind %q", kind)
	}
	return wrap("delete", kind, "", err)
}
