// Package assemble turns one loosely keyed input record into a fully linked,
// validated record ready to persist.
package assemble

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/alias"
	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/model"
	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/normalize"
	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/resolve"
	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/store"
)

// Notice codes.
const (
	ItemRelinked   = "ItemRelinked"
	AmbiguousAlias = "AmbiguousAlias"
)

// Notice is a non-fatal remark about an assembly.
type Notice struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// ItemRef is the item behind an asset.
type ItemRef struct {
	ID      int64 `json:"id"`
	Created bool  `json:"created"`
}

// Assembled is the outcome of one assembly. CreatedSideEntities lists the
// reference entities (item types, classifications, departments) created on
// the way, in creation order. The item behind an asset is reported in Item,
// never as a side entity.
type Assembled struct {
	Kind                model.Kind        `json:"kind"`
	Record              *normalize.Record `json:"-"`
	CreatedSideEntities []store.Ref       `json:"createdSideEntities"`
	Item                *ItemRef          `json:"item,omitempty"`
	Notices             []Notice          `json:"notices,omitempty"`

	// Entity is the stored primary record, set by Save.
	Entity *store.Entity `json:"-"`
}

// Assembler coordinates normalisation and reference resolution.
type Assembler struct {
	norm     *normalize.Normalizer
	resolver *resolve.Resolver
	store    store.EntityStore
}

// New returns an Assembler writing through the resolver's store.
func New(n *normalize.Normalizer, r *resolve.Resolver) *Assembler {
	return &Assembler{norm: n, resolver: r, store: r.Store()}
}

// Store returns the store records are written to.
func (a *Assembler) Store() store.EntityStore {
	return a.store
}

// Table returns the alias table records are read through.
func (a *Assembler) Table() *alias.Table {
	return a.norm.Table()
}

// Assemble normalises raw and resolves its references, creating missing
// reference entities and, for an asset named by item name only, the item.
//
// Every missing required field and unresolvable reference is reported at
// once in a *ValidationError. Entities created before a failure are not
// removed; on error the returned Assembled, when non-nil, lists them.
func (a *Assembler) Assemble(ctx context.Context, kind model.Kind, raw map[string]any) (*Assembled, error) {
	return a.assemble(ctx, kind, raw, nil)
}

type linkOutcome struct {
	res     resolve.Result
	ok      bool
	missing *resolve.MissingReferenceError
}

func (a *Assembler) assemble(ctx context.Context, kind model.Kind, raw map[string]any, base *store.Entity) (*Assembled, error) {
	if kind.ReadOnly() {
		return nil, fmt.Errorf("assembling %s: %w", kind, store.ErrReadOnly)
	}
	tbl := a.norm.Table()
	if len(tbl.Fields(kind)) == 0 {
		return nil, fmt.Errorf("assembling: unknown kind %q", kind)
	}

	rec := a.norm.Normalize(kind, raw)
	asked := a.requestedItemLinks(kind, rec)
	if base != nil {
		a.fillFromBase(kind, rec, base)
	}

	out := &Assembled{Kind: kind, Record: rec, CreatedSideEntities: []store.Ref{}}
	for _, c := range rec.Conflicts {
		out.Notices = append(out.Notices, Notice{
			Code:    AmbiguousAlias,
			Field:   c.Field,
			Message: fmt.Sprintf("%s given as %v by %v; kept %v", c.Field, c.Values, c.Aliases, c.Values[0]),
		})
	}

	links := tbl.Links(kind)
	outcomes := make([]linkOutcome, len(links))
	var (
		item        *store.Entity
		itemMissing *resolve.MissingReferenceError
	)

	// A failed link must not cancel its siblings: their creates are still
	// reported in CreatedSideEntities.
	var g errgroup.Group
	for i, l := range links {
		if l.Target == model.KindItem {
			g.Go(func() error {
				var err error
				item, itemMissing, err = a.lookupItem(ctx, rec)
				return err
			})
			continue
		}
		if rec.Has(l.IDField) {
			continue
		}
		name := rec.String(l.NameField)
		if name == "" {
			continue
		}
		g.Go(func() error {
			res, err := a.resolver.Resolve(ctx, resolve.Request{Kind: l.Target, Field: l.IDField, Name: name})
			var missing *resolve.MissingReferenceError
			if errors.As(err, &missing) {
				outcomes[i].missing = missing
				return nil
			}
			if err != nil {
				return err
			}
			outcomes[i] = linkOutcome{res: res, ok: true}
			return nil
		})
	}
	waitErr := g.Wait()

	verr := &ValidationError{Kind: kind, Invalid: rec.Rejected}
	problem := make(map[string]bool)
	for _, r := range rec.Rejected {
		problem[r.Field] = true
	}
	for i, l := range links {
		o := outcomes[i]
		switch {
		case o.ok:
			rec.Set(l.IDField, o.res.ID)
			if o.res.Created {
				out.CreatedSideEntities = append(out.CreatedSideEntities, store.Ref{Kind: l.Target, ID: o.res.ID})
			}
		case o.missing != nil:
			verr.References = append(verr.References, o.missing)
			problem[l.IDField] = true
		}
	}
	if waitErr != nil {
		return out, fmt.Errorf("assembling %s: %w", kind, waitErr)
	}

	pendingItem := false
	if kind == model.KindAsset {
		switch {
		case item != nil:
			adoptItem(rec, item)
		case itemMissing != nil:
			verr.References = append(verr.References, itemMissing)
			problem["itemId"] = true
		case !rec.Has("itemId") && rec.String("itemName") != "":
			pendingItem = true
		}

		if !rec.Has("quantity") {
			rec.Set("quantity", int64(1))
		} else if q, _ := rec.Int("quantity"); q < 1 {
			verr.Invalid = append(verr.Invalid, normalize.Rejection{Field: "quantity", Alias: "quantity", Value: q, Reason: "must be at least 1"})
		}
	}

	for _, f := range tbl.Required(kind) {
		if rec.Has(f) || problem[f] || (f == "itemId" && pendingItem) {
			continue
		}
		verr.MissingFields = append(verr.MissingFields, f)
	}
	if !verr.empty() {
		verr.Created = out.CreatedSideEntities
		return out, verr
	}

	if kind == model.KindAsset {
		created := false
		if pendingItem {
			var err error
			item, created, err = a.createItem(ctx, rec)
			if err != nil {
				return out, fmt.Errorf("assembling %s: %w", kind, err)
			}
			rec.Set("itemId", item.ID)
		}
		if item != nil {
			out.Item = &ItemRef{ID: item.ID, Created: created}
			if !created {
				notice, err := a.relinkItem(ctx, rec, item, asked)
				if err != nil {
					return out, fmt.Errorf("assembling %s: %w", kind, err)
				}
				if notice != nil {
					out.Notices = append(out.Notices, *notice)
				}
			}
		}
	}

	return out, nil
}

// requestedItemLinks reports, per item link field, whether the record
// itself names a value for it. Only those may relink an existing item.
func (a *Assembler) requestedItemLinks(kind model.Kind, rec *normalize.Record) map[string]bool {
	if kind != model.KindAsset {
		return nil
	}
	asked := make(map[string]bool)
	for _, l := range a.norm.Table().Links(model.KindItem) {
		asked[l.IDField] = rec.Has(l.IDField) || rec.String(l.NameField) != ""
	}
	return asked
}

// fillFromBase copies stored values into fields the record leaves open, so
// an update only needs to carry what changes. A link given by name is left
// for resolution. When the record picks an item, the item's name and links
// come from that item rather than from the stored asset.
func (a *Assembler) fillFromBase(kind model.Kind, rec *normalize.Record, base *store.Entity) {
	tbl := a.norm.Table()
	skip := map[string]bool{"id": true}
	if kind == model.KindAsset && (rec.Has("itemId") || rec.String("itemName") != "") {
		skip["itemName"] = true
		for _, l := range tbl.Links(model.KindItem) {
			skip[l.IDField], skip[l.NameField] = true, true
		}
	}
	for _, f := range tbl.Fields(kind) {
		if skip[f.Name] || rec.Has(f.Name) || rec.Cleared(f.Name) {
			continue
		}
		if l, ok := tbl.LinkFor(kind, f.Name); ok && rec.String(l.NameField) != "" {
			continue
		}
		if v, ok := base.Fields[f.Name]; ok && v != nil {
			rec.Set(f.Name, v)
		}
	}
}

func (a *Assembler) lookupItem(ctx context.Context, rec *normalize.Record) (*store.Entity, *resolve.MissingReferenceError, error) {
	if id, ok := rec.Int("itemId"); ok {
		e, err := a.store.Get(ctx, model.KindItem, id)
		if err != nil {
			return nil, nil, err
		}
		if e == nil {
			return nil, &resolve.MissingReferenceError{Kind: model.KindItem, Field: "itemId", ID: id}, nil
		}
		return e, nil, nil
	}
	if name := rec.String("itemName"); name != "" {
		e, err := a.store.Find(ctx, model.KindItem, name)
		return e, nil, err
	}
	return nil, nil, nil
}

// adoptItem links the record to an existing item and takes the item's type
// and classification where the record names none.
func adoptItem(rec *normalize.Record, item *store.Entity) {
	rec.Set("itemId", item.ID)
	if rec.String("itemName") == "" {
		rec.Set("itemName", item.Name())
	}
	for _, f := range []string{"itemTypeId", "itemClassificationId"} {
		if rec.Has(f) {
			continue
		}
		if v, ok := item.Int(f); ok && v > 0 {
			rec.Set(f, v)
		}
	}
}

func (a *Assembler) createItem(ctx context.Context, rec *normalize.Record) (*store.Entity, bool, error) {
	name := rec.String("itemName")
	typeID, _ := rec.Int("itemTypeId")
	classID, _ := rec.Int("itemClassificationId")

	e, err := a.store.Create(ctx, model.KindItem, map[string]any{
		"itemName":             name,
		"itemTypeId":           typeID,
		"itemClassificationId": classID,
	})
	if err == nil {
		slog.Info("item created", "name", name, "id", e.ID)
		return e, true, nil
	}
	if !errors.Is(err, store.ErrDuplicate) {
		return nil, false, err
	}

	found, ferr := a.store.Find(ctx, model.KindItem, name)
	if ferr != nil {
		return nil, false, ferr
	}
	if found == nil {
		return nil, false, &resolve.DuplicateRaceError{Kind: model.KindItem, Name: name, Err: err}
	}
	return found, false, nil
}

// relinkItem points an existing item at the type and classification the
// record asked for when they differ. Links the record did not name keep the
// item's values. Last writer wins.
func (a *Assembler) relinkItem(ctx context.Context, rec *normalize.Record, item *store.Entity, asked map[string]bool) (*Notice, error) {
	oldType, _ := item.Int("itemTypeId")
	oldClass, _ := item.Int("itemClassificationId")
	typeID, classID := oldType, oldClass
	if asked["itemTypeId"] {
		typeID, _ = rec.Int("itemTypeId")
	}
	if asked["itemClassificationId"] {
		classID, _ = rec.Int("itemClassificationId")
	}
	if typeID == oldType && classID == oldClass {
		return nil, nil
	}

	if _, err := a.store.Update(ctx, model.KindItem, item.ID, map[string]any{
		"itemTypeId":           typeID,
		"itemClassificationId": classID,
	}); err != nil {
		return nil, fmt.Errorf("relinking item %d: %w", item.ID, err)
	}
	slog.Info("item relinked", "id", item.ID, "itemTypeId", typeID, "itemClassificationId", classID,
		"previousItemTypeId", oldType, "previousItemClassificationId", oldClass)

	return &Notice{
		Code:  ItemRelinked,
		Field: "itemId",
		Message: fmt.Sprintf("item %d relinked from type %d / classification %d to type %d / classification %d",
			item.ID, oldType, oldClass, typeID, classID),
	}, nil
}

// Save assembles raw and writes the primary record: a create when id is
// zero, otherwise an update of the stored record merged with raw. Like
// Assemble, on error the returned Assembled lists entities already created.
func (a *Assembler) Save(ctx context.Context, kind model.Kind, id int64, raw map[string]any) (*Assembled, error) {
	if kind.ReadOnly() {
		return nil, fmt.Errorf("saving %s: %w", kind, store.ErrReadOnly)
	}

	var base *store.Entity
	if id > 0 {
		e, err := a.store.Get(ctx, kind, id)
		if err != nil {
			return nil, fmt.Errorf("loading %s %d: %w", kind, id, err)
		}
		if e == nil {
			return nil, fmt.Errorf("%s %d: %w", kind, id, store.ErrNotFound)
		}
		base = e
	}

	out, err := a.assemble(ctx, kind, raw, base)
	if err != nil {
		return out, err
	}

	fields := a.persistable(kind, out.Record)
	var e *store.Entity
	if id > 0 {
		e, err = a.store.Update(ctx, kind, id, fields)
	} else {
		e, err = a.store.Create(ctx, kind, fields)
	}
	if err != nil {
		return out, fmt.Errorf("saving %s: %w", kind, err)
	}
	out.Entity = e
	slog.Info("record saved", "kind", kind, "id", e.ID, "sideEntities", len(out.CreatedSideEntities))
	return out, nil
}

// persistable drops the id and the companion name fields of links.
func (a *Assembler) persistable(kind model.Kind, rec *normalize.Record) map[string]any {
	tbl := a.norm.Table()
	companion := make(map[string]bool)
	for _, l := range tbl.Links(kind) {
		companion[l.NameField] = true
	}

	fields := make(map[string]any)
	for _, f := range tbl.Fields(kind) {
		if f.Name == "id" || companion[f.Name] {
			continue
		}
		if v, ok := rec.Get(f.Name); ok {
			fields[f.Name] = v
		} else if rec.Cleared(f.Name) {
			fields[f.Name] = nil
		}
	}
	return fields
}

// Discard deletes entities in reverse creation order. Rows already gone are
// skipped; other failures are joined.
func (a *Assembler) Discard(ctx context.Context, created []store.Ref) error {
	var errs []error
	for i := len(created) - 1; i >= 0; i-- {
		ref := created[i]
		err := a.store.Delete(ctx, ref.Kind, ref.ID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			errs = append(errs, fmt.Errorf("discarding %s %d: %w", ref.Kind, ref.ID, err))
			continue
		}
		slog.Info("discarded", "kind", ref.Kind, "id", ref.ID)
	}
	return errors.Join(errs...)
}
