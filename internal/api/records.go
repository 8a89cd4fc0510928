package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/assemble"
	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/blob"
	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/imaging"
	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/model"
)

// RecordsHandler serves items and assets, the kinds written through the
// assembler.
type RecordsHandler struct {
	Kind      model.Kind
	Assembler *assemble.Assembler
	Blobs     blob.Store
	MaxUpload int64
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

// List handles GET /api/{items,assets}.
func (h *RecordsHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Assembler.Store().List(r.Context(), h.Kind)
	if err != nil {
		writeError(w, h.Kind, err, "list "+string(h.Kind))
		return
	}
	out := make([]map[string]any, len(rows))
	for i := range rows {
		out[i] = rows[i].Map()
	}
	h.enrich(r.Context(), out)
	jsonResponse(w, http.StatusOK, out)
}

// Get handles GET /api/{items,assets}/{id}.
func (h *RecordsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid id")
		return
	}
	e, err := h.Assembler.Store().Get(r.Context(), h.Kind, id)
	if err != nil {
		writeError(w, h.Kind, err, "get "+string(h.Kind))
		return
	}
	if e == nil {
		jsonError(w, http.StatusNotFound, string(h.Kind)+" not found")
		return
	}
	out := []map[string]any{e.Map()}
	h.enrich(r.Context(), out)
	jsonResponse(w, http.StatusOK, out[0])
}

// Create handles POST /api/{items,assets}.
func (h *RecordsHandler) Create(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, 0)
}

// Update handles PUT /api/{items,assets}/{id}.
func (h *RecordsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid id")
		return
	}
	h.save(w, r, id)
}

func (h *RecordsHandler) save(w http.ResponseWriter, r *http.Request, id int64) {
	raw, err := decodeRecord(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.storeInlineImages(r.Context(), raw); err != nil {
		writeError(w, h.Kind, err, "store image")
		return
	}

	res, err := h.Assembler.Save(r.Context(), h.Kind, id, raw)
	if err != nil {
		writeError(w, h.Kind, err, "save "+string(h.Kind))
		return
	}

	status, verb := http.StatusCreated, "created"
	if id > 0 {
		status, verb = http.StatusOK, "updated"
	}
	data := []map[string]any{res.Entity.Map()}
	h.enrich(r.Context(), data)
	jsonResponse(w, status, map[string]any{
		"message":             string(h.Kind) + " " + verb + " successfully",
		"data":                data[0],
		"createdSideEntities": res.CreatedSideEntities,
		"item":                res.Item,
		"notices":             res.Notices,
	})
}

// Delete handles DELETE /api/{items,assets}/{id}.
func (h *RecordsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.Assembler.Store().Delete(r.Context(), h.Kind, id); err != nil {
		writeError(w, h.Kind, err, "delete "+string(h.Kind))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// storeInlineImages moves base64 photos embedded in the record into the
// blob store and puts the URL in their place. The asset table cannot hold
// large images.
func (h *RecordsHandler) storeInlineImages(ctx context.Context, raw map[string]any) error {
	if h.Blobs == nil {
		return nil
	}
	for _, a := range h.Assembler.Table().AliasesFor(h.Kind, "imageRef") {
		s, ok := raw[a.Path].(string)
		if !ok || !imaging.IsDataURL(s) {
			continue
		}
		img, err := imaging.DecodeDataURL(s, h.MaxUpload)
		if err != nil {
			return err
		}
		url, err := h.Blobs.Put(ctx, blob.NewKey(imaging.Ext), img.MIME, img.Data)
		if err != nil {
			return err
		}
		raw[a.Path] = url
	}
	return nil
}

// enrich adds the display names of linked entities to each row where the
// store left them out. Lookup failures leave the names out.
func (h *RecordsHandler) enrich(ctx context.Context, rows []map[string]any) {
	links := h.Assembler.Table().Links(h.Kind)
	var targets []model.Kind
	for _, l := range links {
		missing := slices.ContainsFunc(rows, func(row map[string]any) bool { return row[l.NameField] == nil })
		if missing && !slices.Contains(targets, l.Target) {
			targets = append(targets, l.Target)
		}
	}
	if len(targets) == 0 {
		return
	}

	var mu sync.Mutex
	names := make(map[model.Kind]map[int64]string, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	for _, k := range targets {
		g.Go(func() error {
			all, err := h.Assembler.Store().List(gctx, k)
			if err != nil {
				slog.Warn("loading names", "kind", k, "error", err)
				return nil
			}
			m := make(map[int64]string, len(all))
			for _, e := range all {
				m[e.ID] = e.Name()
			}
			mu.Lock()
			names[k] = m
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	for _, l := range links {
		m := names[l.Target]
		for _, row := range rows {
			if row[l.NameField] != nil {
				continue
			}
			if id, ok := row[l.IDField].(int64); ok {
				if name, ok := m[id]; ok {
					row[l.NameField] = name
				}
			}
		}
	}
}

// parseKindParam reads a kind from JSON, accepting collection spellings.
func parseKindParam(s string) (model.Kind, error) {
	k, ok := model.ParseKind(s)
	if !ok {
		return "", errors.New("unknown kind " + strconv.Quote(strings.TrimSpace(s)))
	}
	return k, nil
}
