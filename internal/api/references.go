package api

import (
	"cmp"
	"net/http"
	"slices"
	"strings"

	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/assemble"
	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/model"
)

// ReferencesHandler serves one lookup collection: item types,
// classifications or departments.
type ReferencesHandler struct {
	Kind      model.Kind
	Assembler *assemble.Assembler
}

type reference struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// List handles GET, returning {id, name} rows sorted by name.
func (h *ReferencesHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Assembler.Store().List(r.Context(), h.Kind)
	if err != nil {
		writeError(w, h.Kind, err, "fetch "+string(h.Kind))
		return
	}
	out := make([]reference, 0, len(rows))
	for _, e := range rows {
		if name := e.Name(); e.ID > 0 && name != "" {
			out = append(out, reference{ID: e.ID, Name: name})
		}
	}
	slices.SortFunc(out, func(a, b reference) int {
		return cmp.Or(cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)), cmp.Compare(a.ID, b.ID))
	})
	jsonResponse(w, http.StatusOK, out)
}

// Create handles POST. The name may be sent under any of its aliases.
func (h *ReferencesHandler) Create(w http.ResponseWriter, r *http.Request) {
	raw, err := decodeRecord(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	res, err := h.Assembler.Save(r.Context(), h.Kind, 0, raw)
	if err != nil {
		writeError(w, h.Kind, err, "create "+string(h.Kind))
		return
	}
	jsonResponse(w, http.StatusCreated, reference{ID: res.Entity.ID, Name: res.Entity.Name()})
}

// Delete handles DELETE .../{id}.
func (h *ReferencesHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
