package api

import (
	"cmp"
	"net/http"
	"slices"
	"strings"

	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/model"
	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/store"
)

// UsersHandler lists the people assets can be assigned to.
type UsersHandler struct {
	Store store.EntityStore
}

// List handles GET /api/users: active users only, by full name.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.Store.List(r.Context(), model.KindUser)
	if err != nil {
		writeError(w, model.KindUser, err, "connect to user service")
		return
	}
	active := make([]store.Entity, 0, len(users))
	for _, u := range users {
		if ok, _ := u.Fields["isActive"].(bool); ok {
			active = append(active, u)
		}
	}
	slices.SortFunc(active, func(a, b store.Entity) int {
		return cmp.Compare(strings.ToLower(a.Name()), strings.ToLower(b.Name()))
	})

	out := make([]map[string]any, len(active))
	for i := range active {
		out[i] = active[i].Map()
	}
	jsonResponse(w, http.StatusOK, out)
}
