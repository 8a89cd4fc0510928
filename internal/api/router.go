// Package api is the HTTP surface of the asset tracker.
package api

import (
	"net/http"

	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/assemble"
	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/blob"
	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/model"
)

// Deps are what the router needs. Uploads, when set, serves stored photos
// below /uploads/.
type Deps struct {
	Assembler *assemble.Assembler
	Blobs     blob.Store
	Uploads   http.Handler
	MaxUpload int64
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	usersHandler := &UsersHandler{Store: d.Assembler.Store()}
	itemsHandler := &RecordsHandler{Kind: model.KindItem, Assembler: d.Assembler, Blobs: d.Blobs, MaxUpload: d.MaxUpload}
	assetsHandler := &RecordsHandler{Kind: model.KindAsset, Assembler: d.Assembler, Blobs: d.Blobs, MaxUpload: d.MaxUpload}
	typesHandler := &ReferencesHandler{Kind: model.KindItemType, Assembler: d.Assembler}
	classesHandler := &ReferencesHandler{Kind: model.KindClassification, Assembler: d.Assembler}
	deptsHandler := &ReferencesHandler{Kind: model.KindDepartment, Assembler: d.Assembler}
	uploadHandler := &UploadHandler{Blobs: d.Blobs, MaxUpload: d.MaxUpload}
	discardHandler := &DiscardHandler{Assembler: d.Assembler}

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		jsonResponse(w, http.StatusOK, map[string]bool{"ok": true})
	})

	mux.HandleFunc("GET /api/users", usersHandler.List)

	mux.HandleFunc("GET /api/item-types", typesHandler.List)
	mux.HandleFunc("POST /api/item-types", typesHandler.Create)
	mux.HandleFunc("DELETE /api/item-types/{id}", typesHandler.Delete)

	for _, p := range []string{"/api/classifications", "/api/item-classifications"} {
		mux.HandleFunc("GET "+p, classesHandler.List)
		mux.HandleFunc("POST "+p, classesHandler.Create)
		mux.HandleFunc("DELETE "+p+"/{id}", classesHandler.Delete)
	}

	mux.HandleFunc("GET /api/departments", deptsHandler.List)
	mux.HandleFunc("POST /api/departments", deptsHandler.Create)

	mux.HandleFunc("GET /api/items", itemsHandler.List)
	mux.HandleFunc("POST /api/items", itemsHandler.Create)
	mux.HandleFunc("GET /api/items/{id}", itemsHandler.Get)
	mux.HandleFunc("PUT /api/items/{id}", itemsHandler.Update)
	mux.HandleFunc("DELETE /api/items/{id}", itemsHandler.Delete)

	mux.HandleFunc("GET /api/assets", assetsHandler.List)
	mux.HandleFunc("POST /api/assets", assetsHandler.Create)
	mux.HandleFunc("GET /api/assets/{id}", assetsHandler.Get)
	mux.HandleFunc("PUT /api/assets/{id}", assetsHandler.Update)
	mux.HandleFunc("DELETE /api/assets/{id}", assetsHandler.Delete)

	mux.HandleFunc("POST /api/discard", discardHandler.Discard)
	if d.Blobs != nil {
		mux.HandleFunc("POST /api/upload", uploadHandler.Upload)
	}
	if d.Uploads != nil {
		mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", d.Uploads))
	}

	// Inline base64 photos make asset bodies large.
	return maxBody(35<<20, mux)
}
