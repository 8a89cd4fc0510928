package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/assemble"
	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/blob"
	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/imaging"
	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/model"
	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/store"
)

// UploadHandler accepts asset photos.
type UploadHandler struct {
	Blobs     blob.Store
	MaxUpload int64
}

// Upload handles POST /api/upload with a multipart "image" field.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	limit := h.MaxUpload
	if limit <= 0 {
		limit = imaging.DefaultMaxBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit+1<<20)

	file, _, err := r.FormFile("image")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			jsonError(w, http.StatusRequestEntityTooLarge, "Uploaded image is too large. Please use an image under 20 MB.")
			return
		}
		jsonError(w, http.StatusBadRequest, "No file was uploaded.")
		return
	}
	defer file.Close()

	img, err := imaging.Process(file, limit)
	if errors.Is(err, imaging.ErrTooLarge) {
		jsonError(w, http.StatusRequestEntityTooLarge, "Uploaded image is too large. Please use an image under 20 MB.")
		return
	}
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	url, err := h.Blobs.Put(r.Context(), blob.NewKey(imaging.Ext), img.MIME, img.Data)
	if err != nil {
		slog.Error("storing upload", "error", err)
		jsonError(w, http.StatusInternalServerError, "Failed to store the image.")
		return
	}
	url = absoluteURL(r, url)
	slog.Info("file uploaded", "url", url, "bytes", len(img.Data))
	jsonResponse(w, http.StatusOK, map[string]string{"url": url})
}

// absoluteURL prefixes a host-relative URL with the request's scheme and
// host.
func absoluteURL(r *http.Request, url string) string {
	if !strings.HasPrefix(url, "/") {
		return url
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if p := r.Header.Get("X-Forwarded-Proto"); p != "" {
		scheme = p
	}
	return scheme + "://" + r.Host + url
}

// DiscardHandler removes entities created by an abandoned form.
type DiscardHandler struct {
	Assembler *assemble.Assembler
}

type discardRequest struct {
	Created []struct {
		Kind string `json:"kind"`
		ID   int64  `json:"id"`
	} `json:"created"`
}

// Discard handles POST /api/discard. Only reference kinds and items can be
// discarded.
func (h *DiscardHandler) Discard(w http.ResponseWriter, r *http.Request) {
	var req discardRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	refs := make([]store.Ref, 0, len(req.Created))
	for _, c := range req.Created {
		k, err := parseKindParam(c.Kind)
		if err != nil {
			jsonError(w, http.StatusBadRequest, err.Error())
			return
		}
		if !k.IsReference() && k != model.KindItem {
			jsonError(w, http.StatusBadRequest, string(k)+" records cannot be discarded")
			return
		}
		if c.ID <= 0 {
			jsonError(w, http.StatusBadRequest, "invalid id")
			return
		}
		refs = append(refs, store.Ref{Kind: k, ID: c.ID})
	}

	if err := h.Assembler.Discard(r.Context(), refs); err != nil {
		// Entities other records already use stay; report which.
		if errors.Is(err, store.ErrInUse) {
			jsonError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, "", err, "discard")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"discarded": len(refs)})
}
