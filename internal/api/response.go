package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/assemble"
	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/imaging"
	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/model"
	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/store"
	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/upstream"
)

const imageTooLargeMessage = "The image data is too large for the server to store. Please upload a smaller image (try under 1 MB or reduce dimensions)."

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]any{"message": message})
}

// decodeRecord decodes a JSON object request body. Numbers are kept as
// written so ids never pass through float64.
func decodeRecord(r *http.Request) (map[string]any, error) {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

var duplicateMessages = map[model.Kind]string{
	model.KindItemType:       "An item type with the same name already exists.",
	model.KindClassification: "A classification with the same name already exists.",
	model.KindDepartment:     "A department with the same name already exists.",
	model.KindItem:           "An item with the same name already exists.",
}

// writeError maps err onto a status code. what names the failed action for
// the generic messages.
func writeError(w http.ResponseWriter, kind model.Kind, err error, what string) {
	var (
		verr *assemble.ValidationError
		se   *upstream.StatusError
		ue   *store.UpstreamError
	)
	switch {
	case errors.As(err, &verr):
		jsonResponse(w, http.StatusBadRequest, validationBody(verr))
		return
	case errors.Is(err, store.ErrNotFound):
		jsonError(w, http.StatusNotFound, string(kind)+" not found")
		return
	case errors.Is(err, store.ErrReadOnly):
		jsonError(w, http.StatusMethodNotAllowed, string(kind)+" records are read-only")
		return
	case errors.Is(err, store.ErrDuplicate):
		msg, ok := duplicateMessages[kind]
		if !ok {
			msg = "A record with the same name already exists."
		}
		jsonError(w, http.StatusConflict, msg)
		return
	case errors.Is(err, store.ErrInUse):
		jsonError(w, http.StatusConflict, string(kind)+" is still used by other records")
		return
	case errors.Is(err, imaging.ErrTooLarge), errors.As(err, &se) && se.TooLarge():
		jsonError(w, http.StatusUnprocessableEntity, imageTooLargeMessage)
		return
	case errors.Is(err, store.ErrTimeout):
		slog.Error(what, "kind", kind, "error", err)
		jsonError(w, http.StatusGatewayTimeout, "The asset service took too long to answer.")
		return
	case errors.Is(err, context.Canceled):
		slog.Warn(what+" cancelled", "kind", kind, "error", err)
		jsonError(w, http.StatusServiceUnavailable, "The request was cancelled before it finished.")
		return
	case errors.As(err, &ue):
		slog.Error(what, "kind", kind, "error", err)
		jsonError(w, http.StatusBadGateway, "Failed to "+what+". Check backend logs for details.")
		return
	}
	slog.Error(what, "kind", kind, "error", err)
	jsonError(w, http.StatusInternalServerError, "Failed to "+what+". Check backend logs for details.")
}

func validationBody(verr *assemble.ValidationError) map[string]any {
	body := map[string]any{
		"message":             verr.Error(),
		"missingFields":       verr.MissingFields,
		"createdSideEntities": verr.Created,
	}
	if verr.MissingFields == nil {
		body["missingFields"] = []string{}
	}
	if verr.Created == nil {
		body["createdSideEntities"] = []store.Ref{}
	}
	if len(verr.References) > 0 {
		body["references"] = verr.References
	}
	if len(verr.Invalid) > 0 {
		body["invalid"] = verr.Invalid
	}
	return body
}
