package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"clientportal/internal/portal"
)

// maxJSONBody caps admin request bodies.
const maxJSONBody = 1 << 20

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encode response failed", "error", err)
	}
}

// writeError writes {"error": msg}.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeJSON reads a single JSON object from the request body into v.
// Unknown fields are rejected so typos in patches do not silently no-op.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if dec.More() {
		return errors.New("invalid JSON body: trailing data")
	}
	return nil
}

// idParam parses a UUID route parameter. On failure it writes a 400 and
// returns false.
func idParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// errorBody is the JSON shape of service failures.
type errorBody struct {
	Error     string `json:"error"`
	Field     string `json:"field,omitempty"`
	Completed int    `json:"completed,omitempty"`
	Total     int    `json:"total,omitempty"`
}

// writeServiceError maps portal errors onto HTTP statuses. Partial
// mutations carry the result of the steps that did succeed.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, partial any) {
	var (
		verr *portal.ValidationError
		perr *portal.PartialMutationError
	)
	switch {
	case errors.As(err, &perr):
		slog.Error("partial mutation", "op", perr.Op, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusMultiStatus, map[string]any{
			"result": partial,
			"error": errorBody{
				Error:     "operation partially applied",
				Completed: perr.Completed,
				Total:     perr.Total,
			},
		})
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: verr.Msg, Field: verr.Field})
	case errors.Is(err, portal.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, portal.ErrConflict):
		writeError(w, http.StatusConflict, "conflict")
	default:
		slog.Error("request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
