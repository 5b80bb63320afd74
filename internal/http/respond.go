package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"daybook/internal/core"
	"daybook/internal/ledger"
	applog "daybook/internal/log"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError maps domain errors onto HTTP statuses. Unknown errors are
// never echoed to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"

	switch {
	case errors.Is(err, ledger.ErrNotFound),
		errors.Is(err, core.ErrCategoryNotFound),
		errors.Is(err, core.ErrItemNotFound):
		status = http.StatusNotFound
		msg = err.Error()
	case errors.Is(err, core.ErrDuplicateName):
		status = http.StatusConflict
		msg = err.Error()
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrIndexOutOfRange),
		errors.Is(err, core.ErrInsufficientStock),
		errors.Is(err, core.ErrInsufficientEmpty),
		core.IsValidationError(err):
		status = http.StatusUnprocessableEntity
		msg = err.Error()
	}

	if status == http.StatusInternalServerError {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldError, err)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

// decodeJSON parses the request body into v with unknown fields
// rejected, so typos fail loudly instead of silently dropping data.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return false
	}
	return true
}
