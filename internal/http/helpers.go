package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"prestiti/internal/core"
	"prestiti/internal/log"
	"prestiti/internal/storage"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// validationErrors are the domain sentinels a request body can trip.
var validationErrors = []error{
	core.ErrEmptyName,
	core.ErrEmptyContact,
	core.ErrInvalidRegion,
	core.ErrInvalidPrincipal,
	core.ErrInvalidRate,
	core.ErrInvalidFrequency,
	core.ErrMissingClient,
	core.ErrMissingLoan,
	core.ErrInvalidAmount,
	core.ErrZeroStartDate,
	core.ErrEndBeforeStart,
}

func isValidationError(err error) bool {
	for _, sentinel := range validationErrors {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// writeServiceError maps ledger errors to HTTP statuses: validation failures
// are 422, missing rows 404, everything else 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case isValidationError(err):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		slog.ErrorContext(r.Context(), "Request failed",
			log.FieldError, err,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldComponent, log.ComponentHTTP)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// pathID parses the {id} segment of the route.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}
