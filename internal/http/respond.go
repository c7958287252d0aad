package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"moodledger/internal/core"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// respondError maps the domain error kinds onto HTTP statuses. Validation
// problems are the caller's fault; everything else is ours.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrValidation), errors.Is(err, core.ErrDegenerateGoal):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, core.ErrNothingToExport):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, core.ErrExtraction):
		slog.ErrorContext(r.Context(), "Text extraction failed", "error", err)
		writeError(w, http.StatusBadGateway, "could not read the scanned bill")
	case errors.Is(err, core.ErrClassification):
		slog.ErrorContext(r.Context(), "Classification failed", "error", err)
		writeError(w, http.StatusInternalServerError, "classification failed")
	default:
		slog.ErrorContext(r.Context(), "Request failed", "error", err, "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
