package api

import (
	"encoding/json"
	"log"
	"net/http"

	"nodepanel/pkg/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to write response: %v", err)
	}
}

type errorBody struct {
	Type    apperr.Type `json:"type"`
	Message string      `json:"message"`
}

// writeError maps application errors to HTTP statuses: validation 400,
// not found 404, forbidden 403, everything else 500.
func writeError(w http.ResponseWriter, err error) {
	appErr, ok := err.(*apperr.Error)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorBody{Type: apperr.Internal, Message: "unexpected failure"})
		return
	}
	status := http.StatusInternalServerError
	switch appErr.Type {
	case apperr.Validation:
		status = http.StatusBadRequest
	case apperr.NotFound:
		status = http.StatusNotFound
	case apperr.Forbidden:
		status = http.StatusForbidden
	}
	writeJSON(w, status, errorBody{Type: appErr.Type, Message: appErr.Message})
}
