package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// respondWithJSON writes a JSON response body with the given status.
func respondWithJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to encode response", err)
	}
}

// decodeJSON reads a request body into dst, capping its size.
func decodeJSON(r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
