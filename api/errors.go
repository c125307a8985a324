package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/voxboard/voxboard/directory"
)

// maxBodySize caps request bodies; dashboard payloads are small.
const maxBodySize = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeOK(w http.ResponseWriter, status int, info string) {
	writeJSON(w, status, StatusResponse{Status: "ok", Info: info})
}

func writeError(w http.ResponseWriter, status int, info string) {
	writeJSON(w, status, StatusResponse{Status: "error", Info: info})
}

func mapError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, directory.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "User not found.")
	default:
		writeError(w, http.StatusInternalServerError, "Internal server error.")
	}
}

// decodeJSON decodes the request body into T, answering 400 on malformed
// input.
func decodeJSON[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var v T
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		writeError(w, http.StatusBadRequest, "Syntax error: "+err.Error())
		return v, false
	}
	return v, true
}
