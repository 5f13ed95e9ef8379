package utils

import (
	"encoding/json"
	"net/http"
)

// RespondJSON writes v as a JSON body with the given status code.
func RespondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// RespondError writes the standard {"message": ...} error body. No
// internal detail beyond the message ever reaches the client.
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, map[string]string{"message": message})
}
