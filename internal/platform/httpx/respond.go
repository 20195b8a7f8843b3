// Package httpx provides HTTP request/response utilities.
package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/aegis-iam/aegis-iam/internal/shared"
)

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Error renders err using the shared taxonomy as {"error": <message>}.
// Internal detail never reaches the client.
func Error(w http.ResponseWriter, err error) {
	JSON(w, shared.StatusOf(err), map[string]string{"error": shared.MessageOf(err)})
}

// DecodeJSON decodes the JSON request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}
