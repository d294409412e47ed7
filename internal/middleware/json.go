package middleware

import (
	"encoding/json"
	"net/http"
)

// writeJSON emits a JSON body with the given status. Encoding failures
// at this point cannot be reported to the client anymore.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}
