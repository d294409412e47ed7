package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"estate-hub/internal/model"
)

// Timeout caps handler time for the API subtree. The body handed to
// http.TimeoutHandler is rendered once, through the same envelope every
// other error takes.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	body, _ := json.Marshal(model.ErrorResponse("REQUEST_TIMEOUT", "request timed out", ""))

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, string(body))
	}
}
