package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"estate-hub/internal/model"
)

func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if recovered := recover(); recovered != nil {
				slog.Error("panic recovered",
					"method", r.Method,
					"path", r.URL.Path,
					"error", fmt.Sprintf("%v", recovered),
					"stack", string(debug.Stack()))
				writeJSON(w, http.StatusInternalServerError,
					model.ErrorResponse("INTERNAL_ERROR", "Unexpected server error", ""))
			}
		}()

		next.ServeHTTP(w, r)
	})
}
