package handler

import (
	"context"
	"log/slog"
	"net/http"

	"estate-hub/pkg/apierror"
)

// Pinger is the slice of the database the health check needs.
type Pinger interface {
	Health(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// Check reports readiness: the process is up and the database answers.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Health(r.Context()); err != nil {
		slog.Error("health check failed", "error", err)
		writeError(w, apierror.New("SERVICE_UNAVAILABLE", "database unreachable", "", http.StatusServiceUnavailable))
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"status": "ok"}, nil)
}
