package handler

import (
	"net/http"

	"estate-hub/internal/model"
	"estate-hub/internal/service"
	"estate-hub/internal/session"
)

// ActivityHandler exposes the audit trail to the admin log viewer.
type ActivityHandler struct {
	activity *service.ActivityRecorder
	sessions *session.Manager
}

func NewActivityHandler(activity *service.ActivityRecorder, sessions *session.Manager) *ActivityHandler {
	return &ActivityHandler{activity: activity, sessions: sessions}
}

func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	isAdmin, adminID := h.sessions.VerifyAdmin(r.Context(), r)
	if !isAdmin || adminID == "" {
		writeUnauthorized(w)
		return
	}

	query := model.ActivityQuery{
		UserID:   r.URL.Query().Get("user_id"),
		Action:   r.URL.Query().Get("action"),
		ItemType: r.URL.Query().Get("item_type"),
		From:     r.URL.Query().Get("from"),
		To:       r.URL.Query().Get("to"),
		Page:     queryInt(r, "page"),
		Limit:    queryInt(r, "limit"),
	}

	activities, meta, err := h.activity.Query(r.Context(), query)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, activities, &meta)
}
