package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"estate-hub/internal/model"
	"estate-hub/internal/service"
	"estate-hub/internal/session"
	"estate-hub/pkg/apierror"
)

type ContactHandler struct {
	contact  *service.ContactService
	sessions *session.Manager
}

func NewContactHandler(contact *service.ContactService, sessions *session.Manager) *ContactHandler {
	return &ContactHandler{contact: contact, sessions: sessions}
}

func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.ContactRequest

	// The contact page submits a plain form; API clients send JSON.
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			writeError(w, apierror.BadRequest("invalid form body", ""))
			return
		}
		payload = model.ContactRequest{
			Name:    r.PostFormValue("name"),
			Email:   r.PostFormValue("email"),
			Message: r.PostFormValue("message"),
		}
	} else if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.BadRequest("invalid JSON body", ""))
		return
	}

	message, err := h.contact.Submit(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, map[string]any{"id": message.ID, "received": true}, nil)
}

// Recent serves the latest contact messages to administrators.
func (h *ContactHandler) Recent(w http.ResponseWriter, r *http.Request) {
	isAdmin, adminID := h.sessions.VerifyAdmin(r.Context(), r)
	if !isAdmin || adminID == "" {
		writeUnauthorized(w)
		return
	}

	messages, err := h.contact.Recent(r.Context(), queryInt(r, "limit"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, messages, nil)
}
