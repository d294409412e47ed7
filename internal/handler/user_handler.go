package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"estate-hub/internal/middleware"
	"estate-hub/internal/model"
	"estate-hub/internal/service"
	"estate-hub/internal/session"
	"estate-hub/pkg/apierror"
)

// UserHandler serves the admin panel's user management API. Every
// route verifies the admin role from the signed token before doing
// anything.
type UserHandler struct {
	users    *service.UserService
	sessions *session.Manager
	activity *service.ActivityRecorder
}

func NewUserHandler(users *service.UserService, sessions *session.Manager, activity *service.ActivityRecorder) *UserHandler {
	return &UserHandler{users: users, sessions: sessions, activity: activity}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	isAdmin, adminID := h.sessions.VerifyAdmin(r.Context(), r)
	if !isAdmin || adminID == "" {
		writeUnauthorized(w)
		return
	}

	users, err := h.users.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, users, nil)
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	isAdmin, adminID := h.sessions.VerifyAdmin(r.Context(), r)
	if !isAdmin || adminID == "" {
		writeUnauthorized(w)
		return
	}

	var payload model.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.BadRequest("invalid JSON body", ""))
		return
	}

	user, err := h.users.Create(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	h.activity.LogUser(adminID, model.ActionCreate, user.ID, user.Email, middleware.ClientIP(r))
	writeSuccess(w, http.StatusCreated, user, nil)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	isAdmin, adminID := h.sessions.VerifyAdmin(r.Context(), r)
	if !isAdmin || adminID == "" {
		writeUnauthorized(w)
		return
	}

	var payload model.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.BadRequest("invalid JSON body", ""))
		return
	}

	user, err := h.users.Update(r.Context(), chi.URLParam(r, "id"), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	h.activity.LogUser(adminID, model.ActionUpdate, user.ID, user.Email, middleware.ClientIP(r))
	writeSuccess(w, http.StatusOK, user, nil)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	isAdmin, adminID := h.sessions.VerifyAdmin(r.Context(), r)
	if !isAdmin || adminID == "" {
		writeUnauthorized(w)
		return
	}

	user, err := h.users.Delete(r.Context(), adminID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	h.activity.LogUser(adminID, model.ActionDelete, user.ID, user.Email, middleware.ClientIP(r))
	writeSuccess(w, http.StatusOK, map[string]any{"deleted": true}, nil)
}
