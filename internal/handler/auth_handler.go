package handler

import (
	"encoding/json"
	"net/http"

	"estate-hub/internal/middleware"
	"estate-hub/internal/model"
	"estate-hub/internal/service"
	"estate-hub/internal/session"
	"estate-hub/pkg/apierror"
)

type AuthHandler struct {
	auth     *service.AuthService
	sessions *session.Manager
	activity *service.ActivityRecorder
}

func NewAuthHandler(auth *service.AuthService, sessions *session.Manager, activity *service.ActivityRecorder) *AuthHandler {
	return &AuthHandler{auth: auth, sessions: sessions, activity: activity}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.BadRequest("invalid JSON body", ""))
		return
	}

	user, err := h.auth.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := h.sessions.Issue(user)
	if err != nil {
		writeError(w, err)
		return
	}

	h.sessions.SetCookies(w, token)
	h.activity.LogAuth(user.ID, model.ActionLogin, middleware.ClientIP(r))

	writeSuccess(w, http.StatusOK, user.Profile(), nil)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	identity := h.sessions.ReadIdentity(r.Context(), r)
	if identity.ID != "" {
		h.activity.LogAuth(identity.ID, model.ActionLogout, middleware.ClientIP(r))
	}

	h.sessions.ClearCookies(w)
	writeSuccess(w, http.StatusOK, map[string]any{"logged_out": true}, nil)
}

// Ping refreshes the token's last-activity claim so an active session
// does not hit the inactivity threshold.
func (h *AuthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	token := h.sessions.TokenFromRequest(r)
	if token == "" {
		writeUnauthorized(w)
		return
	}

	claims, err := h.sessions.Decode(token)
	if err != nil || !h.sessions.EpochMatches(claims) || h.sessions.IdleExpired(claims) {
		h.sessions.ClearCookies(w)
		writeUnauthorized(w)
		return
	}

	refreshed, err := h.sessions.Refresh(claims)
	if err != nil {
		writeError(w, err)
		return
	}

	h.sessions.SetCookies(w, refreshed)
	writeSuccess(w, http.StatusOK, map[string]any{"active": true}, nil)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity := h.sessions.ReadIdentity(r.Context(), r)
	if identity.ID == "" {
		writeUnauthorized(w)
		return
	}

	profile, err := h.auth.GetUserByID(r.Context(), identity.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, profile, nil)
}
