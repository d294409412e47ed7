package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"estate-hub/internal/middleware"
	"estate-hub/internal/model"
	"estate-hub/internal/service"
	"estate-hub/internal/session"
	"estate-hub/pkg/apierror"
)

type ListingHandler struct {
	listings *service.ListingService
	sessions *session.Manager
	activity *service.ActivityRecorder
}

func NewListingHandler(listings *service.ListingService, sessions *session.Manager, activity *service.ActivityRecorder) *ListingHandler {
	return &ListingHandler{listings: listings, sessions: sessions, activity: activity}
}

// List serves published listings to anonymous callers; authenticated
// callers may scope to their own listings with mine=true.
func (h *ListingHandler) List(w http.ResponseWriter, r *http.Request) {
	q := model.ListingQuery{
		City:          r.URL.Query().Get("city"),
		PublishedOnly: true,
		Page:          queryInt(r, "page"),
		Limit:         queryInt(r, "limit"),
	}

	if r.URL.Query().Get("mine") == "true" {
		identity := h.sessions.ReadIdentity(r.Context(), r)
		if identity.ID == "" {
			writeUnauthorized(w)
			return
		}
		q.OwnerID = identity.ID
		q.PublishedOnly = false
	}

	listings, meta, err := h.listings.Query(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, listings, &meta)
}

func (h *ListingHandler) Get(w http.ResponseWriter, r *http.Request) {
	listing, err := h.listings.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, err)
		return
	}

	if !listing.IsPublished {
		identity := h.sessions.ReadIdentity(r.Context(), r)
		if identity.ID == "" {
			writeError(w, apierror.NotFound("listing not found", listing.Slug))
			return
		}
	}

	writeSuccess(w, http.StatusOK, listing, nil)
}

func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	identity := h.sessions.ReadIdentity(r.Context(), r)
	if identity.ID == "" {
		writeUnauthorized(w)
		return
	}

	var payload model.ListingRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.BadRequest("invalid JSON body", ""))
		return
	}

	listing, err := h.listings.Create(r.Context(), identity.ID, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	h.activity.LogListing(identity.ID, model.ActionCreate, listing.ID, listing.Title, middleware.ClientIP(r))
	writeSuccess(w, http.StatusCreated, listing, nil)
}

func (h *ListingHandler) Update(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	identity := h.sessions.ReadIdentity(r.Context(), r)
	if identity.ID == "" {
		writeUnauthorized(w)
		return
	}

	var payload model.ListingRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.BadRequest("invalid JSON body", ""))
		return
	}

	listing, err := h.listings.Update(r.Context(), identity.ID, identity.Role, chi.URLParam(r, "id"), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	h.activity.LogListing(identity.ID, model.ActionUpdate, listing.ID, listing.Title, middleware.ClientIP(r))
	writeSuccess(w, http.StatusOK, listing, nil)
}

func (h *ListingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity := h.sessions.ReadIdentity(r.Context(), r)
	if identity.ID == "" {
		writeUnauthorized(w)
		return
	}

	listing, err := h.listings.Delete(r.Context(), identity.ID, identity.Role, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	h.activity.LogListing(identity.ID, model.ActionDelete, listing.ID, listing.Title, middleware.ClientIP(r))
	writeSuccess(w, http.StatusOK, map[string]any{"deleted": true}, nil)
}

// Approve is admin-only: the role is verified from the signed token,
// and a falsy result is an unconditional 401.
func (h *ListingHandler) Approve(w http.ResponseWriter, r *http.Request) {
	isAdmin, adminID := h.sessions.VerifyAdmin(r.Context(), r)
	if !isAdmin || adminID == "" {
		writeUnauthorized(w)
		return
	}

	listing, err := h.listings.Approve(r.Context(), adminID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	h.activity.LogListing(adminID, model.ActionApprove, listing.ID, listing.Title, middleware.ClientIP(r))
	writeSuccess(w, http.StatusOK, listing, nil)
}

func queryInt(r *http.Request, key string) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return v
}
