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

type BlogHandler struct {
	blog     *service.BlogService
	sessions *session.Manager
	activity *service.ActivityRecorder
}

func NewBlogHandler(blog *service.BlogService, sessions *session.Manager, activity *service.ActivityRecorder) *BlogHandler {
	return &BlogHandler{blog: blog, sessions: sessions, activity: activity}
}

func (h *BlogHandler) List(w http.ResponseWriter, r *http.Request) {
	q := model.BlogQuery{
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
		q.AuthorID = identity.ID
		q.PublishedOnly = false
	}

	posts, meta, err := h.blog.Query(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, posts, &meta)
}

func (h *BlogHandler) Get(w http.ResponseWriter, r *http.Request) {
	post, err := h.blog.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, err)
		return
	}

	if !post.IsPublished {
		identity := h.sessions.ReadIdentity(r.Context(), r)
		if identity.ID == "" {
			writeError(w, apierror.NotFound("blog post not found", post.Slug))
			return
		}
	}

	writeSuccess(w, http.StatusOK, post, nil)
}

func (h *BlogHandler) Create(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	identity := h.sessions.ReadIdentity(r.Context(), r)
	if identity.ID == "" {
		writeUnauthorized(w)
		return
	}

	var payload model.BlogPostRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.BadRequest("invalid JSON body", ""))
		return
	}

	post, err := h.blog.Create(r.Context(), identity.ID, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	h.activity.LogBlog(identity.ID, model.ActionCreate, post.ID, post.Title, middleware.ClientIP(r))
	writeSuccess(w, http.StatusCreated, post, nil)
}

func (h *BlogHandler) Update(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	identity := h.sessions.ReadIdentity(r.Context(), r)
	if identity.ID == "" {
		writeUnauthorized(w)
		return
	}

	var payload model.BlogPostRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.BadRequest("invalid JSON body", ""))
		return
	}

	post, err := h.blog.Update(r.Context(), identity.ID, identity.Role, chi.URLParam(r, "id"), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	h.activity.LogBlog(identity.ID, model.ActionUpdate, post.ID, post.Title, middleware.ClientIP(r))
	writeSuccess(w, http.StatusOK, post, nil)
}

func (h *BlogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity := h.sessions.ReadIdentity(r.Context(), r)
	if identity.ID == "" {
		writeUnauthorized(w)
		return
	}

	post, err := h.blog.Delete(r.Context(), identity.ID, identity.Role, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	h.activity.LogBlog(identity.ID, model.ActionDelete, post.ID, post.Title, middleware.ClientIP(r))
	writeSuccess(w, http.StatusOK, map[string]any{"deleted": true}, nil)
}

func (h *BlogHandler) Approve(w http.ResponseWriter, r *http.Request) {
	isAdmin, adminID := h.sessions.VerifyAdmin(r.Context(), r)
	if !isAdmin || adminID == "" {
		writeUnauthorized(w)
		return
	}

	post, err := h.blog.Approve(r.Context(), adminID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	h.activity.LogBlog(adminID, model.ActionApprove, post.ID, post.Title, middleware.ClientIP(r))
	writeSuccess(w, http.StatusOK, post, nil)
}
