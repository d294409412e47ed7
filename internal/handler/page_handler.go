package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"estate-hub/internal/middleware"
	"estate-hub/internal/model"
	"estate-hub/internal/service"
	"estate-hub/internal/session"
	"estate-hub/internal/view"
)

// PageHandler renders the server-side pages. Public pages never touch
// the session; dashboard and admin pages run behind the session gate,
// and admin pages additionally verify the role themselves.
type PageHandler struct {
	render   *view.Renderer
	listings *service.ListingService
	blog     *service.BlogService
	users    *service.UserService
	activity *service.ActivityRecorder
	sessions *session.Manager
}

func NewPageHandler(
	render *view.Renderer,
	listings *service.ListingService,
	blog *service.BlogService,
	users *service.UserService,
	activity *service.ActivityRecorder,
	sessions *session.Manager,
) *PageHandler {
	return &PageHandler{
		render:   render,
		listings: listings,
		blog:     blog,
		users:    users,
		activity: activity,
		sessions: sessions,
	}
}

func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	featured, _, err := h.listings.Query(r.Context(), model.ListingQuery{PublishedOnly: true, Limit: 6})
	if err != nil {
		featured = nil
	}

	h.render.Render(w, http.StatusOK, "home.html", map[string]any{"Listings": featured})
}

func (h *PageHandler) Listings(w http.ResponseWriter, r *http.Request) {
	q := model.ListingQuery{
		City:          r.URL.Query().Get("city"),
		PublishedOnly: true,
		Page:          queryInt(r, "page"),
	}

	listings, meta, err := h.listings.Query(r.Context(), q)
	if err != nil {
		http.Error(w, "unavailable", http.StatusInternalServerError)
		return
	}

	h.render.Render(w, http.StatusOK, "listings.html", map[string]any{"Listings": listings, "Meta": meta})
}

func (h *PageHandler) Listing(w http.ResponseWriter, r *http.Request) {
	listing, err := h.listings.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil || !listing.IsPublished {
		http.NotFound(w, r)
		return
	}

	h.render.Render(w, http.StatusOK, "listing.html", map[string]any{"Listing": listing})
}

func (h *PageHandler) Blog(w http.ResponseWriter, r *http.Request) {
	posts, meta, err := h.blog.Query(r.Context(), model.BlogQuery{PublishedOnly: true, Page: queryInt(r, "page")})
	if err != nil {
		http.Error(w, "unavailable", http.StatusInternalServerError)
		return
	}

	h.render.Render(w, http.StatusOK, "blog.html", map[string]any{"Posts": posts, "Meta": meta})
}

func (h *PageHandler) Post(w http.ResponseWriter, r *http.Request) {
	post, err := h.blog.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil || !post.IsPublished {
		http.NotFound(w, r)
		return
	}

	h.render.Render(w, http.StatusOK, "post.html", map[string]any{"Post": post})
}

func (h *PageHandler) Contact(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, http.StatusOK, "contact.html", nil)
}

func (h *PageHandler) Login(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, http.StatusOK, "login.html", nil)
}

func (h *PageHandler) Forbidden(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, http.StatusForbidden, "forbidden.html", nil)
}

// Dashboard shows the caller's own content regardless of role.
func (h *PageHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GateClaimsFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	listings, _, _ := h.listings.Query(r.Context(), model.ListingQuery{OwnerID: claims.Subject})
	posts, _, _ := h.blog.Query(r.Context(), model.BlogQuery{AuthorID: claims.Subject})

	h.render.Render(w, http.StatusOK, "dashboard.html", map[string]any{
		"Name":     claims.Name,
		"IsAdmin":  claims.Role == model.RoleAdmin,
		"Listings": listings,
		"Posts":    posts,
	})
}

// requireAdminPage is the page-level role verification the gate
// delegates. Non-admins land on the 403 page.
func (h *PageHandler) requireAdminPage(w http.ResponseWriter, r *http.Request) (string, bool) {
	isAdmin, adminID := h.sessions.VerifyAdmin(r.Context(), r)
	if !isAdmin || adminID == "" {
		http.Redirect(w, r, "/403", http.StatusFound)
		return "", false
	}
	return adminID, true
}

func (h *PageHandler) Admin(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireAdminPage(w, r); !ok {
		return
	}

	h.render.Render(w, http.StatusOK, "admin.html", nil)
}

func (h *PageHandler) AdminUsers(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireAdminPage(w, r); !ok {
		return
	}

	users, err := h.users.List(r.Context())
	if err != nil {
		http.Error(w, "unavailable", http.StatusInternalServerError)
		return
	}

	h.render.Render(w, http.StatusOK, "admin_users.html", map[string]any{"Users": users})
}

func (h *PageHandler) AdminActivity(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireAdminPage(w, r); !ok {
		return
	}

	activities, meta, err := h.activity.Query(r.Context(), model.ActivityQuery{Page: queryInt(r, "page")})
	if err != nil {
		http.Error(w, "unavailable", http.StatusInternalServerError)
		return
	}

	h.render.Render(w, http.StatusOK, "admin_activity.html", map[string]any{"Activities": activities, "Meta": meta})
}

func (h *PageHandler) AdminApprovals(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireAdminPage(w, r); !ok {
		return
	}

	listings, _, _ := h.listings.Query(r.Context(), model.ListingQuery{PendingOnly: true})
	posts, _, _ := h.blog.Query(r.Context(), model.BlogQuery{PendingOnly: true})

	h.render.Render(w, http.StatusOK, "admin_approvals.html", map[string]any{
		"Listings": listings,
		"Posts":    posts,
	})
}
