package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"estate-hub/internal/config"
	"estate-hub/internal/handler"
	"estate-hub/internal/middleware"
	"estate-hub/internal/ratelimit"
)

type Handlers struct {
	Health   *handler.HealthHandler
	Auth     *handler.AuthHandler
	Listing  *handler.ListingHandler
	Blog     *handler.BlogHandler
	User     *handler.UserHandler
	Activity *handler.ActivityHandler
	Contact  *handler.ContactHandler
	Pages    *handler.PageHandler
}

type Limiters struct {
	Login   ratelimit.Limiter
	Contact ratelimit.Limiter
}

func New(cfg *config.Config, gate *middleware.SessionGate, h Handlers, limiters Limiters) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(gate.Handler)

	r.Get("/health", h.Health.Check)

	// Public pages
	r.Get("/", h.Pages.Home)
	r.Get("/listings", h.Pages.Listings)
	r.Get("/listings/{slug}", h.Pages.Listing)
	r.Get("/blog", h.Pages.Blog)
	r.Get("/blog/{slug}", h.Pages.Post)
	r.Get("/contact", h.Pages.Contact)
	r.Get("/login", h.Pages.Login)
	r.Get("/403", h.Pages.Forbidden)

	// Gated pages
	r.Route("/dashboard", func(dash chi.Router) {
		dash.Get("/", h.Pages.Dashboard)
		dash.Get("/listings", h.Pages.Dashboard)
		dash.Get("/posts", h.Pages.Dashboard)
	})
	r.Route("/admin", func(admin chi.Router) {
		admin.Get("/", h.Pages.Admin)
		admin.Get("/users", h.Pages.AdminUsers)
		admin.Get("/activity", h.Pages.AdminActivity)
		admin.Get("/approvals", h.Pages.AdminApprovals)
	})

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/auth", func(auth chi.Router) {
			auth.With(middleware.RateLimit(limiters.Login)).Post("/login", h.Auth.Login)
			auth.Post("/logout", h.Auth.Logout)
			auth.Post("/ping", h.Auth.Ping)
			auth.Get("/me", h.Auth.Me)
		})

		api.Route("/listings", func(listings chi.Router) {
			listings.Get("/", h.Listing.List)
			listings.Get("/{slug}", h.Listing.Get)
			listings.Post("/", h.Listing.Create)
			listings.Put("/{id}", h.Listing.Update)
			listings.Delete("/{id}", h.Listing.Delete)
			listings.Post("/{id}/approve", h.Listing.Approve)
		})

		api.Route("/blog", func(blog chi.Router) {
			blog.Get("/", h.Blog.List)
			blog.Get("/{slug}", h.Blog.Get)
			blog.Post("/", h.Blog.Create)
			blog.Put("/{id}", h.Blog.Update)
			blog.Delete("/{id}", h.Blog.Delete)
			blog.Post("/{id}/approve", h.Blog.Approve)
		})

		api.With(middleware.RateLimit(limiters.Contact)).Post("/contact", h.Contact.Submit)

		api.Route("/admin", func(admin chi.Router) {
			admin.Get("/users", h.User.List)
			admin.Post("/users", h.User.Create)
			admin.Put("/users/{id}", h.User.Update)
			admin.Delete("/users/{id}", h.User.Delete)
			admin.Get("/activity", h.Activity.List)
			admin.Get("/messages", h.Contact.Recent)
		})
	})

	return r
}
