package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"estate-hub/internal/config"
	"estate-hub/internal/database"
	"estate-hub/internal/handler"
	"estate-hub/internal/middleware"
	"estate-hub/internal/ratelimit"
	"estate-hub/internal/repository"
	"estate-hub/internal/router"
	"estate-hub/internal/service"
	"estate-hub/internal/session"
	"estate-hub/internal/view"
)

type App struct {
	server   *http.Server
	db       *database.DB
	activity *service.ActivityRecorder
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(context.Background(), database.Config{
		URL:               cfg.DatabaseURL,
		MaxConns:          cfg.DBMaxConns,
		MinConns:          cfg.DBMinConns,
		MaxConnLifetime:   cfg.DBMaxConnLifetime,
		MaxConnIdleTime:   cfg.DBMaxConnIdleTime,
		HealthCheckPeriod: cfg.DBHealthCheckPeriod,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.EnsureSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}

	pool := db.Pool
	userRepo := repository.NewUserRepository(pool)
	listingRepo := repository.NewListingRepository(pool)
	blogRepo := repository.NewBlogRepository(pool)
	activityRepo := repository.NewActivityRepository(pool)
	contactRepo := repository.NewContactRepository(pool)
	slog.Info("database ready")

	sessions := session.NewManager(cfg.JWTSecret, cfg.SessionTTL, cfg.IdleTimeout, cfg.SecureCookies, userRepo)
	slog.Info("session epoch set", "epoch", sessions.Epoch())

	authService := service.NewAuthService(userRepo)
	if err := authService.EnsureAdmin(context.Background(), cfg.AdminEmail, cfg.AdminName, cfg.AdminPassword); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure admin user: %w", err)
	}

	activityRecorder := service.NewActivityRecorder(activityRepo, 256)
	listingService := service.NewListingService(listingRepo)
	blogService := service.NewBlogService(blogRepo)
	userService := service.NewUserService(userRepo)
	contactService := service.NewContactService(contactRepo)

	renderer, err := view.NewRenderer()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize renderer: %w", err)
	}

	gate := middleware.NewSessionGate(sessions)

	handlers := router.Handlers{
		Health:   handler.NewHealthHandler(db),
		Auth:     handler.NewAuthHandler(authService, sessions, activityRecorder),
		Listing:  handler.NewListingHandler(listingService, sessions, activityRecorder),
		Blog:     handler.NewBlogHandler(blogService, sessions, activityRecorder),
		User:     handler.NewUserHandler(userService, sessions, activityRecorder),
		Activity: handler.NewActivityHandler(activityRecorder, sessions),
		Contact:  handler.NewContactHandler(contactService, sessions),
		Pages:    handler.NewPageHandler(renderer, listingService, blogService, userService, activityRecorder, sessions),
	}

	limiters := router.Limiters{
		Login:   ratelimit.NewFixedWindow(ratelimit.Config{Window: cfg.LoginRateWindow, MaxRequests: cfg.LoginRateMax}),
		Contact: ratelimit.NewFixedWindow(ratelimit.Config{Window: cfg.ContactRateWindow, MaxRequests: cfg.ContactRateMax}),
	}

	appRouter := router.New(cfg, gate, handlers, limiters)

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server:   server,
		db:       db,
		activity: activityRecorder,
	}, nil
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}

	// Drain the audit queue before dropping the database pool.
	if err := a.activity.Close(ctx); err != nil {
		slog.Warn("activity queue drain timed out", "error", err)
	}
	a.db.Close()

	slog.Info("server stopped")
	return nil
}
