package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jonas/postflow/internal/api/handlers"
	"github.com/jonas/postflow/internal/api/middleware"
	"github.com/jonas/postflow/internal/auth"
	"github.com/jonas/postflow/internal/dashboard"
	"github.com/jonas/postflow/internal/database/models"
	"github.com/jonas/postflow/internal/invites"
	"github.com/jonas/postflow/internal/posts"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Router struct {
	chi.Router
}

type RouterConfig struct {
	DB               *gorm.DB
	Redis            *redis.Client
	Logger           *slog.Logger
	JWTService       *auth.JWTService
	AuthService      *auth.Service
	PostService      *posts.Service
	DashboardService *dashboard.Service
	InviteService    *invites.Service
	MediaDir         string   // serve /storage/* from here when using disk storage
	AllowedOrigins   []string // CORS allowed origins
	RateLimitReqs    int      // Rate limit requests per window
	RateLimitSecs    int      // Rate limit window in seconds
}

func NewRouter(cfg RouterConfig) *Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	if cfg.RateLimitReqs > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimitReqs, cfg.RateLimitSecs))
	}

	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		// Default to localhost for development - configure in production
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Redis)
	authHandler := handlers.NewAuthHandler(cfg.AuthService)
	adminHandler := handlers.NewAdminHandler(cfg.DB, cfg.DashboardService, cfg.InviteService)
	agencyHandler := handlers.NewAgencyHandler(cfg.DB, cfg.PostService, cfg.DashboardService, cfg.InviteService)
	clientHandler := handlers.NewClientHandler(cfg.DB, cfg.PostService, cfg.DashboardService)
	notificationHandler := handlers.NewNotificationHandler(cfg.DB)
	setupHandler := handlers.NewSetupPasswordHandler(cfg.InviteService)

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Invitation redemption (anonymous, token-gated)
	r.Get("/setup-password/{token}", setupHandler.Show)
	r.Post("/setup-password", setupHandler.Store)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth endpoints
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/logout", authHandler.Logout)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTService))

			r.Get("/me", func(w http.ResponseWriter, r *http.Request) {
				userID := middleware.GetUserID(r.Context())
				user, err := cfg.AuthService.GetUserByID(r.Context(), userID)
				if err != nil {
					http.Error(w, "User not found", http.StatusNotFound)
					return
				}
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(user)
			})

			r.Get("/notifications", notificationHandler.List)
			r.Put("/notifications/{id}/read", notificationHandler.MarkRead)

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireRole(string(models.RoleAdmin)))
				r.Get("/dashboard", adminHandler.Dashboard)
				r.Get("/agencies", adminHandler.Agencies)
				r.Post("/agencies", adminHandler.InviteAgency)
				r.Put("/agencies/{id}/activate", adminHandler.Activate)
				r.Put("/agencies/{id}/deactivate", adminHandler.Deactivate)
			})

			r.Route("/agency", func(r chi.Router) {
				r.Use(middleware.RequireRole(string(models.RoleAgency)))
				r.Get("/dashboard", agencyHandler.Dashboard)
				r.Get("/clients", agencyHandler.Clients)
				r.Post("/clients", agencyHandler.InviteClient)
				r.Post("/posts", agencyHandler.CreatePost)
				r.Delete("/posts/{id}", agencyHandler.DeletePost)
			})

			r.Route("/client", func(r chi.Router) {
				r.Use(middleware.RequireRole(string(models.RoleClient)))
				r.Get("/dashboard", clientHandler.Dashboard)
				r.Post("/posts/{id}/approve", clientHandler.Approve)
				r.Post("/posts/{id}/reject", clientHandler.Reject)
				r.Post("/posts/{id}/comment", clientHandler.Comment)
			})
		})
	})

	// Media files (disk storage backend)
	if cfg.MediaDir != "" {
		fileServer := http.FileServer(http.Dir(cfg.MediaDir))
		r.Handle("/storage/*", http.StripPrefix("/storage/", fileServer))
	}

	return &Router{r}
}
