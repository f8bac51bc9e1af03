package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/jskalicky/shoply-api/internal/account"
	"github.com/jskalicky/shoply-api/internal/auth"
	"github.com/jskalicky/shoply-api/internal/config"
	"github.com/jskalicky/shoply-api/internal/httputil"
	"github.com/jskalicky/shoply-api/internal/logging"
	"github.com/jskalicky/shoply-api/internal/product"
	"github.com/jskalicky/shoply-api/internal/upload"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth     *auth.Handler
	Accounts *account.Handler
	Products *product.Handler
	Uploads  *upload.Handler
}

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, h Handlers, guard *auth.Middleware, logger *logging.Logger) *chi.Mux {
	r := chi.NewRouter()

	// CORS - must be first
	if len(cfg.Server.TrustedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Server.TrustedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           300, // 5 minutes
		}))
	}

	// Global middleware
	r.Use(SecurityHeaders)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(logger))
	r.Use(middleware.Compress(5))

	r.Get("/health", handleHealth)

	// Swagger UI - only in development
	if cfg.Server.IsDevelopment() {
		logger.Info("swagger UI enabled", "path", "/swagger/*")
		r.Get("/swagger/*", httpSwagger.WrapHandler)
	}

	r.Route("/api/users", func(r chi.Router) {
		// Public lifecycle endpoints
		r.Post("/auth/register", h.Auth.Register)
		r.Post("/auth/login", h.Auth.Login)
		r.Get("/verify-email/{id}/{token}", h.Auth.VerifyEmail)
		r.Post("/forgot-password", h.Auth.ForgotPassword)
		r.Get("/reset-password/{id}/{token}", h.Auth.CheckResetLink)
		r.Post("/reset-password", h.Auth.ResetPassword)

		// Token is enough for self-lookups and uploads
		r.Group(func(r chi.Router) {
			r.Use(guard.RequireAuth)
			r.Get("/current-user", h.Accounts.CurrentUser)
			r.Post("/upload-image", h.Accounts.UploadProfileImage)
		})

		// Role-gated account management
		r.With(guard.RequireRoles(account.RoleAdmin)).Get("/", h.Accounts.List)
		r.With(guard.RequireRoles(account.RoleAdmin, account.RoleUser)).Put("/", h.Accounts.Update)
		r.With(guard.RequireRoles(account.RoleAdmin, account.RoleUser)).Delete("/{id}", h.Accounts.Delete)
	})

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.Products.List)
		r.Get("/{id}", h.Products.Get)

		r.With(guard.RequireRoles(account.RoleAdmin, account.RoleUser)).Post("/", h.Products.Create)
		r.With(guard.RequireRoles(account.RoleAdmin, account.RoleUser)).Put("/{id}", h.Products.Update)
		r.With(guard.RequireRoles(account.RoleAdmin)).Delete("/{id}", h.Products.Delete)
	})

	r.Route("/api/uploads", func(r chi.Router) {
		r.With(guard.RequireAuth).Post("/", h.Uploads.Upload)
		r.Get("/{image}", h.Uploads.Serve)
	})

	return r
}

// handleHealth is a simple health check endpoint
// @Summary      Health check
// @Tags         health
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /health [get]
func handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, map[string]string{"status": "api is running"}, http.StatusOK)
}
