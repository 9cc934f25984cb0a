package rest

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/frahmantamala/bodega-inventory/internal"
	"github.com/frahmantamala/bodega-inventory/internal/auth"
	"github.com/frahmantamala/bodega-inventory/internal/category"
	"github.com/frahmantamala/bodega-inventory/internal/observability"
	"github.com/frahmantamala/bodega-inventory/internal/product"
	"github.com/frahmantamala/bodega-inventory/internal/report"
	"github.com/frahmantamala/bodega-inventory/internal/transport"
	"github.com/frahmantamala/bodega-inventory/internal/transport/middleware"
	"github.com/frahmantamala/bodega-inventory/internal/transport/swagger"
	"github.com/frahmantamala/bodega-inventory/internal/user"
	"github.com/frahmantamala/bodega-inventory/pkg/permission"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

// RouterDeps carries the handlers mounted by RegisterAllRoutes. A nil
// handler leaves its routes unmounted.
type RouterDeps struct {
	Config          *internal.Config
	Logger          *slog.Logger
	AuthHandler     *auth.Handler
	RBAC            *auth.RBACAuthorization
	UserHandler     *user.Handler
	ProductHandler  *product.Handler
	CategoryHandler *category.Handler
	ReportHandler   *report.Handler
	Metrics         *observability.Metrics
	Health          map[string]Pinger
	OpenAPISpec     []byte
}

func RegisterAllRoutes(router *chi.Mux, deps RouterDeps) {
	cfg := deps.Config
	lg := deps.Logger
	healthHandler := NewHealthHandler(transport.NewBaseHandler(lg), deps.Health)
	rbac := deps.RBAC

	router.Use(middleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RecoveryMiddleware(lg))
	router.Use(middleware.LoggingMiddleware(lg))
	router.Use(middleware.SecureHeaders(cfg.IsProduction(), lg))
	router.Use(corsHandler(cfg.Server.Origins()))
	if deps.Metrics != nil {
		router.Use(deps.Metrics.Middleware)
	}

	if deps.Metrics != nil && cfg.Observability.Metrics.Enabled {
		router.Method(http.MethodGet, cfg.Observability.Metrics.Path, deps.Metrics.Handler())
	}

	if len(deps.OpenAPISpec) > 0 {
		router.Get(swagger.SpecPath, swagger.SpecHandler(deps.OpenAPISpec))
		router.Handle("/swagger/*", swagger.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)
	})

	if deps.AuthHandler == nil {
		return
	}
	authHandler := deps.AuthHandler

	router.Route("/auth", func(r chi.Router) {
		r.With(loginRateLimit(cfg.Security, authHandler.BaseHandler)).Post("/login", authHandler.Login)
		r.Post("/verify", authHandler.Verify)

		r.Group(func(pr chi.Router) {
			pr.Use(authHandler.AuthMiddleware)
			pr.Get("/me", authHandler.Me)
			pr.Post("/logout", authHandler.Logout)
		})
	})

	router.Route("/api", func(r chi.Router) {
		r.Use(authHandler.AuthMiddleware)

		if h := deps.ProductHandler; h != nil {
			r.Route("/products", func(pr chi.Router) {
				pr.With(rbac.Middleware(permission.ViewInventory)).Get("/", h.ListProducts)
				pr.With(rbac.Middleware(permission.ViewInventory)).Get("/low-stock", h.LowStock)
				pr.With(rbac.Middleware(permission.ViewInventory)).Get("/{id}", h.GetProduct)
				pr.With(rbac.Middleware(permission.AddProduct)).Post("/", h.CreateProduct)
				pr.With(rbac.Middleware(permission.EditProduct)).Put("/{id}", h.UpdateProduct)
				pr.With(rbac.Middleware(permission.DeleteProduct)).Delete("/{id}", h.DeleteProduct)
			})
			r.With(rbac.Middleware(permission.ViewInventory)).Get("/inventory/stats", h.InventoryStats)
		}

		if h := deps.CategoryHandler; h != nil {
			r.Route("/categories", func(cr chi.Router) {
				cr.With(rbac.Middleware(permission.ViewInventory)).Get("/", h.GetCategories)
				cr.With(rbac.Middleware(permission.ViewReports)).Get("/stats", h.GetStats)
			})
		}

		if h := deps.UserHandler; h != nil {
			r.Route("/users", func(ur chi.Router) {
				ur.With(rbac.Middleware(permission.ViewUsers)).Get("/", h.ListUsers)
				ur.Group(func(mr chi.Router) {
					mr.Use(rbac.Middleware(permission.ManageUsers))
					mr.Post("/", h.CreateUser)
					mr.Put("/{id}", h.UpdateUser)
					mr.Delete("/{id}", h.DeleteUser)
				})
			})
		}

		if h := deps.ReportHandler; h != nil {
			r.Route("/reports", func(rr chi.Router) {
				rr.With(rbac.Middleware(permission.ViewReports)).Get("/general", h.General)
				rr.With(rbac.Middleware(permission.ExportReports)).Get("/export", h.Export)
			})
			r.With(rbac.RequireRole(permission.RoleSuperAdmin)).Get("/dashboard/stats", h.Dashboard)
		}
	})
}

// loginRateLimit throttles login attempts per client IP. A limit of zero
// disables it.
func loginRateLimit(cfg internal.SecurityConfig, base *transport.BaseHandler) func(http.Handler) http.Handler {
	if cfg.LoginRateLimit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	window := cfg.LoginRateWindow
	if window <= 0 {
		window = time.Minute
	}
	return httprate.Limit(cfg.LoginRateLimit, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			base.WriteAppError(w, internal.ErrTooManyAttempts)
		}),
	)
}

// corsHandler allows the configured browser origins. Bearer tokens travel in
// a header, so credentials stay off. No origins means no CORS headers at all.
func corsHandler(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader, "Content-Disposition"},
		MaxAge:         600,
	})
}
