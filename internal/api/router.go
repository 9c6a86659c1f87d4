package api

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/hugh/go-portal/internal/api/handlers"
	"github.com/hugh/go-portal/internal/api/middleware"
	"github.com/hugh/go-portal/internal/auth"
	"github.com/hugh/go-portal/internal/metrics"
	"github.com/hugh/go-portal/internal/store"
)

type Router struct {
	chi.Router
}

type RouterConfig struct {
	Store          *store.Store
	Logger         *slog.Logger
	AuthService    auth.Authenticator
	Sessions       auth.Sessions
	Templates      handlers.Templates
	StaticFS       fs.FS
	AllowedOrigins []string // CORS allowed origins
	MetricsEnabled bool
}

func NewRouter(cfg RouterConfig) *Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))
	if cfg.MetricsEnabled {
		r.Use(middleware.Metrics)
	}

	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	healthHandler := handlers.NewHealthHandler(cfg.Store)
	userHandler := handlers.NewUserHandler(cfg.AuthService, cfg.Sessions, cfg.Templates, cfg.Logger)
	orgHandler := handlers.NewOrgHandler(cfg.AuthService, cfg.Sessions, cfg.Templates, cfg.Logger)
	sessionHandler := handlers.NewSessionHandler(cfg.Sessions)

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	if cfg.MetricsEnabled {
		r.Handle("/metrics", metrics.Handler())
	}

	// Individual users
	r.Get("/", userHandler.Landing)
	r.Post("/login", userHandler.Login)
	r.Get("/register", userHandler.RegisterPage)
	r.Post("/register", userHandler.Register)
	r.Get("/guest_home", userHandler.GuestHome)
	r.Get("/logout", sessionHandler.Logout("/"))
	r.Get("/check_session", sessionHandler.Check)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser(cfg.Sessions, cfg.AuthService, cfg.Logger, "/"))
		r.Use(middleware.NoCache)
		r.Get("/home", userHandler.Home)
	})

	// Organizations
	r.Get("/org_login", orgHandler.LoginPage)
	r.Post("/org_login", orgHandler.Login)
	r.Get("/org_register", orgHandler.RegisterPage)
	r.Post("/org_register", orgHandler.Register)
	r.Get("/org_logout", sessionHandler.Logout("/org_login"))

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireOrganization(cfg.Sessions, cfg.AuthService, cfg.Logger, "/org_login"))
		r.Use(middleware.NoCache)
		r.Get("/org_home", orgHandler.Home)
	})

	// Static files
	if cfg.StaticFS != nil {
		fileServer := http.FileServer(http.FS(cfg.StaticFS))
		r.Handle("/static/*", http.StripPrefix("/static/", fileServer))
	}

	return &Router{r}
}
