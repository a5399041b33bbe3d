package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/brickshelf/brickshelf/internal/metrics"
	"github.com/brickshelf/brickshelf/internal/service"
)

// Router assembles the web application's HTTP handler.
type Router struct {
	pages   *PagesHandler
	auth    *AuthHandler
	catalog *CatalogHandler
	session *sessionMiddleware
	metrics *metrics.Metrics
	maxBody int64
	logger  zerolog.Logger
}

// RouterConfig contains configuration for the router.
type RouterConfig struct {
	AuthService     *service.AuthService
	SessionService  *service.SessionService
	CatalogService  *service.CatalogService
	Metrics         *metrics.Metrics
	CookieName      string
	CookieSecure    bool
	SessionDuration time.Duration
	MaxBodySize     int64
	Logger          zerolog.Logger
}

// NewRouter creates a new Router.
func NewRouter(cfg RouterConfig) (*Router, error) {
	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger.With().Str("component", "router").Logger()
	rd := &renderer{templates: templates, logger: logger}

	return &Router{
		pages: &PagesHandler{
			renderer: rd,
			logger:   cfg.Logger.With().Str("handler", "pages").Logger(),
		},
		auth: &AuthHandler{
			auth:            cfg.AuthService,
			sessions:        cfg.SessionService,
			metrics:         cfg.Metrics,
			renderer:        rd,
			cookieName:      cfg.CookieName,
			cookieSecure:    cfg.CookieSecure,
			sessionDuration: cfg.SessionDuration,
			logger:          cfg.Logger.With().Str("handler", "auth").Logger(),
		},
		catalog: &CatalogHandler{
			catalog:  cfg.CatalogService,
			renderer: rd,
			logger:   cfg.Logger.With().Str("handler", "catalog").Logger(),
		},
		session: &sessionMiddleware{
			sessions:   cfg.SessionService,
			cookieName: cfg.CookieName,
			logger:     logger,
		},
		metrics: cfg.Metrics,
		maxBody: cfg.MaxBodySize,
		logger:  logger,
	}, nil
}

// Handler returns the main HTTP handler.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if rt.maxBody > 0 {
		r.Use(middleware.RequestSize(rt.maxBody))
	}
	r.Use(rt.metrics.Middleware)
	r.Use(rt.session.LoadSession)

	// Health check
	r.Get("/health", rt.handleHealth)

	// Static assets
	r.Handle("/static/*", http.FileServerFS(staticFS))

	// Public pages
	r.Get("/", rt.pages.handleHome)
	r.Get("/about", rt.pages.handleAbout)
	r.Get("/sets", rt.catalog.handleSets)
	r.Get("/sets/{num}", rt.catalog.handleSetDetail)

	// Account
	r.Get("/register", rt.auth.handleRegisterPage)
	r.Post("/register", rt.auth.handleRegister)
	r.Get("/login", rt.auth.handleLoginPage)
	r.Post("/login", rt.auth.handleLogin)
	r.Post("/logout", rt.auth.handleLogout)

	// Login-required pages
	r.Group(func(r chi.Router) {
		r.Use(rt.session.RequireLogin)

		r.Get("/history", rt.auth.handleHistory)

		r.Get("/sets/new", rt.catalog.handleAddSetPage)
		r.Post("/sets/new", rt.catalog.handleAddSet)
		r.Get("/sets/{num}/edit", rt.catalog.handleEditSetPage)
		r.Post("/sets/{num}/edit", rt.catalog.handleEditSet)
		r.Post("/sets/{num}/delete", rt.catalog.handleDeleteSet)
	})

	r.NotFound(rt.pages.handleNotFound)

	return r
}

// handleHealth handles health check requests.
func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}
