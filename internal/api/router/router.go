package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mushinbuys/leadform/internal/http/handlers"
	httpmiddleware "github.com/mushinbuys/leadform/internal/http/middleware"
	"github.com/mushinbuys/leadform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger         *logging.Logger
	FormHandler    *handlers.FormHandler
	Sessions       httpmiddleware.SessionResolver
	MetricsHandler http.Handler

	CORSAllowedOrigins []string

	// Optional per-client rate limit on form routes.
	RateLimiter *httpmiddleware.RateLimiter
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	if cfg.FormHandler == nil || cfg.Sessions == nil {
		panic("router: form handler and session resolver required")
	}
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	h := cfg.FormHandler

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", h.HealthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	r.Route("/form", func(f chi.Router) {
		if cfg.RateLimiter != nil {
			f.Use(httpmiddleware.RateLimit(cfg.RateLimiter))
		}
		f.Post("/sessions", h.CreateSession)
		f.Get("/options", h.Options)

		// Session-scoped routes
		f.Group(func(s chi.Router) {
			s.Use(httpmiddleware.FormSession(cfg.Sessions))
			s.Get("/", h.GetForm)
			s.Patch("/", h.PatchForm)
			s.Delete("/", h.ClearForm)
			s.Post("/address", h.Address)
			s.Post("/phone", h.Phone)
			s.Post("/fields/{name}", h.Field)
			s.Put("/step", h.SetStep)
			s.Get("/steps/{step}", h.StepStatus)
			s.Post("/advance", h.Advance)
			s.Post("/submit", h.Submit)
			s.Put("/errors/{field}", h.SetFieldError)
			s.Delete("/errors/{field}", h.ClearFieldError)
		})
	})

	return r
}
