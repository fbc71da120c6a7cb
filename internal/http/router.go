package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"promptvault/internal/auth"
	"promptvault/internal/config"
	"promptvault/internal/http/handler"
	mw "promptvault/internal/http/middleware"
	"promptvault/internal/prompt"
)

// Deps are the services the router dispatches to. They are built once at
// startup and shared by all requests.
type Deps struct {
	Auth    *auth.Service
	JWT     *auth.JWT
	Prompts *prompt.Service
	Logger  zerolog.Logger
}

func NewRouter(cfg config.Config, deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.RequestLogger(deps.Logger))
	r.Use(chimw.Recoverer)

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	ah := &handler.AuthHandler{Svc: deps.Auth, CookieSecure: cfg.CookieSecure, SessionTTL: cfg.SessionTTL}
	ph := &handler.PromptHandler{Svc: deps.Prompts}

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", ah.Register)
		r.Post("/auth/login", ah.Login)
		r.Post("/auth/logout", ah.Logout)
		r.With(auth.RequireAuth(deps.JWT)).Get("/auth/me", ah.Me)

		r.Route("/prompts", func(r chi.Router) {
			r.Use(auth.RequireAuth(deps.JWT))

			r.Get("/", ph.List)
			r.Post("/", ph.Create)
			r.Get("/export", ph.Export)
			r.Get("/{id}", ph.Get)
			r.Put("/{id}", ph.Update)
			r.Delete("/{id}", ph.Delete)
		})
	})

	return r
}
