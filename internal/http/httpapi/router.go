// Package httpapi assembles the chi router for the content API.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"server/internal/http/handlers"
	"server/internal/middleware"
)

// Config holds everything the router needs beyond the handlers themselves.
type Config struct {
	App             *handlers.App
	JWTSecret       string
	DefaultLocale   string
	CountryLookup   middleware.CountryLookup
	RateLimitPerMin int
	AllowedOrigins  []string
	StaticDir       string
	Logger          zerolog.Logger
}

func NewRouter(cfg Config) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(cfg.Logger),
		middleware.CORS(cfg.AllowedOrigins),
	)

	r.Get("/v1/healthz", cfg.App.Health)

	// Generated narration assets are served straight from disk.
	if cfg.StaticDir != "" {
		fs := http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir)))
		r.Get("/static/*", fs.ServeHTTP)
	}

	r.Group(func(r chi.Router) {
		r.Use(
			middleware.AuthJWT(cfg.JWTSecret),
			middleware.I18N(cfg.DefaultLocale, cfg.CountryLookup),
		)
		if cfg.RateLimitPerMin > 0 {
			r.Use(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute))
		}

		r.Route("/v1/queries/{query_id}", func(r chi.Router) {
			r.Post("/contents/{type}", cfg.App.GenerateContent)
			r.Post("/audio", cfg.App.GenerateAudio)
			r.Get("/contents", cfg.App.ListContents)
			r.Get("/export", cfg.App.ExportContents)
			r.Delete("/contents/{content_id}", cfg.App.DeleteContent)
		})
	})

	return r
}
