package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"headlinewall/internal/http/handlers"
	"headlinewall/internal/infra"
	"headlinewall/internal/middleware"
)

// NewRouter assembles the HTTP surface: the generation proxy endpoints, the
// gallery API the wall display polls, and static serving for re-hosted
// artifacts.
func NewRouter(app *handlers.App, cfg *infra.Config, logger infra.Logger, lookup middleware.CountryLookup) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.Recover(logger, cfg.Production()),
		middleware.Logger(logger),
		middleware.CORS(cfg.AllowedOrigins),
		middleware.Audience(lookup),
	)

	r.Get("/v1/healthz", app.Health)

	// Generation proxies burn provider quota, so they sit behind the cap.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute))
		r.Post("/api/generate", app.Generate)
		r.Post("/api/animate", app.Animate)
		r.Post("/api/check-animation", app.CheckAnimation)
	})

	r.Route("/api/headlines", func(r chi.Router) {
		r.Post("/", app.HeadlineCreate)
		r.Get("/", app.HeadlineList)
		r.Get("/export", app.HeadlineExport)
		r.Patch("/{id}", app.HeadlineAnimationUpdate)
	})

	r.Get("/static/*", app.StaticAsset)

	return r
}
