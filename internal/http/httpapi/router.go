package httpapi

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"falbackend/internal/http/handlers"
	"falbackend/internal/infra/metrics"
	"falbackend/internal/middleware"
)

// NewRouter builds the public HTTP surface.
func NewRouter(app *handlers.App) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP, chimw.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(app.Logger))
	r.Use(middleware.CORS([]string{app.Cfg.CORSOrigin}))
	if app.Cfg.RateLimitPerMin > 0 {
		r.Use(middleware.RateLimit(app.Cfg.RateLimitPerMin, time.Minute))
	}

	r.Get("/health", app.Health)
	r.Handle("/metrics", metrics.Handler())

	r.Post("/generate-fast", app.GenerateFast)
	r.Post("/generate-quality", app.GenerateQuality)
	r.Get("/result/{id}", app.Result)
	r.Get("/voices", app.Voices)

	r.Post("/merge-video-audio", app.Merge)
	r.Post("/download", app.Download)

	// Published merge outputs and saved downloads.
	fileServer := stdhttp.FileServer(stdhttp.Dir(app.Store.BasePath()))
	r.Handle("/media/*", stdhttp.StripPrefix("/media/", fileServer))

	return r
}
