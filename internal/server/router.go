package server

import (
	"net/http"

	"github.com/cloo-solutions/searchbench/internal/api"
	"github.com/cloo-solutions/searchbench/internal/api/handlers"
	"github.com/cloo-solutions/searchbench/internal/api/middleware"
	"github.com/go-chi/chi/v5"
)

type RouterConfig struct {
	// APIToken, when set, is required as a bearer token on every route
	// except /health.
	APIToken         string
	SearchHandler    *handlers.SearchHandler
	BenchmarkHandler *handlers.BenchmarkHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 5 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.LimitBody(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.BearerToken(cfg.APIToken))

		r.Get("/algorithms", cfg.SearchHandler.Algorithms)
		r.Post("/search", cfg.SearchHandler.Search)

		r.Route("/benchmarks", func(r chi.Router) {
			r.Post("/", cfg.BenchmarkHandler.Create)
			r.Get("/latest", cfg.BenchmarkHandler.Latest)
			r.Get("/latest/units", cfg.BenchmarkHandler.Units)
			r.Get("/latest/chart.svg", cfg.BenchmarkHandler.Chart)
			r.Get("/latest/results.csv", cfg.BenchmarkHandler.CSV)
		})
	})

	return r
}
