package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MikeSquared-Agency/Quotes/internal/catalog"
	"github.com/MikeSquared-Agency/Quotes/internal/hermes"
	"github.com/MikeSquared-Agency/Quotes/internal/recommend"
	"github.com/MikeSquared-Agency/Quotes/internal/scoring"
	"github.com/MikeSquared-Agency/Quotes/internal/store"
)

// Deps is everything the API needs. Hermes and Recommend may be nil.
type Deps struct {
	Catalog   *catalog.Catalog
	Store     store.Store
	Hermes    hermes.Client
	Recommend *recommend.Service

	// InitialWeights seeds new sessions. Non-default weights are applied as
	// custom weights.
	InitialWeights scoring.WeightVector
	Facility       string

	AccessToken       string
	RequestsPerMinute int
}

func NewRouter(d Deps, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(RateLimitMiddleware(d.RequestsPerMinute))

	cat := NewCatalogHandler(d.Catalog)
	sessions := NewSessionsHandler(d, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(AccessTokenMiddleware(d.AccessToken))

		r.Get("/criteria", cat.Criteria)
		r.Get("/catalog", cat.Catalog)
		r.Get("/scenarios", cat.Scenarios)
		r.Get("/equipment/{id}/labels", cat.Labels)
		r.Get("/equipment/{id}/frontier", cat.Frontier)
		r.Post("/weights/check", cat.CheckWeights)
		r.Post("/score", cat.Score)

		r.Post("/sessions", sessions.Create)
		r.Get("/sessions/{id}", sessions.Get)
		r.Delete("/sessions/{id}", sessions.Delete)
		r.Post("/sessions/{id}/events", sessions.Event)
		r.Get("/sessions/{id}/summary", sessions.Summary)
		r.Post("/sessions/{id}/recommendations", sessions.Recommend)
		r.Get("/sessions/{id}/recommendations/latest", sessions.LatestRecommendation)
	})

	return r
}

func NewMetricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}
