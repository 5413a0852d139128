package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/MikeSquared-Agency/Quotes/internal/store"
)

var (
	scenarioResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quotes_scenario_resolutions_total",
		Help: "Scenario selections resolved, by scenario.",
	}, []string{"scenario"})

	weightChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quotes_weight_checks_total",
		Help: "Weight vectors checked, by result.",
	}, []string{"result"})

	recommendations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quotes_recommendations_total",
		Help: "Recommendation requests finished, by status.",
	}, []string{"status"})

	recommendationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "quotes_recommendation_duration_seconds",
		Help:    "Time from request to recorded recommendation.",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
	})
)

// ObserveRecommendation records how a recommendation request ended.
func ObserveRecommendation(status store.RecommendationStatus, elapsed time.Duration) {
	recommendations.WithLabelValues(string(status)).Inc()
	recommendationDuration.Observe(elapsed.Seconds())
}
