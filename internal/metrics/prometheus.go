package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	InsightDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gitscout_insight_duration_seconds",
			Help:    "Insight generation duration in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"mode"},
	)

	InsightsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gitscout_insights_generated_total",
			Help: "Total insights generated, by vendor",
		},
		[]string{"vendor"},
	)

	InsightCacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gitscout_insight_cache_hits_total",
			Help: "Total insight cache hits",
		},
	)

	InsightCacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gitscout_insight_cache_misses_total",
			Help: "Total insight cache misses",
		},
	)

	ProviderErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gitscout_provider_errors_total",
			Help: "Provider call failures, by vendor and error kind",
		},
		[]string{"vendor", "kind"},
	)

	TokensUsed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gitscout_llm_tokens_used_total",
			Help: "Total LLM tokens used, by vendor",
		},
		[]string{"vendor"},
	)

	TrendingScrapes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gitscout_trending_scrapes_total",
			Help: "Trending page scrapes, by outcome",
		},
		[]string{"status"},
	)

	SearchQueries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gitscout_search_queries_total",
			Help: "Total GitHub search queries",
		},
	)
)

func Init() {
	prometheus.MustRegister(InsightDuration)
	prometheus.MustRegister(InsightsGenerated)
	prometheus.MustRegister(InsightCacheHits)
	prometheus.MustRegister(InsightCacheMisses)
	prometheus.MustRegister(ProviderErrors)
	prometheus.MustRegister(TokensUsed)
	prometheus.MustRegister(TrendingScrapes)
	prometheus.MustRegister(SearchQueries)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
