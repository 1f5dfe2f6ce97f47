package server

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/formdeck/formd/internal/metrics"
	"github.com/formdeck/formd/internal/server/middleware"
)

// setupMetrics registers metrics middleware and handlers.
func setupMetrics(api huma.API, r chi.Router, repo metrics.FormCounter) {
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	api.UseMiddleware(middleware.MetricsMW)
	if repo != nil {
		metrics.StartFormGauge(context.Background(), repo)
	}
}
