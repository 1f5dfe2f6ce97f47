package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/formdeck/formd/internal/logger"
)

var (
	APIRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fd_api_requests_total",
			Help: "Number of API requests",
		},
		[]string{"method", "path", "status"},
	)
	APILatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fd_api_latency_seconds",
			Help:    "API latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	Forms = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "fd_forms_total",
			Help: "Number of stored form definitions",
		},
	)
	AuditEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fd_audit_events_total",
			Help: "Audit log events",
		},
		[]string{"action"},
	)
	AuditErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fd_audit_errors_total",
			Help: "Audit write errors",
		},
		[]string{"action"},
	)
)

func init() {
	prometheus.MustRegister(
		APIRequests,
		APILatency,
		Forms,
		AuditEvents,
		AuditErrors,
	)
}

// FormCounter is implemented by repositories able to count stored forms.
type FormCounter interface {
	CountForms(ctx context.Context) (int, error)
}

// StartFormGauge starts a background job that refreshes the form gauge
// every 30 seconds until the context is cancelled.
func StartFormGauge(ctx context.Context, repo FormCounter) {
	if repo == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := repo.CountForms(ctx)
				if err != nil {
					logger.L.Warn("count forms", "err", err)
					continue
				}
				Forms.Set(float64(n))
			}
		}
	}()
}
