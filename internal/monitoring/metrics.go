package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Metrics métriques Prometheus du service arène
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	AgentsRegistered  prometheus.Counter
	BattlesStarted    prometheus.Counter
	BattlesFinished   *prometheus.CounterVec
	TurnsResolved     prometheus.Counter
	MatchmakingPairs  prometheus.Counter
	QueueSize         prometheus.Gauge
	SchedulerSweeps   prometheus.Counter
	WebhookDeliveries *prometheus.CounterVec
}

// NewMetrics crée et enregistre les métriques du service
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		AgentsRegistered: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "arena_agents_registered_total",
				Help: "Total number of agents registered",
			},
		),
		BattlesStarted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "arena_battles_started_total",
				Help: "Total number of battles started",
			},
		),
		BattlesFinished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arena_battles_finished_total",
				Help: "Total number of battles finished",
			},
			[]string{"reason"},
		),
		TurnsResolved: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "arena_turns_resolved_total",
				Help: "Total number of battle turns resolved",
			},
		),
		MatchmakingPairs: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "arena_matchmaking_pairs_total",
				Help: "Total number of matchmaking pairings",
			},
		),
		QueueSize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "arena_matchmaking_queue_size",
				Help: "Current matchmaking queue size",
			},
		),
		SchedulerSweeps: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "arena_scheduler_sweeps_total",
				Help: "Total number of timeout scheduler sweeps",
			},
		),
		WebhookDeliveries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arena_webhook_deliveries_total",
				Help: "Total number of webhook delivery attempts by outcome",
			},
			[]string{"event", "outcome"},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.AgentsRegistered,
		m.BattlesStarted,
		m.BattlesFinished,
		m.TurnsResolved,
		m.MatchmakingPairs,
		m.QueueSize,
		m.SchedulerSweeps,
		m.WebhookDeliveries,
	)

	logrus.Info("Prometheus metrics initialized")

	return m
}

// Handler retourne le handler Prometheus
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware Prometheus pour instrumenter les requêtes HTTP
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		m.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(c.Writer.Status()),
		).Inc()

		m.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			endpoint,
		).Observe(duration)
	}
}
