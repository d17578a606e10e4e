// Package metrics expone contadores Prometheus del dominio y de HTTP.
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jhoicas/Gestion-api/internal/application/ports"
	"github.com/jhoicas/Gestion-api/internal/domain/lifecycle"
)

const namespace = "gestion"

var _ ports.Metrics = (*Collector)(nil)

// Collector agrupa las métricas registradas en un Registerer.
type Collector struct {
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	statusChanges *prometheus.CounterVec
	shareAccesses *prometheus.CounterVec
	emails        *prometheus.CounterVec
	payments      *prometheus.CounterVec
}

// New crea y registra las métricas en reg.
func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		statusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_changes_total",
			Help:      "Committed status changes by entity kind and target status",
		}, []string{"kind", "to"}),
		shareAccesses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "share_accesses_total",
			Help:      "Public share link accesses by outcome",
		}, []string{"kind", "outcome"}),
		emails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emails_processed_total",
			Help:      "Email delivery attempts by outcome",
		}, []string{"outcome"}),
		payments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_recorded_total",
			Help:      "Payment notifications applied by status",
		}, []string{"status"}),
	}
	reg.MustRegister(c.httpRequests, c.httpDuration, c.statusChanges, c.shareAccesses, c.emails, c.payments)
	return c
}

func (c *Collector) StatusChanged(kind lifecycle.Kind, to string) {
	c.statusChanges.WithLabelValues(string(kind), to).Inc()
}

func (c *Collector) ShareAccessed(kind lifecycle.ShareKind, outcome string) {
	c.shareAccesses.WithLabelValues(string(kind), outcome).Inc()
}

func (c *Collector) EmailProcessed(outcome string) {
	c.emails.WithLabelValues(outcome).Inc()
}

func (c *Collector) PaymentRecorded(status string) {
	c.payments.WithLabelValues(status).Inc()
}

// Middleware registra cantidad y duración de peticiones HTTP. Usa la ruta registrada
// (no la URL) para no crear una serie por id.
func (c *Collector) Middleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		start := time.Now()
		err := ctx.Next()
		status := ctx.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else if status < fiber.StatusBadRequest {
				status = fiber.StatusInternalServerError
			}
		}
		path := ctx.Route().Path
		labels := []string{ctx.Method(), path, strconv.Itoa(status)}
		c.httpRequests.WithLabelValues(labels...).Inc()
		c.httpDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
		return err
	}
}
