// Package metrics agrupa los collectors de Prometheus de la API en un registry propio.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "flota"

// Metrics collectors registrados. Los campos se inyectan en los componentes que los alimentan.
type Metrics struct {
	Registry *prometheus.Registry

	httpRequests *prometheus.HistogramVec

	// AuditFailures entradas de auditoría que no se pudieron persistir.
	AuditFailures prometheus.Counter
	// AuthFailures logins fallidos por motivo interno (la respuesta HTTP no lo revela).
	AuthFailures *prometheus.CounterVec
	// APIKeyValidations validaciones de API key por resultado.
	APIKeyValidations *prometheus.CounterVec
	// PurgedResetTokens tokens de recuperación eliminados por el job de limpieza.
	PurgedResetTokens prometheus.Counter

	Jobs *JobMetrics
}

// New crea el registry con los collectors de runtime de Go y de proceso.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		Registry: reg,
		httpRequests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		AuditFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_write_failures_total",
			Help:      "Audit entries that could not be persisted.",
		}),
		AuthFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_login_failures_total",
			Help:      "Failed logins by internal reason.",
		}, []string{"reason"}),
		APIKeyValidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_key_validations_total",
			Help:      "API key validations by result.",
		}, []string{"result"}),
		PurgedResetTokens: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "password_reset_tokens_purged_total",
			Help:      "Expired or consumed reset tokens removed.",
		}),
	}
	reg.MustRegister(m.httpRequests, m.AuditFailures, m.AuthFailures, m.APIKeyValidations, m.PurgedResetTokens)
	m.Jobs = NewJobMetrics(reg)
	return m
}

// ObserveHTTPRequest registra una request; route es el patrón (/api/vehicles/:id), no la ruta concreta.
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

// JobMetrics duración y resultado de las tareas programadas.
type JobMetrics struct {
	duration *prometheus.HistogramVec
	runs     *prometheus.CounterVec
}

// NewJobMetrics registra los collectors de jobs en reg.
func NewJobMetrics(reg prometheus.Registerer) *JobMetrics {
	if reg == nil {
		return &JobMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "job_duration_seconds",
		Help:      "Duration of scheduled jobs in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"job"})
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "job_runs_total",
		Help:      "Scheduled job executions by result.",
	}, []string{"job", "result"})
	reg.MustRegister(duration, runs)
	return &JobMetrics{duration: duration, runs: runs}
}

// Observe registra una ejecución del job.
func (j *JobMetrics) Observe(job string, d time.Duration, err error) {
	if j == nil || j.duration == nil {
		return
	}
	if job == "" {
		job = "unknown"
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	j.duration.WithLabelValues(job).Observe(d.Seconds())
	j.runs.WithLabelValues(job, result).Inc()
}
