package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	HTTPRequestDuration *prometheus.HistogramVec
	ProjectsCreated     prometheus.Counter
	ProjectsDeleted     prometheus.Counter
	Registrations       *prometheus.CounterVec
	AdminChanges        *prometheus.CounterVec
	SignIns             *prometheus.CounterVec
}

// New creates and registers all metrics on reg. Pass prometheus.DefaultRegisterer
// in main and a fresh prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hackportal_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"method", "route", "status"}),
		ProjectsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "hackportal_projects_created_total",
			Help: "Total number of projects submitted",
		}),
		ProjectsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "hackportal_projects_deleted_total",
			Help: "Total number of projects deleted",
		}),
		Registrations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hackportal_registration_transitions_total",
			Help: "Registration state transitions by action and outcome",
		}, []string{"action", "outcome"}),
		AdminChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hackportal_admin_changes_total",
			Help: "Admin flag change attempts by outcome",
		}, []string{"outcome"}),
		SignIns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hackportal_sign_ins_total",
			Help: "Sign-in attempts by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) IncrementProjectsCreated() {
	m.ProjectsCreated.Inc()
}

func (m *Metrics) IncrementProjectsDeleted() {
	m.ProjectsDeleted.Inc()
}

// ObserveRegistration records a register/unregister attempt. outcome is "success"
// or a domain error code.
func (m *Metrics) ObserveRegistration(action, outcome string) {
	m.Registrations.WithLabelValues(action, outcome).Inc()
}

func (m *Metrics) ObserveAdminChange(outcome string) {
	m.AdminChanges.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveSignIn(outcome string) {
	m.SignIns.WithLabelValues(outcome).Inc()
}

// Middleware records request latency labelled with the chi route pattern, so
// path parameters do not explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		m.HTTPRequestDuration.
			WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).
			Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
