package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modal_requests_total",
			Help: "Total HTTP requests",
		}, []string{"code"},
	)
	Latency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "modal_request_duration_seconds",
		Help:    "Request latency seconds",
		Buckets: prometheus.DefBuckets,
	})
	InFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "modal_in_flight",
		Help: "In-flight HTTP requests",
	})
	RequestErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modal_request_errors_total",
			Help: "Total errors by type",
		}, []string{"type"},
	)
	Decisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modal_decisions_total",
			Help: "Visibility decisions by outcome (ineligible, suppressed, shown)",
		}, []string{"outcome"},
	)
	Renders = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "modal_renders_total",
		Help: "Modal fragments emitted",
	})
	Dismissals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modal_dismissals_total",
			Help: "Modal closes by dismiss mode and session hide",
		}, []string{"mode", "session"},
	)
	SnapshotReloads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modal_snapshot_reloads_total",
			Help: "Options snapshot reloads by result",
		}, []string{"result"},
	)
)

func init() {
	prometheus.MustRegister(RequestsTotal, Latency, InFlight, RequestErrors, Decisions, Renders, Dismissals, SnapshotReloads)
}

func MetricsHandler() http.Handler { return promhttp.Handler() }

type rec struct {
	http.ResponseWriter
	code int
}

func (r *rec) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func Measure(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		InFlight.Inc()
		defer InFlight.Dec()

		rr := &rec{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rr, r)

		Latency.Observe(time.Since(start).Seconds())
		RequestsTotal.WithLabelValues(strconv.Itoa(rr.code)).Inc()
		if rr.code >= http.StatusInternalServerError {
			RequestErrors.WithLabelValues("server").Inc()
		} else if rr.code >= http.StatusBadRequest {
			RequestErrors.WithLabelValues("client").Inc()
		}
	})
}
