package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns the collectors of one router. Each instance has its own
// registry so several routers can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	httpInFlight prometheus.Gauge
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	logins      *prometheus.CounterVec
	throttled   *prometheus.CounterVec
	cartAdded   prometheus.Counter
	receiptsOut *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "clickstore",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clickstore",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clickstore",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		}, []string{"method", "path"}),

		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clickstore",
			Subsystem: "auth",
			Name:      "logins_total",
			Help:      "Login attempts by outcome.",
		}, []string{"result"}),
		throttled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clickstore",
			Subsystem: "auth",
			Name:      "throttled_total",
			Help:      "Requests rejected by the per-client rate limiter.",
		}, []string{"path"}),
		cartAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clickstore",
			Subsystem: "cart",
			Name:      "items_added_total",
			Help:      "Cart items created.",
		}),
		receiptsOut: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clickstore",
			Subsystem: "receipts",
			Name:      "exported_total",
			Help:      "Receipts rendered, by whether they were archived.",
		}, []string{"archived"}),
	}

	m.registry.MustRegister(
		m.httpInFlight,
		m.httpRequests,
		m.httpDuration,
		m.logins,
		m.throttled,
		m.cartAdded,
		m.receiptsOut,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Instrument is mux middleware labelling requests with the matched route
// template.
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w}
		start := time.Now()

		m.httpInFlight.Inc()
		defer m.httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		path := routeTemplate(r)
		method := strings.ToUpper(r.Method)

		m.httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.code())).Inc()
		m.httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) recordLogin(result string) {
	m.logins.WithLabelValues(result).Inc()
}

func (m *Metrics) recordThrottled(path string) {
	m.throttled.WithLabelValues(path).Inc()
}

func (m *Metrics) recordCartAdd() {
	m.cartAdded.Inc()
}

func (m *Metrics) recordReceipt(archived bool) {
	m.receiptsOut.WithLabelValues(strconv.FormatBool(archived)).Inc()
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}
