package api

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is the server's own instrumentation, kept on a private registry
// so it never mixes with the exposition data being served on /metrics.
type Metrics struct {
	registry *prometheus.Registry

	linesValidated  *prometheus.CounterVec
	filesValidated  *prometheus.CounterVec
	reportsSaved    prometheus.Counter
	requestDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers the server collectors
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		linesValidated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "promcheck",
				Name:      "lines_validated_total",
				Help:      "Exposition lines validated, by result.",
			},
			[]string{"result"},
		),
		filesValidated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "promcheck",
				Name:      "files_validated_total",
				Help:      "Exposition files validated, by result.",
			},
			[]string{"result"},
		),
		reportsSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "promcheck",
			Name:      "reports_saved_total",
			Help:      "Directory validation reports persisted.",
		}),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "promcheck",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by route template, method and status code.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route", "method", "code"},
		),
	}

	m.registry.MustRegister(
		m.linesValidated,
		m.filesValidated,
		m.reportsSaved,
		m.requestDuration,
		prometheus.NewGoCollector(),
	)
	return m
}

// WatchHub exports the connected WebSocket client count
func (m *Metrics) WatchHub(hub *ReportHub) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: "promcheck",
			Name:      "websocket_clients",
			Help:      "Connected report feed subscribers.",
		},
		func() float64 { return float64(hub.ClientCount()) },
	))
}

// Handler serves the registry for GET /v1/telemetry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) observeLines(valid, invalid int) {
	if m == nil {
		return
	}
	m.linesValidated.WithLabelValues("valid").Add(float64(valid))
	m.linesValidated.WithLabelValues("invalid").Add(float64(invalid))
}

func (m *Metrics) observeFile(valid bool) {
	if m == nil {
		return
	}
	m.filesValidated.WithLabelValues(resultLabel(valid)).Inc()
}

func (m *Metrics) observeReport() {
	if m == nil {
		return
	}
	m.reportsSaved.Inc()
}

// Middleware records request latency labelled by the matched route template
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := "unmatched"
		if cr := mux.CurrentRoute(r); cr != nil {
			if tmpl, err := cr.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		m.requestDuration.
			WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).
			Observe(time.Since(start).Seconds())
	})
}

func resultLabel(valid bool) string {
	if valid {
		return "valid"
	}
	return "invalid"
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the underlying writer
func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

// Hijack supports the WebSocket upgrade on /v1/ws
func (s *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := s.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	s.status = http.StatusSwitchingProtocols
	return h.Hijack()
}
