package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wealthplay/nex-mentor/internal/core/domain"
)

const namespace = "nex"

type HTTPServerMetrics struct {
	service  string
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	mentorResultsTotal      *prometheus.CounterVec
	modelSubstitutionsTotal *prometheus.CounterVec
	llmChatDuration         *prometheus.HistogramVec
	breakerState            *prometheus.GaugeVec
	exchangePublishTotal    *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	mentorResultsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mentor",
			Name:      "results_total",
			Help:      "Mentor results by endpoint and result type.",
		},
		[]string{"service", "endpoint", "type"},
	)
	modelSubstitutionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mentor",
			Name:      "model_substitutions_total",
			Help:      "Answers produced by a substitute model because the configured one is not installed.",
		},
		[]string{"service", "requested", "substitute"},
	)
	llmChatDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "chat_duration_seconds",
			Help:      "Ollama chat call duration in seconds by outcome.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		},
		[]string{"service", "model", "outcome"},
	)
	breakerState := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "resilience",
			Name:      "breaker_open",
			Help:      "1 when the circuit breaker for an operation is open, 0 otherwise.",
		},
		[]string{"service", "operation"},
	)
	exchangePublishTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "exchange",
			Name:      "publish_total",
			Help:      "Mentor exchanges published for history by status.",
		},
		[]string{"service", "status"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		mentorResultsTotal,
		modelSubstitutionsTotal,
		llmChatDuration,
		breakerState,
		exchangePublishTotal,
	)

	return &HTTPServerMetrics{
		service:                 service,
		registry:                registry,
		requestTotal:            requestTotal,
		requestDuration:         requestDuration,
		requestInFlight:         requestInFlight,
		mentorResultsTotal:      mentorResultsTotal,
		modelSubstitutionsTotal: modelSubstitutionsTotal,
		llmChatDuration:         llmChatDuration,
		breakerState:            breakerState,
		exchangePublishTotal:    exchangePublishTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// normalizePath collapses id segments so label cardinality stays bounded.
func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/courses/"):
		return "/v1/courses/{course_id}"
	case strings.HasPrefix(path, "/v1/topic-chat/"):
		return "/v1/topic-chat/{course_id}"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) ObserveMentorResult(endpoint string, resultType domain.ResultType) {
	m.mentorResultsTotal.WithLabelValues(m.service, endpoint, string(resultType)).Inc()
}

func (m *HTTPServerMetrics) ObserveModelSubstitution(requested, substitute string) {
	m.modelSubstitutionsTotal.WithLabelValues(m.service, requested, substitute).Inc()
}

func (m *HTTPServerMetrics) ObserveChat(model string, failure domain.FailureKind, duration time.Duration) {
	outcome := string(failure)
	if outcome == "" {
		outcome = "success"
	}
	m.llmChatDuration.WithLabelValues(m.service, model, outcome).Observe(duration.Seconds())
}

// RecordBreakerState matches resilience.Config.OnStateChange.
func (m *HTTPServerMetrics) RecordBreakerState(operation, _ string, to string) {
	value := 0.0
	if to == "open" {
		value = 1
	}
	m.breakerState.WithLabelValues(m.service, operation).Set(value)
}

func (m *HTTPServerMetrics) RecordExchangePublish(err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.exchangePublishTotal.WithLabelValues(m.service, status).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}
