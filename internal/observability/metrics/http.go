package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	chatRequestsTotal  *prometheus.CounterVec
	chatContexts       *prometheus.HistogramVec
	chatDuration       *prometheus.HistogramVec
	workflowBranches   *prometheus.CounterVec
	workflowStageTotal *prometheus.CounterVec
	workflowStageTime  *prometheus.HistogramVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hcc",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hcc",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "hcc",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	chatRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hcc",
			Subsystem: "chat",
			Name:      "requests_total",
			Help:      "Total completed chat queries by status.",
		},
		[]string{"service", "status"},
	)
	chatContexts := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hcc",
			Subsystem: "chat",
			Name:      "retrieved_contexts",
			Help:      "Distribution of retrieved contexts per successful chat query.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
		[]string{"service"},
	)
	chatDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hcc",
			Subsystem: "chat",
			Name:      "duration_seconds",
			Help:      "End-to-end workflow duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)
	workflowBranches := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hcc",
			Subsystem: "workflow",
			Name:      "branch_total",
			Help:      "Total workflow branch decisions by branch label.",
		},
		[]string{"service", "branch"},
	)
	workflowStageTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hcc",
			Subsystem: "workflow",
			Name:      "stage_total",
			Help:      "Total executed workflow stages by status.",
		},
		[]string{"service", "stage", "status"},
	)
	workflowStageTime := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hcc",
			Subsystem: "workflow",
			Name:      "stage_duration_seconds",
			Help:      "Workflow stage duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "stage"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		chatRequestsTotal,
		chatContexts,
		chatDuration,
		workflowBranches,
		workflowStageTotal,
		workflowStageTime,
	)

	return &HTTPServerMetrics{
		registry:           registry,
		requestTotal:       requestTotal,
		requestDuration:    requestDuration,
		requestInFlight:    requestInFlight,
		chatRequestsTotal:  chatRequestsTotal,
		chatContexts:       chatContexts,
		chatDuration:       chatDuration,
		workflowBranches:   workflowBranches,
		workflowStageTotal: workflowStageTotal,
		workflowStageTime:  workflowStageTime,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) ObserveRequest(service, method, path string, status int, duration time.Duration) {
	m.requestTotal.WithLabelValues(service, method, path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(service, method, path).Observe(duration.Seconds())
}

func (m *HTTPServerMetrics) RequestStarted()  { m.requestInFlight.Inc() }
func (m *HTTPServerMetrics) RequestFinished() { m.requestInFlight.Dec() }

func (m *HTTPServerMetrics) ObserveChat(service string, contexts int, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.chatRequestsTotal.WithLabelValues(service, status).Inc()
	if err == nil {
		m.chatContexts.WithLabelValues(service).Observe(float64(contexts))
		m.chatDuration.WithLabelValues(service).Observe(duration.Seconds())
	}
}

// WorkflowObserver adapts the registry to the workflow engine's Observer
// interface without exposing prometheus types to the core.
type WorkflowObserver struct {
	service string
	metrics *HTTPServerMetrics
}

func (m *HTTPServerMetrics) WorkflowObserver(service string) *WorkflowObserver {
	return &WorkflowObserver{service: service, metrics: m}
}

func (o *WorkflowObserver) BranchTaken(branch string) {
	o.metrics.workflowBranches.WithLabelValues(o.service, branch).Inc()
}

func (o *WorkflowObserver) StageFinished(stage string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	o.metrics.workflowStageTotal.WithLabelValues(o.service, stage, status).Inc()
	o.metrics.workflowStageTime.WithLabelValues(o.service, stage).Observe(duration.Seconds())
}
