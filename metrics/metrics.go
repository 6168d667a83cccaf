// Package metrics provides Prometheus metrics for the MediaWiki client.
// It tracks API call counts, latencies, retry causes and backpressure
// waits.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all metrics
const (
	Namespace = "mediawiki"
)

var (
	// APIRequestsTotal counts api.php round-trips by caller and status
	APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "api_requests_total",
		Help:      "Total number of API requests",
	}, []string{"action", "status"})

	// APIRequestDuration measures API request latency distribution,
	// including retry and backoff sleeps
	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "api_request_duration_seconds",
		Help:      "API request latency distribution by caller",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"action"})

	// APIRetries counts retried requests by cause
	APIRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "api_retries_total",
		Help:      "API request retries by cause",
	}, []string{"reason"})

	// LagWaits accumulates time spent waiting out replication lag
	LagWaits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "lag_wait_seconds_total",
		Help:      "Total seconds spent waiting for server replication lag",
	})

	// ThrottleWaits accumulates time spent in the write throttle
	ThrottleWaits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "throttle_wait_seconds_total",
		Help:      "Total seconds write operations spent throttled",
	})

	// ContinuationPages counts result pages fetched by list queries
	ContinuationPages = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "continuation_pages_total",
		Help:      "Result pages fetched across continuation loops",
	}, []string{"action"})

	// UploadChunks counts stashed upload chunks by outcome
	UploadChunks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "upload_chunks_total",
		Help:      "Upload chunks sent by status",
	}, []string{"status"})

	// SiteInfoLoads counts site metadata cache populations. More than
	// one per session per wiki means the cache is not holding.
	SiteInfoLoads = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "siteinfo_loads_total",
		Help:      "Site metadata requests issued",
	})

	// ErrorsTotal counts typed API errors by wire code
	ErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "errors_total",
		Help:      "API errors by wire error code",
	}, []string{"code"})

	// ToolRequestsTotal counts MCP tool calls by tool name and status
	ToolRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "tool_requests_total",
		Help:      "Total number of MCP tool calls",
	}, []string{"tool", "status"})

	// ToolRequestDuration measures tool call latency distribution
	ToolRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "tool_request_duration_seconds",
		Help:      "Tool call latency distribution by tool",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"tool"})

	// ToolRequestsInFlight tracks currently executing tool calls
	ToolRequestsInFlight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "tool_requests_in_flight",
		Help:      "Number of tool calls currently being processed",
	}, []string{"tool"})

	// PanicsRecovered counts recovered panics in tool handlers
	PanicsRecovered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "panics_recovered_total",
		Help:      "Number of panics recovered in tool handlers",
	}, []string{"tool"})
)

// RecordAPICall records a completed API round-trip with its duration
// and outcome.
func RecordAPICall(action string, duration float64, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	APIRequestsTotal.WithLabelValues(action, status).Inc()
	APIRequestDuration.WithLabelValues(action).Observe(duration)
}

// RecordRetry records one retried request and its cause.
func RecordRetry(reason string) {
	APIRetries.WithLabelValues(reason).Inc()
}

// RecordLagWait adds one lag backoff sleep to the running total.
func RecordLagWait(seconds float64) {
	LagWaits.Add(seconds)
}

// RecordThrottleWait adds one throttle sleep to the running total.
func RecordThrottleWait(seconds float64) {
	ThrottleWaits.Add(seconds)
}

// RecordContinuationPage records one fetched page of a list query.
func RecordContinuationPage(action string) {
	ContinuationPages.WithLabelValues(action).Inc()
}

// RecordUploadChunk records one stashed chunk by outcome.
func RecordUploadChunk(status string) {
	UploadChunks.WithLabelValues(status).Inc()
}

// RecordSiteInfoLoad records one site metadata request.
func RecordSiteInfoLoad() {
	SiteInfoLoads.Inc()
}

// RecordError records one typed API error by its wire code.
func RecordError(code string) {
	ErrorsTotal.WithLabelValues(code).Inc()
}

// RecordToolRequest records a completed MCP tool call with its duration
// and outcome.
func RecordToolRequest(tool string, duration float64, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	ToolRequestsTotal.WithLabelValues(tool, status).Inc()
	ToolRequestDuration.WithLabelValues(tool).Observe(duration)
}
