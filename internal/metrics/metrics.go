// Package metrics holds the Prometheus collectors exported by the HTTP hosts
// on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "azdo_mcp"

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeCached  = "cached"
	OutcomeStale   = "stale"
)

// Registry is the registry every collector below is registered with. It is
// separate from the global default so tests and embedders get a clean view.
var Registry = prometheus.NewRegistry()

var (
	ToolCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tool_calls_total",
		Help:      "Tool invocations by tool and outcome.",
	}, []string{"tool", "outcome"})

	ToolCallDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "tool_call_duration_seconds",
		Help:      "Tool invocation latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"tool"})

	SessionsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sessions_active",
		Help:      "Stateful HTTP sessions currently held.",
	})

	SessionsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_created_total",
		Help:      "Stateful HTTP sessions created.",
	})

	SessionsRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_rejected_total",
		Help:      "Session creation attempts rejected, by reason.",
	}, []string{"reason"})

	TenantLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tenant_lookups_total",
		Help:      "Organization tenant lookups by outcome.",
	}, []string{"outcome"})

	Compositions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "compositions_total",
		Help:      "Server compositions by topology.",
	}, []string{"topology"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		ToolCalls,
		ToolCallDuration,
		SessionsActive,
		SessionsCreated,
		SessionsRejected,
		TenantLookups,
		Compositions,
	)
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}
