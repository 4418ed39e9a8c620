package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OptimizationOutcome labels the result of a route optimization.
type OptimizationOutcome string

const (
	OutcomeSuccess          OptimizationOutcome = "success"
	OutcomeInsufficient     OptimizationOutcome = "insufficient_destinations"
	OutcomeProviderError    OptimizationOutcome = "provider_error"
	OutcomeRouteUnavailable OptimizationOutcome = "route_unavailable"
)

// Recorder holds the service's Prometheus collectors. A nil *Recorder is
// valid and records nothing.
type Recorder struct {
	providerCalls    *prometheus.CounterVec
	providerDuration *prometheus.HistogramVec
	optimizations    *prometheus.CounterVec
	metricsDegraded  prometheus.Counter
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

// NewRecorder creates the collectors and registers them with reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		providerCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "maps_provider_calls_total",
				Help: "Total number of mapping provider calls",
			},
			[]string{"op", "status"},
		),
		providerDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "maps_provider_call_duration_seconds",
				Help:    "Duration of mapping provider calls in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
		optimizations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "route_optimizations_total",
				Help: "Total number of route optimizations by outcome",
			},
			[]string{"outcome"},
		),
		metricsDegraded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "trip_metrics_degraded_total",
				Help: "Trip metrics computed without distance because the provider failed",
			},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	collectors := []prometheus.Collector{
		r.providerCalls,
		r.providerDuration,
		r.optimizations,
		r.metricsDegraded,
		r.httpRequests,
		r.httpDuration,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// ObserveProviderCall records one outbound provider call.
func (r *Recorder) ObserveProviderCall(op string, err error, dur time.Duration) {
	if r == nil {
		return
	}

	status := "ok"
	if err != nil {
		status = "error"
	}
	r.providerCalls.WithLabelValues(op, status).Inc()
	r.providerDuration.WithLabelValues(op).Observe(dur.Seconds())
}

func (r *Recorder) ObserveOptimization(outcome OptimizationOutcome) {
	if r == nil {
		return
	}
	r.optimizations.WithLabelValues(string(outcome)).Inc()
}

func (r *Recorder) ObserveDegradedMetrics() {
	if r == nil {
		return
	}
	r.metricsDegraded.Inc()
}

// ObserveHTTPRequest records one served request. route is the matched
// mux pattern, never the raw path.
func (r *Recorder) ObserveHTTPRequest(method, route, status string, dur time.Duration) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(method, route, status).Inc()
	r.httpDuration.WithLabelValues(method, route).Observe(dur.Seconds())
}
