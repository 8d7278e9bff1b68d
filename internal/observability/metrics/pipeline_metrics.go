package metrics

import (
	"context"
	"errors"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

const (
	FetchReasonTimeout    = "timeout"
	FetchReasonCanceled   = "canceled"
	FetchReasonHTTPStatus = "http_status"
	FetchReasonNetwork    = "network"
	FetchReasonUnknown    = "unknown"
)

const (
	InsightOutcomeGenerated     = "generated"
	InsightOutcomeNotConfigured = "not_configured"
	InsightOutcomeError         = "error"
)

// PipelineMetrics captures source load, aggregation and insight signals.
type PipelineMetrics struct {
	sourceFetches   *prometheus.CounterVec
	sourceFailures  *prometheus.CounterVec
	sourceDuration  *prometheus.HistogramVec
	pipelineRuns    *prometheus.CounterVec
	pipelineLatency *prometheus.HistogramVec
	cacheLookups    *prometheus.CounterVec
	insightRequests *prometheus.CounterVec
	insightLatency  prometheus.Observer
}

var (
	pipelineMetricsOnce sync.Once
	pipelineMetrics     *PipelineMetrics
)

// PipelineWithConfig returns the singleton pipeline metrics using config labels.
func PipelineWithConfig(cfg Config) *PipelineMetrics {
	pipelineMetricsOnce.Do(func() {
		pipelineMetrics = NewPipelineMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return pipelineMetrics
}

// NewPipelineMetrics registers a fresh set of collectors on registerer.
func NewPipelineMetrics(registerer prometheus.Registerer, cfg Config) *PipelineMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "storepulse"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	sourceFetches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "storepulse_source_fetch_total",
		Help:        "Source resource fetches by resource and outcome.",
		ConstLabels: constLabels,
	}, []string{"source_kind", "resource", "outcome"})
	sourceFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "storepulse_source_fetch_failures_total",
		Help:        "Source resource fetch failures by low-cardinality reason.",
		ConstLabels: constLabels,
	}, []string{"resource", "reason"})
	sourceDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "storepulse_source_fetch_duration_seconds",
		Help:        "Source resource fetch latency.",
		Buckets:     []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		ConstLabels: constLabels,
	}, []string{"resource"})
	pipelineRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "storepulse_pipeline_runs_total",
		Help:        "Dashboard pipeline runs by source kind.",
		ConstLabels: constLabels,
	}, []string{"source_kind"})
	pipelineLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "storepulse_pipeline_duration_seconds",
		Help:        "End to end dashboard pipeline latency including source load.",
		Buckets:     []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		ConstLabels: constLabels,
	}, []string{"source_kind"})
	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "storepulse_snapshot_cache_lookups_total",
		Help:        "Snapshot cache lookups by result.",
		ConstLabels: constLabels,
	}, []string{"result"})
	insightRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "storepulse_insight_requests_total",
		Help:        "Insight requests by outcome.",
		ConstLabels: constLabels,
	}, []string{"outcome"})
	insightLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:        "storepulse_insight_duration_seconds",
		Help:        "Text generation call latency.",
		Buckets:     []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
		ConstLabels: constLabels,
	})

	registerer.MustRegister(
		sourceFetches,
		sourceFailures,
		sourceDuration,
		pipelineRuns,
		pipelineLatency,
		cacheLookups,
		insightRequests,
		insightLatency,
	)

	return &PipelineMetrics{
		sourceFetches:   sourceFetches,
		sourceFailures:  sourceFailures,
		sourceDuration:  sourceDuration,
		pipelineRuns:    pipelineRuns,
		pipelineLatency: pipelineLatency,
		cacheLookups:    cacheLookups,
		insightRequests: insightRequests,
		insightLatency:  insightLatency,
	}
}

// ObserveSourceFetch records one resource fetch. A nil err counts as success.
func (m *PipelineMetrics) ObserveSourceFetch(sourceKind, resource string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
		m.sourceFailures.WithLabelValues(resource, ClassifyFetchReason(err)).Inc()
	}
	m.sourceFetches.WithLabelValues(sourceKind, resource, outcome).Inc()
	m.sourceDuration.WithLabelValues(resource).Observe(duration.Seconds())
}

// ObservePipelineRun records one dashboard pipeline execution.
func (m *PipelineMetrics) ObservePipelineRun(sourceKind string, duration time.Duration) {
	if m == nil {
		return
	}
	m.pipelineRuns.WithLabelValues(sourceKind).Inc()
	m.pipelineLatency.WithLabelValues(sourceKind).Observe(duration.Seconds())
}

func (m *PipelineMetrics) IncCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// ObserveInsight records one insight request outcome and, for attempted
// calls, its latency.
func (m *PipelineMetrics) ObserveInsight(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.insightRequests.WithLabelValues(outcome).Inc()
	if outcome != InsightOutcomeNotConfigured {
		m.insightLatency.Observe(duration.Seconds())
	}
}

type statusCoder interface {
	StatusCode() int
}

// ClassifyFetchReason maps a fetch error to a low-cardinality reason.
func ClassifyFetchReason(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return FetchReasonTimeout
	}
	if errors.Is(err, context.Canceled) {
		return FetchReasonCanceled
	}
	var sc statusCoder
	if errors.As(err, &sc) {
		return FetchReasonHTTPStatus
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return FetchReasonTimeout
		}
		return FetchReasonNetwork
	}
	return FetchReasonUnknown
}
