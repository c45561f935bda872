package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ganit"

var (
	// pipelineRuns counts finished runs. Labels: status (completed, review_required, no_grounding, error)
	pipelineRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "pipeline",
		Name:      "runs_total",
		Help:      "Total pipeline runs by terminal status",
	}, []string{"status"})

	// stageDuration measures each pipeline stage. Labels: stage
	stageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "pipeline",
		Name:      "stage_duration_seconds",
		Help:      "Pipeline stage latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"stage"})

	verifierConfidence = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "verifier",
		Name:      "confidence",
		Help:      "Distribution of verifier confidence scores",
		Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 0.95, 1.0},
	})

	// routeSelections counts routing decisions. Labels: rule
	routeSelections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "router",
		Name:      "selections_total",
		Help:      "Total routing decisions by rule",
	}, []string{"rule"})

	// memoryAppends counts persisted records. Labels: kind (solve, correction)
	memoryAppends = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "memory",
		Name:      "appends_total",
		Help:      "Total records appended to memory",
	}, []string{"kind"})
)

// Memory record kinds
const (
	KindSolve      = "solve"
	KindCorrection = "correction"
)

// StatusError labels runs that ended with an error
const StatusError = "error"

func RecordRun(status string) {
	pipelineRuns.WithLabelValues(status).Inc()
}

// ObserveStage records the time elapsed since start for stage
func ObserveStage(stage string, start time.Time) {
	stageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

func ObserveConfidence(confidence float64) {
	verifierConfidence.Observe(confidence)
}

func RecordRoute(ruleID string) {
	routeSelections.WithLabelValues(ruleID).Inc()
}

func RecordAppend(kind string) {
	memoryAppends.WithLabelValues(kind).Inc()
}
