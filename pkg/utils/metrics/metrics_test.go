package metrics_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/secmon-lab/ganit/pkg/utils/metrics"
)

func findFamily(t *testing.T, name string) bool {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	gt.NoError(t, err).Required()
	for _, f := range families {
		if f.GetName() == name {
			return true
		}
	}
	return false
}

func TestMetricsAreRegistered(t *testing.T) {
	metrics.RecordRun("completed")
	metrics.ObserveStage("solve", time.Now())
	metrics.ObserveConfidence(0.9)
	metrics.RecordRoute("calculus.limit")
	metrics.RecordAppend(metrics.KindSolve)

	for _, name := range []string{
		"ganit_pipeline_runs_total",
		"ganit_pipeline_stage_duration_seconds",
		"ganit_verifier_confidence",
		"ganit_router_selections_total",
		"ganit_memory_appends_total",
	} {
		gt.Bool(t, findFamily(t, name)).True()
	}
}
