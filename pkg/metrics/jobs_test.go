package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestJobMetricsRecordsOutcomes(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewJobMetrics(registry)

	metrics.ObserveDuration("transfer-audit", 120*time.Millisecond)
	metrics.IncSuccess("transfer-audit")
	metrics.IncSuccess("transfer-audit")
	metrics.IncFailure("stock-report")

	mfs, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	successes, err := fetchCounterValue(mfs, "maintenance_job_success_total", "job", "transfer-audit")
	if err != nil {
		t.Fatalf("fetch successes: %v", err)
	}
	if successes != 2 {
		t.Fatalf("expected 2 successes, got %f", successes)
	}

	failures, err := fetchCounterValue(mfs, "maintenance_job_failure_total", "job", "stock-report")
	if err != nil {
		t.Fatalf("fetch failures: %v", err)
	}
	if failures != 1 {
		t.Fatalf("expected 1 failure, got %f", failures)
	}

	sum, err := fetchHistogramSum(mfs, "maintenance_job_duration_seconds", "job", "transfer-audit")
	if err != nil {
		t.Fatalf("fetch duration: %v", err)
	}
	if sum <= 0 {
		t.Fatalf("expected positive duration sum, got %f", sum)
	}
}

func TestJobMetricsNilRegistererIsNoop(t *testing.T) {
	metrics := NewJobMetrics(nil)
	metrics.ObserveDuration("", time.Second)
	metrics.IncSuccess("")
	metrics.IncFailure("")
}
