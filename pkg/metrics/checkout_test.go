package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCheckoutMetricsExportsOutcomeCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCheckoutMetrics(reg)
	m.Observe("submitted", 120*time.Millisecond)
	m.Observe("insufficient_funds", 5*time.Millisecond)
	m.Observe("submitted", 80*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got := counterValue(mfs, "checkout_attempts_total", "submitted"); got != 2 {
		t.Fatalf("expected 2 submitted attempts, got %f", got)
	}
	if got := counterValue(mfs, "checkout_attempts_total", "insufficient_funds"); got != 1 {
		t.Fatalf("expected 1 insufficient_funds attempt, got %f", got)
	}
}

func TestNilRegistererIsSafe(t *testing.T) {
	m := NewCheckoutMetrics(nil)
	m.Observe("submitted", time.Millisecond)
}

func counterValue(mfs []*dto.MetricFamily, name, outcome string) float64 {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "outcome" && label.GetValue() == outcome {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return -1
}
