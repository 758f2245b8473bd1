package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func gathered(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func TestCollectionsMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCollectionsMetrics(reg)
	m.ObserveTurn("voice", "INTENT")
	m.ObserveTurn("voice", "INTENT")
	m.ObservePromise("KEPT")
	m.ObserveEnrichment("ok")
	m.ObserveQueueBuild(0.02)

	turns := gathered(t, reg, "riverline_conversation_turns_total")
	if turns == nil {
		t.Fatalf("expected turn counter to be registered")
	}
	if got := turns.GetMetric()[0].GetCounter().GetValue(); got != 2 {
		t.Fatalf("expected 2 turns, got %v", got)
	}

	promises := gathered(t, reg, "riverline_promises_transitions_total")
	if promises == nil {
		t.Fatalf("expected promise counter to be registered")
	}
	if got := promises.GetMetric()[0].GetCounter().GetValue(); got != 1 {
		t.Fatalf("expected 1 promise transition, got %v", got)
	}

	if gathered(t, reg, "riverline_scoring_queue_build_seconds") == nil {
		t.Fatalf("expected queue build histogram to be registered")
	}
}

func TestCollectionsMetricsNilSafe(t *testing.T) {
	var m *CollectionsMetrics
	m.ObserveTurn("voice", "INTENT")
	m.ObservePromise("KEPT")
	m.ObserveEnrichment("failed")
	m.ObserveQueueBuild(0.1)
}
