package metrics

import (
	"strings"
	"testing"
)

func TestHistogramCumulativeBuckets(t *testing.T) {
	h := newHistogram([]float64{10, 100})
	h.Observe(5)
	h.Observe(50)
	h.Observe(500)

	snap := h.Snapshot()
	if snap.count != 3 {
		t.Fatalf("expected count 3, got %d", snap.count)
	}
	if snap.counts[0] != 1 || snap.counts[1] != 1 {
		t.Fatalf("unexpected bucket counts %v", snap.counts)
	}
}

func TestRenderIncludesCounters(t *testing.T) {
	IncCacheHit()
	IncLLMCall()
	ObserveAnalysisDurationMs(42)

	out := Render()
	for _, name := range []string{
		"analysis_cache_hits_total",
		"analysis_cache_misses_total",
		"analysis_llm_calls_total",
		"analysis_failed_total",
		"analysis_persist_failed_total",
		"analysis_duration_ms_bucket{le=\"100\"}",
	} {
		if !strings.Contains(out, name) {
			t.Fatalf("expected %s in output:\n%s", name, out)
		}
	}
}
