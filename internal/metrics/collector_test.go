package metrics

import (
	"testing"
)

func TestCollectorPublishesDeltas(t *testing.T) {
	calls := 0
	source := func() map[string]CacheSnapshot {
		calls++
		return map[string]CacheSnapshot{
			"forum": {Hits: uint64(calls * 10), Misses: uint64(calls * 2), Items: calls},
		}
	}

	c := NewCollector(source, 0)
	c.collect()
	c.collect()

	if calls != 2 {
		t.Fatalf("expected 2 source calls, got %d", calls)
	}

	// Third collect with a regressed snapshot (cache cleared) must not panic
	// or add negative deltas.
	c.source = func() map[string]CacheSnapshot {
		return map[string]CacheSnapshot{"forum": {}}
	}
	c.collect()
}
